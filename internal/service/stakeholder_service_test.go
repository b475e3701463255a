package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/testutil"
)

func newStake(projectID, userID string, pct float64) *domain.Stakeholder {
	return &domain.Stakeholder{ProjectID: projectID, UserID: userID, Role: "sponsor", Percentage: pct}
}

func TestStakeholderService_AllocationTracksCreates(t *testing.T) {
	f := newFixture(t)
	svc := f.stakeholderService()
	ctx := f.asOwner()

	alloc, err := svc.Allocation(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, calc.Allocation{Total: 0, Available: 100}, alloc)

	require.NoError(t, svc.Create(ctx, newStake(f.project.ID, f.addUser(t, "Ana").ID, 30)))
	require.NoError(t, svc.Create(ctx, newStake(f.project.ID, f.addUser(t, "Ben").ID, 45)))

	alloc, err = svc.Allocation(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, calc.Allocation{Total: 75, Available: 25}, alloc)
}

func TestStakeholderService_CreateRejectsOverCap(t *testing.T) {
	f := newFixture(t)
	svc := f.stakeholderService()
	ctx := f.asOwner()
	f.addStake(t, f.addUser(t, "Ana"), 30)
	f.addStake(t, f.addUser(t, "Ben"), 45)

	err := svc.Create(ctx, newStake(f.project.ID, f.addUser(t, "Cy").ID, 30))
	require.Error(t, err)
	assert.ErrorIs(t, err, calc.ErrExceedsAvailable)

	var ae *calc.AllocationError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 25.0, ae.Available)

	require.NoError(t, svc.Create(ctx, newStake(f.project.ID, f.addUser(t, "Di").ID, 25)))
	alloc, err := svc.Allocation(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, alloc.Total)
}

func TestStakeholderService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.stakeholderService()
	member := f.addUser(t, "Ana")

	tests := []struct {
		name  string
		ctx   context.Context
		stake *domain.Stakeholder
		want  error
	}{
		{"zero percentage", f.asOwner(), newStake(f.project.ID, member.ID, 0), calc.ErrInvalidRange},
		{"above hundred", f.asOwner(), newStake(f.project.ID, member.ID, 150), calc.ErrInvalidRange},
		{"owner as stakeholder", f.asOwner(), newStake(f.project.ID, f.owner.ID, 10), domain.ErrValidation},
		{"unknown user", f.asOwner(), newStake(f.project.ID, "nobody", 10), domain.ErrNotFound},
		{"unknown project", f.asOwner(), newStake("missing", member.ID, 10), domain.ErrNotFound},
		{"not the owner", as(member), newStake(f.project.ID, member.ID, 10), domain.ErrForbidden},
		{"anonymous", context.Background(), newStake(f.project.ID, member.ID, 10), domain.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(tt.ctx, tt.stake)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	stakes, err := svc.ListByProject(context.Background(), f.project.ID)
	require.NoError(t, err)
	assert.Empty(t, stakes)
}

func TestStakeholderService_DuplicateUserConflicts(t *testing.T) {
	f := newFixture(t)
	svc := f.stakeholderService()
	ana := f.addUser(t, "Ana")

	require.NoError(t, svc.Create(f.asOwner(), newStake(f.project.ID, ana.ID, 10)))
	err := svc.Create(f.asOwner(), newStake(f.project.ID, ana.ID, 10))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStakeholderService_UpdateExcludesOwnShare(t *testing.T) {
	f := newFixture(t)
	svc := f.stakeholderService()
	ctx := f.asOwner()
	a := f.addStake(t, f.addUser(t, "Ana"), 60)
	b := f.addStake(t, f.addUser(t, "Ben"), 40)

	updated, err := svc.Update(ctx, b.ID, StakeholderPatch{Percentage: ptr(40.0), Role: ptr("investor")})
	require.NoError(t, err)
	assert.Equal(t, "investor", updated.Role)

	_, err = svc.Update(ctx, b.ID, StakeholderPatch{Percentage: ptr(41.0)})
	assert.ErrorIs(t, err, calc.ErrExceedsAvailable)

	_, err = svc.Update(ctx, a.ID, StakeholderPatch{Percentage: ptr(50.0)})
	require.NoError(t, err)
	_, err = svc.Update(ctx, b.ID, StakeholderPatch{Percentage: ptr(50.0)})
	require.NoError(t, err)

	alloc, err := svc.Allocation(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, calc.Allocation{Total: 100, Available: 0}, alloc)
}

func TestStakeholderService_DeleteDoesNotRevalidate(t *testing.T) {
	f := newFixture(t)
	svc := f.stakeholderService()
	a := f.addStake(t, f.addUser(t, "Ana"), 70)
	f.addStake(t, f.addUser(t, "Ben"), 30)

	require.NoError(t, svc.Delete(f.asOwner(), a.ID))

	alloc, err := svc.Allocation(context.Background(), f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, calc.Allocation{Total: 30, Available: 70}, alloc)

	_, err = svc.GetByID(context.Background(), a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStakeholderService_ConcurrentCreatesNeverExceedCap(t *testing.T) {
	f := newFixtureWithDB(t, testutil.NewFileTestDB(t))
	svc := f.stakeholderService()

	const writers = 8
	users := make([]*domain.User, writers)
	for i := range users {
		users[i] = f.addUser(t, "Writer")
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected []error
	)
	for _, u := range users {
		wg.Add(1)
		go func(u *domain.User) {
			defer wg.Done()
			err := svc.Create(f.asOwner(), newStake(f.project.ID, u.ID, 30))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
				return
			}
			rejected = append(rejected, err)
		}(u)
	}
	wg.Wait()

	assert.Equal(t, 3, accepted, "only three 30 percent shares fit under the cap")
	for _, err := range rejected {
		assert.ErrorIs(t, err, calc.ErrExceedsAvailable)
	}

	alloc, err := svc.Allocation(context.Background(), f.project.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, alloc.Total, 100.0)
	assert.Equal(t, 90.0, alloc.Total)
}
