package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStakeholderRepo_CreateWithinCap(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	_, proj := seedOwnerProject(t, db, "Cap")
	users := NewSQLiteUserRepo(db)
	repo := NewSQLiteStakeholderRepo(db)

	a, b, c := testutil.NewTestUser("A"), testutil.NewTestUser("B"), testutil.NewTestUser("C")
	for _, u := range []*domain.User{a, b, c} {
		require.NoError(t, users.Create(ctx, u))
	}

	ok, err := repo.CreateWithinCap(ctx, testutil.NewTestStakeholder(proj.ID, a.ID, 60), 100)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CreateWithinCap(ctx, testutil.NewTestStakeholder(proj.ID, b.ID, 50), 100)
	require.NoError(t, err)
	assert.False(t, ok, "60 + 50 exceeds the cap")

	ok, err = repo.CreateWithinCap(ctx, testutil.NewTestStakeholder(proj.ID, c.ID, 40), 100)
	require.NoError(t, err)
	assert.True(t, ok, "60 + 40 fills the cap exactly")

	total, err := repo.SumPercentage(ctx, proj.ID, "")
	require.NoError(t, err)
	assert.InDelta(t, 100, total, 1e-9)

	list, err := repo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 60.0, list[0].Percentage, "largest share first")
}

func TestStakeholderRepo_DuplicateUserConflicts(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	_, proj := seedOwnerProject(t, db, "Dup")
	u := testutil.NewTestUser("Dup")
	require.NoError(t, NewSQLiteUserRepo(db).Create(ctx, u))
	repo := NewSQLiteStakeholderRepo(db)

	_, err := repo.CreateWithinCap(ctx, testutil.NewTestStakeholder(proj.ID, u.ID, 10), 100)
	require.NoError(t, err)
	_, err = repo.CreateWithinCap(ctx, testutil.NewTestStakeholder(proj.ID, u.ID, 10), 100)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStakeholderRepo_UpdateWithinCap_ExcludesOwnShare(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	_, proj := seedOwnerProject(t, db, "Edit")
	users := NewSQLiteUserRepo(db)
	repo := NewSQLiteStakeholderRepo(db)

	a, b := testutil.NewTestUser("A"), testutil.NewTestUser("B")
	require.NoError(t, users.Create(ctx, a))
	require.NoError(t, users.Create(ctx, b))
	sa := testutil.NewTestStakeholder(proj.ID, a.ID, 40)
	sb := testutil.NewTestStakeholder(proj.ID, b.ID, 60)
	for _, s := range []*domain.Stakeholder{sa, sb} {
		ok, err := repo.CreateWithinCap(ctx, s, 100)
		require.NoError(t, err)
		require.True(t, ok)
	}

	sa.Percentage = 40
	sa.Role = "lead"
	ok, err := repo.UpdateWithinCap(ctx, sa, 100)
	require.NoError(t, err)
	assert.True(t, ok, "re-saving the same share must pass")

	sa.Percentage = 41
	ok, err = repo.UpdateWithinCap(ctx, sa, 100)
	require.NoError(t, err)
	assert.False(t, ok)

	fetched, err := repo.GetByID(ctx, sa.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, fetched.Percentage)
	assert.Equal(t, "lead", fetched.Role)

	excl, err := repo.SumPercentage(ctx, proj.ID, sa.ID)
	require.NoError(t, err)
	assert.InDelta(t, 60, excl, 1e-9)
}

func TestStakeholderRepo_DeleteFreesShare(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	_, proj := seedOwnerProject(t, db, "Free")
	u := testutil.NewTestUser("U")
	require.NoError(t, NewSQLiteUserRepo(db).Create(ctx, u))
	repo := NewSQLiteStakeholderRepo(db)

	s := testutil.NewTestStakeholder(proj.ID, u.ID, 70)
	_, err := repo.CreateWithinCap(ctx, s, 100)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, s.ID))

	total, err := repo.SumPercentage(ctx, proj.ID, "")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.ErrorIs(t, repo.Delete(ctx, s.ID), domain.ErrNotFound)
}
