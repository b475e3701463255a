package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/repository"
)

type stakeholderService struct {
	stakeholders repository.StakeholderRepo
	uow          db.UnitOfWork
	observer     UseCaseObserver
}

func NewStakeholderService(stakeholders repository.StakeholderRepo, uow db.UnitOfWork, observers ...UseCaseObserver) StakeholderService {
	return &stakeholderService{stakeholders: stakeholders, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *stakeholderService) Allocation(ctx context.Context, projectID string) (calc.Allocation, error) {
	stakes, err := s.stakeholders.ListByProject(ctx, projectID)
	if err != nil {
		return calc.Allocation{}, err
	}
	return calc.StakeholderAllocation(stakes), nil
}

// Create adds a stakeholder if the project's total stays within the cap.
// The check is repeated by the insert statement itself, so a concurrent
// writer that commits first makes this call fail with ErrExceedsAvailable.
func (s *stakeholderService) Create(ctx context.Context, st *domain.Stakeholder) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": st.ProjectID, "percentage": st.Percentage}
	defer observe(ctx, s.observer, "create-stakeholder", startedAt, fields, &err)

	st.Role = strings.TrimSpace(st.Role)
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	st.CreatedAt = startedAt
	st.UpdatedAt = startedAt

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		p, err := authorizeProject(ctx, tx, st.ProjectID, ownerOnly)
		if err != nil {
			return err
		}
		if st.UserID == p.OwnerID {
			return domain.Invalidf("project owner cannot be a stakeholder")
		}
		if _, err := repository.NewSQLiteUserRepo(tx).GetByID(ctx, st.UserID); err != nil {
			return err
		}

		repo := repository.NewSQLiteStakeholderRepo(tx)
		existing, err := repo.SumPercentage(ctx, st.ProjectID, "")
		if err != nil {
			return err
		}
		if _, err := calc.ValidateNewAllocation(existing, st.Percentage); err != nil {
			return err
		}
		ok, err := repo.CreateWithinCap(ctx, st, calc.CapWithTolerance())
		if err != nil {
			return err
		}
		if !ok {
			return lostRace(ctx, repo, st)
		}
		fields["allocated_total"] = existing + st.Percentage
		return nil
	})
}

func (s *stakeholderService) GetByID(ctx context.Context, id string) (*domain.Stakeholder, error) {
	return s.stakeholders.GetByID(ctx, id)
}

func (s *stakeholderService) ListByProject(ctx context.Context, projectID string) ([]*domain.Stakeholder, error) {
	return s.stakeholders.ListByProject(ctx, projectID)
}

// Update applies patch. The stakeholder's own current share is excluded
// from the total the new percentage is checked against.
func (s *stakeholderService) Update(ctx context.Context, id string, patch StakeholderPatch) (updated *domain.Stakeholder, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"stakeholder_id": id}
	defer observe(ctx, s.observer, "update-stakeholder", startedAt, fields, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteStakeholderRepo(tx)
		st, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := authorizeProject(ctx, tx, st.ProjectID, ownerOnly); err != nil {
			return err
		}

		if patch.Role != nil {
			st.Role = strings.TrimSpace(*patch.Role)
		}
		st.Percentage = domain.Float64FromPtr(st.Percentage, patch.Percentage)
		fields["percentage"] = st.Percentage

		others, err := repo.SumPercentage(ctx, st.ProjectID, st.ID)
		if err != nil {
			return err
		}
		if _, err := calc.ValidateNewAllocation(others, st.Percentage); err != nil {
			return err
		}
		st.UpdatedAt = time.Now().UTC()
		ok, err := repo.UpdateWithinCap(ctx, st, calc.CapWithTolerance())
		if err != nil {
			return err
		}
		if !ok {
			return lostRace(ctx, repo, st)
		}
		updated = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a stakeholder. The remaining shares are not re-validated.
func (s *stakeholderService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "delete-stakeholder", startedAt, map[string]any{"stakeholder_id": id}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteStakeholderRepo(tx)
		st, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := authorizeProject(ctx, tx, st.ProjectID, ownerOnly); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}

// lostRace reports a conditional write that matched no rows: another writer
// raised the total between our read and our write.
func lostRace(ctx context.Context, repo repository.StakeholderRepo, st *domain.Stakeholder) error {
	current, err := repo.SumPercentage(ctx, st.ProjectID, st.ID)
	if err != nil {
		return fmt.Errorf("re-reading allocation: %w", err)
	}
	return &calc.AllocationError{
		Kind:      calc.ErrExceedsAvailable,
		Requested: st.Percentage,
		Available: calc.AllocationCap - current,
	}
}
