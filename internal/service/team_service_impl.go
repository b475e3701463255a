package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/taskup/internal/actor"
	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/repository"
)

type teamService struct {
	teams    repository.TeamRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewTeamService(teams repository.TeamRepo, uow db.UnitOfWork, observers ...UseCaseObserver) TeamService {
	return &teamService{teams: teams, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// Create stores t and makes its creator the team leader. Only the project
// owner may create teams; the system actor creates them on the owner's
// behalf.
func (s *teamService) Create(ctx context.Context, t *domain.Team) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "create-team", startedAt, map[string]any{"project_id": t.ProjectID}, &err)

	t.Name = strings.TrimSpace(t.Name)
	t.Description = strings.TrimSpace(t.Description)
	if err = t.Validate(); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatedAt = startedAt
	t.UpdatedAt = startedAt

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		p, err := authorizeProject(ctx, tx, t.ProjectID, ownerOnly)
		if err != nil {
			return err
		}
		t.CreatedBy = p.OwnerID
		if id, ok := actor.UserID(ctx); ok {
			t.CreatedBy = id
		}
		repo := repository.NewSQLiteTeamRepo(tx)
		if err := repo.Create(ctx, t); err != nil {
			return err
		}
		return repo.AddMember(ctx, &domain.TeamMember{
			TeamID:   t.ID,
			UserID:   t.CreatedBy,
			Role:     domain.LeaderRole,
			IsLeader: true,
			JoinedAt: startedAt,
		})
	})
}

func (s *teamService) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	return s.teams.GetByID(ctx, id)
}

func (s *teamService) ListByProject(ctx context.Context, projectID string) ([]*domain.Team, error) {
	return s.teams.ListByProject(ctx, projectID)
}

func (s *teamService) Update(ctx context.Context, id string, patch TeamPatch) (updated *domain.Team, err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "update-team", startedAt, map[string]any{"team_id": id}, &err)

	err = s.withTeam(ctx, id, func(ctx context.Context, tx db.DBTX, t *domain.Team) error {
		repo := repository.NewSQLiteTeamRepo(tx)
		t.Name = strings.TrimSpace(domain.StrFromPtr(t.Name, patch.Name))
		t.Description = strings.TrimSpace(domain.StrFromPtr(t.Description, patch.Description))
		if patch.ColorIndex != nil {
			t.ColorIndex = *patch.ColorIndex
		}
		if err := t.Validate(); err != nil {
			return err
		}
		t.UpdatedAt = time.Now().UTC()
		if err := repo.Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *teamService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "delete-team", startedAt, map[string]any{"team_id": id}, &err)

	return s.withTeam(ctx, id, func(ctx context.Context, tx db.DBTX, t *domain.Team) error {
		return repository.NewSQLiteTeamRepo(tx).SoftDelete(ctx, t.ID)
	})
}

// AddMember puts an existing user on the team. A user already on it is a
// conflict.
func (s *teamService) AddMember(ctx context.Context, teamID, userID, role string) (m *domain.TeamMember, err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "add-team-member", startedAt, map[string]any{"team_id": teamID, "user_id": userID}, &err)

	err = s.withTeam(ctx, teamID, func(ctx context.Context, tx db.DBTX, t *domain.Team) error {
		if _, err := repository.NewSQLiteUserRepo(tx).GetByID(ctx, userID); err != nil {
			return err
		}
		member := &domain.TeamMember{
			TeamID:   t.ID,
			UserID:   userID,
			Role:     strings.TrimSpace(role),
			JoinedAt: startedAt,
		}
		if err := repository.NewSQLiteTeamRepo(tx).AddMember(ctx, member); err != nil {
			return err
		}
		m = member
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveMember takes userID off the team. Removing someone who is not on
// it succeeds.
func (s *teamService) RemoveMember(ctx context.Context, teamID, userID string) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "remove-team-member", startedAt, map[string]any{"team_id": teamID, "user_id": userID}, &err)

	return s.withTeam(ctx, teamID, func(ctx context.Context, tx db.DBTX, t *domain.Team) error {
		_, err := repository.NewSQLiteTeamRepo(tx).RemoveMember(ctx, t.ID, userID)
		return err
	})
}

func (s *teamService) ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error) {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.teams.ListMembers(ctx, teamID)
}

// withTeam loads the team inside a transaction and checks that the actor
// owns its project before running fn.
func (s *teamService) withTeam(ctx context.Context, id string, fn func(context.Context, db.DBTX, *domain.Team) error) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		t, err := repository.NewSQLiteTeamRepo(tx).GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := authorizeProject(ctx, tx, t.ProjectID, ownerOnly); err != nil {
			return err
		}
		return fn(ctx, tx, t)
	})
}
