package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/taskup/internal/actor"
	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/repository"
)

type projectService struct {
	projects repository.ProjectRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewProjectService(projects repository.ProjectRepo, uow db.UnitOfWork, observers ...UseCaseObserver) ProjectService {
	return &projectService{projects: projects, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// Create stores p owned by the acting user. A system context must name the
// owner itself.
func (s *projectService) Create(ctx context.Context, p *domain.Project) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "create-project", startedAt, map[string]any{"short_id": p.ShortID}, &err)

	if !actor.IsSystem(ctx) {
		var userID string
		if userID, err = requireActor(ctx); err != nil {
			return err
		}
		if p.OwnerID != "" && p.OwnerID != userID {
			return fmt.Errorf("%w: projects can only be created for yourself", domain.ErrForbidden)
		}
		p.OwnerID = userID
	}

	p.ShortID = strings.ToUpper(strings.TrimSpace(p.ShortID))
	if p.Status == "" {
		p.Status = domain.ProjectNotStarted
	}
	if p.Status == domain.ProjectArchived {
		return domain.Invalidf("new projects cannot start archived")
	}
	if err = p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = startedAt
	p.UpdatedAt = startedAt
	return s.projects.Create(ctx, p)
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *projectService) Resolve(ctx context.Context, ref string) (*domain.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.Invalidf("project ID is required")
	}

	p, err := s.projects.GetByShortID(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	p, err = s.projects.GetByID(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	projects, err := s.projects.List(ctx, true)
	if err != nil {
		return nil, err
	}
	var matches []*domain.Project
	for _, candidate := range projects {
		if strings.HasPrefix(candidate.ID, ref) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
		return nil, domain.NotFoundf("project %q", ref)
	case 1:
		return matches[0], nil
	default:
		return nil, domain.Invalidf("project ID prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func (s *projectService) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	return s.projects.List(ctx, includeArchived)
}

func (s *projectService) Update(ctx context.Context, id string, patch ProjectPatch) (updated *domain.Project, err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "update-project", startedAt, map[string]any{"project_id": id}, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		p, err := authorizeProject(ctx, tx, id, ownerOnly)
		if err != nil {
			return err
		}

		p.Name = domain.StrFromPtr(p.Name, patch.Name)
		p.Description = domain.StrFromPtr(p.Description, patch.Description)
		p.TotalBudget = domain.Float64FromPtr(p.TotalBudget, patch.TotalBudget)
		if patch.Status != nil {
			if *patch.Status == domain.ProjectArchived {
				return domain.Invalidf("use archive to archive a project")
			}
			p.Status = *patch.Status
		}
		switch {
		case patch.ClearDeadline:
			p.Deadline = nil
		case patch.Deadline != nil:
			d := *patch.Deadline
			p.Deadline = &d
		}
		if err := p.Validate(); err != nil {
			return err
		}
		p.UpdatedAt = time.Now().UTC()
		if err := repository.NewSQLiteProjectRepo(tx).Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *projectService) Archive(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "archive-project", startedAt, map[string]any{"project_id": id}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := authorizeProject(ctx, tx, id, ownerOnly); err != nil {
			return err
		}
		return repository.NewSQLiteProjectRepo(tx).Archive(ctx, id)
	})
}

// Delete removes a project and everything under it. Unless force is set
// the project must be archived first.
func (s *projectService) Delete(ctx context.Context, id string, force bool) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "delete-project", startedAt, map[string]any{"project_id": id, "force": force}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteProjectRepo(tx)
		p, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !p.IsArchived() && !force {
			return fmt.Errorf("%w: project must be archived before deletion (use --force to override)", domain.ErrConflict)
		}
		if !actor.IsSystem(ctx) {
			userID, err := requireActor(ctx)
			if err != nil {
				return err
			}
			if userID != p.OwnerID {
				return fmt.Errorf("%w: only the owner of project %s may do this", domain.ErrForbidden, p.DisplayID())
			}
		}
		return repo.Delete(ctx, id)
	})
}
