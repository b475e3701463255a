package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/repository"
)

type resourceService struct {
	resources repository.ResourceRepo
	uow       db.UnitOfWork
	observer  UseCaseObserver
}

func NewResourceService(resources repository.ResourceRepo, uow db.UnitOfWork, observers ...UseCaseObserver) ResourceService {
	return &resourceService{resources: resources, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// Create stores r as given. Transports that treat an omitted quantity as
// fully available must copy Total into Available themselves.
func (s *resourceService) Create(ctx context.Context, r *domain.Resource) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "create-resource", startedAt, map[string]any{"project_id": r.ProjectID}, &err)

	r.Name = strings.TrimSpace(r.Name)
	if r.Type == "" {
		r.Type = domain.ResourceOther
	}
	if err = r.Validate(); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.CreatedAt = startedAt
	r.UpdatedAt = startedAt

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := authorizeProject(ctx, tx, r.ProjectID, membersOnly); err != nil {
			return err
		}
		return repository.NewSQLiteResourceRepo(tx).Create(ctx, r)
	})
}

func (s *resourceService) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	return s.resources.GetByID(ctx, id)
}

func (s *resourceService) ListByProject(ctx context.Context, projectID string) ([]*domain.Resource, error) {
	return s.resources.ListByProject(ctx, projectID)
}

func (s *resourceService) Update(ctx context.Context, id string, patch ResourcePatch) (updated *domain.Resource, err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "update-resource", startedAt, map[string]any{"resource_id": id}, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteResourceRepo(tx)
		r, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := authorizeProject(ctx, tx, r.ProjectID, membersOnly); err != nil {
			return err
		}

		r.Name = strings.TrimSpace(domain.StrFromPtr(r.Name, patch.Name))
		r.Unit = domain.StrFromPtr(r.Unit, patch.Unit)
		r.Description = domain.StrFromPtr(r.Description, patch.Description)
		if patch.Type != nil {
			r.Type = *patch.Type
		}
		r.Total = domain.Float64FromPtr(r.Total, patch.Total)
		r.Available = domain.Float64FromPtr(r.Available, patch.Available)
		if err := r.Validate(); err != nil {
			return err
		}
		r.UpdatedAt = time.Now().UTC()
		if err := repo.Update(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *resourceService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "delete-resource", startedAt, map[string]any{"resource_id": id}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteResourceRepo(tx)
		r, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := authorizeProject(ctx, tx, r.ProjectID, membersOnly); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}

type workPackageService struct {
	workPackages repository.WorkPackageRepo
	uow          db.UnitOfWork
	observer     UseCaseObserver
}

func NewWorkPackageService(workPackages repository.WorkPackageRepo, uow db.UnitOfWork, observers ...UseCaseObserver) WorkPackageService {
	return &workPackageService{workPackages: workPackages, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *workPackageService) Create(ctx context.Context, w *domain.WorkPackage) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "create-work-package", startedAt, map[string]any{"project_id": w.ProjectID}, &err)

	w.Name = strings.TrimSpace(w.Name)
	w.Code = strings.TrimSpace(w.Code)
	if err = w.Validate(); err != nil {
		return err
	}
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	w.CreatedAt = startedAt

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := authorizeProject(ctx, tx, w.ProjectID, membersOnly); err != nil {
			return err
		}
		return repository.NewSQLiteWorkPackageRepo(tx).Create(ctx, w)
	})
}

func (s *workPackageService) ListByProject(ctx context.Context, projectID string) ([]*domain.WorkPackage, error) {
	return s.workPackages.ListByProject(ctx, projectID)
}

func (s *workPackageService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "delete-work-package", startedAt, map[string]any{"work_package_id": id}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteWorkPackageRepo(tx)
		w, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := authorizeProject(ctx, tx, w.ProjectID, membersOnly); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}

type resourcePlanService struct {
	projects  repository.ProjectRepo
	plans     repository.ResourcePlanRepo
	resources repository.ResourceRepo
	uow       db.UnitOfWork
	observer  UseCaseObserver
}

func NewResourcePlanService(
	projects repository.ProjectRepo,
	plans repository.ResourcePlanRepo,
	resources repository.ResourceRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ResourcePlanService {
	return &resourcePlanService{
		projects:  projects,
		plans:     plans,
		resources: resources,
		uow:       uow,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *resourcePlanService) Get(ctx context.Context, projectID string) (*ResourcePlanView, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.GetByProject(ctx, p.ID)
	if errors.Is(err, domain.ErrNotFound) {
		plan = &domain.ResourcePlan{ProjectID: p.ID, OwnerID: p.OwnerID}
	} else if err != nil {
		return nil, err
	}
	resources, err := s.resources.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &ResourcePlanView{Plan: plan, Resources: resources, Stats: calc.SummarizeResources(resources)}, nil
}

// SaveNotes creates the plan on first save. The plan belongs to the project
// owner whoever writes it.
func (s *resourcePlanService) SaveNotes(ctx context.Context, projectID, notes string) (saved *domain.ResourcePlan, err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "save-resource-plan", startedAt, map[string]any{"project_id": projectID}, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		p, err := authorizeProject(ctx, tx, projectID, membersOnly)
		if err != nil {
			return err
		}
		repo := repository.NewSQLiteResourcePlanRepo(tx)
		if err := repo.Upsert(ctx, &domain.ResourcePlan{
			ProjectID: p.ID,
			OwnerID:   p.OwnerID,
			Notes:     strings.TrimSpace(notes),
			CreatedAt: startedAt,
			UpdatedAt: startedAt,
		}); err != nil {
			return err
		}
		saved, err = repo.GetByProject(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
