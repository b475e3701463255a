package service

import (
	"context"
	"time"

	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/repository"
)

type scopeService struct {
	scopes   repository.ScopeRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewScopeService(scopes repository.ScopeRepo, uow db.UnitOfWork, observers ...UseCaseObserver) ScopeService {
	return &scopeService{scopes: scopes, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *scopeService) Get(ctx context.Context, projectID string) (*domain.ScopeDocument, error) {
	return s.scopes.GetByProject(ctx, projectID)
}

// Create stores the project's first scope document. The scope baseline is
// the owner's to set.
func (s *scopeService) Create(ctx context.Context, d *domain.ScopeDocument) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "create-scope", startedAt, map[string]any{"project_id": d.ProjectID}, &err)

	d.Normalize()
	if err = d.Validate(); err != nil {
		return err
	}
	d.CreatedAt = startedAt
	d.UpdatedAt = startedAt

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := authorizeProject(ctx, tx, d.ProjectID, ownerOnly); err != nil {
			return err
		}
		return repository.NewSQLiteScopeRepo(tx).Create(ctx, d)
	})
}

// Replace overwrites every section of an existing document. On success d
// carries the stored creation time.
func (s *scopeService) Replace(ctx context.Context, d *domain.ScopeDocument) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "replace-scope", startedAt, map[string]any{"project_id": d.ProjectID}, &err)

	d.Normalize()
	if err = d.Validate(); err != nil {
		return err
	}
	d.UpdatedAt = startedAt

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := authorizeProject(ctx, tx, d.ProjectID, ownerOnly); err != nil {
			return err
		}
		repo := repository.NewSQLiteScopeRepo(tx)
		if err := repo.Replace(ctx, d); err != nil {
			return err
		}
		stored, err := repo.GetByProject(ctx, d.ProjectID)
		if err != nil {
			return err
		}
		d.CreatedAt = stored.CreatedAt
		return nil
	})
}

func (s *scopeService) Delete(ctx context.Context, projectID string) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "delete-scope", startedAt, map[string]any{"project_id": projectID}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := authorizeProject(ctx, tx, projectID, ownerOnly); err != nil {
			return err
		}
		return repository.NewSQLiteScopeRepo(tx).Delete(ctx, projectID)
	})
}
