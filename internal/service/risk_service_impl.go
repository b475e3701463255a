package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/taskup/internal/actor"
	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/repository"
)

type riskService struct {
	risks    repository.RiskRepo
	uow      db.UnitOfWork
	scale    calc.SeverityScale
	observer UseCaseObserver
}

// NewRiskService stores risks with severity levels bucketed on scale.
func NewRiskService(risks repository.RiskRepo, uow db.UnitOfWork, scale calc.SeverityScale, observers ...UseCaseObserver) RiskService {
	if scale.Name == "" {
		scale = calc.DefaultScale
	}
	return &riskService{risks: risks, uow: uow, scale: scale, observer: useCaseObserverOrNoop(observers)}
}

func (s *riskService) Assess(probability float64, impact int, scale string) (calc.Assessment, error) {
	sc := s.scale
	if scale != "" {
		var err error
		if sc, err = calc.ScaleByName(scale); err != nil {
			return calc.Assessment{}, err
		}
	}
	return sc.Assess(probability, impact)
}

// Create derives Severity and Level from the inputs; values set by the
// caller are overwritten.
func (s *riskService) Create(ctx context.Context, r *domain.Risk) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": r.ProjectID}
	defer observe(ctx, s.observer, "create-risk", startedAt, fields, &err)

	r.Name = strings.TrimSpace(r.Name)
	if r.Status == "" {
		r.Status = domain.RiskOpen
	}
	if err = s.score(r); err != nil {
		return err
	}
	if err = r.Validate(); err != nil {
		return err
	}
	fields["level"] = string(r.Level)
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.IdentifiedAt = startedAt
	r.UpdatedAt = startedAt

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		p, err := authorizeProject(ctx, tx, r.ProjectID, membersOnly)
		if err != nil {
			return err
		}
		if r.OwnerID == "" {
			r.OwnerID = defaultOwner(ctx, p)
		}
		return repository.NewSQLiteRiskRepo(tx).Create(ctx, r)
	})
}

func (s *riskService) score(r *domain.Risk) error {
	a, err := s.scale.Assess(r.Probability, r.Impact)
	if err != nil {
		return err
	}
	r.Severity = a.Severity
	r.Level = a.Level
	return nil
}

// GetByID and ListByProject report Level on the configured scale, which
// may differ from the one in force when the risk was stored.
func (s *riskService) GetByID(ctx context.Context, id string) (*domain.Risk, error) {
	r, err := s.risks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Level = s.scale.Level(r.Severity)
	return r, nil
}

func (s *riskService) ListByProject(ctx context.Context, projectID string) ([]*domain.Risk, error) {
	risks, err := s.risks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, r := range risks {
		r.Level = s.scale.Level(r.Severity)
	}
	return risks, nil
}

func (s *riskService) Update(ctx context.Context, id string, patch RiskPatch) (updated *domain.Risk, err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "update-risk", startedAt, map[string]any{"risk_id": id}, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteRiskRepo(tx)
		r, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := authorizeProject(ctx, tx, r.ProjectID, membersOnly); err != nil {
			return err
		}

		r.Name = strings.TrimSpace(domain.StrFromPtr(r.Name, patch.Name))
		r.Description = domain.StrFromPtr(r.Description, patch.Description)
		r.Category = domain.StrFromPtr(r.Category, patch.Category)
		r.OwnerID = domain.StrFromPtr(r.OwnerID, patch.OwnerID)
		r.Probability = domain.Float64FromPtr(r.Probability, patch.Probability)
		r.Impact = domain.IntFromPtr(r.Impact, patch.Impact)
		if patch.Status != nil {
			r.Status = *patch.Status
		}
		if err := s.score(r); err != nil {
			return err
		}
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

// Delete soft-deletes the risk together with its response plans.
func (s *riskService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "delete-risk", startedAt, map[string]any{"risk_id": id}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteRiskRepo(tx)
		r, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := authorizeProject(ctx, tx, r.ProjectID, membersOnly); err != nil {
			return err
		}
		return repo.SoftDelete(ctx, id)
	})
}

func (s *riskService) AddPlan(ctx context.Context, p *domain.RiskResponsePlan) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "add-risk-plan", startedAt, map[string]any{"risk_id": p.RiskID, "strategy": string(p.Strategy)}, &err)

	if p.Status == "" {
		p.Status = domain.PlanPlanned
	}
	if err = p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = startedAt

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteRiskRepo(tx)
		r, err := repo.GetByID(ctx, p.RiskID)
		if err != nil {
			return err
		}
		project, err := authorizeProject(ctx, tx, r.ProjectID, membersOnly)
		if err != nil {
			return err
		}
		if p.OwnerID == "" {
			p.OwnerID = defaultOwner(ctx, project)
		}
		return repo.CreatePlan(ctx, p)
	})
}

func (s *riskService) ListPlans(ctx context.Context, riskID string) ([]*domain.RiskResponsePlan, error) {
	if _, err := s.risks.GetByID(ctx, riskID); err != nil {
		return nil, err
	}
	return s.risks.ListPlans(ctx, riskID)
}

func (s *riskService) DeletePlan(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "delete-risk-plan", startedAt, map[string]any{"plan_id": id}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteRiskRepo(tx)
		plan, err := repo.GetPlan(ctx, id)
		if err != nil {
			return err
		}
		r, err := repo.GetByID(ctx, plan.RiskID)
		if err != nil {
			return err
		}
		if _, err := authorizeProject(ctx, tx, r.ProjectID, membersOnly); err != nil {
			return err
		}
		return repo.SoftDeletePlan(ctx, id)
	})
}

// defaultOwner is the acting user, or the project owner for system calls.
func defaultOwner(ctx context.Context, p *domain.Project) string {
	if id, ok := actor.UserID(ctx); ok {
		return id
	}
	return p.OwnerID
}
