package repository

import (
	"context"

	"github.com/alexanderramin/taskup/internal/domain"
)

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// StakeholderRepo guards the allocation cap in SQL: the *WithinCap writes
// only apply when the project's resulting total stays at or below maxTotal,
// and report false otherwise.
type StakeholderRepo interface {
	CreateWithinCap(ctx context.Context, s *domain.Stakeholder, maxTotal float64) (bool, error)
	UpdateWithinCap(ctx context.Context, s *domain.Stakeholder, maxTotal float64) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Stakeholder, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Stakeholder, error)
	SumPercentage(ctx context.Context, projectID, excludeID string) (float64, error)
	Delete(ctx context.Context, id string) error
}

type RiskRepo interface {
	Create(ctx context.Context, r *domain.Risk) error
	GetByID(ctx context.Context, id string) (*domain.Risk, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Risk, error)
	Update(ctx context.Context, r *domain.Risk) error
	SoftDelete(ctx context.Context, id string) error

	CreatePlan(ctx context.Context, p *domain.RiskResponsePlan) error
	GetPlan(ctx context.Context, id string) (*domain.RiskResponsePlan, error)
	ListPlans(ctx context.Context, riskID string) ([]*domain.RiskResponsePlan, error)
	SoftDeletePlan(ctx context.Context, id string) error
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
}

type ResourceRepo interface {
	Create(ctx context.Context, r *domain.Resource) error
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Resource, error)
	Update(ctx context.Context, r *domain.Resource) error
	Delete(ctx context.Context, id string) error
}

type WorkPackageRepo interface {
	Create(ctx context.Context, w *domain.WorkPackage) error
	GetByID(ctx context.Context, id string) (*domain.WorkPackage, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.WorkPackage, error)
	Delete(ctx context.Context, id string) error
}

type ResourcePlanRepo interface {
	GetByProject(ctx context.Context, projectID string) (*domain.ResourcePlan, error)
	Upsert(ctx context.Context, p *domain.ResourcePlan) error
}

type TeamRepo interface {
	Create(ctx context.Context, t *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Team, error)
	Update(ctx context.Context, t *domain.Team) error
	SoftDelete(ctx context.Context, id string) error
	AddMember(ctx context.Context, m *domain.TeamMember) error
	RemoveMember(ctx context.Context, teamID, userID string) (bool, error)
	ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error)
}

type ScopeRepo interface {
	Create(ctx context.Context, d *domain.ScopeDocument) error
	GetByProject(ctx context.Context, projectID string) (*domain.ScopeDocument, error)
	Replace(ctx context.Context, d *domain.ScopeDocument) error
	Delete(ctx context.Context, projectID string) error
}
