package service

import (
	"context"
	"time"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/importer"
)

type UserService interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

// ProjectPatch carries a partial project update; nil fields are left as is.
type ProjectPatch struct {
	Name          *string
	Description   *string
	Status        *domain.ProjectStatus
	Deadline      *time.Time
	ClearDeadline bool
	TotalBudget   *float64
}

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// Resolve accepts a short ID, a full ID or a unique ID prefix.
	Resolve(ctx context.Context, ref string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, id string, patch ProjectPatch) (*domain.Project, error)
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string, force bool) error
}

type StakeholderPatch struct {
	Role       *string
	Percentage *float64
}

type StakeholderService interface {
	Allocation(ctx context.Context, projectID string) (calc.Allocation, error)
	Create(ctx context.Context, s *domain.Stakeholder) error
	GetByID(ctx context.Context, id string) (*domain.Stakeholder, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Stakeholder, error)
	Update(ctx context.Context, id string, patch StakeholderPatch) (*domain.Stakeholder, error)
	Delete(ctx context.Context, id string) error
}

type RiskPatch struct {
	Name        *string
	Description *string
	Category    *string
	Probability *float64
	Impact      *int
	OwnerID     *string
	Status      *domain.RiskStatus
}

type RiskService interface {
	// Assess computes severity and level without storing anything. An
	// empty scale name selects the configured scale.
	Assess(probability float64, impact int, scale string) (calc.Assessment, error)
	Create(ctx context.Context, r *domain.Risk) error
	GetByID(ctx context.Context, id string) (*domain.Risk, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Risk, error)
	Update(ctx context.Context, id string, patch RiskPatch) (*domain.Risk, error)
	Delete(ctx context.Context, id string) error

	AddPlan(ctx context.Context, p *domain.RiskResponsePlan) error
	ListPlans(ctx context.Context, riskID string) ([]*domain.RiskResponsePlan, error)
	DeletePlan(ctx context.Context, id string) error
}

// TaskQuery filters and orders a project's task list.
type TaskQuery struct {
	Filter calc.TaskFilter
	Sort   calc.TaskSortKey
	Desc   bool
}

type TaskPatch struct {
	Title         *string
	Description   *string
	ParentTaskID  *string // "" detaches from the parent
	AssigneeID    *string // "" unassigns
	Cost          *float64
	Status        *domain.TaskStatus
	Priority      *domain.TaskPriority
	Deadline      *time.Time
	ClearDeadline bool
}

type TaskService interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, projectID string, q TaskQuery) ([]*domain.Task, error)
	Update(ctx context.Context, id string, patch TaskPatch) (*domain.Task, error)
	Complete(ctx context.Context, id string) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type ResourcePatch struct {
	Name        *string
	Type        *domain.ResourceType
	Unit        *string
	Description *string
	Total       *float64
	Available   *float64
}

type ResourceService interface {
	Create(ctx context.Context, r *domain.Resource) error
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Resource, error)
	Update(ctx context.Context, id string, patch ResourcePatch) (*domain.Resource, error)
	Delete(ctx context.Context, id string) error
}

type WorkPackageService interface {
	Create(ctx context.Context, w *domain.WorkPackage) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.WorkPackage, error)
	Delete(ctx context.Context, id string) error
}

// ResourcePlanView is a project's resource plan with the stock figures it
// is read alongside.
type ResourcePlanView struct {
	Plan      *domain.ResourcePlan
	Resources []*domain.Resource
	Stats     calc.ResourceStats
}

type ResourcePlanService interface {
	// Get returns the plan, or an unsaved empty one if none was stored.
	Get(ctx context.Context, projectID string) (*ResourcePlanView, error)
	SaveNotes(ctx context.Context, projectID, notes string) (*domain.ResourcePlan, error)
}

type TeamPatch struct {
	Name        *string
	Description *string
	ColorIndex  *int
}

type TeamService interface {
	Create(ctx context.Context, t *domain.Team) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Team, error)
	Update(ctx context.Context, id string, patch TeamPatch) (*domain.Team, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, teamID, userID, role string) (*domain.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, userID string) error
	ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error)
}

type ScopeService interface {
	Get(ctx context.Context, projectID string) (*domain.ScopeDocument, error)
	Create(ctx context.Context, d *domain.ScopeDocument) error
	Replace(ctx context.Context, d *domain.ScopeDocument) error
	Delete(ctx context.Context, projectID string) error
}

// ProjectOverview is the dashboard view of one project.
type ProjectOverview struct {
	Project          *domain.Project
	Allocation       calc.Allocation
	Stakeholders     []*domain.Stakeholder
	Risks            calc.RiskSummary
	Progress         calc.Progress
	Budget           calc.BudgetSummary
	Resources        []*domain.Resource
	WorkPackageCount int
	SeverityScale    string
}

type OverviewService interface {
	Get(ctx context.Context, projectID string) (*ProjectOverview, error)
}

// ImportResult holds the outcome of a project import.
type ImportResult struct {
	Project          *domain.Project
	UsersCreated     int
	StakeholderCount int
	RiskCount        int
	PlanCount        int
	TaskCount        int
	ResourceCount    int
	WorkPackageCount int
}

type ImportService interface {
	ImportFile(ctx context.Context, path string) (*ImportResult, error)
	Import(ctx context.Context, data []byte, format importer.Format) (*ImportResult, error)
	ImportDocument(ctx context.Context, doc *importer.Document) (*ImportResult, error)
}
