package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/google/uuid"
)

var testSeq atomic.Int64

func NewTestUser(name string) *domain.User {
	n := testSeq.Add(1)
	return &domain.User{
		ID:        uuid.New().String(),
		Email:     fmt.Sprintf("%s.%d@example.com", strings.ToLower(strings.ReplaceAll(name, " ", ".")), n),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// Project options
type ProjectOption func(*domain.Project)

func WithDeadline(d time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.Deadline = &d
	}
}

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithShortID(id string) ProjectOption {
	return func(p *domain.Project) {
		p.ShortID = id
	}
}

func WithBudget(b float64) ProjectOption {
	return func(p *domain.Project) {
		p.TotalBudget = b
	}
}

func defaultShortID(name string) string {
	upper := strings.ToUpper(name)
	var letters []byte
	for i := 0; i < len(upper) && len(letters) < 3; i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			letters = append(letters, upper[i])
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return fmt.Sprintf("%s%02d", string(letters), testSeq.Add(1)%10000)
}

func NewTestProject(ownerID, name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:        uuid.New().String(),
		ShortID:   defaultShortID(name),
		Name:      name,
		OwnerID:   ownerID,
		Status:    domain.ProjectNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func NewTestStakeholder(projectID, userID string, pct float64) *domain.Stakeholder {
	now := time.Now().UTC()
	return &domain.Stakeholder{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		UserID:     userID,
		Role:       "sponsor",
		Percentage: pct,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func NewTestRisk(projectID, name string, probability float64, impact int) *domain.Risk {
	now := time.Now().UTC()
	return &domain.Risk{
		ID:           uuid.New().String(),
		ProjectID:    projectID,
		Name:         name,
		Category:     "technical",
		Probability:  probability,
		Impact:       impact,
		Status:       domain.RiskOpen,
		IdentifiedAt: now,
		UpdatedAt:    now,
	}
}

// Task options
type TaskOption func(*domain.Task)

func WithTaskDeadline(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.Deadline = &d
	}
}

func WithTaskStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) {
		t.Status = s
	}
}

func WithPriority(p domain.TaskPriority) TaskOption {
	return func(t *domain.Task) {
		t.Priority = p
	}
}

func WithParentTask(id string) TaskOption {
	return func(t *domain.Task) {
		t.ParentTaskID = &id
	}
}

func WithAssignee(id string) TaskOption {
	return func(t *domain.Task) {
		t.AssigneeID = &id
	}
}

func WithCost(c float64) TaskOption {
	return func(t *domain.Task) {
		t.Cost = c
	}
}

func NewTestTask(projectID, title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	t := &domain.Task{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Title:     title,
		Status:    domain.TaskNotStarted,
		Priority:  domain.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func NewTestResource(projectID, name string, total, available float64) *domain.Resource {
	now := time.Now().UTC()
	return &domain.Resource{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		Type:      domain.ResourceEquipment,
		Unit:      "units",
		Total:     total,
		Available: available,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewTestWorkPackage(projectID, code, name string, cost float64, days int) *domain.WorkPackage {
	return &domain.WorkPackage{
		ID:            uuid.New().String(),
		ProjectID:     projectID,
		Code:          code,
		Name:          name,
		EstimatedCost: cost,
		EstimatedDays: days,
		CreatedAt:     time.Now().UTC(),
	}
}

func NewTestTeam(projectID, createdBy, name string) *domain.Team {
	now := time.Now().UTC()
	return &domain.Team{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestScope returns a document with every section filled in.
func NewTestScope(projectID string) *domain.ScopeDocument {
	now := time.Now().UTC()
	return &domain.ScopeDocument{
		ProjectID: projectID,
		Management: domain.ScopeManagementPlan{
			DefinitionMethod:   "workshops",
			WBSMethod:          "top-down decomposition",
			BaselineApproval:   "sponsor sign-off",
			DeliverablesImpact: "change board review",
		},
		Requirements: domain.RequirementManagementPlan{
			PlanningApproach: "user story mapping",
			ChangeControl:    "change requests",
			Prioritization:   "MoSCoW",
			Metrics:          "acceptance rate",
		},
		Documentation: domain.RequirementDocumentation{
			StakeholderNeeds:       []string{"online ordering"},
			QuantifiedExpectations: []string{"checkout under 2s"},
			Traceability:           "requirements matrix",
		},
		Statement: domain.ScopeStatement{
			EndProductScope:    "Public storefront",
			Deliverables:       []string{"catalog", "checkout"},
			AcceptanceCriteria: "UAT passed",
			Exclusions:         "mobile apps",
		},
		BaselineReference: "WBS v1",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
