package web

import (
	"time"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
)

type userDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

type createUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type projectDTO struct {
	ID          string               `json:"id"`
	ShortID     string               `json:"short_id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	OwnerID     string               `json:"owner_id"`
	Status      domain.ProjectStatus `json:"status"`
	Deadline    *string              `json:"deadline"`
	TotalBudget float64              `json:"total_budget"`
	ArchivedAt  *time.Time           `json:"archived_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

func toProjectDTO(p *domain.Project) projectDTO {
	return projectDTO{
		ID:          p.ID,
		ShortID:     p.ShortID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		Status:      p.Status,
		Deadline:    formatDate(p.Deadline),
		TotalBudget: p.TotalBudget,
		ArchivedAt:  p.ArchivedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type createProjectRequest struct {
	ShortID     string               `json:"short_id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	OwnerID     string               `json:"owner_id"`
	Status      domain.ProjectStatus `json:"status"`
	Deadline    *string              `json:"deadline"`
	TotalBudget float64              `json:"total_budget"`
}

type updateProjectRequest struct {
	Name          *string               `json:"name"`
	Description   *string               `json:"description"`
	Status        *domain.ProjectStatus `json:"status"`
	Deadline      *string               `json:"deadline"`
	ClearDeadline bool                  `json:"clear_deadline"`
	TotalBudget   *float64              `json:"total_budget"`
}

func (req updateProjectRequest) patch() (service.ProjectPatch, error) {
	deadline, err := parseOptionalDate(req.Deadline)
	if err != nil {
		return service.ProjectPatch{}, err
	}
	return service.ProjectPatch{
		Name:          req.Name,
		Description:   req.Description,
		Status:        req.Status,
		Deadline:      deadline,
		ClearDeadline: req.ClearDeadline,
		TotalBudget:   req.TotalBudget,
	}, nil
}

type stakeholderDTO struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	Percentage float64   `json:"percentage"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toStakeholderDTO(s *domain.Stakeholder) stakeholderDTO {
	return stakeholderDTO{
		ID:         s.ID,
		ProjectID:  s.ProjectID,
		UserID:     s.UserID,
		Role:       s.Role,
		Percentage: s.Percentage,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

type createStakeholderRequest struct {
	ProjectID  string  `json:"project_id"`
	UserID     string  `json:"user_id"`
	Role       string  `json:"role"`
	Percentage float64 `json:"percentage"`
}

type updateStakeholderRequest struct {
	Role       *string  `json:"role"`
	Percentage *float64 `json:"percentage"`
}

type allocationDTO struct {
	ProjectID     string  `json:"project_id"`
	Total         float64 `json:"total"`
	Available     float64 `json:"available"`
	OverAllocated bool    `json:"over_allocated"`
}

func toAllocationDTO(projectID string, a calc.Allocation) allocationDTO {
	return allocationDTO{
		ProjectID:     projectID,
		Total:         a.Total,
		Available:     a.Available,
		OverAllocated: a.OverAllocated(),
	}
}

type riskDTO struct {
	ID           string            `json:"id"`
	ProjectID    string            `json:"project_id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Category     string            `json:"category"`
	Probability  float64           `json:"probability"`
	Impact       int               `json:"impact"`
	Severity     float64           `json:"severity"`
	Level        domain.RiskLevel  `json:"level"`
	OwnerID      string            `json:"owner_id"`
	Status       domain.RiskStatus `json:"status"`
	IdentifiedAt time.Time         `json:"identified_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func toRiskDTO(r *domain.Risk) riskDTO {
	return riskDTO{
		ID:           r.ID,
		ProjectID:    r.ProjectID,
		Name:         r.Name,
		Description:  r.Description,
		Category:     r.Category,
		Probability:  r.Probability,
		Impact:       r.Impact,
		Severity:     r.Severity,
		Level:        r.Level,
		OwnerID:      r.OwnerID,
		Status:       r.Status,
		IdentifiedAt: r.IdentifiedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type createRiskRequest struct {
	ProjectID   string            `json:"project_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Probability float64           `json:"probability"`
	Impact      int               `json:"impact"`
	OwnerID     string            `json:"owner_id"`
	Status      domain.RiskStatus `json:"status"`
}

type updateRiskRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Category    *string            `json:"category"`
	Probability *float64           `json:"probability"`
	Impact      *int               `json:"impact"`
	OwnerID     *string            `json:"owner_id"`
	Status      *domain.RiskStatus `json:"status"`
}

type planDTO struct {
	ID             string                  `json:"id"`
	RiskID         string                  `json:"risk_id"`
	Strategy       domain.ResponseStrategy `json:"strategy"`
	Description    string                  `json:"description"`
	PlannedActions string                  `json:"planned_actions"`
	OwnerID        string                  `json:"owner_id"`
	Status         domain.PlanStatus       `json:"status"`
	CreatedAt      time.Time               `json:"created_at"`
}

func toPlanDTO(p *domain.RiskResponsePlan) planDTO {
	return planDTO{
		ID:             p.ID,
		RiskID:         p.RiskID,
		Strategy:       p.Strategy,
		Description:    p.Description,
		PlannedActions: p.PlannedActions,
		OwnerID:        p.OwnerID,
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
	}
}

type createPlanRequest struct {
	Strategy       domain.ResponseStrategy `json:"strategy"`
	Description    string                  `json:"description"`
	PlannedActions string                  `json:"planned_actions"`
	OwnerID        string                  `json:"owner_id"`
	Status         domain.PlanStatus       `json:"status"`
}

type taskDTO struct {
	ID           string              `json:"id"`
	ProjectID    string              `json:"project_id"`
	ParentTaskID *string             `json:"parent_task_id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	AssigneeID   *string             `json:"assignee_id"`
	Cost         float64             `json:"cost"`
	Status       domain.TaskStatus   `json:"status"`
	Priority     domain.TaskPriority `json:"priority"`
	Deadline     *string             `json:"deadline"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func toTaskDTO(t *domain.Task) taskDTO {
	return taskDTO{
		ID:           t.ID,
		ProjectID:    t.ProjectID,
		ParentTaskID: t.ParentTaskID,
		Title:        t.Title,
		Description:  t.Description,
		AssigneeID:   t.AssigneeID,
		Cost:         t.Cost,
		Status:       t.Status,
		Priority:     t.Priority,
		Deadline:     formatDate(t.Deadline),
		CompletedAt:  t.CompletedAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

type createTaskRequest struct {
	ProjectID    string              `json:"project_id"`
	ParentTaskID *string             `json:"parent_task_id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	AssigneeID   *string             `json:"assignee_id"`
	Cost         float64             `json:"cost"`
	Status       domain.TaskStatus   `json:"status"`
	Priority     domain.TaskPriority `json:"priority"`
	Deadline     *string             `json:"deadline"`
}

type updateTaskRequest struct {
	Title         *string              `json:"title"`
	Description   *string              `json:"description"`
	ParentTaskID  *string              `json:"parent_task_id"`
	AssigneeID    *string              `json:"assignee_id"`
	Cost          *float64             `json:"cost"`
	Status        *domain.TaskStatus   `json:"status"`
	Priority      *domain.TaskPriority `json:"priority"`
	Deadline      *string              `json:"deadline"`
	ClearDeadline bool                 `json:"clear_deadline"`
}

type resourceDTO struct {
	ID          string              `json:"id"`
	ProjectID   string              `json:"project_id"`
	Name        string              `json:"name"`
	Type        domain.ResourceType `json:"type"`
	Unit        string              `json:"unit"`
	Description string              `json:"description"`
	Total       float64             `json:"total"`
	Available   float64             `json:"available"`
	InUse       float64             `json:"in_use"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toResourceDTO(r *domain.Resource) resourceDTO {
	return resourceDTO{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Name:        r.Name,
		Type:        r.Type,
		Unit:        r.Unit,
		Description: r.Description,
		Total:       r.Total,
		Available:   r.Available,
		InUse:       r.InUse(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type createResourceRequest struct {
	ProjectID   string              `json:"project_id"`
	Name        string              `json:"name"`
	Type        domain.ResourceType `json:"type"`
	Unit        string              `json:"unit"`
	Description string              `json:"description"`
	Total       float64             `json:"total"`
	Available   *float64            `json:"available"`
}

type updateResourceRequest struct {
	Name        *string              `json:"name"`
	Type        *domain.ResourceType `json:"type"`
	Unit        *string              `json:"unit"`
	Description *string              `json:"description"`
	Total       *float64             `json:"total"`
	Available   *float64             `json:"available"`
}

type workPackageDTO struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	EstimatedCost float64   `json:"estimated_cost"`
	EstimatedDays int       `json:"estimated_days"`
	CreatedAt     time.Time `json:"created_at"`
}

func toWorkPackageDTO(w *domain.WorkPackage) workPackageDTO {
	return workPackageDTO{
		ID:            w.ID,
		ProjectID:     w.ProjectID,
		Code:          w.Code,
		Name:          w.Name,
		EstimatedCost: w.EstimatedCost,
		EstimatedDays: w.EstimatedDays,
		CreatedAt:     w.CreatedAt,
	}
}

type createWorkPackageRequest struct {
	ProjectID     string  `json:"project_id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	EstimatedCost float64 `json:"estimated_cost"`
	EstimatedDays int     `json:"estimated_days"`
}

type overviewDTO struct {
	Project          projectDTO         `json:"project"`
	Allocation       allocationDTO      `json:"allocation"`
	Stakeholders     []stakeholderDTO   `json:"stakeholders"`
	Risks            calc.RiskSummary   `json:"risks"`
	Progress         calc.Progress      `json:"progress"`
	Budget           calc.BudgetSummary `json:"budget"`
	OverBudget       bool               `json:"over_budget"`
	Resources        []resourceDTO      `json:"resources"`
	WorkPackageCount int                `json:"work_package_count"`
	SeverityScale    string             `json:"severity_scale"`
}

func toOverviewDTO(ov *service.ProjectOverview) overviewDTO {
	return overviewDTO{
		Project:          toProjectDTO(ov.Project),
		Allocation:       toAllocationDTO(ov.Project.ID, ov.Allocation),
		Stakeholders:     mapSlice(ov.Stakeholders, toStakeholderDTO),
		Risks:            ov.Risks,
		Progress:         ov.Progress,
		Budget:           ov.Budget,
		OverBudget:       ov.Budget.OverBudget(),
		Resources:        mapSlice(ov.Resources, toResourceDTO),
		WorkPackageCount: ov.WorkPackageCount,
		SeverityScale:    ov.SeverityScale,
	}
}

type importResultDTO struct {
	Project          projectDTO `json:"project"`
	UsersCreated     int        `json:"users_created"`
	StakeholderCount int        `json:"stakeholder_count"`
	RiskCount        int        `json:"risk_count"`
	PlanCount        int        `json:"plan_count"`
	TaskCount        int        `json:"task_count"`
	ResourceCount    int        `json:"resource_count"`
	WorkPackageCount int        `json:"work_package_count"`
}

func toImportResultDTO(r *service.ImportResult) importResultDTO {
	return importResultDTO{
		Project:          toProjectDTO(r.Project),
		UsersCreated:     r.UsersCreated,
		StakeholderCount: r.StakeholderCount,
		RiskCount:        r.RiskCount,
		PlanCount:        r.PlanCount,
		TaskCount:        r.TaskCount,
		ResourceCount:    r.ResourceCount,
		WorkPackageCount: r.WorkPackageCount,
	}
}

type resourcePlanDTO struct {
	ProjectID string             `json:"project_id"`
	OwnerID   string             `json:"owner_id"`
	Notes     string             `json:"notes"`
	Saved     bool               `json:"saved"`
	CreatedAt *time.Time         `json:"created_at,omitempty"`
	UpdatedAt *time.Time         `json:"updated_at,omitempty"`
	Resources []resourceDTO      `json:"resources"`
	Stats     calc.ResourceStats `json:"stats"`
}

func toResourcePlanDTO(v *service.ResourcePlanView) resourcePlanDTO {
	dto := resourcePlanDTO{
		ProjectID: v.Plan.ProjectID,
		OwnerID:   v.Plan.OwnerID,
		Notes:     v.Plan.Notes,
		Saved:     v.Plan.Saved(),
		Resources: mapSlice(v.Resources, toResourceDTO),
		Stats:     v.Stats,
	}
	if dto.Saved {
		dto.CreatedAt, dto.UpdatedAt = &v.Plan.CreatedAt, &v.Plan.UpdatedAt
	}
	return dto
}

type saveResourcePlanRequest struct {
	Notes string `json:"notes"`
}

type teamDTO struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ColorIndex  int       `json:"color_index"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTeamDTO(t *domain.Team) teamDTO {
	return teamDTO{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Name:        t.Name,
		Description: t.Description,
		ColorIndex:  t.ColorIndex,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type createTeamRequest struct {
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ColorIndex  int    `json:"color_index"`
}

type updateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ColorIndex  *int    `json:"color_index"`
}

type teamMemberDTO struct {
	TeamID   string    `json:"team_id"`
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	IsLeader bool      `json:"is_leader"`
	JoinedAt time.Time `json:"joined_at"`
}

func toTeamMemberDTO(m *domain.TeamMember) teamMemberDTO {
	return teamMemberDTO{TeamID: m.TeamID, UserID: m.UserID, Role: m.Role, IsLeader: m.IsLeader, JoinedAt: m.JoinedAt}
}

type addTeamMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// scopeBody is the editable part of a scope document, shared by requests
// and responses.
type scopeBody struct {
	Management struct {
		DefinitionMethod   string `json:"definition_method"`
		WBSMethod          string `json:"wbs_method"`
		BaselineApproval   string `json:"baseline_approval"`
		DeliverablesImpact string `json:"deliverables_impact"`
	} `json:"scope_management"`
	Requirements struct {
		PlanningApproach string `json:"planning_approach"`
		ChangeControl    string `json:"change_control"`
		Prioritization   string `json:"prioritization"`
		Metrics          string `json:"metrics"`
	} `json:"requirement_management"`
	Documentation struct {
		StakeholderNeeds       []string `json:"stakeholder_needs"`
		QuantifiedExpectations []string `json:"quantified_expectations"`
		Traceability           string   `json:"traceability"`
	} `json:"requirement_documentation"`
	Statement struct {
		EndProductScope    string   `json:"end_product_scope"`
		Deliverables       []string `json:"deliverables"`
		AcceptanceCriteria string   `json:"acceptance_criteria"`
		Exclusions         string   `json:"exclusions"`
		StatementOfWork    string   `json:"statement_of_work"`
	} `json:"scope_statement"`
	BaselineReference string `json:"baseline_reference"`
}

func (b *scopeBody) toDomain(projectID string) *domain.ScopeDocument {
	return &domain.ScopeDocument{
		ProjectID: projectID,
		Management: domain.ScopeManagementPlan{
			DefinitionMethod:   b.Management.DefinitionMethod,
			WBSMethod:          b.Management.WBSMethod,
			BaselineApproval:   b.Management.BaselineApproval,
			DeliverablesImpact: b.Management.DeliverablesImpact,
		},
		Requirements: domain.RequirementManagementPlan{
			PlanningApproach: b.Requirements.PlanningApproach,
			ChangeControl:    b.Requirements.ChangeControl,
			Prioritization:   b.Requirements.Prioritization,
			Metrics:          b.Requirements.Metrics,
		},
		Documentation: domain.RequirementDocumentation{
			StakeholderNeeds:       b.Documentation.StakeholderNeeds,
			QuantifiedExpectations: b.Documentation.QuantifiedExpectations,
			Traceability:           b.Documentation.Traceability,
		},
		Statement: domain.ScopeStatement{
			EndProductScope:    b.Statement.EndProductScope,
			Deliverables:       b.Statement.Deliverables,
			AcceptanceCriteria: b.Statement.AcceptanceCriteria,
			Exclusions:         b.Statement.Exclusions,
			StatementOfWork:    b.Statement.StatementOfWork,
		},
		BaselineReference: b.BaselineReference,
	}
}

type scopeDTO struct {
	ProjectID string `json:"project_id"`
	scopeBody
	WorkPackages []workPackageDTO `json:"work_packages"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func toScopeDTO(d *domain.ScopeDocument, wps []*domain.WorkPackage) scopeDTO {
	dto := scopeDTO{
		ProjectID:    d.ProjectID,
		WorkPackages: mapSlice(wps, toWorkPackageDTO),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	b := &dto.scopeBody
	b.Management.DefinitionMethod = d.Management.DefinitionMethod
	b.Management.WBSMethod = d.Management.WBSMethod
	b.Management.BaselineApproval = d.Management.BaselineApproval
	b.Management.DeliverablesImpact = d.Management.DeliverablesImpact
	b.Requirements.PlanningApproach = d.Requirements.PlanningApproach
	b.Requirements.ChangeControl = d.Requirements.ChangeControl
	b.Requirements.Prioritization = d.Requirements.Prioritization
	b.Requirements.Metrics = d.Requirements.Metrics
	b.Documentation.StakeholderNeeds = nonNil(d.Documentation.StakeholderNeeds)
	b.Documentation.QuantifiedExpectations = nonNil(d.Documentation.QuantifiedExpectations)
	b.Documentation.Traceability = d.Documentation.Traceability
	b.Statement.EndProductScope = d.Statement.EndProductScope
	b.Statement.Deliverables = nonNil(d.Statement.Deliverables)
	b.Statement.AcceptanceCriteria = d.Statement.AcceptanceCriteria
	b.Statement.Exclusions = d.Statement.Exclusions
	b.Statement.StatementOfWork = d.Statement.StatementOfWork
	b.BaselineReference = d.BaselineReference
	return dto
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// mapSlice converts items, always returning a non-nil slice so lists
// encode as [] rather than null.
func mapSlice[T any, D any](items []T, fn func(T) D) []D {
	out := make([]D, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}
