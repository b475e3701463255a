package domain

import (
	"strings"
	"time"
)

// ScopeDocument is a project's scope baseline. A project has at most one.
// The work breakdown itself lives in WorkPackage rows; the document only
// records where the baseline is kept.
type ScopeDocument struct {
	ProjectID         string
	Management        ScopeManagementPlan
	Requirements      RequirementManagementPlan
	Documentation     RequirementDocumentation
	Statement         ScopeStatement
	BaselineReference string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ScopeManagementPlan says how scope is defined, baselined and changed.
type ScopeManagementPlan struct {
	DefinitionMethod   string
	WBSMethod          string
	BaselineApproval   string
	DeliverablesImpact string
}

type RequirementManagementPlan struct {
	PlanningApproach string
	ChangeControl    string
	Prioritization   string
	Metrics          string
}

type RequirementDocumentation struct {
	StakeholderNeeds       []string
	QuantifiedExpectations []string
	Traceability           string
}

type ScopeStatement struct {
	EndProductScope    string
	Deliverables       []string
	AcceptanceCriteria string
	Exclusions         string
	StatementOfWork    string
}

// Normalize trims every field and drops blank list entries.
func (d *ScopeDocument) Normalize() {
	for _, s := range []*string{
		&d.Management.DefinitionMethod, &d.Management.WBSMethod,
		&d.Management.BaselineApproval, &d.Management.DeliverablesImpact,
		&d.Requirements.PlanningApproach, &d.Requirements.ChangeControl,
		&d.Requirements.Prioritization, &d.Requirements.Metrics,
		&d.Documentation.Traceability,
		&d.Statement.EndProductScope, &d.Statement.AcceptanceCriteria,
		&d.Statement.Exclusions, &d.Statement.StatementOfWork,
		&d.BaselineReference,
	} {
		*s = strings.TrimSpace(*s)
	}
	d.Documentation.StakeholderNeeds = compactLines(d.Documentation.StakeholderNeeds)
	d.Documentation.QuantifiedExpectations = compactLines(d.Documentation.QuantifiedExpectations)
	d.Statement.Deliverables = compactLines(d.Statement.Deliverables)
}

func (d *ScopeDocument) Validate() error {
	if d.ProjectID == "" {
		return Invalidf("scope document needs a project")
	}
	if d.Statement.EndProductScope == "" {
		return Invalidf("end product scope is required")
	}
	return nil
}

func compactLines(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
