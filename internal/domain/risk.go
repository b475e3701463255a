package domain

import (
	"strings"
	"time"
)

const (
	MinImpact = 1
	MaxImpact = 10
)

// Risk is a register entry. Severity and Level are derived from
// Probability and Impact on every write.
type Risk struct {
	ID           string
	ProjectID    string
	Name         string
	Description  string
	Category     string
	Probability  float64
	Impact       int
	Severity     float64
	Level        RiskLevel
	OwnerID      string
	Status       RiskStatus
	IdentifiedAt time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

func (r *Risk) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return Invalidf("risk name is required")
	}
	if r.ProjectID == "" {
		return Invalidf("risk project is required")
	}
	if !r.Status.Valid() {
		return Invalidf("unknown risk status %q", r.Status)
	}
	return nil
}

type RiskResponsePlan struct {
	ID             string
	RiskID         string
	Strategy       ResponseStrategy
	Description    string
	PlannedActions string
	OwnerID        string
	Status         PlanStatus
	CreatedAt      time.Time
	DeletedAt      *time.Time
}

func (p *RiskResponsePlan) Validate() error {
	if !p.Strategy.Valid() {
		return Invalidf("unknown response strategy %q", p.Strategy)
	}
	if !p.Status.Valid() {
		return Invalidf("unknown plan status %q", p.Status)
	}
	return nil
}
