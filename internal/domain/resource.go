package domain

import (
	"strings"
	"time"
)

// Resource is a project asset with a total and currently available quantity.
type Resource struct {
	ID          string
	ProjectID   string
	Name        string
	Type        ResourceType
	Unit        string
	Description string
	Total       float64
	Available   float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r *Resource) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return Invalidf("resource name is required")
	}
	if !r.Type.Valid() {
		return Invalidf("unknown resource type %q", r.Type)
	}
	if r.Total < 0 {
		return Invalidf("resource total must be >= 0")
	}
	if r.Available < 0 || r.Available > r.Total {
		return Invalidf("resource available must be between 0 and %g", r.Total)
	}
	return nil
}

// InUse returns the quantity currently committed.
func (r *Resource) InUse() float64 {
	return r.Total - r.Available
}

// WorkPackage is a leaf of the project's work breakdown structure.
type WorkPackage struct {
	ID            string
	ProjectID     string
	Code          string
	Name          string
	EstimatedCost float64
	EstimatedDays int
	CreatedAt     time.Time
}

func (w *WorkPackage) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return Invalidf("work package name is required")
	}
	if w.EstimatedCost < 0 {
		return Invalidf("work package cost must be >= 0")
	}
	if w.EstimatedDays < 0 {
		return Invalidf("work package duration must be >= 0")
	}
	return nil
}

// ResourcePlan holds a project's free-form resourcing notes. A project has
// at most one; until it is saved the plan reads as empty.
type ResourcePlan struct {
	ProjectID string
	OwnerID   string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Saved reports whether the plan has been stored.
func (p *ResourcePlan) Saved() bool {
	return !p.CreatedAt.IsZero()
}
