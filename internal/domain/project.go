package domain

import (
	"regexp"
	"strings"
	"time"
)

var shortIDPattern = regexp.MustCompile(`^[A-Z]{3,6}[0-9]{2,4}$`)

type Project struct {
	ID          string
	ShortID     string
	Name        string
	Description string
	OwnerID     string
	Status      ProjectStatus
	Deadline    *time.Time
	TotalBudget float64
	ArchivedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateShortID checks that ShortID is non-empty and matches the required
// format: 3-6 uppercase letters followed by 2-4 digits (e.g. WEB01, INFRA2024).
func (p *Project) ValidateShortID() error {
	if p.ShortID == "" {
		return Invalidf("short ID is required (use --id flag)")
	}
	if !shortIDPattern.MatchString(p.ShortID) {
		return Invalidf("short ID %q must be 3-6 uppercase letters followed by 2-4 digits (e.g. WEB01)", p.ShortID)
	}
	return nil
}

func (p *Project) Validate() error {
	if err := p.ValidateShortID(); err != nil {
		return err
	}
	if strings.TrimSpace(p.Name) == "" {
		return Invalidf("project name is required")
	}
	if p.OwnerID == "" {
		return Invalidf("project owner is required")
	}
	if !p.Status.Valid() {
		return Invalidf("unknown project status %q", p.Status)
	}
	if p.TotalBudget < 0 {
		return Invalidf("total budget must be >= 0, got %g", p.TotalBudget)
	}
	return nil
}

// IsArchived reports whether the project has been soft-deleted.
func (p *Project) IsArchived() bool {
	return p.ArchivedAt != nil || p.Status == ProjectArchived
}

// DisplayID returns the best short identifier for display.
// It prefers ShortID; if empty it truncates ID to 8 characters.
func (p *Project) DisplayID() string {
	if p.ShortID != "" {
		return p.ShortID
	}
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}
