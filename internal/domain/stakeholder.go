package domain

import "time"

// Stakeholder is a user holding an ownership share of a project.
// The sum of Percentage across one project's stakeholders never exceeds 100.
type Stakeholder struct {
	ID         string
	ProjectID  string
	UserID     string
	Role       string
	Percentage float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
