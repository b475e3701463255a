package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// TeamColors is the size of the palette a team's ColorIndex points into.
const TeamColors = 8

// LeaderRole is the role given to the member who created a team.
const LeaderRole = "Leader"

// Team groups project members under a leader.
type Team struct {
	ID          string
	ProjectID   string
	Name        string
	Description string
	ColorIndex  int
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Team) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return Invalidf("team name is required")
	}
	if utf8.RuneCountInString(t.Name) > 100 {
		return Invalidf("team name must be at most 100 characters")
	}
	if t.ColorIndex < 0 || t.ColorIndex >= TeamColors {
		return Invalidf("team color must be between 0 and %d", TeamColors-1)
	}
	return nil
}

type TeamMember struct {
	TeamID   string
	UserID   string
	Role     string
	IsLeader bool
	JoinedAt time.Time
}
