package formatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// RelativeDate returns a human-friendly relative date string.
func RelativeDate(t time.Time) string {
	return RelativeDateFrom(t, time.Now())
}

// RelativeDateFrom returns a human-friendly relative date string from a reference time.
func RelativeDateFrom(t time.Time, now time.Time) string {
	days := int(math.Round(t.Sub(now).Hours() / 24))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days > -14:
		return fmt.Sprintf("%dd ago", -days)
	case days > -60:
		return fmt.Sprintf("%dw ago", -days/7)
	default:
		return fmt.Sprintf("%dmo ago", -days/30)
	}
}

// DeadlineStyled renders a deadline relative to now, red when overdue or
// within two days and yellow within a week. Nil renders as "--".
func DeadlineStyled(d *time.Time, now time.Time) string {
	if d == nil {
		return Dim("--")
	}
	text := RelativeDateFrom(*d, now)
	days := int(math.Round(d.Sub(now).Hours() / 24))
	switch {
	case days <= 2:
		return StyleRed.Render(text)
	case days <= 7:
		return StyleYellow.Render(text)
	}
	return StyleFg.Render(text)
}

// StatusPill returns a colored indicator for a project status.
func StatusPill(status domain.ProjectStatus) string {
	switch status {
	case domain.ProjectNotStarted:
		return StyleBlue.Render("○ Not started")
	case domain.ProjectInProgress:
		return StyleGreen.Render("● In progress")
	case domain.ProjectOnHold:
		return StyleYellow.Render("○ On hold")
	case domain.ProjectCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.ProjectArchived:
		return StyleDim.Render("✖ Archived")
	default:
		return StyleDim.Render(string(status))
	}
}

func TaskStatusPill(status domain.TaskStatus) string {
	switch status {
	case domain.TaskNotStarted:
		return StyleBlue.Render("○ Todo")
	case domain.TaskInProgress:
		return StyleGreen.Render("● In progress")
	case domain.TaskCompleted:
		return StyleDim.Render("✔ Done")
	default:
		return StyleDim.Render(string(status))
	}
}

func PriorityBadge(p domain.TaskPriority) string {
	switch p {
	case domain.PriorityUrgent:
		return StyleRed.Bold(true).Render("!! urgent")
	case domain.PriorityHigh:
		return StyleRed.Render("! high")
	case domain.PriorityMedium:
		return StyleYellow.Render("medium")
	default:
		return StyleDim.Render(string(p))
	}
}

// TruncID returns the first 8 characters of an ID.
func TruncID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Percent formats a share with at most two decimals: 25, 33.33, 12.5.
func Percent(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + "%"
}

// Amount formats a monetary or quantity value with two decimals.
func Amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
