package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/cli/formatter"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// taskupHuhTheme returns a huh theme using the formatter palette.
func taskupHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// stakeholderInput collects the answers of the stakeholder form.
type stakeholderInput struct {
	UserID     string
	Role       string
	Percentage string
}

// stakeholderForm asks for a user, a role and a share. The share field
// shows what is still available; out-of-range input is rejected inline,
// while anything above the available share is clamped afterwards by
// clampShare.
func stakeholderForm(users []*domain.User, alloc calc.Allocation, in *stakeholderInput) *huh.Form {
	options := make([]huh.Option[string], 0, len(users))
	for _, u := range users {
		options = append(options, huh.NewOption(fmt.Sprintf("%s <%s>", u.Name, u.Email), u.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("User").
				Options(options...).
				Value(&in.UserID),
			huh.NewInput().
				Title("Role").
				Placeholder("sponsor, investor, ...").
				Value(&in.Role),
			huh.NewInput().
				Title("Share (%)").
				Description(fmt.Sprintf("%s of the project is still available", formatter.Percent(alloc.Available))).
				Value(&in.Percentage).
				Validate(validatePercentage),
		),
	).WithTheme(taskupHuhTheme())
}

func validatePercentage(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if v <= 0 || v > calc.AllocationCap {
		return fmt.Errorf("must be greater than 0 and at most %g", calc.AllocationCap)
	}
	return nil
}

// clampShare parses a typed share and limits it to what is still
// available. clamped reports whether the value was lowered.
func clampShare(typed string, available float64) (share float64, clamped bool, err error) {
	if err := validatePercentage(typed); err != nil {
		return 0, false, domain.Invalidf("share %q: %v", typed, err)
	}
	v, _ := strconv.ParseFloat(strings.TrimSpace(typed), 64)
	share = calc.ClampToAvailable(v, available)
	if share <= 0 {
		return 0, false, &calc.AllocationError{Kind: calc.ErrExceedsAvailable, Requested: v, Available: available}
	}
	return share, share < v, nil
}
