package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// RiskColor returns the style for a qualitative risk level.
func RiskColor(level domain.RiskLevel) lipgloss.Style {
	switch level {
	case domain.RiskCritical:
		return StyleRed.Bold(true)
	case domain.RiskHigh:
		return StyleRed
	case domain.RiskMedium:
		return StyleYellow
	case domain.RiskLow:
		return StyleGreen
	default:
		return StyleDim
	}
}

// RiskBadge renders a level as "● HIGH" in its color.
func RiskBadge(level domain.RiskLevel) string {
	if level == "" {
		return StyleDim.Render("● UNKNOWN")
	}
	return RiskColor(level).Render("● " + strings.ToUpper(string(level)))
}

// Header renders a section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
