package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskup/internal/cli/formatter"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/kv"
	"github.com/alexanderramin/taskup/internal/service"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// lastProjectKey remembers the dashboard selection between runs.
var lastProjectKey = kv.Key("dashboard", "last_project")

func newDashboardCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Browse projects in a terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.IsInteractive() {
				return errors.New("dashboard needs a terminal")
			}
			p := tea.NewProgram(newDashboardModel(cmd.Context(), a), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err := p.Run()
			return err
		},
	}
}

// ── messages ─────────────────────────────────────────────────────────────────

type projectsLoadedMsg struct {
	projects []*domain.Project
	users    map[string]*domain.User
	lastID   string
	err      error
}

type overviewLoadedMsg struct {
	projectID string
	overview  *service.ProjectOverview
	err       error
}

// ── keys ─────────────────────────────────────────────────────────────────────

type dashboardKeys struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k dashboardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Refresh, k.Quit}
}

func (k dashboardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultDashboardKeys = dashboardKeys{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ── model ────────────────────────────────────────────────────────────────────

// dashboardModel shows a split pane: the project list on the left and the
// selected project's overview on the right.
type dashboardModel struct {
	ctx  context.Context
	app  *App
	keys dashboardKeys
	help help.Model

	width    int
	loading  bool
	err      error
	projects []*domain.Project
	users    map[string]*domain.User
	cursor   int

	overview    *service.ProjectOverview
	overviewErr error
}

func newDashboardModel(ctx context.Context, a *App) *dashboardModel {
	return &dashboardModel{
		ctx:     ctx,
		app:     a,
		keys:    defaultDashboardKeys,
		help:    help.New(),
		loading: true,
		width:   100,
	}
}

func (m *dashboardModel) Init() tea.Cmd {
	return m.loadProjects()
}

func (m *dashboardModel) loadProjects() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		projects, err := a.Projects.List(ctx, false)
		if err != nil {
			return projectsLoadedMsg{err: err}
		}
		users, err := userIndex(ctx, a)
		if err != nil {
			return projectsLoadedMsg{err: err}
		}
		msg := projectsLoadedMsg{projects: projects, users: users}
		if last, err := a.KV.Get(ctx, lastProjectKey); err == nil {
			msg.lastID = string(last)
		}
		return msg
	}
}

func (m *dashboardModel) loadOverview() tea.Cmd {
	if m.cursor >= len(m.projects) {
		return nil
	}
	ctx, a := m.ctx, m.app
	projectID := m.projects[m.cursor].ID
	return func() tea.Msg {
		ov, err := a.Overview.Get(ctx, projectID)
		return overviewLoadedMsg{projectID: projectID, overview: ov, err: err}
	}
}

// rememberSelection stores the selected project. A failed write only
// loses the preference.
func (m *dashboardModel) rememberSelection() {
	if m.cursor < len(m.projects) {
		_ = m.app.KV.Set(m.ctx, lastProjectKey, []byte(m.projects[m.cursor].ID))
	}
}

func (m *dashboardModel) selected() *domain.Project {
	if m.cursor < len(m.projects) {
		return m.projects[m.cursor]
	}
	return nil
}

// ── update ───────────────────────────────────────────────────────────────────

func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case projectsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.projects, m.users = msg.projects, msg.users
		m.cursor = 0
		for i, p := range m.projects {
			if p.ID == msg.lastID {
				m.cursor = i
				break
			}
		}
		m.overview = nil
		return m, m.loadOverview()

	case overviewLoadedMsg:
		// Drop answers for a project that is no longer selected.
		if p := m.selected(); p == nil || p.ID != msg.projectID {
			return m, nil
		}
		m.overview, m.overviewErr = msg.overview, msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.rememberSelection()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.overview = nil
				return m, m.loadOverview()
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.projects)-1 {
				m.cursor++
				m.overview = nil
				return m, m.loadOverview()
			}
		case key.Matches(msg, m.keys.Refresh):
			m.rememberSelection()
			m.loading, m.err = true, nil
			return m, m.loadProjects()
		}
	}
	return m, nil
}

// ── view ─────────────────────────────────────────────────────────────────────

const dashLeftPaneWidth = 36

func (m *dashboardModel) View() string {
	if m.loading {
		return "\n  " + formatter.Dim("Loading...")
	}
	if m.err != nil {
		return "\n  " + formatter.StyleRed.Render("Error: "+m.err.Error())
	}

	var body string
	if len(m.projects) == 0 {
		body = "  " + formatter.Dim("No projects yet. Create one with: taskup project add")
	} else {
		left := lipgloss.NewStyle().Width(dashLeftPaneWidth).Render(m.renderProjectList())
		divider := formatter.StyleDim.Render("│")
		rightWidth := max(m.width-dashLeftPaneWidth-3, 20)
		right := lipgloss.NewStyle().Width(rightWidth).Render(m.renderOverview())
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, " "+divider+" ", right)
	}
	return "\n" + body + "\n\n  " + m.help.View(m.keys)
}

func (m *dashboardModel) renderProjectList() string {
	var b strings.Builder
	b.WriteString(formatter.StyleHeader.Render("PROJECTS") + "\n\n")
	for i, p := range m.projects {
		cursor := "  "
		nameStyle := formatter.StyleFg
		if i == m.cursor {
			cursor = formatter.StyleGreen.Render("▸ ")
			nameStyle = formatter.StyleBold
		}
		name := p.Name
		if len([]rune(name)) > 20 {
			name = string([]rune(name)[:19]) + "…"
		}
		fmt.Fprintf(&b, "%s%-9s %s\n", cursor, formatter.StyleGreen.Render(p.DisplayID()), nameStyle.Render(name))
	}
	return b.String()
}

func (m *dashboardModel) renderOverview() string {
	if m.overviewErr != nil {
		return formatter.StyleRed.Render(m.overviewErr.Error())
	}
	ov := m.overview
	if ov == nil {
		return formatter.Dim("Loading details...")
	}

	var b strings.Builder
	b.WriteString(formatter.StyleBold.Render(ov.Project.Name) + "\n")
	b.WriteString(formatter.StatusPill(ov.Project.Status) + "\n\n")

	fields := [][2]string{
		{"Allocated", formatter.RenderAllocationBar(ov.Allocation.Total, 16)},
		{"Tasks", formatter.RenderProgress(ov.Progress.Percent/100, 16)},
		{"Budget", fmt.Sprintf("%s of %s", formatter.Amount(ov.Budget.Committed), formatter.Amount(ov.Budget.Total))},
		{"Open risks", fmt.Sprintf("%d", ov.Risks.Open)},
		{"Deadline", formatter.DeadlineStyled(ov.Project.Deadline, time.Now())},
	}
	b.WriteString(formatter.RenderFields(fields) + "\n")

	if len(ov.Stakeholders) > 0 {
		b.WriteString("\n" + formatter.StyleHeader.Render("STAKEHOLDERS") + "\n")
		for _, s := range ov.Stakeholders {
			name := formatter.TruncID(s.UserID)
			if u, ok := m.users[s.UserID]; ok {
				name = u.Name
			}
			fmt.Fprintf(&b, "  %-20s %s\n", name, formatter.Percent(s.Percentage))
		}
	}
	return b.String()
}
