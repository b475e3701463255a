package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
)

// teamPalette has one entry per domain.TeamColors slot.
var teamPalette = [domain.TeamColors]lipgloss.Color{
	ColorBlue, ColorGreen, ColorYellow, ColorPurple, ColorRed, ColorHeader, ColorFg, ColorDim,
}

// TeamSwatch renders a colored dot for a team's palette slot.
func TeamSwatch(index int) string {
	if index < 0 || index >= len(teamPalette) {
		return Dim("●")
	}
	return lipgloss.NewStyle().Foreground(teamPalette[index]).Render("●")
}

func FormatTeamList(teams []*domain.Team) string {
	if len(teams) == 0 {
		return Dim("No teams.")
	}
	rows := make([][]string, 0, len(teams))
	for _, t := range teams {
		desc := t.Description
		if desc == "" {
			desc = Dim("--")
		}
		rows = append(rows, []string{TruncID(t.ID), TeamSwatch(t.ColorIndex) + " " + Bold(t.Name), desc})
	}
	return RenderTable([]string{"ID", "NAME", "DESCRIPTION"}, rows)
}

func FormatTeamMembers(members []*domain.TeamMember, users map[string]*domain.User) string {
	if len(members) == 0 {
		return Dim("No members.")
	}
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		role := m.Role
		if role == "" {
			role = Dim("--")
		}
		if m.IsLeader {
			role = StyleHeader.Render("★ ") + role
		}
		rows = append(rows, []string{userLabel(users, m.UserID), role, m.JoinedAt.Format("2006-01-02")})
	}
	return RenderTable([]string{"MEMBER", "ROLE", "JOINED"}, rows)
}

func FormatResourcePlan(v *service.ResourcePlanView) string {
	s := v.Stats
	types := make([]string, 0, len(s.ByType))
	for t, n := range s.ByType {
		types = append(types, fmt.Sprintf("%d %s", n, t))
	}
	sort.Strings(types)
	byType := Dim("--")
	if len(types) > 0 {
		byType = strings.Join(types, Dim(", "))
	}

	low := strconv.Itoa(s.LowStock)
	if s.LowStock > 0 {
		low = StyleYellow.Render(low)
	}
	out := strconv.Itoa(s.OutOfStock)
	if s.OutOfStock > 0 {
		out = StyleRed.Render(out)
	}

	notes := v.Plan.Notes
	if notes == "" {
		notes = Dim("No notes yet.")
	}
	updated := Dim("never saved")
	if v.Plan.Saved() {
		updated = v.Plan.UpdatedAt.Format("2006-01-02 15:04")
	}

	body := RenderFields([][2]string{
		{"Resources", strconv.Itoa(s.Total)},
		{"By type", byType},
		{"Available", strconv.Itoa(s.Available)},
		{"Low stock", low},
		{"Out of stock", out},
		{"Updated", updated},
	})
	return body + "\n\n" + Header("Notes") + "\n" + notes + "\n\n" + FormatResourceList(v.Resources)
}

func FormatScope(d *domain.ScopeDocument, wps []*domain.WorkPackage) string {
	var b strings.Builder
	section := func(title string, pairs [][2]string) {
		kept := pairs[:0]
		for _, p := range pairs {
			if p[1] != "" {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			return
		}
		b.WriteString(Header(title) + "\n" + RenderFields(kept) + "\n\n")
	}
	bullets := func(items []string) string {
		return strings.Join(items, Dim(" · "))
	}

	section("Scope statement", [][2]string{
		{"End product", d.Statement.EndProductScope},
		{"Deliverables", bullets(d.Statement.Deliverables)},
		{"Acceptance", d.Statement.AcceptanceCriteria},
		{"Exclusions", d.Statement.Exclusions},
		{"SOW", d.Statement.StatementOfWork},
	})
	section("Scope management", [][2]string{
		{"Definition", d.Management.DefinitionMethod},
		{"WBS method", d.Management.WBSMethod},
		{"Baseline", d.Management.BaselineApproval},
		{"Changes", d.Management.DeliverablesImpact},
	})
	section("Requirements", [][2]string{
		{"Planning", d.Requirements.PlanningApproach},
		{"Change control", d.Requirements.ChangeControl},
		{"Priority", d.Requirements.Prioritization},
		{"Metrics", d.Requirements.Metrics},
		{"Needs", bullets(d.Documentation.StakeholderNeeds)},
		{"Expectations", bullets(d.Documentation.QuantifiedExpectations)},
		{"Traceability", d.Documentation.Traceability},
	})
	section("Work breakdown", [][2]string{{"Baseline", d.BaselineReference}})
	b.WriteString(FormatWorkPackageList(wps))
	return b.String()
}
