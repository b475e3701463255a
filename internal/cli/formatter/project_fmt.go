package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
	"github.com/charmbracelet/lipgloss"
)

// FormatProjectList renders the project table inside a bordered box.
func FormatProjectList(projects []*domain.Project, now time.Time) string {
	if len(projects) == 0 {
		return Dim("No projects yet. Create one with: taskup project add")
	}
	headers := []string{"ID", "NAME", "STATUS", "BUDGET", "DEADLINE"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.DisplayID(),
			Bold(p.Name),
			StatusPill(p.Status),
			Amount(p.TotalBudget),
			DeadlineStyled(p.Deadline, now),
		})
	}
	return RenderBox("Projects", RenderTable(headers, rows))
}

// FormatOverview renders the inspect card: project metadata on the left,
// allocation, budget and risk figures on the right.
func FormatOverview(ov *service.ProjectOverview, users map[string]*domain.User, now time.Time) string {
	p := ov.Project
	meta := [][2]string{
		{"ID", p.DisplayID()},
		{"Name", Bold(p.Name)},
		{"Owner", userLabel(users, p.OwnerID)},
		{"Status", StatusPill(p.Status)},
		{"Deadline", DeadlineStyled(p.Deadline, now)},
		{"Created", p.CreatedAt.Format("2006-01-02")},
	}
	if p.Description != "" {
		meta = append(meta, [2]string{"About", p.Description})
	}
	left := RenderFields(meta)

	budget := fmt.Sprintf("%s / %s", Amount(ov.Budget.Committed), Amount(ov.Budget.Total))
	if ov.Budget.OverBudget() {
		budget = StyleRed.Render(budget + " over budget")
	}
	levels := make([]string, 0, len(ov.Risks.ByLevel))
	for _, l := range []domain.RiskLevel{domain.RiskCritical, domain.RiskHigh, domain.RiskMedium, domain.RiskLow} {
		if n := ov.Risks.ByLevel[l]; n > 0 {
			levels = append(levels, RiskColor(l).Render(fmt.Sprintf("%d %s", n, strings.ToLower(string(l)))))
		}
	}
	riskLine := strconv.Itoa(ov.Risks.Open) + " open"
	if len(levels) > 0 {
		riskLine += "  " + strings.Join(levels, Dim(", "))
	}

	right := RenderFields([][2]string{
		{"Allocated", RenderAllocationBar(ov.Allocation.Total, 20)},
		{"Available", Percent(ov.Allocation.Available)},
		{"Tasks", RenderProgress(ov.Progress.Percent/100, 20) + Dim(" "+ov.Progress.String())},
		{"Budget", budget},
		{"Risks", riskLine},
		{"Scale", ov.SeverityScale},
		{"Resources", strconv.Itoa(len(ov.Resources))},
		{"Work pkgs", strconv.Itoa(ov.WorkPackageCount)},
	})

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", 6), right)
	if len(ov.Stakeholders) > 0 {
		body += "\n\n" + Header("Stakeholders") + "\n" + stakeholderTable(ov.Stakeholders, users)
	}
	return RenderBox(p.Name, body)
}

func userLabel(users map[string]*domain.User, id string) string {
	if u, ok := users[id]; ok {
		return u.Name + Dim(" <"+u.Email+">")
	}
	return TruncID(id)
}
