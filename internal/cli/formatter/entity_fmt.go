package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/domain"
)

func FormatUserList(users []*domain.User) string {
	if len(users) == 0 {
		return Dim("No users yet. Create one with: taskup user add")
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{TruncID(u.ID), Bold(u.Name), u.Email})
	}
	return RenderTable([]string{"ID", "NAME", "EMAIL"}, rows)
}

func stakeholderTable(list []*domain.Stakeholder, users map[string]*domain.User) string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		role := s.Role
		if role == "" {
			role = Dim("--")
		}
		rows = append(rows, []string{TruncID(s.ID), userLabel(users, s.UserID), role, Percent(s.Percentage)})
	}
	return RenderTable([]string{"ID", "USER", "ROLE", "SHARE"}, rows)
}

// FormatStakeholders lists a project's stakeholders followed by the
// allocation bar.
func FormatStakeholders(list []*domain.Stakeholder, alloc calc.Allocation, users map[string]*domain.User) string {
	var b strings.Builder
	if len(list) == 0 {
		b.WriteString(Dim("No stakeholders yet."))
	} else {
		b.WriteString(stakeholderTable(list, users))
	}
	b.WriteString("\n")
	b.WriteString(FormatAllocation(alloc))
	return b.String()
}

func FormatAllocation(alloc calc.Allocation) string {
	line := fmt.Sprintf("%s  %s available", RenderAllocationBar(alloc.Total, 20), Percent(alloc.Available))
	if alloc.OverAllocated() {
		line += "  " + StyleRed.Render("over-allocated")
	}
	return line
}

func FormatRiskList(risks []*domain.Risk) string {
	if len(risks) == 0 {
		return Dim("No risks recorded.")
	}
	rows := make([][]string, 0, len(risks))
	for _, r := range risks {
		rows = append(rows, []string{
			TruncID(r.ID),
			Bold(r.Name),
			strconv.FormatFloat(r.Probability, 'f', -1, 64),
			strconv.Itoa(r.Impact),
			strconv.FormatFloat(r.Severity, 'f', 2, 64),
			RiskBadge(r.Level),
			string(r.Status),
		})
	}
	return RenderTable([]string{"ID", "NAME", "PROB", "IMPACT", "SEVERITY", "LEVEL", "STATUS"}, rows)
}

func FormatAssessment(a calc.Assessment) string {
	return fmt.Sprintf("severity %s  %s  %s",
		Bold(strconv.FormatFloat(a.Severity, 'f', 2, 64)), RiskBadge(a.Level), Dim("("+a.Scale+" scale)"))
}

func FormatPlanList(plans []*domain.RiskResponsePlan) string {
	if len(plans) == 0 {
		return Dim("No response plans.")
	}
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, []string{TruncID(p.ID), string(p.Strategy), string(p.Status), p.Description})
	}
	return RenderTable([]string{"ID", "STRATEGY", "STATUS", "DESCRIPTION"}, rows)
}

// FormatTaskList renders tasks with subtasks indented under their parent
// when the parent is in the list.
func FormatTaskList(tasks []*domain.Task, now time.Time) string {
	if len(tasks) == 0 {
		return Dim("No tasks match.")
	}
	present := make(map[string]bool, len(tasks))
	children := map[string][]*domain.Task{}
	for _, t := range tasks {
		present[t.ID] = true
	}
	var roots []*domain.Task
	for _, t := range tasks {
		if t.ParentTaskID != nil && present[*t.ParentTaskID] {
			children[*t.ParentTaskID] = append(children[*t.ParentTaskID], t)
			continue
		}
		roots = append(roots, t)
	}

	rows := make([][]string, 0, len(tasks))
	var walk func(t *domain.Task, depth int)
	walk = func(t *domain.Task, depth int) {
		title := t.Title
		if depth > 0 {
			title = strings.Repeat("  ", depth-1) + Dim("└ ") + title
		}
		rows = append(rows, []string{
			TruncID(t.ID),
			title,
			TaskStatusPill(t.Status),
			PriorityBadge(t.Priority),
			Amount(t.Cost),
			DeadlineStyled(t.Deadline, now),
		})
		for _, c := range children[t.ID] {
			walk(c, depth+1)
		}
	}
	for _, t := range roots {
		walk(t, 0)
	}
	return RenderTable([]string{"ID", "TITLE", "STATUS", "PRIORITY", "COST", "DEADLINE"}, rows)
}

func FormatResourceList(resources []*domain.Resource) string {
	if len(resources) == 0 {
		return Dim("No resources.")
	}
	rows := make([][]string, 0, len(resources))
	for _, r := range resources {
		used := 0.0
		if r.Total > 0 {
			used = r.InUse() / r.Total
		}
		rows = append(rows, []string{
			TruncID(r.ID),
			Bold(r.Name),
			string(r.Type),
			fmt.Sprintf("%s/%s %s", Amount(r.Available), Amount(r.Total), r.Unit),
			RenderCompactBar(used, 10, false),
		})
	}
	return RenderTable([]string{"ID", "NAME", "TYPE", "AVAILABLE", "IN USE"}, rows)
}

func FormatWorkPackageList(wps []*domain.WorkPackage) string {
	if len(wps) == 0 {
		return Dim("No work packages.")
	}
	rows := make([][]string, 0, len(wps))
	for _, w := range wps {
		code := w.Code
		if code == "" {
			code = Dim("--")
		}
		rows = append(rows, []string{TruncID(w.ID), code, Bold(w.Name), Amount(w.EstimatedCost), strconv.Itoa(w.EstimatedDays) + "d"})
	}
	return RenderTable([]string{"ID", "CODE", "NAME", "COST", "DURATION"}, rows)
}
