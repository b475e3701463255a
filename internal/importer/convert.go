package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/domain"
)

// Bundle holds the domain objects produced from an import document, ready
// to be persisted. Tasks are ordered so that parents precede children.
type Bundle struct {
	Project      *domain.Project
	Stakeholders []*domain.Stakeholder
	Risks        []*domain.Risk
	Plans        []*domain.RiskResponsePlan
	Tasks        []*domain.Task
	Resources    []*domain.Resource
	WorkPackages []*domain.WorkPackage
}

// Convert transforms a validated document into domain objects.
// userIDs maps normalized email to user ID and must cover every
// referenced email. Severity levels are bucketed with scale.
func Convert(doc *Document, userIDs map[string]string, scale calc.SeverityScale, now time.Time) (*Bundle, error) {
	lookup := func(email string) (string, error) {
		id, ok := userIDs[NormalizeEmail(email)]
		if !ok {
			return "", domain.NotFoundf("user %s", email)
		}
		return id, nil
	}

	ownerID, err := lookup(doc.Project.OwnerEmail)
	if err != nil {
		return nil, fmt.Errorf("project owner: %w", err)
	}

	p := &domain.Project{
		ID:          uuid.New().String(),
		ShortID:     strings.ToUpper(doc.Project.ShortID),
		Name:        doc.Project.Name,
		Description: doc.Project.Description,
		OwnerID:     ownerID,
		Status:      domain.ProjectStatus(domain.CoalesceStr(doc.Project.Status, string(domain.ProjectNotStarted))),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if doc.Project.TotalBudget != nil {
		p.TotalBudget = *doc.Project.TotalBudget
	}
	if p.Deadline, err = parseOptionalDate(doc.Project.Deadline); err != nil {
		return nil, fmt.Errorf("project deadline: %w", err)
	}

	b := &Bundle{Project: p}

	for _, s := range doc.Stakeholders {
		uid, err := lookup(s.UserEmail)
		if err != nil {
			return nil, fmt.Errorf("stakeholder: %w", err)
		}
		b.Stakeholders = append(b.Stakeholders, &domain.Stakeholder{
			ID:         uuid.New().String(),
			ProjectID:  p.ID,
			UserID:     uid,
			Role:       s.Role,
			Percentage: s.Percentage,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	for _, r := range doc.Risks {
		ownerID := p.OwnerID
		if r.OwnerEmail != "" {
			if ownerID, err = lookup(r.OwnerEmail); err != nil {
				return nil, fmt.Errorf("risk %q owner: %w", r.Name, err)
			}
		}
		a, err := scale.Assess(r.Probability, r.Impact)
		if err != nil {
			return nil, fmt.Errorf("risk %q: %w", r.Name, err)
		}
		risk := &domain.Risk{
			ID:           uuid.New().String(),
			ProjectID:    p.ID,
			Name:         r.Name,
			Description:  r.Description,
			Category:     r.Category,
			Probability:  r.Probability,
			Impact:       r.Impact,
			Severity:     a.Severity,
			Level:        a.Level,
			OwnerID:      ownerID,
			Status:       domain.RiskStatus(domain.CoalesceStr(r.Status, string(domain.RiskOpen))),
			IdentifiedAt: now,
			UpdatedAt:    now,
		}
		b.Risks = append(b.Risks, risk)

		for _, pl := range r.Plans {
			b.Plans = append(b.Plans, &domain.RiskResponsePlan{
				ID:             uuid.New().String(),
				RiskID:         risk.ID,
				Strategy:       domain.ResponseStrategy(pl.Strategy),
				Description:    pl.Description,
				PlannedActions: pl.PlannedActions,
				OwnerID:        ownerID,
				Status:         domain.PlanStatus(domain.CoalesceStr(pl.Status, string(domain.PlanPlanned))),
				CreatedAt:      now,
			})
		}
	}

	if b.Tasks, err = convertTasks(doc.Tasks, p.ID, lookup, now); err != nil {
		return nil, err
	}

	for _, r := range doc.Resources {
		res := resourceFromImport(r)
		res.ID = uuid.New().String()
		res.ProjectID = p.ID
		res.CreatedAt = now
		res.UpdatedAt = now
		b.Resources = append(b.Resources, &res)
	}

	for _, w := range doc.WorkPackages {
		b.WorkPackages = append(b.WorkPackages, &domain.WorkPackage{
			ID:            uuid.New().String(),
			ProjectID:     p.ID,
			Code:          w.Code,
			Name:          w.Name,
			EstimatedCost: w.EstimatedCost,
			EstimatedDays: w.EstimatedDays,
			CreatedAt:     now,
		})
	}

	return b, nil
}

func convertTasks(tasks []TaskImport, projectID string, lookup func(string) (string, error), now time.Time) ([]*domain.Task, error) {
	refMap := make(map[string]string, len(tasks))
	for _, t := range tasks {
		refMap[t.Ref] = uuid.New().String()
	}

	byRef := make(map[string]*domain.Task, len(tasks))
	for _, t := range tasks {
		task := &domain.Task{
			ID:          refMap[t.Ref],
			ProjectID:   projectID,
			Title:       t.Title,
			Description: t.Description,
			Priority:    domain.TaskPriority(domain.CoalesceStr(t.Priority, string(domain.PriorityMedium))),
			CreatedAt:   now,
		}
		if t.Cost != nil {
			task.Cost = *t.Cost
		}
		task.SetStatus(domain.TaskStatus(domain.CoalesceStr(t.Status, string(domain.TaskNotStarted))), now)
		if t.ParentRef != nil {
			pid, ok := refMap[*t.ParentRef]
			if !ok {
				return nil, fmt.Errorf("task %q: %w", t.Ref, domain.NotFoundf("parent ref %s", *t.ParentRef))
			}
			task.ParentTaskID = &pid
		}
		if t.AssigneeEmail != "" {
			uid, err := lookup(t.AssigneeEmail)
			if err != nil {
				return nil, fmt.Errorf("task %q assignee: %w", t.Ref, err)
			}
			task.AssigneeID = &uid
		}
		deadline, err := parseOptionalDate(t.Deadline)
		if err != nil {
			return nil, fmt.Errorf("task %q deadline: %w", t.Ref, err)
		}
		task.Deadline = deadline
		byRef[t.Ref] = task
	}

	// Parents first so foreign keys hold at insert time.
	ordered := make([]*domain.Task, 0, len(tasks))
	placed := make(map[string]bool, len(tasks))
	var place func(ref string, depth int) error
	place = func(ref string, depth int) error {
		if placed[ref] {
			return nil
		}
		if depth > len(tasks) {
			return domain.Invalidf("circular parent chain at task %q", ref)
		}
		for _, t := range tasks {
			if t.Ref == ref && t.ParentRef != nil {
				if err := place(*t.ParentRef, depth+1); err != nil {
					return err
				}
				break
			}
		}
		placed[ref] = true
		ordered = append(ordered, byRef[ref])
		return nil
	}
	for _, t := range tasks {
		if err := place(t.Ref, 0); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

func resourceFromImport(r ResourceImport) domain.Resource {
	res := domain.Resource{
		Name:        r.Name,
		Type:        domain.ResourceType(r.Type),
		Unit:        r.Unit,
		Description: r.Description,
		Total:       r.Total,
		Available:   r.Total,
	}
	if r.Available != nil {
		res.Available = *r.Available
	}
	return res
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, domain.Invalidf("invalid date %q", *s)
	}
	return &t, nil
}
