package importer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/domain"
)

const dateLayout = "2006-01-02"

// NormalizeEmail is the form used to match user references.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ReferencedEmails lists every user email the document points at, including
// those it declares itself, sorted and deduplicated.
func (d *Document) ReferencedEmails() []string {
	seen := make(map[string]bool)
	add := func(e string) {
		if e = NormalizeEmail(e); e != "" {
			seen[e] = true
		}
	}
	for _, u := range d.Users {
		add(u.Email)
	}
	add(d.Project.OwnerEmail)
	for _, s := range d.Stakeholders {
		add(s.UserEmail)
	}
	for _, r := range d.Risks {
		add(r.OwnerEmail)
	}
	for _, t := range d.Tasks {
		add(t.AssigneeEmail)
	}
	out := make([]string, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Validate runs the semantic checks a schema cannot express. existing holds
// normalized emails of users already stored; any other referenced email must
// be declared under users. All problems are returned, not just the first.
func Validate(doc *Document, existing map[string]bool) []error {
	var errs []error

	declared, userErrs := validateUsers(doc.Users)
	errs = append(errs, userErrs...)
	known := func(email string) bool {
		e := NormalizeEmail(email)
		return declared[e] || existing[e]
	}

	errs = append(errs, validateProject(&doc.Project, known)...)
	errs = append(errs, validateStakeholders(doc.Stakeholders, doc.Project.OwnerEmail, known)...)
	errs = append(errs, validateRisks(doc.Risks, known)...)
	errs = append(errs, validateTasks(doc.Tasks, known)...)
	errs = append(errs, validateResources(doc.Resources)...)
	errs = append(errs, validateWorkPackages(doc.WorkPackages)...)

	return errs
}

func problem(path string, format string, args ...any) error {
	return &ValidationError{Path: path, Err: fmt.Errorf(format, args...)}
}

func validateUsers(users []UserImport) (map[string]bool, []error) {
	var errs []error
	declared := make(map[string]bool)
	for i, u := range users {
		path := fmt.Sprintf("users[%d]", i)
		email := NormalizeEmail(u.Email)
		du := domain.User{Email: email, Name: u.Name}
		if err := du.Validate(); err != nil {
			errs = append(errs, &ValidationError{Path: path, Err: err})
			continue
		}
		if declared[email] {
			errs = append(errs, problem(path+".email", "duplicate user %q", email))
			continue
		}
		declared[email] = true
	}
	return declared, errs
}

func validateProject(p *ProjectImport, known func(string) bool) []error {
	var errs []error

	dp := domain.Project{
		ShortID: strings.ToUpper(p.ShortID),
		Name:    p.Name,
		OwnerID: "pending",
		Status:  domain.ProjectStatus(domain.CoalesceStr(p.Status, string(domain.ProjectNotStarted))),
	}
	if p.TotalBudget != nil {
		dp.TotalBudget = *p.TotalBudget
	}
	if err := dp.Validate(); err != nil {
		errs = append(errs, &ValidationError{Path: "project", Err: err})
	}
	if !known(p.OwnerEmail) {
		errs = append(errs, problem("project.owner_email", "unknown user %q", p.OwnerEmail))
	}
	if err := validateOptionalDate(p.Deadline); err != nil {
		errs = append(errs, &ValidationError{Path: "project.deadline", Err: err})
	}
	return errs
}

func validateStakeholders(shs []StakeholderImport, ownerEmail string, known func(string) bool) []error {
	var errs []error
	seen := make(map[string]bool)
	owner := NormalizeEmail(ownerEmail)
	var total float64

	for i, s := range shs {
		path := fmt.Sprintf("stakeholders[%d]", i)
		email := NormalizeEmail(s.UserEmail)
		switch {
		case !known(email):
			errs = append(errs, problem(path+".user_email", "unknown user %q", s.UserEmail))
		case email == owner:
			errs = append(errs, problem(path+".user_email", "project owner cannot be a stakeholder"))
		case seen[email]:
			errs = append(errs, problem(path+".user_email", "duplicate stakeholder %q", s.UserEmail))
		}
		seen[email] = true

		if _, err := calc.ValidateNewAllocation(total, s.Percentage); err != nil {
			errs = append(errs, &ValidationError{Path: path + ".percentage", Err: err})
			continue
		}
		total += s.Percentage
	}
	return errs
}

func validateRisks(risks []RiskImport, known func(string) bool) []error {
	var errs []error
	for i, r := range risks {
		path := fmt.Sprintf("risks[%d]", i)
		if strings.TrimSpace(r.Name) == "" {
			errs = append(errs, problem(path+".name", "is required"))
		}
		if err := calc.ValidateRiskInputs(r.Probability, r.Impact); err != nil {
			errs = append(errs, &ValidationError{Path: path, Err: err})
		}
		if r.OwnerEmail != "" && !known(r.OwnerEmail) {
			errs = append(errs, problem(path+".owner_email", "unknown user %q", r.OwnerEmail))
		}
		if r.Status != "" && !domain.RiskStatus(r.Status).Valid() {
			errs = append(errs, problem(path+".status", "unknown risk status %q", r.Status))
		}
		for j, pl := range r.Plans {
			if !domain.ResponseStrategy(pl.Strategy).Valid() {
				errs = append(errs, problem(fmt.Sprintf("%s.plans[%d].strategy", path, j), "unknown strategy %q", pl.Strategy))
			}
		}
	}
	return errs
}

func validateTasks(tasks []TaskImport, known func(string) bool) []error {
	var errs []error
	refs := make(map[string]bool)

	for i, t := range tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		if t.Ref == "" {
			errs = append(errs, problem(path+".ref", "is required"))
		} else if refs[t.Ref] {
			errs = append(errs, problem(path+".ref", "duplicate ref %q", t.Ref))
		}
		refs[t.Ref] = true

		if strings.TrimSpace(t.Title) == "" {
			errs = append(errs, problem(path+".title", "is required"))
		}
		if t.AssigneeEmail != "" && !known(t.AssigneeEmail) {
			errs = append(errs, problem(path+".assignee_email", "unknown user %q", t.AssigneeEmail))
		}
		if t.Cost != nil && *t.Cost < 0 {
			errs = append(errs, problem(path+".cost", "must be >= 0"))
		}
		if t.Status != "" && !domain.TaskStatus(t.Status).Valid() {
			errs = append(errs, problem(path+".status", "unknown task status %q", t.Status))
		}
		if t.Priority != "" && !domain.TaskPriority(t.Priority).Valid() {
			errs = append(errs, problem(path+".priority", "unknown priority %q", t.Priority))
		}
		if err := validateOptionalDate(t.Deadline); err != nil {
			errs = append(errs, &ValidationError{Path: path + ".deadline", Err: err})
		}
	}

	for i, t := range tasks {
		if t.ParentRef == nil {
			continue
		}
		path := fmt.Sprintf("tasks[%d].parent_ref", i)
		switch {
		case *t.ParentRef == t.Ref:
			errs = append(errs, problem(path, "task %q cannot be its own parent", t.Ref))
		case !refs[*t.ParentRef]:
			errs = append(errs, problem(path, "unknown task ref %q", *t.ParentRef))
		}
	}

	errs = append(errs, detectParentCycles(tasks)...)
	return errs
}

// detectParentCycles walks child→parent edges with a three-colour DFS.
func detectParentCycles(tasks []TaskImport) []error {
	parent := make(map[string]string)
	for _, t := range tasks {
		if t.ParentRef != nil && *t.ParentRef != t.Ref {
			parent[t.Ref] = *t.ParentRef
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var errs []error

	var visit func(ref string)
	visit = func(ref string) {
		color[ref] = gray
		if next, ok := parent[ref]; ok {
			switch color[next] {
			case gray:
				errs = append(errs, problem("tasks", "circular parent chain involving %q and %q", ref, next))
			case white:
				visit(next)
			}
		}
		color[ref] = black
	}

	refs := make([]string, 0, len(parent))
	for ref := range parent {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	for _, ref := range refs {
		if color[ref] == white {
			visit(ref)
		}
	}
	return errs
}

func validateResources(resources []ResourceImport) []error {
	var errs []error
	for i, r := range resources {
		dr := resourceFromImport(r)
		if err := dr.Validate(); err != nil {
			errs = append(errs, &ValidationError{Path: fmt.Sprintf("resources[%d]", i), Err: err})
		}
	}
	return errs
}

func validateWorkPackages(wps []WorkPackageImport) []error {
	var errs []error
	codes := make(map[string]bool)
	for i, w := range wps {
		path := fmt.Sprintf("work_packages[%d]", i)
		dw := domain.WorkPackage{Code: w.Code, Name: w.Name, EstimatedCost: w.EstimatedCost, EstimatedDays: w.EstimatedDays}
		if err := dw.Validate(); err != nil {
			errs = append(errs, &ValidationError{Path: path, Err: err})
		}
		if w.Code != "" {
			if codes[w.Code] {
				errs = append(errs, problem(path+".code", "duplicate code %q", w.Code))
			}
			codes[w.Code] = true
		}
	}
	return errs
}

func validateOptionalDate(s *string) error {
	if s == nil {
		return nil
	}
	if _, err := time.Parse(dateLayout, *s); err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", *s)
	}
	return nil
}

// Join flattens a list of validation problems into one error wrapping
// domain.ErrValidation.
func Join(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrValidation, errors.Join(errs...))
}
