package web

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/domain"
)

func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")
	p := env.createProject(owner.ID, "web01")
	assert.Equal(t, "WEB01", p.ShortID)
	assert.Equal(t, owner.ID, p.OwnerID)
	assert.Equal(t, domain.ProjectNotStarted, p.Status)

	// Short IDs resolve in paths.
	rec := env.do(http.MethodGet, "/projects/WEB01", "", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, p.ID, decodeBody[projectDTO](t, rec).ID)

	rec = env.do(http.MethodPut, "/projects/"+p.ID, owner.ID, map[string]any{
		"name":     "Website relaunch",
		"deadline": "2026-12-31",
	})
	requireStatus(t, rec, http.StatusOK)
	updated := decodeBody[projectDTO](t, rec)
	assert.Equal(t, "Website relaunch", updated.Name)
	require.NotNil(t, updated.Deadline)
	assert.Equal(t, "2026-12-31", *updated.Deadline)

	requireStatus(t, env.do(http.MethodDelete, "/projects/"+p.ID, owner.ID, nil), http.StatusNoContent)

	rec = env.do(http.MethodGet, "/projects", "", nil)
	requireStatus(t, rec, http.StatusOK)
	assert.Empty(t, decodeBody[[]projectDTO](t, rec))

	rec = env.do(http.MethodGet, "/projects?include_archived=true", "", nil)
	assert.Len(t, decodeBody[[]projectDTO](t, rec), 1)
}

func TestProjectUpdate_NonOwnerForbidden(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")
	other := env.createUser("Mallory", "mallory@example.com")
	p := env.createProject(owner.ID, "WEB01")

	rec := env.do(http.MethodPut, "/projects/"+p.ID, other.ID, map[string]any{"name": "mine"})
	requireStatus(t, rec, http.StatusForbidden)
}

func TestStakeholderAllocation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")
	a := env.createUser("Ann", "ann@example.com")
	b := env.createUser("Ben", "ben@example.com")
	c := env.createUser("Cat", "cat@example.com")
	p := env.createProject(owner.ID, "WEB01")

	requireStatus(t, env.addStakeholder(owner.ID, p.ID, a.ID, 30), http.StatusCreated)
	requireStatus(t, env.addStakeholder(owner.ID, p.ID, b.ID, 45), http.StatusCreated)

	rec := env.do(http.MethodGet, "/projects/"+p.ID+"/allocation", "", nil)
	requireStatus(t, rec, http.StatusOK)
	want := allocationDTO{ProjectID: p.ID, Total: 75, Available: 25}
	if diff := cmp.Diff(want, decodeBody[allocationDTO](t, rec)); diff != "" {
		t.Errorf("allocation mismatch (-want +got):\n%s", diff)
	}

	rec = env.addStakeholder(owner.ID, p.ID, c.ID, 30)
	requireStatus(t, rec, http.StatusConflict)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, "exceeds_available", body.Error.Code)
	require.NotNil(t, body.Error.Available)
	assert.InDelta(t, 25.0, *body.Error.Available, 1e-9)

	rec = env.addStakeholder(owner.ID, p.ID, c.ID, 25)
	requireStatus(t, rec, http.StatusCreated)
	st := decodeBody[stakeholderDTO](t, rec)

	rec = env.addStakeholder(owner.ID, p.ID, c.ID, 0)
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, "invalid_range", decodeBody[errorBody](t, rec).Error.Code)

	// Shrinking an existing share is always allowed.
	rec = env.do(http.MethodPut, "/stakeholders/"+st.ID, owner.ID, map[string]any{"percentage": 10})
	requireStatus(t, rec, http.StatusOK)

	rec = env.do(http.MethodGet, "/projects/"+p.ID+"/stakeholders", "", nil)
	assert.Len(t, decodeBody[[]stakeholderDTO](t, rec), 3)

	requireStatus(t, env.do(http.MethodDelete, "/stakeholders/"+st.ID, owner.ID, nil), http.StatusNoContent)
	requireStatus(t, env.do(http.MethodGet, "/stakeholders/"+st.ID, "", nil), http.StatusNotFound)
}

func TestStakeholderCreate_OnlyOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")
	a := env.createUser("Ann", "ann@example.com")
	p := env.createProject(owner.ID, "WEB01")

	requireStatus(t, env.addStakeholder(a.ID, p.ID, a.ID, 10), http.StatusForbidden)
}

func TestRiskSeverity(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		query string
		level domain.RiskLevel
	}{
		{"probability=0.8&impact=9", domain.RiskCritical},
		{"probability=0.8&impact=9&scale=edit", domain.RiskHigh},
		{"probability=0.5&impact=7&scale=detail", domain.RiskMedium},
		{"probability=0.1&impact=2", domain.RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := env.do(http.MethodGet, "/risks/severity?"+tt.query, "", nil)
			requireStatus(t, rec, http.StatusOK)
			assert.Equal(t, tt.level, decodeBody[calc.Assessment](t, rec).Level)
		})
	}

	requireStatus(t, env.do(http.MethodGet, "/risks/severity?probability=1.5&impact=3", "", nil), http.StatusBadRequest)
	requireStatus(t, env.do(http.MethodGet, "/risks/severity?probability=0.5", "", nil), http.StatusBadRequest)
	requireStatus(t, env.do(http.MethodGet, "/risks/severity?probability=0.5&impact=3&scale=fuzzy", "", nil), http.StatusBadRequest)
}

func TestRiskAndPlans(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")
	p := env.createProject(owner.ID, "WEB01")

	rec := env.do(http.MethodPost, "/risks", owner.ID, createRiskRequest{
		ProjectID:   p.ID,
		Name:        "Vendor delay",
		Probability: 0.8,
		Impact:      9,
	})
	requireStatus(t, rec, http.StatusCreated)
	risk := decodeBody[riskDTO](t, rec)
	assert.InDelta(t, 7.2, risk.Severity, 1e-9)
	assert.Equal(t, domain.RiskCritical, risk.Level)
	assert.Equal(t, owner.ID, risk.OwnerID)

	rec = env.do(http.MethodPost, "/risks/"+risk.ID+"/plans", owner.ID, createPlanRequest{
		Strategy:    domain.StrategyMitigate,
		Description: "Second supplier",
	})
	requireStatus(t, rec, http.StatusCreated)
	plan := decodeBody[planDTO](t, rec)
	assert.Equal(t, domain.PlanPlanned, plan.Status)

	rec = env.do(http.MethodGet, "/risks/"+risk.ID+"/plans", "", nil)
	assert.Len(t, decodeBody[[]planDTO](t, rec), 1)

	rec = env.do(http.MethodPut, "/risks/"+risk.ID, owner.ID, map[string]any{"impact": 2})
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, domain.RiskLow, decodeBody[riskDTO](t, rec).Level)

	requireStatus(t, env.do(http.MethodDelete, "/plans/"+plan.ID, owner.ID, nil), http.StatusNoContent)
	requireStatus(t, env.do(http.MethodDelete, "/risks/"+risk.ID, owner.ID, nil), http.StatusNoContent)
	requireStatus(t, env.do(http.MethodGet, "/risks/"+risk.ID, "", nil), http.StatusNotFound)
}

func TestTasks_FilterSortComplete(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")
	p := env.createProject(owner.ID, "WEB01")

	create := func(title string, priority domain.TaskPriority, cost float64) taskDTO {
		rec := env.do(http.MethodPost, "/tasks", owner.ID, createTaskRequest{
			ProjectID: p.ID,
			Title:     title,
			Priority:  priority,
			Cost:      cost,
		})
		requireStatus(t, rec, http.StatusCreated)
		return decodeBody[taskDTO](t, rec)
	}
	design := create("Design mockups", domain.PriorityHigh, 200)
	create("Write copy", domain.PriorityLow, 50)
	create("Deploy", domain.PriorityUrgent, 100)

	rec := env.do(http.MethodGet, "/projects/"+p.ID+"/tasks?sort=priority", "", nil)
	requireStatus(t, rec, http.StatusOK)
	var titles []string
	for _, task := range decodeBody[[]taskDTO](t, rec) {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"Deploy", "Design mockups", "Write copy"}, titles)

	rec = env.do(http.MethodGet, "/projects/WEB01/tasks?q=mock", "", nil)
	assert.Len(t, decodeBody[[]taskDTO](t, rec), 1)

	rec = env.do(http.MethodPost, "/tasks/"+design.ID+"/complete", owner.ID, nil)
	requireStatus(t, rec, http.StatusOK)
	done := decodeBody[taskDTO](t, rec)
	assert.Equal(t, domain.TaskCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	rec = env.do(http.MethodGet, "/projects/"+p.ID+"/tasks?status=completed", "", nil)
	assert.Len(t, decodeBody[[]taskDTO](t, rec), 1)

	requireStatus(t, env.do(http.MethodGet, "/projects/"+p.ID+"/tasks?sort=colour", "", nil), http.StatusBadRequest)

	rec = env.do(http.MethodGet, "/projects/"+p.ID+"/overview", "", nil)
	requireStatus(t, rec, http.StatusOK)
	ov := decodeBody[overviewDTO](t, rec)
	assert.Equal(t, 3, ov.Progress.Total)
	assert.Equal(t, 1, ov.Progress.Completed)
	assert.InDelta(t, 350.0, ov.Budget.Committed, 1e-9)
	assert.Equal(t, "detail", ov.SeverityScale)
}

func TestResourcesAndWorkPackages(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")
	p := env.createProject(owner.ID, "WEB01")

	rec := env.do(http.MethodPost, "/resources", owner.ID, createResourceRequest{
		ProjectID: p.ID,
		Name:      "Designers",
		Type:      domain.ResourceHuman,
		Unit:      "people",
		Total:     4,
	})
	requireStatus(t, rec, http.StatusCreated)
	res := decodeBody[resourceDTO](t, rec)
	assert.Equal(t, 4.0, res.Available)

	rec = env.do(http.MethodPut, "/resources/"+res.ID, owner.ID, map[string]any{"available": 1})
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, 3.0, decodeBody[resourceDTO](t, rec).InUse)

	rec = env.do(http.MethodPut, "/resources/"+res.ID, owner.ID, map[string]any{"available": 9})
	requireStatus(t, rec, http.StatusBadRequest)

	rec = env.do(http.MethodPost, "/work-packages", owner.ID, createWorkPackageRequest{
		ProjectID:     p.ID,
		Code:          "WP1",
		Name:          "Discovery",
		EstimatedCost: 300,
		EstimatedDays: 10,
	})
	requireStatus(t, rec, http.StatusCreated)
	wp := decodeBody[workPackageDTO](t, rec)

	rec = env.do(http.MethodGet, "/projects/"+p.ID+"/work-packages", "", nil)
	assert.Len(t, decodeBody[[]workPackageDTO](t, rec), 1)
	requireStatus(t, env.do(http.MethodDelete, "/work-packages/"+wp.ID, owner.ID, nil), http.StatusNoContent)
	requireStatus(t, env.do(http.MethodDelete, "/resources/"+res.ID, owner.ID, nil), http.StatusNoContent)
}

func TestCreateResource_ExplicitZeroAvailable(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")
	p := env.createProject(owner.ID, "WEB01")

	rec := env.do(http.MethodPost, "/resources", owner.ID,
		`{"project_id":"`+p.ID+`","name":"Crane","type":"equipment","total":2,"available":0}`)
	requireStatus(t, rec, http.StatusCreated)
	res := decodeBody[resourceDTO](t, rec)
	assert.Equal(t, 0.0, res.Available)
	assert.Equal(t, 2.0, res.InUse)
}

func TestIdempotencyKeyReplaysResponse(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")
	a := env.createUser("Ann", "ann@example.com")
	p := env.createProject(owner.ID, "WEB01")

	req := createStakeholderRequest{ProjectID: p.ID, UserID: a.ID, Percentage: 40}
	first := env.do(http.MethodPost, "/stakeholders", owner.ID, req, headerIdempotencyKey, "k-1")
	requireStatus(t, first, http.StatusCreated)

	second := env.do(http.MethodPost, "/stakeholders", owner.ID, req, headerIdempotencyKey, "k-1")
	requireStatus(t, second, http.StatusCreated)
	assert.Equal(t, "true", second.Header().Get(headerReplayed))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	rec := env.do(http.MethodGet, "/projects/"+p.ID+"/stakeholders", "", nil)
	assert.Len(t, decodeBody[[]stakeholderDTO](t, rec), 1)

	// Without the key the duplicate hits the unique constraint.
	requireStatus(t, env.do(http.MethodPost, "/stakeholders", owner.ID, req), http.StatusConflict)

	// Reusing the key on another route is refused.
	rec = env.do(http.MethodPost, "/tasks", owner.ID, createTaskRequest{ProjectID: p.ID, Title: "x"}, headerIdempotencyKey, "k-1")
	requireStatus(t, rec, http.StatusConflict)
}

func TestIdempotencyKeyScopedPerActor(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")
	other := env.createUser("Otto", "otto@example.com")

	r1 := env.do(http.MethodPost, "/projects", owner.ID, createProjectRequest{ShortID: "AAA01", Name: "A"}, headerIdempotencyKey, "same")
	r2 := env.do(http.MethodPost, "/projects", other.ID, createProjectRequest{ShortID: "BBB01", Name: "B"}, headerIdempotencyKey, "same")
	requireStatus(t, r1, http.StatusCreated)
	requireStatus(t, r2, http.StatusCreated)
	assert.Empty(t, r2.Header().Get(headerReplayed))
}

func TestConcurrentStakeholderCreatesStayWithinCap(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")
	p := env.createProject(owner.ID, "WEB01")

	users := make([]userDTO, 6)
	for i := range users {
		users[i] = env.createUser(fmt.Sprintf("U%d", i), fmt.Sprintf("u%d@example.com", i))
	}

	var wg sync.WaitGroup
	codes := make([]int, len(users))
	for i, u := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = env.addStakeholder(owner.ID, p.ID, u.ID, 30).Code
		}()
	}
	wg.Wait()

	created := 0
	for _, c := range codes {
		if c == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusConflict, c)
		}
	}
	assert.Equal(t, 3, created)

	rec := env.do(http.MethodGet, "/projects/"+p.ID+"/allocation", "", nil)
	alloc := decodeBody[allocationDTO](t, rec)
	assert.LessOrEqual(t, alloc.Total, 100.0)
	assert.False(t, alloc.OverAllocated)
}

const importYAML = `
users:
  - email: olive@example.com
    name: Olive
  - email: ann@example.com
    name: Ann
project:
  short_id: IMP01
  name: Imported
  owner_email: olive@example.com
  total_budget: 5000
stakeholders:
  - user_email: ann@example.com
    percentage: 60
risks:
  - name: Scope creep
    probability: 0.7
    impact: 8
tasks:
  - ref: t1
    title: Kickoff
`

func TestImportYAML(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")

	rec := env.do(http.MethodPost, "/import", owner.ID, importYAML, "Content-Type", "application/yaml")
	requireStatus(t, rec, http.StatusCreated)
	res := decodeBody[importResultDTO](t, rec)
	assert.Equal(t, "IMP01", res.Project.ShortID)
	assert.Equal(t, 1, res.UsersCreated)
	assert.Equal(t, 1, res.StakeholderCount)
	assert.Equal(t, 1, res.RiskCount)
	assert.Equal(t, 1, res.TaskCount)

	rec = env.do(http.MethodGet, "/projects/IMP01/risks", "", nil)
	risks := decodeBody[[]riskDTO](t, rec)
	require.Len(t, risks, 1)
	assert.Equal(t, domain.RiskHigh, risks[0].Level)
}

func TestImport_SchemaErrorsListed(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("Olive", "olive@example.com")

	rec := env.do(http.MethodPost, "/import", owner.ID, `{"project":{"short_id":"IMP01","name":"x","owner_email":"olive@example.com"},"risks":[{"name":"r","probability":2,"impact":3}]}`,
		"Content-Type", "application/json")
	requireStatus(t, rec, http.StatusBadRequest)
	body := decodeBody[errorBody](t, rec)
	assert.Equal(t, "validation", body.Error.Code)
	assert.NotEmpty(t, body.Error.Problems)

	requireStatus(t, env.do(http.MethodGet, "/projects/IMP01", "", nil), http.StatusNotFound)
}
