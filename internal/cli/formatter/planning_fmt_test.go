package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/service"
)

func TestFormatResourcePlan_Unsaved(t *testing.T) {
	resources := []*domain.Resource{{ID: "r1", Name: "Crane", Type: domain.ResourceEquipment, Total: 10, Available: 0}}
	out := FormatResourcePlan(&service.ResourcePlanView{
		Plan:      &domain.ResourcePlan{ProjectID: "p1"},
		Resources: resources,
		Stats:     calc.SummarizeResources(resources),
	})
	assert.Contains(t, out, "never saved")
	assert.Contains(t, out, "No notes yet.")
	assert.Contains(t, out, "1 equipment")
	assert.Contains(t, out, "Crane")
}

func TestFormatScope_SkipsEmptySections(t *testing.T) {
	d := &domain.ScopeDocument{
		Statement: domain.ScopeStatement{EndProductScope: "Storefront", Deliverables: []string{"catalog", "checkout"}},
	}
	out := FormatScope(d, nil)
	assert.Contains(t, out, "SCOPE STATEMENT")
	assert.Contains(t, out, "catalog")
	assert.NotContains(t, out, "SCOPE MANAGEMENT")
	assert.Contains(t, out, "No work packages.")
}

func TestFormatTeamMembers_MarksLeader(t *testing.T) {
	users := map[string]*domain.User{"u1": {ID: "u1", Name: "Ann", Email: "ann@example.com"}}
	out := FormatTeamMembers([]*domain.TeamMember{
		{UserID: "u1", Role: domain.LeaderRole, IsLeader: true, JoinedAt: time.Now()},
	}, users)
	assert.Contains(t, out, "★")
	assert.Contains(t, out, "Ann")
}

func TestTeamSwatch_OutOfRange(t *testing.T) {
	assert.Contains(t, TeamSwatch(domain.TeamColors), "●")
	assert.Contains(t, TeamSwatch(-1), "●")
}
