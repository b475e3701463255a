package cli

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/taskup/internal/actor"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/teatest"
)

func startDashboard(t *testing.T, a *App) (*teatest.Driver, *dashboardModel) {
	t.Helper()
	m := newDashboardModel(context.Background(), a)
	return teatest.New(t, m).Start(), m
}

func seedTwoProjects(t *testing.T, a *App) (first, second *domain.Project) {
	t.Helper()
	ctx := actor.AsSystem(context.Background())
	owner := &domain.User{Email: "olive@example.com", Name: "Olive"}
	require.NoError(t, a.Users.Create(ctx, owner))
	first = &domain.Project{ShortID: "ONE01", Name: "First", OwnerID: owner.ID, TotalBudget: 100}
	second = &domain.Project{ShortID: "TWO01", Name: "Second", OwnerID: owner.ID, TotalBudget: 100}
	require.NoError(t, a.Projects.Create(ctx, first))
	require.NoError(t, a.Projects.Create(ctx, second))
	return first, second
}

func TestDashboard_LoadsAndNavigates(t *testing.T) {
	a := testApp(t)
	first, second := seedTwoProjects(t, a)

	d, m := startDashboard(t, a)

	require.Len(t, m.projects, 2)
	assert.Equal(t, 0, m.cursor)
	require.NotNil(t, m.overview)
	assert.Equal(t, first.ID, m.overview.Project.ID)
	assert.Contains(t, d.View(), "ONE01")
	assert.Contains(t, d.View(), "PROJECTS")

	d.Press("down")
	assert.Equal(t, 1, m.cursor)
	require.NotNil(t, m.overview)
	assert.Equal(t, second.ID, m.overview.Project.ID)

	// Already at the bottom.
	d.Press("down")
	assert.Equal(t, 1, m.cursor)
	assert.Equal(t, second.ID, m.overview.Project.ID)

	d.Press("k")
	assert.Equal(t, 0, m.cursor)
}

func TestDashboard_RemembersSelection(t *testing.T) {
	a := testApp(t)
	_, second := seedTwoProjects(t, a)

	d, _ := startDashboard(t, a)
	d.Press("j", "q")
	assert.True(t, d.Quit())

	stored, err := a.KV.Get(context.Background(), lastProjectKey)
	require.NoError(t, err)
	assert.Equal(t, second.ID, string(stored))

	_, reopened := startDashboard(t, a)
	assert.Equal(t, 1, reopened.cursor)
	require.NotNil(t, reopened.overview)
	assert.Equal(t, second.ID, reopened.overview.Project.ID)
}

func TestDashboard_DropsStaleOverview(t *testing.T) {
	a := testApp(t)
	first, _ := seedTwoProjects(t, a)

	m := newDashboardModel(context.Background(), a)
	d := teatest.New(t, m).Start()

	// Move without running the overview load, then let the answer for the
	// previously selected project arrive late.
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	d.Send(overviewLoadedMsg{projectID: first.ID})
	assert.Nil(t, m.overview)
}

func TestDashboard_Resize(t *testing.T) {
	a := testApp(t)
	seedTwoProjects(t, a)

	d, m := startDashboard(t, a)
	d.Resize(140, 40)
	assert.Equal(t, 140, m.width)
	assert.Contains(t, d.View(), "Allocated")
}

func TestDashboard_Empty(t *testing.T) {
	a := testApp(t)
	d, _ := startDashboard(t, a)
	assert.Contains(t, d.View(), "No projects yet")
}
