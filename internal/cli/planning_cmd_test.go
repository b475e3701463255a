package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/taskup/internal/domain"
)

func TestTeamCommands(t *testing.T) {
	a := testApp(t)
	_, ann := seedProject(t, a)
	ctx := context.Background()

	out := mustExecute(t, a, "team", "add", "--project", "WEB01", "--name", "Design", "--color", "2")
	assert.Contains(t, out, "Created team")

	_, err := executeCmd(t, a, "team", "add", "--project", "WEB01", "--name", "Bad", "--color", "9")
	assert.ErrorIs(t, err, domain.ErrValidation)

	p, err := a.Projects.Resolve(ctx, "WEB01")
	require.NoError(t, err)
	teams, err := a.Teams.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	teamID := teams[0].ID

	mustExecute(t, a, "team", "member", "add", teamID, ann.Email, "--role", "Researcher")
	out = mustExecute(t, a, "team", "member", "list", teamID)
	assert.Contains(t, out, "Olive", "the owner leads the team")
	assert.Contains(t, out, "Ann")
	assert.Contains(t, out, "Researcher")

	mustExecute(t, a, "team", "update", teamID, "--name", "UX")
	out = mustExecute(t, a, "team", "list", "--project", "WEB01")
	assert.Contains(t, out, "UX")

	mustExecute(t, a, "team", "member", "remove", teamID, ann.Email)
	out = mustExecute(t, a, "team", "member", "list", teamID)
	assert.NotContains(t, out, "Ann")

	mustExecute(t, a, "team", "remove", teamID)
	out = mustExecute(t, a, "team", "list", "--project", "WEB01")
	assert.Contains(t, out, "No teams.")
}

func TestTeamAdd_NonOwnerForbidden(t *testing.T) {
	a := testApp(t)
	_, ann := seedProject(t, a)

	_, err := executeCmd(t, a, "--as", ann.Email, "team", "add", "--project", "WEB01", "--name", "Rogue")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestResourcePlanCommand(t *testing.T) {
	a := testApp(t)
	seedProject(t, a)

	mustExecute(t, a, "resource", "add", "--project", "WEB01", "--name", "Crane", "--type", "equipment", "--total", "10", "--available", "1")
	out := mustExecute(t, a, "resource", "plan", "--project", "WEB01")
	assert.Contains(t, out, "never saved")
	assert.Contains(t, out, "Crane")

	out = mustExecute(t, a, "resource", "plan", "--project", "WEB01", "--notes", "book a second crane")
	assert.Contains(t, out, "book a second crane")
	assert.NotContains(t, out, "never saved")
}

const scopeFileYAML = `scope_management:
  definition_method: workshops
scope_statement:
  end_product_scope: Public storefront
  deliverables:
    - catalog
    - checkout
baseline_reference: WBS v1
`

func TestScopeCommands(t *testing.T) {
	a := testApp(t)
	seedProject(t, a)
	dir := t.TempDir()

	out := mustExecute(t, a, "scope", "show", "--project", "WEB01")
	assert.Contains(t, out, "No scope document")

	path := filepath.Join(dir, "scope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scopeFileYAML), 0o644))
	out = mustExecute(t, a, "scope", "set", "--project", "WEB01", "--file", path)
	assert.Contains(t, out, "Created scope document")

	mustExecute(t, a, "wp", "add", "--project", "WEB01", "--code", "1.1", "--name", "Catalog build")
	out = mustExecute(t, a, "scope", "show", "--project", "WEB01")
	assert.Contains(t, out, "Public storefront")
	assert.Contains(t, out, "checkout")
	assert.Contains(t, out, "Catalog build")

	jsonPath := filepath.Join(dir, "scope.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"scope_statement": {"end_product_scope": "Admin console"}}`), 0o644))
	out = mustExecute(t, a, "scope", "set", "--project", "WEB01", "--file", jsonPath)
	assert.Contains(t, out, "Updated scope document")
	out = mustExecute(t, a, "scope", "show", "--project", "WEB01")
	assert.Contains(t, out, "Admin console")
	assert.NotContains(t, out, "workshops")

	mustExecute(t, a, "scope", "remove", "--project", "WEB01")
	_, err := executeCmd(t, a, "scope", "remove", "--project", "WEB01")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScopeSet_RequiresEndProduct(t *testing.T) {
	a := testApp(t)
	seedProject(t, a)

	path := filepath.Join(t.TempDir(), "scope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("baseline_reference: WBS v1\n"), 0o644))
	_, err := executeCmd(t, a, "scope", "set", "--project", "WEB01", "--file", path)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
