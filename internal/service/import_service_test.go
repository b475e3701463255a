package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/taskup/internal/actor"
	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/importer"
	"github.com/alexanderramin/taskup/internal/repository"
	"github.com/alexanderramin/taskup/internal/testutil"
)

const importYAML = `
users:
  - email: ana@example.com
    name: Ana
  - email: ben@example.com
    name: Ben
project:
  short_id: ops12
  name: Operations
  owner_email: ana@example.com
  total_budget: 5000
stakeholders:
  - user_email: ben@example.com
    role: sponsor
    percentage: 40
risks:
  - name: Vendor delay
    probability: 0.8
    impact: 9
    plans:
      - strategy: transfer
        planned_actions: penalty clause
tasks:
  - ref: plan
    title: Plan
  - ref: buy
    parent_ref: plan
    title: Buy hardware
    assignee_email: ben@example.com
    cost: 1200
resources:
  - name: Rack
    type: equipment
    total: 2
work_packages:
  - code: "1"
    name: Setup
    estimated_cost: 900
`

func systemCtx() context.Context {
	return actor.AsSystem(context.Background())
}

func TestImportService_ImportYAML(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewImportService(testutil.NewTestUoW(database), calc.EditScale)

	res, err := svc.Import(systemCtx(), []byte(importYAML), importer.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "OPS12", res.Project.ShortID)
	assert.Equal(t, 2, res.UsersCreated)
	assert.Equal(t, 1, res.StakeholderCount)
	assert.Equal(t, 1, res.RiskCount)
	assert.Equal(t, 1, res.PlanCount)
	assert.Equal(t, 2, res.TaskCount)
	assert.Equal(t, 1, res.ResourceCount)
	assert.Equal(t, 1, res.WorkPackageCount)

	risks, err := repository.NewSQLiteRiskRepo(database).ListByProject(context.Background(), res.Project.ID)
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.Equal(t, domain.RiskHigh, risks[0].Level)

	tasks, err := repository.NewSQLiteTaskRepo(database).ListByProject(context.Background(), res.Project.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestImportService_ReusesExistingUsers(t *testing.T) {
	f := newFixture(t)
	svc := NewImportService(f.uow, calc.DetailScale)

	ana := &domain.User{ID: "ana-id", Email: "ana@example.com", Name: "Ana"}
	require.NoError(t, f.users.Create(context.Background(), ana))

	res, err := svc.Import(as(ana), []byte(importYAML), importer.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 1, res.UsersCreated)
	assert.Equal(t, "ana-id", res.Project.OwnerID)
}

func TestImportService_ActorMustOwnImportedProject(t *testing.T) {
	f := newFixture(t)
	svc := NewImportService(f.uow, calc.DetailScale)

	_, err := svc.Import(f.asOwner(), []byte(importYAML), importer.FormatYAML)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Import(context.Background(), []byte(importYAML), importer.FormatYAML)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.users.GetByEmail(context.Background(), "ana@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound, "users created before the check are rolled back")
}

func TestImportService_ValidationFailuresPersistNothing(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewImportService(testutil.NewTestUoW(database), calc.DetailScale)

	doc, err := importer.Parse([]byte(importYAML), importer.FormatYAML)
	require.NoError(t, err)
	doc.Stakeholders = append(doc.Stakeholders, importer.StakeholderImport{UserEmail: "ana@example.com", Percentage: 70})

	_, err = svc.ImportDocument(systemCtx(), doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, calc.ErrExceedsAvailable)

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Zero(t, count)
}

func TestImportService_SchemaErrorIsValidation(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewImportService(testutil.NewTestUoW(database), calc.DetailScale)

	_, err := svc.Import(systemCtx(), []byte(`{"project": {"name": "no id"}}`), importer.FormatJSON)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var se *importer.SchemaError
	assert.True(t, errors.As(err, &se))
}

func TestImportService_RollbackOnWriteFailure(t *testing.T) {
	// Writes: 2 users, project, stakeholder, risk, plan, 2 tasks, resource, work package.
	for _, failOn := range []int32{1, 3, 5, 8, 10} {
		database := testutil.NewTestDB(t)
		uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: failOn, Err: errors.New("injected write failure")}
		svc := NewImportService(uow, calc.DetailScale)

		_, err := svc.Import(systemCtx(), []byte(importYAML), importer.FormatYAML)
		require.Error(t, err, "fail on %d", failOn)
		assert.Contains(t, err.Error(), "injected write failure")

		for _, table := range []string{"users", "projects", "stakeholders", "risks", "risk_response_plans", "tasks", "resources", "work_packages"} {
			var count int
			require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&count))
			assert.Zero(t, count, "%s after failing write %d", table, failOn)
		}
	}
}

func TestImportService_ImportFile(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewImportService(testutil.NewTestUoW(database), calc.DetailScale)

	path := filepath.Join(t.TempDir(), "ops.yaml")
	require.NoError(t, os.WriteFile(path, []byte(importYAML), 0o644))

	res, err := svc.ImportFile(systemCtx(), path)
	require.NoError(t, err)
	assert.Equal(t, "Operations", res.Project.Name)

	_, err = svc.ImportFile(systemCtx(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
