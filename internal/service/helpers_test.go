package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/taskup/internal/actor"
	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/repository"
	"github.com/alexanderramin/taskup/internal/testutil"
)

type fixture struct {
	db           *sql.DB
	uow          db.UnitOfWork
	users        *repository.SQLiteUserRepo
	projects     *repository.SQLiteProjectRepo
	stakeholders *repository.SQLiteStakeholderRepo
	risks        *repository.SQLiteRiskRepo
	tasks        *repository.SQLiteTaskRepo
	resources    *repository.SQLiteResourceRepo
	workPackages *repository.SQLiteWorkPackageRepo
	plans        *repository.SQLiteResourcePlanRepo
	teams        *repository.SQLiteTeamRepo
	scopes       *repository.SQLiteScopeRepo

	owner   *domain.User
	project *domain.Project
}

func newFixtureWithDB(t *testing.T, database *sql.DB) *fixture {
	t.Helper()
	f := &fixture{
		db:           database,
		uow:          testutil.NewTestUoW(database),
		users:        repository.NewSQLiteUserRepo(database),
		projects:     repository.NewSQLiteProjectRepo(database),
		stakeholders: repository.NewSQLiteStakeholderRepo(database),
		risks:        repository.NewSQLiteRiskRepo(database),
		tasks:        repository.NewSQLiteTaskRepo(database),
		resources:    repository.NewSQLiteResourceRepo(database),
		workPackages: repository.NewSQLiteWorkPackageRepo(database),
		plans:        repository.NewSQLiteResourcePlanRepo(database),
		teams:        repository.NewSQLiteTeamRepo(database),
		scopes:       repository.NewSQLiteScopeRepo(database),
	}
	f.owner = f.addUser(t, "Olive Owner")
	f.project = testutil.NewTestProject(f.owner.ID, "Website", testutil.WithShortID("WEB01"), testutil.WithBudget(1000))
	require.NoError(t, f.projects.Create(context.Background(), f.project))
	return f
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithDB(t, testutil.NewTestDB(t))
}

func (f *fixture) addUser(t *testing.T, name string) *domain.User {
	t.Helper()
	u := testutil.NewTestUser(name)
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

// addStake inserts a stakeholder row directly, bypassing the service.
func (f *fixture) addStake(t *testing.T, u *domain.User, pct float64) *domain.Stakeholder {
	t.Helper()
	st := testutil.NewTestStakeholder(f.project.ID, u.ID, pct)
	ok, err := f.stakeholders.CreateWithinCap(context.Background(), st, calc.CapWithTolerance())
	require.NoError(t, err)
	require.True(t, ok)
	return st
}

func (f *fixture) asOwner() context.Context {
	return as(f.owner)
}

func as(u *domain.User) context.Context {
	return actor.WithUserID(context.Background(), u.ID)
}

func (f *fixture) stakeholderService() StakeholderService {
	return NewStakeholderService(f.stakeholders, f.uow)
}

func (f *fixture) riskService(scale calc.SeverityScale) RiskService {
	return NewRiskService(f.risks, f.uow, scale)
}

func (f *fixture) taskService() TaskService {
	return NewTaskService(f.tasks, f.uow)
}

func ptr[T any](v T) *T { return &v }
