// Package app wires repositories into services. Both transports (HTTP
// and CLI) consume the resulting Services.
package app

import (
	"database/sql"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/kv"
	"github.com/alexanderramin/taskup/internal/repository"
	"github.com/alexanderramin/taskup/internal/service"
)

// Services is the set of use-case ports exposed to transports.
type Services struct {
	Users        service.UserService
	Projects     service.ProjectService
	Stakeholders service.StakeholderService
	Risks        service.RiskService
	Tasks        service.TaskService
	Resources    service.ResourceService
	WorkPackages service.WorkPackageService
	Plans        service.ResourcePlanService
	Teams        service.TeamService
	Scopes       service.ScopeService
	Overview     service.OverviewService
	Import       service.ImportService

	// KV holds client-side preferences and idempotency records.
	KV kv.Store
}

// New builds every service on database. scale selects how risk severities
// are bucketed.
func New(database *sql.DB, scale calc.SeverityScale, observers ...service.UseCaseObserver) *Services {
	users := repository.NewSQLiteUserRepo(database)
	projects := repository.NewSQLiteProjectRepo(database)
	stakeholders := repository.NewSQLiteStakeholderRepo(database)
	risks := repository.NewSQLiteRiskRepo(database)
	tasks := repository.NewSQLiteTaskRepo(database)
	resources := repository.NewSQLiteResourceRepo(database)
	workPackages := repository.NewSQLiteWorkPackageRepo(database)
	plans := repository.NewSQLiteResourcePlanRepo(database)
	teams := repository.NewSQLiteTeamRepo(database)
	scopes := repository.NewSQLiteScopeRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	return &Services{
		Users:        service.NewUserService(users, observers...),
		Projects:     service.NewProjectService(projects, uow, observers...),
		Stakeholders: service.NewStakeholderService(stakeholders, uow, observers...),
		Risks:        service.NewRiskService(risks, uow, scale, observers...),
		Tasks:        service.NewTaskService(tasks, uow, observers...),
		Resources:    service.NewResourceService(resources, uow, observers...),
		WorkPackages: service.NewWorkPackageService(workPackages, uow, observers...),
		Plans:        service.NewResourcePlanService(projects, plans, resources, uow, observers...),
		Teams:        service.NewTeamService(teams, uow, observers...),
		Scopes:       service.NewScopeService(scopes, uow, observers...),
		Overview: service.NewOverviewService(
			projects, stakeholders, risks, tasks, resources, workPackages, scale, observers...,
		),
		Import: service.NewImportService(uow, scale, observers...),
		KV:     kv.NewSQLite(database),
	}
}
