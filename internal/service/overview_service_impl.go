package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/repository"
)

type overviewService struct {
	projects     repository.ProjectRepo
	stakeholders repository.StakeholderRepo
	risks        repository.RiskRepo
	tasks        repository.TaskRepo
	resources    repository.ResourceRepo
	workPackages repository.WorkPackageRepo
	scale        calc.SeverityScale
	observer     UseCaseObserver
}

func NewOverviewService(
	projects repository.ProjectRepo,
	stakeholders repository.StakeholderRepo,
	risks repository.RiskRepo,
	tasks repository.TaskRepo,
	resources repository.ResourceRepo,
	workPackages repository.WorkPackageRepo,
	scale calc.SeverityScale,
	observers ...UseCaseObserver,
) OverviewService {
	return &overviewService{
		projects:     projects,
		stakeholders: stakeholders,
		risks:        risks,
		tasks:        tasks,
		resources:    resources,
		workPackages: workPackages,
		scale:        scale,
		observer:     useCaseObserverOrNoop(observers),
	}
}

// Get loads every part of the overview concurrently. The first failure
// cancels the remaining reads.
func (s *overviewService) Get(ctx context.Context, projectID string) (ov *ProjectOverview, err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "project-overview", startedAt, map[string]any{"project_id": projectID}, &err)

	var (
		project      *domain.Project
		stakeholders []*domain.Stakeholder
		risks        []*domain.Risk
		tasks        []*domain.Task
		resources    []*domain.Resource
		workPackages []*domain.WorkPackage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		project, err = s.projects.GetByID(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		stakeholders, err = s.stakeholders.ListByProject(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		risks, err = s.risks.ListByProject(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		tasks, err = s.tasks.ListByProject(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		resources, err = s.resources.ListByProject(gctx, projectID)
		return err
	})
	g.Go(func() (err error) {
		workPackages, err = s.workPackages.ListByProject(gctx, projectID)
		return err
	})
	if err = g.Wait(); err != nil {
		return nil, fmt.Errorf("loading project overview: %w", err)
	}

	taskCosts := make([]float64, len(tasks))
	for i, t := range tasks {
		taskCosts[i] = t.Cost
	}
	wpCosts := make([]float64, len(workPackages))
	for i, w := range workPackages {
		wpCosts[i] = w.EstimatedCost
	}

	return &ProjectOverview{
		Project:          project,
		Allocation:       calc.StakeholderAllocation(stakeholders),
		Stakeholders:     stakeholders,
		Risks:            calc.SummarizeRisks(risks, s.scale),
		Progress:         calc.TaskProgress(tasks),
		Budget:           calc.Budget(project.TotalBudget, taskCosts, wpCosts),
		Resources:        resources,
		WorkPackageCount: len(workPackages),
		SeverityScale:    s.scale.Name,
	}, nil
}
