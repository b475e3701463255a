package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/taskup/internal/calc"
	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
	"github.com/alexanderramin/taskup/internal/repository"
)

type taskService struct {
	tasks    repository.TaskRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewTaskService(tasks repository.TaskRepo, uow db.UnitOfWork, observers ...UseCaseObserver) TaskService {
	return &taskService{tasks: tasks, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *taskService) Create(ctx context.Context, t *domain.Task) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "create-task", startedAt, map[string]any{"project_id": t.ProjectID}, &err)

	t.Title = strings.TrimSpace(t.Title)
	if t.Status == "" {
		t.Status = domain.TaskNotStarted
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatedAt = startedAt
	t.SetStatus(t.Status, startedAt)
	if err = t.Validate(); err != nil {
		return err
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := authorizeProject(ctx, tx, t.ProjectID, membersOnly); err != nil {
			return err
		}
		repo := repository.NewSQLiteTaskRepo(tx)
		if err := checkTaskLinks(ctx, tx, repo, t); err != nil {
			return err
		}
		return repo.Create(ctx, t)
	})
}

// checkTaskLinks verifies the parent lives in the same project without
// forming a cycle, and that the assignee exists.
func checkTaskLinks(ctx context.Context, tx db.DBTX, repo *repository.SQLiteTaskRepo, t *domain.Task) error {
	if t.AssigneeID != nil {
		if _, err := repository.NewSQLiteUserRepo(tx).GetByID(ctx, *t.AssigneeID); err != nil {
			return err
		}
	}
	if t.ParentTaskID == nil {
		return nil
	}

	seen := map[string]bool{t.ID: true}
	next := *t.ParentTaskID
	for next != "" {
		if seen[next] {
			return domain.Invalidf("task %s cannot be nested under its own subtask", t.ID)
		}
		seen[next] = true
		parent, err := repo.GetByID(ctx, next)
		if err != nil {
			return err
		}
		if parent.ProjectID != t.ProjectID {
			return domain.Invalidf("parent task belongs to another project")
		}
		next = ""
		if parent.ParentTaskID != nil {
			next = *parent.ParentTaskID
		}
	}
	return nil
}

func (s *taskService) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *taskService) List(ctx context.Context, projectID string, q TaskQuery) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if q.Filter.Now.IsZero() {
		q.Filter.Now = time.Now().UTC()
	}
	tasks = calc.FilterTasks(tasks, q.Filter)
	if q.Sort != "" {
		calc.SortTasks(tasks, q.Sort, q.Desc)
	}
	return tasks, nil
}

func (s *taskService) Update(ctx context.Context, id string, patch TaskPatch) (updated *domain.Task, err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "update-task", startedAt, map[string]any{"task_id": id}, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteTaskRepo(tx)
		t, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := authorizeProject(ctx, tx, t.ProjectID, membersOnly); err != nil {
			return err
		}

		now := time.Now().UTC()
		t.Title = strings.TrimSpace(domain.StrFromPtr(t.Title, patch.Title))
		t.Description = domain.StrFromPtr(t.Description, patch.Description)
		t.Cost = domain.Float64FromPtr(t.Cost, patch.Cost)
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.ParentTaskID != nil {
			t.ParentTaskID = optionalID(*patch.ParentTaskID)
		}
		if patch.AssigneeID != nil {
			t.AssigneeID = optionalID(*patch.AssigneeID)
		}
		switch {
		case patch.ClearDeadline:
			t.Deadline = nil
		case patch.Deadline != nil:
			d := *patch.Deadline
			t.Deadline = &d
		}
		status := t.Status
		if patch.Status != nil {
			status = *patch.Status
		}
		t.SetStatus(status, now)

		if err := t.Validate(); err != nil {
			return err
		}
		if err := checkTaskLinks(ctx, tx, repo, t); err != nil {
			return err
		}
		if err := repo.Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *taskService) Complete(ctx context.Context, id string) (*domain.Task, error) {
	done := domain.TaskCompleted
	return s.Update(ctx, id, TaskPatch{Status: &done})
}

// Delete removes the task; subtasks go with it.
func (s *taskService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer observe(ctx, s.observer, "delete-task", startedAt, map[string]any{"task_id": id}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteTaskRepo(tx)
		t, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := authorizeProject(ctx, tx, t.ProjectID, membersOnly); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}

func optionalID(id string) *string {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return &id
}
