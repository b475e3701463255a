package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
)

type SQLiteTaskRepo struct {
	db db.DBTX
}

func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

const taskColumns = `id, project_id, parent_task_id, title, description, assignee_id, cost, status, priority,
	deadline, completed_at, created_at, updated_at`

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.ProjectID, nullableString(t.ParentTaskID), t.Title, t.Description,
		nullableString(t.AssigneeID), t.Cost, string(t.Status), string(t.Priority),
		nullableTimeToString(t.Deadline, dateLayout),
		nullableTimeToString(t.CompletedAt, timestampLayout),
		formatTimestamp(t.CreatedAt), formatTimestamp(t.UpdatedAt),
	)
	if err != nil {
		return classifyWriteErr(err, "inserting task")
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row, id)
}

// ListByProject returns every task of the project, subtasks included, in
// creation order. Filtering and sorting happen in calc.
func (r *SQLiteTaskRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var out []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return out, nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `UPDATE tasks SET parent_task_id = ?, title = ?, description = ?, assignee_id = ?, cost = ?,
		status = ?, priority = ?, deadline = ?, completed_at = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableString(t.ParentTaskID), t.Title, t.Description, nullableString(t.AssigneeID), t.Cost,
		string(t.Status), string(t.Priority),
		nullableTimeToString(t.Deadline, dateLayout),
		nullableTimeToString(t.CompletedAt, timestampLayout),
		formatTimestamp(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return classifyWriteErr(err, "updating task")
	}
	return affectedOne(res, domain.NotFoundf("task %s", t.ID))
}

// Delete removes the task; subtasks go with it through ON DELETE CASCADE.
func (r *SQLiteTaskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return affectedOne(res, domain.NotFoundf("task %s", id))
}

func scanTask(s scanner, key string) (*domain.Task, error) {
	var t domain.Task
	var status, priority, createdAt, updatedAt string
	var parentID, assigneeID, deadline, completedAt sql.NullString

	err := s.Scan(&t.ID, &t.ProjectID, &parentID, &t.Title, &t.Description, &assigneeID,
		&t.Cost, &status, &priority, &deadline, &completedAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("task %s", key)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	t.ParentTaskID = stringPtr(parentID)
	t.AssigneeID = stringPtr(assigneeID)
	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	t.Deadline = parseNullableTime(deadline, dateLayout)
	t.CompletedAt = parseNullableTime(completedAt, timestampLayout)
	if t.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &t, nil
}
