package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
)

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

const projectColumns = `id, short_id, name, description, owner_id, status, deadline, total_budget, archived_at, created_at, updated_at`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.ShortID,
		p.Name,
		p.Description,
		p.OwnerID,
		string(p.Status),
		nullableTimeToString(p.Deadline, dateLayout),
		p.TotalBudget,
		nullableTimeToString(p.ArchivedAt, timestampLayout),
		formatTimestamp(p.CreatedAt),
		formatTimestamp(p.UpdatedAt),
	)
	if err != nil {
		return classifyWriteErr(err, "inserting project")
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row, id)
}

func (r *SQLiteProjectRepo) GetByShortID(ctx context.Context, shortID string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE UPPER(short_id) = UPPER(?)`, shortID)
	return scanProject(row, shortID)
}

func (r *SQLiteProjectRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	if !includeArchived {
		query += ` WHERE archived_at IS NULL`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows, "")
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	query := `UPDATE projects SET short_id = ?, name = ?, description = ?, status = ?, deadline = ?, total_budget = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.ShortID,
		p.Name,
		p.Description,
		string(p.Status),
		nullableTimeToString(p.Deadline, dateLayout),
		p.TotalBudget,
		formatTimestamp(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return classifyWriteErr(err, "updating project")
	}
	return affectedOne(res, domain.NotFoundf("project %s", p.ID))
}

func (r *SQLiteProjectRepo) Archive(ctx context.Context, id string) error {
	now := nowUTC()
	query := `UPDATE projects SET status = 'archived', archived_at = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, now, now, id)
	if err != nil {
		return fmt.Errorf("archiving project: %w", err)
	}
	return affectedOne(res, domain.NotFoundf("project %s", id))
}

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return affectedOne(res, domain.NotFoundf("project %s", id))
}

func scanProject(s scanner, key string) (*domain.Project, error) {
	var p domain.Project
	var statusStr, createdAtStr, updatedAtStr string
	var deadlineStr, archivedAtStr sql.NullString

	err := s.Scan(
		&p.ID, &p.ShortID, &p.Name, &p.Description, &p.OwnerID,
		&statusStr, &deadlineStr, &p.TotalBudget, &archivedAtStr,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("project %s", key)
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	p.Status = domain.ProjectStatus(statusStr)
	p.Deadline = parseNullableTime(deadlineStr, dateLayout)
	p.ArchivedAt = parseNullableTime(archivedAtStr, timestampLayout)

	if p.CreatedAt, err = parseTimestamp(createdAtStr, "created_at"); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTimestamp(updatedAtStr, "updated_at"); err != nil {
		return nil, err
	}
	return &p, nil
}
