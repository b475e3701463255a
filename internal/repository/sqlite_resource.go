package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
)

type SQLiteResourceRepo struct {
	db db.DBTX
}

func NewSQLiteResourceRepo(conn db.DBTX) *SQLiteResourceRepo {
	return &SQLiteResourceRepo{db: conn}
}

const resourceColumns = `id, project_id, name, type, unit, description, total, available, created_at, updated_at`

func (r *SQLiteResourceRepo) Create(ctx context.Context, res *domain.Resource) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO resources (`+resourceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.ProjectID, res.Name, string(res.Type), res.Unit, res.Description,
		res.Total, res.Available, formatTimestamp(res.CreatedAt), formatTimestamp(res.UpdatedAt),
	)
	if err != nil {
		return classifyWriteErr(err, "inserting resource")
	}
	return nil
}

func (r *SQLiteResourceRepo) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id)
	return scanResource(row, id)
}

func (r *SQLiteResourceRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Resource, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE project_id = ? ORDER BY type, name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	defer rows.Close()

	var out []*domain.Resource
	for rows.Next() {
		res, err := scanResource(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resources: %w", err)
	}
	return out, nil
}

func (r *SQLiteResourceRepo) Update(ctx context.Context, res *domain.Resource) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE resources SET name = ?, type = ?, unit = ?, description = ?, total = ?, available = ?, updated_at = ?
		WHERE id = ?`,
		res.Name, string(res.Type), res.Unit, res.Description, res.Total, res.Available,
		formatTimestamp(res.UpdatedAt), res.ID,
	)
	if err != nil {
		return classifyWriteErr(err, "updating resource")
	}
	return affectedOne(result, domain.NotFoundf("resource %s", res.ID))
}

func (r *SQLiteResourceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting resource: %w", err)
	}
	return affectedOne(res, domain.NotFoundf("resource %s", id))
}

func scanResource(s scanner, key string) (*domain.Resource, error) {
	var res domain.Resource
	var typ, createdAt, updatedAt string
	err := s.Scan(&res.ID, &res.ProjectID, &res.Name, &typ, &res.Unit, &res.Description,
		&res.Total, &res.Available, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("resource %s", key)
		}
		return nil, fmt.Errorf("scanning resource: %w", err)
	}
	res.Type = domain.ResourceType(typ)
	if res.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if res.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &res, nil
}

type SQLiteWorkPackageRepo struct {
	db db.DBTX
}

func NewSQLiteWorkPackageRepo(conn db.DBTX) *SQLiteWorkPackageRepo {
	return &SQLiteWorkPackageRepo{db: conn}
}

const workPackageColumns = `id, project_id, code, name, estimated_cost, estimated_days, created_at`

func (r *SQLiteWorkPackageRepo) Create(ctx context.Context, w *domain.WorkPackage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO work_packages (`+workPackageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.ProjectID, w.Code, w.Name, w.EstimatedCost, w.EstimatedDays, formatTimestamp(w.CreatedAt))
	if err != nil {
		return classifyWriteErr(err, "inserting work package")
	}
	return nil
}

func (r *SQLiteWorkPackageRepo) GetByID(ctx context.Context, id string) (*domain.WorkPackage, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+workPackageColumns+` FROM work_packages WHERE id = ?`, id)
	return scanWorkPackage(row, id)
}

func (r *SQLiteWorkPackageRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.WorkPackage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+workPackageColumns+` FROM work_packages WHERE project_id = ? ORDER BY code, created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing work packages: %w", err)
	}
	defer rows.Close()

	var out []*domain.WorkPackage
	for rows.Next() {
		w, err := scanWorkPackage(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work packages: %w", err)
	}
	return out, nil
}

func (r *SQLiteWorkPackageRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM work_packages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting work package: %w", err)
	}
	return affectedOne(res, domain.NotFoundf("work package %s", id))
}

func scanWorkPackage(s scanner, key string) (*domain.WorkPackage, error) {
	var w domain.WorkPackage
	var createdAt string
	err := s.Scan(&w.ID, &w.ProjectID, &w.Code, &w.Name, &w.EstimatedCost, &w.EstimatedDays, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("work package %s", key)
		}
		return nil, fmt.Errorf("scanning work package: %w", err)
	}
	if w.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &w, nil
}
