package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
)

type SQLiteStakeholderRepo struct {
	db db.DBTX
}

func NewSQLiteStakeholderRepo(conn db.DBTX) *SQLiteStakeholderRepo {
	return &SQLiteStakeholderRepo{db: conn}
}

const stakeholderColumns = `id, project_id, user_id, role, percentage, created_at, updated_at`

// CreateWithinCap inserts s only if the project's total plus s.Percentage
// stays within maxTotal. The check and the write are one statement.
func (r *SQLiteStakeholderRepo) CreateWithinCap(ctx context.Context, s *domain.Stakeholder, maxTotal float64) (bool, error) {
	query := `INSERT INTO stakeholders (` + stakeholderColumns + `)
		SELECT ?, ?, ?, ?, ?, ?, ?
		WHERE (SELECT COALESCE(SUM(percentage), 0) FROM stakeholders WHERE project_id = ?) + ? <= ?`
	res, err := r.db.ExecContext(ctx, query,
		s.ID, s.ProjectID, s.UserID, s.Role, s.Percentage,
		formatTimestamp(s.CreatedAt), formatTimestamp(s.UpdatedAt),
		s.ProjectID, s.Percentage, maxTotal,
	)
	if err != nil {
		return false, classifyWriteErr(err, "inserting stakeholder")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n == 1, nil
}

// UpdateWithinCap rewrites role and percentage, excluding the row's own
// current share from the cap check.
func (r *SQLiteStakeholderRepo) UpdateWithinCap(ctx context.Context, s *domain.Stakeholder, maxTotal float64) (bool, error) {
	query := `UPDATE stakeholders SET role = ?, percentage = ?, updated_at = ?
		WHERE id = ?
		AND (SELECT COALESCE(SUM(percentage), 0) FROM stakeholders WHERE project_id = ? AND id != ?) + ? <= ?`
	res, err := r.db.ExecContext(ctx, query,
		s.Role, s.Percentage, formatTimestamp(s.UpdatedAt),
		s.ID,
		s.ProjectID, s.ID, s.Percentage, maxTotal,
	)
	if err != nil {
		return false, classifyWriteErr(err, "updating stakeholder")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *SQLiteStakeholderRepo) GetByID(ctx context.Context, id string) (*domain.Stakeholder, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+stakeholderColumns+` FROM stakeholders WHERE id = ?`, id)
	return scanStakeholder(row, id)
}

func (r *SQLiteStakeholderRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Stakeholder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+stakeholderColumns+` FROM stakeholders WHERE project_id = ? ORDER BY percentage DESC, created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing stakeholders: %w", err)
	}
	defer rows.Close()

	var out []*domain.Stakeholder
	for rows.Next() {
		s, err := scanStakeholder(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stakeholders: %w", err)
	}
	return out, nil
}

// SumPercentage totals a project's shares; excludeID (may be empty) is left out.
func (r *SQLiteStakeholderRepo) SumPercentage(ctx context.Context, projectID, excludeID string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(percentage), 0) FROM stakeholders WHERE project_id = ? AND id != ?`,
		projectID, excludeID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing stakeholder percentages: %w", err)
	}
	return total, nil
}

func (r *SQLiteStakeholderRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stakeholders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting stakeholder: %w", err)
	}
	return affectedOne(res, domain.NotFoundf("stakeholder %s", id))
}

func scanStakeholder(s scanner, key string) (*domain.Stakeholder, error) {
	var st domain.Stakeholder
	var createdAt, updatedAt string
	err := s.Scan(&st.ID, &st.ProjectID, &st.UserID, &st.Role, &st.Percentage, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("stakeholder %s", key)
		}
		return nil, fmt.Errorf("scanning stakeholder: %w", err)
	}
	if st.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if st.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &st, nil
}
