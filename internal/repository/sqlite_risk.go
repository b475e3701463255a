package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
)

type SQLiteRiskRepo struct {
	db db.DBTX
}

func NewSQLiteRiskRepo(conn db.DBTX) *SQLiteRiskRepo {
	return &SQLiteRiskRepo{db: conn}
}

const riskColumns = `id, project_id, name, description, category, probability, impact, severity, level,
	owner_id, status, identified_at, updated_at, deleted_at`

func (r *SQLiteRiskRepo) Create(ctx context.Context, risk *domain.Risk) error {
	query := `INSERT INTO risks (` + riskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`
	_, err := r.db.ExecContext(ctx, query,
		risk.ID, risk.ProjectID, risk.Name, risk.Description, risk.Category,
		risk.Probability, risk.Impact, risk.Severity, string(risk.Level),
		nullableString(&risk.OwnerID), string(risk.Status),
		formatTimestamp(risk.IdentifiedAt), formatTimestamp(risk.UpdatedAt),
	)
	if err != nil {
		return classifyWriteErr(err, "inserting risk")
	}
	return nil
}

func (r *SQLiteRiskRepo) GetByID(ctx context.Context, id string) (*domain.Risk, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+riskColumns+` FROM risks WHERE id = ? AND deleted_at IS NULL`, id)
	return scanRisk(row, id)
}

func (r *SQLiteRiskRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Risk, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+riskColumns+` FROM risks WHERE project_id = ? AND deleted_at IS NULL
		ORDER BY severity DESC, identified_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing risks: %w", err)
	}
	defer rows.Close()

	var out []*domain.Risk
	for rows.Next() {
		risk, err := scanRisk(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, risk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating risks: %w", err)
	}
	return out, nil
}

func (r *SQLiteRiskRepo) Update(ctx context.Context, risk *domain.Risk) error {
	query := `UPDATE risks SET name = ?, description = ?, category = ?, probability = ?, impact = ?,
		severity = ?, level = ?, owner_id = ?, status = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query,
		risk.Name, risk.Description, risk.Category, risk.Probability, risk.Impact,
		risk.Severity, string(risk.Level), nullableString(&risk.OwnerID), string(risk.Status),
		formatTimestamp(risk.UpdatedAt), risk.ID,
	)
	if err != nil {
		return classifyWriteErr(err, "updating risk")
	}
	return affectedOne(res, domain.NotFoundf("risk %s", risk.ID))
}

// SoftDelete marks the risk and its response plans deleted. Callers run it
// inside a UnitOfWork so both statements commit together.
func (r *SQLiteRiskRepo) SoftDelete(ctx context.Context, id string) error {
	now := nowUTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE risks SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, now, now, id)
	if err != nil {
		return fmt.Errorf("deleting risk: %w", err)
	}
	if err := affectedOne(res, domain.NotFoundf("risk %s", id)); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE risk_response_plans SET deleted_at = ? WHERE risk_id = ? AND deleted_at IS NULL`, now, id); err != nil {
		return fmt.Errorf("deleting risk response plans: %w", err)
	}
	return nil
}

const planColumns = `id, risk_id, strategy, description, planned_actions, owner_id, status, created_at, deleted_at`

func (r *SQLiteRiskRepo) CreatePlan(ctx context.Context, p *domain.RiskResponsePlan) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO risk_response_plans (`+planColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		p.ID, p.RiskID, string(p.Strategy), p.Description, p.PlannedActions,
		nullableString(&p.OwnerID), string(p.Status), formatTimestamp(p.CreatedAt),
	)
	if err != nil {
		return classifyWriteErr(err, "inserting risk response plan")
	}
	return nil
}

func (r *SQLiteRiskRepo) GetPlan(ctx context.Context, id string) (*domain.RiskResponsePlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM risk_response_plans WHERE id = ? AND deleted_at IS NULL`, id)
	return scanPlan(row, id)
}

func (r *SQLiteRiskRepo) ListPlans(ctx context.Context, riskID string) ([]*domain.RiskResponsePlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM risk_response_plans WHERE risk_id = ? AND deleted_at IS NULL ORDER BY created_at`, riskID)
	if err != nil {
		return nil, fmt.Errorf("listing risk response plans: %w", err)
	}
	defer rows.Close()

	var out []*domain.RiskResponsePlan
	for rows.Next() {
		p, err := scanPlan(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating risk response plans: %w", err)
	}
	return out, nil
}

func (r *SQLiteRiskRepo) SoftDeletePlan(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE risk_response_plans SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("deleting risk response plan: %w", err)
	}
	return affectedOne(res, domain.NotFoundf("response plan %s", id))
}

func scanRisk(s scanner, key string) (*domain.Risk, error) {
	var risk domain.Risk
	var level, status, identifiedAt, updatedAt string
	var ownerID, deletedAt sql.NullString

	err := s.Scan(&risk.ID, &risk.ProjectID, &risk.Name, &risk.Description, &risk.Category,
		&risk.Probability, &risk.Impact, &risk.Severity, &level,
		&ownerID, &status, &identifiedAt, &updatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("risk %s", key)
		}
		return nil, fmt.Errorf("scanning risk: %w", err)
	}
	risk.Level = domain.RiskLevel(level)
	risk.Status = domain.RiskStatus(status)
	risk.OwnerID = ownerID.String
	risk.DeletedAt = parseNullableTime(deletedAt, timestampLayout)
	if risk.IdentifiedAt, err = parseTimestamp(identifiedAt, "identified_at"); err != nil {
		return nil, err
	}
	if risk.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &risk, nil
}

func scanPlan(s scanner, key string) (*domain.RiskResponsePlan, error) {
	var p domain.RiskResponsePlan
	var strategy, status, createdAt string
	var ownerID, deletedAt sql.NullString

	err := s.Scan(&p.ID, &p.RiskID, &strategy, &p.Description, &p.PlannedActions,
		&ownerID, &status, &createdAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("response plan %s", key)
		}
		return nil, fmt.Errorf("scanning risk response plan: %w", err)
	}
	p.Strategy = domain.ResponseStrategy(strategy)
	p.Status = domain.PlanStatus(status)
	p.OwnerID = ownerID.String
	p.DeletedAt = parseNullableTime(deletedAt, timestampLayout)
	if p.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &p, nil
}
