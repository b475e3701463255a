package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
)

type SQLiteScopeRepo struct {
	db db.DBTX
}

func NewSQLiteScopeRepo(conn db.DBTX) *SQLiteScopeRepo {
	return &SQLiteScopeRepo{db: conn}
}

const scopeColumns = `project_id, definition_method, wbs_method, baseline_approval, deliverables_impact,
	req_planning_approach, req_change_control, req_prioritization, req_metrics,
	stakeholder_needs, quantified_expectations, traceability,
	end_product_scope, deliverables, acceptance_criteria, exclusions, statement_of_work,
	baseline_reference, created_at, updated_at`

// Create inserts d. A project that already has a document is a conflict.
func (r *SQLiteScopeRepo) Create(ctx context.Context, d *domain.ScopeDocument) error {
	args, err := scopeArgs(d)
	if err != nil {
		return err
	}
	args = append(args, formatTimestamp(d.CreatedAt), formatTimestamp(d.UpdatedAt))
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO scope_documents (`+scopeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return classifyWriteErr(err, "inserting scope document")
	}
	return nil
}

func (r *SQLiteScopeRepo) GetByProject(ctx context.Context, projectID string) (*domain.ScopeDocument, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+scopeColumns+` FROM scope_documents WHERE project_id = ?`, projectID)
	return scanScope(row, projectID)
}

// Replace overwrites every section of the project's document and keeps its
// creation time.
func (r *SQLiteScopeRepo) Replace(ctx context.Context, d *domain.ScopeDocument) error {
	args, err := scopeArgs(d)
	if err != nil {
		return err
	}
	// project_id moves from the front to the WHERE clause.
	args = append(args[1:], formatTimestamp(d.UpdatedAt), d.ProjectID)
	res, err := r.db.ExecContext(ctx,
		`UPDATE scope_documents SET
			definition_method = ?, wbs_method = ?, baseline_approval = ?, deliverables_impact = ?,
			req_planning_approach = ?, req_change_control = ?, req_prioritization = ?, req_metrics = ?,
			stakeholder_needs = ?, quantified_expectations = ?, traceability = ?,
			end_product_scope = ?, deliverables = ?, acceptance_criteria = ?, exclusions = ?, statement_of_work = ?,
			baseline_reference = ?, updated_at = ?
		WHERE project_id = ?`, args...)
	if err != nil {
		return classifyWriteErr(err, "updating scope document")
	}
	return affectedOne(res, domain.NotFoundf("scope document for project %s", d.ProjectID))
}

func (r *SQLiteScopeRepo) Delete(ctx context.Context, projectID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scope_documents WHERE project_id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("deleting scope document: %w", err)
	}
	return affectedOne(res, domain.NotFoundf("scope document for project %s", projectID))
}

// scopeArgs returns every column but the timestamps, in scopeColumns order.
func scopeArgs(d *domain.ScopeDocument) ([]any, error) {
	needs, err := encodeLines(d.Documentation.StakeholderNeeds)
	if err != nil {
		return nil, err
	}
	expectations, err := encodeLines(d.Documentation.QuantifiedExpectations)
	if err != nil {
		return nil, err
	}
	deliverables, err := encodeLines(d.Statement.Deliverables)
	if err != nil {
		return nil, err
	}
	return []any{
		d.ProjectID,
		d.Management.DefinitionMethod, d.Management.WBSMethod,
		d.Management.BaselineApproval, d.Management.DeliverablesImpact,
		d.Requirements.PlanningApproach, d.Requirements.ChangeControl,
		d.Requirements.Prioritization, d.Requirements.Metrics,
		needs, expectations, d.Documentation.Traceability,
		d.Statement.EndProductScope, deliverables, d.Statement.AcceptanceCriteria,
		d.Statement.Exclusions, d.Statement.StatementOfWork,
		d.BaselineReference,
	}, nil
}

func scanScope(s scanner, key string) (*domain.ScopeDocument, error) {
	var d domain.ScopeDocument
	var needs, expectations, deliverables, createdAt, updatedAt string
	err := s.Scan(&d.ProjectID,
		&d.Management.DefinitionMethod, &d.Management.WBSMethod,
		&d.Management.BaselineApproval, &d.Management.DeliverablesImpact,
		&d.Requirements.PlanningApproach, &d.Requirements.ChangeControl,
		&d.Requirements.Prioritization, &d.Requirements.Metrics,
		&needs, &expectations, &d.Documentation.Traceability,
		&d.Statement.EndProductScope, &deliverables, &d.Statement.AcceptanceCriteria,
		&d.Statement.Exclusions, &d.Statement.StatementOfWork,
		&d.BaselineReference, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("scope document for project %s", key)
		}
		return nil, fmt.Errorf("scanning scope document: %w", err)
	}
	if d.Documentation.StakeholderNeeds, err = decodeLines(needs, "stakeholder_needs"); err != nil {
		return nil, err
	}
	if d.Documentation.QuantifiedExpectations, err = decodeLines(expectations, "quantified_expectations"); err != nil {
		return nil, err
	}
	if d.Statement.Deliverables, err = decodeLines(deliverables, "deliverables"); err != nil {
		return nil, err
	}
	if d.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &d, nil
}

// List columns hold a JSON array of strings.
func encodeLines(lines []string) (string, error) {
	if lines == nil {
		lines = []string{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("encoding list column: %w", err)
	}
	return string(b), nil
}

func decodeLines(raw, column string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", column, err)
	}
	return out, nil
}

type SQLiteResourcePlanRepo struct {
	db db.DBTX
}

func NewSQLiteResourcePlanRepo(conn db.DBTX) *SQLiteResourcePlanRepo {
	return &SQLiteResourcePlanRepo{db: conn}
}

func (r *SQLiteResourcePlanRepo) GetByProject(ctx context.Context, projectID string) (*domain.ResourcePlan, error) {
	var p domain.ResourcePlan
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT project_id, owner_id, notes, created_at, updated_at FROM resource_plans WHERE project_id = ?`,
		projectID).Scan(&p.ProjectID, &p.OwnerID, &p.Notes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("resource plan for project %s", projectID)
		}
		return nil, fmt.Errorf("scanning resource plan: %w", err)
	}
	if p.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert stores p. An existing plan keeps its owner and creation time.
func (r *SQLiteResourcePlanRepo) Upsert(ctx context.Context, p *domain.ResourcePlan) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO resource_plans (project_id, owner_id, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET notes = excluded.notes, updated_at = excluded.updated_at`,
		p.ProjectID, p.OwnerID, p.Notes, formatTimestamp(p.CreatedAt), formatTimestamp(p.UpdatedAt))
	if err != nil {
		return classifyWriteErr(err, "saving resource plan")
	}
	return nil
}
