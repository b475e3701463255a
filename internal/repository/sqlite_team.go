package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
)

type SQLiteTeamRepo struct {
	db db.DBTX
}

func NewSQLiteTeamRepo(conn db.DBTX) *SQLiteTeamRepo {
	return &SQLiteTeamRepo{db: conn}
}

const teamColumns = `id, project_id, name, description, color_index, created_by, created_at, updated_at`

func (r *SQLiteTeamRepo) Create(ctx context.Context, t *domain.Team) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (`+teamColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Name, t.Description, t.ColorIndex, t.CreatedBy,
		formatTimestamp(t.CreatedAt), formatTimestamp(t.UpdatedAt),
	)
	if err != nil {
		return classifyWriteErr(err, "inserting team")
	}
	return nil
}

func (r *SQLiteTeamRepo) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE id = ? AND deleted_at IS NULL`, id)
	return scanTeam(row, id)
}

func (r *SQLiteTeamRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE project_id = ? AND deleted_at IS NULL
		ORDER BY name COLLATE NOCASE`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var out []*domain.Team
	for rows.Next() {
		t, err := scanTeam(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating teams: %w", err)
	}
	return out, nil
}

func (r *SQLiteTeamRepo) Update(ctx context.Context, t *domain.Team) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE teams SET name = ?, description = ?, color_index = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		t.Name, t.Description, t.ColorIndex, formatTimestamp(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return classifyWriteErr(err, "updating team")
	}
	return affectedOne(res, domain.NotFoundf("team %s", t.ID))
}

// SoftDelete hides the team. Member rows stay so the history is intact.
func (r *SQLiteTeamRepo) SoftDelete(ctx context.Context, id string) error {
	now := nowUTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE teams SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, now, now, id)
	if err != nil {
		return fmt.Errorf("deleting team: %w", err)
	}
	return affectedOne(res, domain.NotFoundf("team %s", id))
}

// AddMember inserts m. A user already on the team is a conflict.
func (r *SQLiteTeamRepo) AddMember(ctx context.Context, m *domain.TeamMember) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO team_members (team_id, user_id, role, is_leader, joined_at) VALUES (?, ?, ?, ?, ?)`,
		m.TeamID, m.UserID, m.Role, m.IsLeader, formatTimestamp(m.JoinedAt))
	if err != nil {
		return classifyWriteErr(err, "adding team member")
	}
	return nil
}

// RemoveMember reports whether a row was removed.
func (r *SQLiteTeamRepo) RemoveMember(ctx context.Context, teamID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM team_members WHERE team_id = ? AND user_id = ?`, teamID, userID)
	if err != nil {
		return false, fmt.Errorf("removing team member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}

// ListMembers returns leaders first, then by join time.
func (r *SQLiteTeamRepo) ListMembers(ctx context.Context, teamID string) ([]*domain.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT team_id, user_id, role, is_leader, joined_at FROM team_members
		WHERE team_id = ? ORDER BY is_leader DESC, joined_at, user_id`, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing team members: %w", err)
	}
	defer rows.Close()

	var out []*domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		var joinedAt string
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Role, &m.IsLeader, &joinedAt); err != nil {
			return nil, fmt.Errorf("scanning team member: %w", err)
		}
		if m.JoinedAt, err = parseTimestamp(joinedAt, "joined_at"); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team members: %w", err)
	}
	return out, nil
}

func scanTeam(s scanner, key string) (*domain.Team, error) {
	var t domain.Team
	var createdAt, updatedAt string
	err := s.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Description, &t.ColorIndex, &t.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("team %s", key)
		}
		return nil, fmt.Errorf("scanning team: %w", err)
	}
	if t.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &t, nil
}
