package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/taskup/internal/db"
	"github.com/alexanderramin/taskup/internal/domain"
)

type SQLiteUserRepo struct {
	db db.DBTX
}

func NewSQLiteUserRepo(conn db.DBTX) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: conn}
}

const userColumns = `id, email, name, created_at`

func (r *SQLiteUserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, formatTimestamp(u.CreatedAt))
	if err != nil {
		return classifyWriteErr(err, "inserting user")
	}
	return nil
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row, id)
}

func (r *SQLiteUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email)
	return scanUser(row, email)
}

func (r *SQLiteUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY name, email`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows, "")
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

func scanUser(s scanner, key string) (*domain.User, error) {
	var u domain.User
	var createdAt string
	if err := s.Scan(&u.ID, &u.Email, &u.Name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundf("user %s", key)
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	var err error
	if u.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &u, nil
}
