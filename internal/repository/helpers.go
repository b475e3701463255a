package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskup/internal/domain"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	dateLayout = "2006-01-02"
	// timestampLayout is fixed-width so stored values sort lexically.
	timestampLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return t, nil
}

// parseNullableTime parses a sql.NullString into a *time.Time using the given layout.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString converts a *time.Time to a value suitable for SQLite storage.
func nullableTimeToString(t *time.Time, layout string) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(layout)
}

func nullableString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid || s.String == "" {
		return nil
	}
	v := s.String
	return &v
}

func nowUTC() string {
	return formatTimestamp(time.Now())
}

// classifyWriteErr maps SQLite constraint failures onto the domain taxonomy.
func classifyWriteErr(err error, what string) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w: already exists", what, domain.ErrConflict)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%s: %w: referenced record does not exist", what, domain.ErrValidation)
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return fmt.Errorf("%s: %w: value out of range", what, domain.ErrValidation)
		}
		// Primary code only when extended codes are off.
		if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			if strings.Contains(se.Error(), "UNIQUE") {
				return fmt.Errorf("%s: %w: already exists", what, domain.ErrConflict)
			}
			return fmt.Errorf("%s: %w: %s", what, domain.ErrValidation, se.Error())
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

// affectedOne reports whether a write touched a row; zero rows means the
// target was missing.
func affectedOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
