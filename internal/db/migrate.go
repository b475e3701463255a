package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent and are
// re-run on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE COLLATE NOCASE,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id           TEXT PRIMARY KEY,
		short_id     TEXT NOT NULL,
		name         TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		owner_id     TEXT NOT NULL REFERENCES users(id),
		status       TEXT NOT NULL DEFAULT 'not_started'
		             CHECK(status IN ('not_started','in_progress','completed','on_hold','archived')),
		deadline     TEXT,
		total_budget REAL NOT NULL DEFAULT 0 CHECK(total_budget >= 0),
		archived_at  TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_short_id ON projects(UPPER(short_id))`,
	`CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_id)`,

	`CREATE TABLE IF NOT EXISTS stakeholders (
		id         TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL REFERENCES users(id),
		role       TEXT NOT NULL DEFAULT '',
		percentage REAL NOT NULL CHECK(percentage > 0 AND percentage <= 100),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(project_id, user_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_stakeholders_project ON stakeholders(project_id)`,

	`CREATE TABLE IF NOT EXISTS risks (
		id            TEXT PRIMARY KEY,
		project_id    TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL DEFAULT '',
		probability   REAL NOT NULL CHECK(probability >= 0 AND probability <= 1),
		impact        INTEGER NOT NULL DEFAULT 1 CHECK(impact BETWEEN 1 AND 10),
		severity      REAL NOT NULL,
		level         TEXT NOT NULL,
		owner_id      TEXT REFERENCES users(id),
		status        TEXT NOT NULL DEFAULT 'open'
		              CHECK(status IN ('open','mitigated','closed')),
		identified_at TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		deleted_at    TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_risks_project ON risks(project_id)`,

	`CREATE TABLE IF NOT EXISTS risk_response_plans (
		id              TEXT PRIMARY KEY,
		risk_id         TEXT NOT NULL REFERENCES risks(id) ON DELETE CASCADE,
		strategy        TEXT NOT NULL CHECK(strategy IN ('avoid','mitigate','transfer','accept')),
		description     TEXT NOT NULL DEFAULT '',
		planned_actions TEXT NOT NULL DEFAULT '',
		owner_id        TEXT REFERENCES users(id),
		status          TEXT NOT NULL DEFAULT 'planned'
		                CHECK(status IN ('planned','in_progress','done')),
		created_at      TEXT NOT NULL,
		deleted_at      TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_risk_plans_risk ON risk_response_plans(risk_id)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id             TEXT PRIMARY KEY,
		project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		parent_task_id TEXT REFERENCES tasks(id) ON DELETE CASCADE,
		title          TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		assignee_id    TEXT REFERENCES users(id),
		cost           REAL NOT NULL DEFAULT 0 CHECK(cost >= 0),
		status         TEXT NOT NULL DEFAULT 'not_started'
		               CHECK(status IN ('not_started','in_progress','completed')),
		priority       TEXT NOT NULL DEFAULT 'medium'
		               CHECK(priority IN ('low','medium','high','urgent')),
		deadline       TEXT,
		completed_at   TEXT,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_task_id)`,

	`CREATE TABLE IF NOT EXISTS resources (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		type        TEXT NOT NULL CHECK(type IN ('human','equipment','material','other')),
		unit        TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		total       REAL NOT NULL CHECK(total >= 0),
		available   REAL NOT NULL CHECK(available >= 0 AND available <= total),
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_resources_project ON resources(project_id)`,

	`CREATE TABLE IF NOT EXISTS work_packages (
		id             TEXT PRIMARY KEY,
		project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		code           TEXT NOT NULL DEFAULT '',
		name           TEXT NOT NULL,
		estimated_cost REAL NOT NULL DEFAULT 0 CHECK(estimated_cost >= 0),
		estimated_days INTEGER NOT NULL DEFAULT 0 CHECK(estimated_days >= 0),
		created_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_packages_project ON work_packages(project_id)`,

	`CREATE TABLE IF NOT EXISTS resource_plans (
		project_id TEXT PRIMARY KEY REFERENCES projects(id) ON DELETE CASCADE,
		owner_id   TEXT NOT NULL REFERENCES users(id),
		notes      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS teams (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		color_index INTEGER NOT NULL DEFAULT 0 CHECK(color_index BETWEEN 0 AND 7),
		created_by  TEXT NOT NULL REFERENCES users(id),
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		deleted_at  TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_teams_project ON teams(project_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_teams_project_name
		ON teams(project_id, name COLLATE NOCASE) WHERE deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS team_members (
		team_id   TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		user_id   TEXT NOT NULL REFERENCES users(id),
		role      TEXT NOT NULL DEFAULT '',
		is_leader INTEGER NOT NULL DEFAULT 0,
		joined_at TEXT NOT NULL,
		PRIMARY KEY(team_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS scope_documents (
		project_id              TEXT PRIMARY KEY REFERENCES projects(id) ON DELETE CASCADE,
		definition_method       TEXT NOT NULL DEFAULT '',
		wbs_method              TEXT NOT NULL DEFAULT '',
		baseline_approval       TEXT NOT NULL DEFAULT '',
		deliverables_impact     TEXT NOT NULL DEFAULT '',
		req_planning_approach   TEXT NOT NULL DEFAULT '',
		req_change_control      TEXT NOT NULL DEFAULT '',
		req_prioritization      TEXT NOT NULL DEFAULT '',
		req_metrics             TEXT NOT NULL DEFAULT '',
		stakeholder_needs       TEXT NOT NULL DEFAULT '[]',
		quantified_expectations TEXT NOT NULL DEFAULT '[]',
		traceability            TEXT NOT NULL DEFAULT '',
		end_product_scope       TEXT NOT NULL,
		deliverables            TEXT NOT NULL DEFAULT '[]',
		acceptance_criteria     TEXT NOT NULL DEFAULT '',
		exclusions              TEXT NOT NULL DEFAULT '',
		statement_of_work       TEXT NOT NULL DEFAULT '',
		baseline_reference      TEXT NOT NULL DEFAULT '',
		created_at              TEXT NOT NULL,
		updated_at              TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS kv_entries (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`,
}
