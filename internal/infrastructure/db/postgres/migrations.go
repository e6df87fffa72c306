package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations applies the schema at startup. Statements are idempotent so
// repeated runs are safe.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS developers (
			id BIGSERIAL PRIMARY KEY,
			dev_id VARCHAR(36) UNIQUE NOT NULL,
			uid VARCHAR(12) UNIQUE NOT NULL,
			username VARCHAR(64) UNIQUE NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(100) NOT NULL,
			email_verified BOOLEAN NOT NULL DEFAULT FALSE,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			reset_code VARCHAR(6),
			reset_expires TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_login TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_developers_dev_id ON developers(dev_id)`,

		`CREATE TABLE IF NOT EXISTS projects (
			id BIGSERIAL PRIMARY KEY,
			app_id VARCHAR(36) UNIQUE NOT NULL,
			name VARCHAR(128) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			latest_version VARCHAR(32) NOT NULL DEFAULT '',
			download_url TEXT NOT NULL DEFAULT '',
			announcement TEXT NOT NULL DEFAULT '',
			force_update BOOLEAN NOT NULL DEFAULT FALSE,
			developer_id BIGINT NOT NULL REFERENCES developers(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_developer ON projects(developer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_app_id ON projects(app_id)`,

		`CREATE TABLE IF NOT EXISTS license_keys (
			id BIGSERIAL PRIMARY KEY,
			key VARCHAR(16) UNIQUE NOT NULL,
			project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			duration_minutes INTEGER NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_banned BOOLEAN NOT NULL DEFAULT FALSE,
			activation_time TIMESTAMPTZ,
			expiry_time TIMESTAMPTZ,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_license_keys_project ON license_keys(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_license_keys_expiry ON license_keys(expiry_time) WHERE expiry_time IS NOT NULL`,

		`CREATE TABLE IF NOT EXISTS project_users (
			id BIGSERIAL PRIMARY KEY,
			uid VARCHAR(12) NOT NULL,
			project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			username VARCHAR(64) NOT NULL,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(100) NOT NULL,
			nickname VARCHAR(64) NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_banned BOOLEAN NOT NULL DEFAULT FALSE,
			reset_token VARCHAR(36),
			reset_token_expires TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_login TIMESTAMPTZ,
			last_login_ip VARCHAR(45) NOT NULL DEFAULT '',
			UNIQUE (project_id, username),
			UNIQUE (project_id, email)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_project_users_project ON project_users(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_project_users_uid ON project_users(uid)`,

		`CREATE TABLE IF NOT EXISTS announcements (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			content TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
