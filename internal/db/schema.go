package db

import (
	"context"
)

// schemaStatements creates the tables and indexes the API needs. Every
// statement is IF NOT EXISTS so restarts against an existing database are a
// no-op. Deleting a user removes their issues, likes, comments, official
// record and notifications through the cascades.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT NOT NULL UNIQUE,
		username TEXT,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user',
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		fcm_tokens JSONB NOT NULL DEFAULT '[]'::jsonb,
		profile_image TEXT NOT NULL DEFAULT '',
		location GEOGRAPHY(POINT, 4326),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_location ON users USING GIST (location)`,
	`CREATE TABLE IF NOT EXISTS area_locations (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		boundary GEOMETRY(MULTIPOLYGON, 4326) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_area_locations_boundary ON area_locations USING GIST (boundary)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_area_locations_name ON area_locations (name)`,
	`CREATE TABLE IF NOT EXISTS issues (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		categories TEXT[] NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'not_approved',
		location GEOGRAPHY(POINT, 4326) NOT NULL,
		images TEXT[] NOT NULL DEFAULT '{}',
		is_anonymous BOOLEAN NOT NULL DEFAULT FALSE,
		area_id BIGINT REFERENCES area_locations(id),
		likes_count INT NOT NULL DEFAULT 0,
		comments_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_issues_location ON issues USING GIST (location)`,
	`CREATE INDEX IF NOT EXISTS idx_issues_status ON issues (status)`,
	`CREATE INDEX IF NOT EXISTS idx_issues_user ON issues (user_id)`,
	`CREATE TABLE IF NOT EXISTS officials (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		area_range GEOMETRY(POLYGON, 4326) NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		district TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		country_code TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_officials_area_range ON officials USING GIST (area_range)`,
	`CREATE TABLE IF NOT EXISTS official_issues (
		official_id UUID NOT NULL REFERENCES officials(id) ON DELETE CASCADE,
		issue_id UUID NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
		assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (official_id, issue_id)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		screen TEXT NOT NULL DEFAULT '',
		screen_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		issue_id UUID NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		parent_id UUID REFERENCES comments(id) ON DELETE CASCADE,
		reply_to UUID REFERENCES comments(id),
		content TEXT NOT NULL,
		likes_count INT NOT NULL DEFAULT 0,
		is_edited BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_issue ON comments (issue_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS likes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		issue_id UUID REFERENCES issues(id) ON DELETE CASCADE,
		comment_id UUID REFERENCES comments(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (issue_id IS NOT NULL OR comment_id IS NOT NULL)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_likes_issue ON likes (user_id, issue_id) WHERE issue_id IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_likes_comment ON likes (user_id, comment_id) WHERE comment_id IS NOT NULL`,
}

// EnsureSchema applies the schema on startup. PostGIS must already be
// installed on the target database.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, s := range schemaStatements {
		if _, err := db.pool.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
