package persistence

import (
	"database/sql"
	"fmt"

	"youtube-auto-post/infrastructure/logger"
)

var postgresSchema = []struct {
	name string
	ddl  string
}{
	{"youtube_api_settings", `CREATE TABLE IF NOT EXISTS youtube_api_settings (
	id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	name VARCHAR(255) NOT NULL,
	client_secrets_attachment_id VARCHAR(36) NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`},
	{"youtube_video_uploads", `CREATE TABLE IF NOT EXISTS youtube_video_uploads (
	id BIGSERIAL PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '',
	category_id VARCHAR(8) NOT NULL DEFAULT '22',
	privacy_status VARCHAR(16) NOT NULL DEFAULT 'private',
	video_attachment_id VARCHAR(36) NULL,
	state VARCHAR(16) NOT NULL DEFAULT 'draft',
	schedule_date TIMESTAMPTZ NULL,
	youtube_video_id VARCHAR(64) NULL,
	error_message TEXT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`},
	{"youtube_upload_messages", `CREATE TABLE IF NOT EXISTS youtube_upload_messages (
	id BIGSERIAL PRIMARY KEY,
	upload_id BIGINT NOT NULL REFERENCES youtube_video_uploads(id) ON DELETE CASCADE,
	kind VARCHAR(16) NOT NULL,
	body TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`},
	{"oauth_tokens", `CREATE TABLE IF NOT EXISTS oauth_tokens (
	id BIGSERIAL PRIMARY KEY,
	account_id VARCHAR(128) NOT NULL,
	platform VARCHAR(64) NOT NULL,
	access_token TEXT NOT NULL,
	refresh_token TEXT NOT NULL DEFAULT '',
	token_type VARCHAR(32) NOT NULL DEFAULT '',
	expires_at TIMESTAMPTZ NULL,
	scopes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (account_id, platform)
)`},
}

var postgresIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_youtube_video_uploads_due ON youtube_video_uploads(state, schedule_date)`,
	`CREATE INDEX IF NOT EXISTS idx_youtube_upload_messages_upload ON youtube_upload_messages(upload_id, created_at)`,
}

// EnsureSchema creates the PostgreSQL tables if they do not exist yet.
func EnsureSchema(db *sql.DB) error {
	for _, t := range postgresSchema {
		if _, err := db.Exec(t.ddl); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
	}
	for _, idx := range postgresIndexes {
		if _, err := db.Exec(idx); err != nil {
			logger.GetLogger().WithField("error", err).Warn("create index failed")
		}
	}
	return nil
}
