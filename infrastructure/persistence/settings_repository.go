package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"youtube-auto-post/domain/model"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

type SettingsRepository struct{ db *sql.DB }

func NewSettingsRepository(db *sql.DB) *SettingsRepository { return &SettingsRepository{db: db} }

// Create inserts the singleton row. The table only accepts id = 1, so a
// second insert fails with a unique violation.
func (r *SettingsRepository) Create(ctx context.Context, s *model.APISettings) error {
	now := time.Now().UTC()
	s.ID = model.SettingsSingletonID
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO youtube_api_settings (id, name, client_secrets_attachment_id, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.Name, nullString(s.ClientSecretsAttachmentID), s.CreatedAt, s.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return model.ErrSettingsExists
		}
		return fmt.Errorf("failed to create settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) Get(ctx context.Context) (*model.APISettings, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, client_secrets_attachment_id, created_at, updated_at FROM youtube_api_settings WHERE id = $1`,
		model.SettingsSingletonID)
	s := &model.APISettings{}
	var attachmentID sql.NullString
	if err := row.Scan(&s.ID, &s.Name, &attachmentID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	s.ClientSecretsAttachmentID = stringPtr(attachmentID)
	return s, nil
}

func (r *SettingsRepository) Update(ctx context.Context, s *model.APISettings) error {
	s.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE youtube_api_settings SET name=$1, client_secrets_attachment_id=$2, updated_at=$3 WHERE id=$4`,
		s.Name, nullString(s.ClientSecretsAttachmentID), s.UpdatedAt, model.SettingsSingletonID)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrSettingsNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time
	return &v
}
