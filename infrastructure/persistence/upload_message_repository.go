package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"youtube-auto-post/domain/model"
)

type UploadMessageRepository struct{ db *sql.DB }

func NewUploadMessageRepository(db *sql.DB) *UploadMessageRepository {
	return &UploadMessageRepository{db: db}
}

func (r *UploadMessageRepository) Post(ctx context.Context, msg *model.UploadMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO youtube_upload_messages (upload_id, kind, body, created_at) VALUES ($1,$2,$3,$4) RETURNING id`,
		msg.UploadID, string(msg.Kind), msg.Body, msg.CreatedAt)
	if err := row.Scan(&msg.ID); err != nil {
		return fmt.Errorf("failed to post upload message: %w", err)
	}
	return nil
}

func (r *UploadMessageRepository) ListByUpload(ctx context.Context, uploadID int64) ([]*model.UploadMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, upload_id, kind, body, created_at FROM youtube_upload_messages WHERE upload_id = $1 ORDER BY created_at ASC, id ASC`,
		uploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload messages: %w", err)
	}
	defer rows.Close()
	var out []*model.UploadMessage
	for rows.Next() {
		m := &model.UploadMessage{}
		var kind string
		if err := rows.Scan(&m.ID, &m.UploadID, &kind, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Kind = model.MessageKind(kind)
		out = append(out, m)
	}
	return out, rows.Err()
}
