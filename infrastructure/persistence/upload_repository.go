package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"youtube-auto-post/domain/model"
)

const uploadColumns = `id, title, description, tags, category_id, privacy_status, video_attachment_id, state, schedule_date, youtube_video_id, error_message, created_at, updated_at`

type VideoUploadRepository struct{ db *sql.DB }

func NewVideoUploadRepository(db *sql.DB) *VideoUploadRepository {
	return &VideoUploadRepository{db: db}
}

func (r *VideoUploadRepository) Create(ctx context.Context, u *model.VideoUpload) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	row := r.db.QueryRowContext(ctx, `INSERT INTO youtube_video_uploads (title, description, tags, category_id, privacy_status, video_attachment_id, state, schedule_date, youtube_video_id, error_message, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12) RETURNING id`,
		u.Title, u.Description, u.Tags, u.CategoryID, string(u.PrivacyStatus), nullString(u.VideoAttachmentID),
		string(u.State), nullTime(u.ScheduleDate), nullString(u.YouTubeVideoID), nullString(u.ErrorMessage),
		u.CreatedAt, u.UpdatedAt)
	if err := row.Scan(&u.ID); err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}
	return nil
}

func (r *VideoUploadRepository) GetByID(ctx context.Context, id int64) (*model.VideoUpload, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+uploadColumns+` FROM youtube_video_uploads WHERE id = $1`, id)
	u, err := scanUpload(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: upload %d", model.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get upload %d: %w", id, err)
	}
	return u, nil
}

func (r *VideoUploadRepository) Update(ctx context.Context, u *model.VideoUpload, from model.UploadState) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE youtube_video_uploads SET title=$1, description=$2, tags=$3, category_id=$4, privacy_status=$5,
		video_attachment_id=$6, state=$7, schedule_date=$8, youtube_video_id=$9, error_message=$10, updated_at=$11 WHERE id=$12 AND state=$13`,
		u.Title, u.Description, u.Tags, u.CategoryID, string(u.PrivacyStatus), nullString(u.VideoAttachmentID),
		string(u.State), nullTime(u.ScheduleDate), nullString(u.YouTubeVideoID), nullString(u.ErrorMessage),
		u.UpdatedAt, u.ID, string(from))
	if err != nil {
		return fmt.Errorf("failed to update upload %d: %w", u.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil || n > 0 {
		return nil
	}
	var current string
	err = r.db.QueryRowContext(ctx, `SELECT state FROM youtube_video_uploads WHERE id = $1`, u.ID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: upload %d", model.ErrNotFound, u.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update upload %d: %w", u.ID, err)
	}
	return fmt.Errorf("%w: upload %d is %s, expected %s", model.ErrStaleUpload, u.ID, current, from)
}

// List returns uploads newest first. An empty state matches every state.
func (r *VideoUploadRepository) List(ctx context.Context, state model.UploadState, limit, offset int) ([]*model.VideoUpload, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		rows *sql.Rows
		err  error
	)
	if state == "" {
		rows, err = r.db.QueryContext(ctx, `SELECT `+uploadColumns+` FROM youtube_video_uploads ORDER BY id DESC LIMIT $1 OFFSET $2`, limit, offset)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+uploadColumns+` FROM youtube_video_uploads WHERE state = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`, string(state), limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	return collectUploads(rows)
}

// FindDueScheduled returns scheduled uploads whose schedule date is at or
// before now, oldest first.
func (r *VideoUploadRepository) FindDueScheduled(ctx context.Context, now time.Time) ([]*model.VideoUpload, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+uploadColumns+` FROM youtube_video_uploads WHERE state = $1 AND schedule_date <= $2 ORDER BY schedule_date ASC, id ASC`,
		string(model.UploadStateScheduled), now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due uploads: %w", err)
	}
	return collectUploads(rows)
}

func collectUploads(rows *sql.Rows) ([]*model.VideoUpload, error) {
	defer rows.Close()
	var out []*model.VideoUpload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUpload(row rowScanner) (*model.VideoUpload, error) {
	u := &model.VideoUpload{}
	var (
		privacy, state                      string
		attachmentID, videoID, errorMessage sql.NullString
		scheduleDate                        sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Title, &u.Description, &u.Tags, &u.CategoryID, &privacy, &attachmentID,
		&state, &scheduleDate, &videoID, &errorMessage, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.PrivacyStatus = model.PrivacyStatus(privacy)
	u.State = model.UploadState(state)
	u.VideoAttachmentID = stringPtr(attachmentID)
	u.ScheduleDate = timePtr(scheduleDate)
	u.YouTubeVideoID = stringPtr(videoID)
	u.ErrorMessage = stringPtr(errorMessage)
	return u, nil
}
