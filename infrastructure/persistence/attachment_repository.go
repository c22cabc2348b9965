package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"youtube-auto-post/domain/model"

	"gorm.io/gorm"
)

type AttachmentRepository struct{ db *gorm.DB }

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, att *model.Attachment) error {
	if att.ID == "" {
		return fmt.Errorf("%w: attachment id is required", model.ErrValidation)
	}
	if len(att.Data) == 0 {
		return model.ErrEmptyAttachment
	}
	att.Size = int64(len(att.Data))
	if att.CreatedAt.IsZero() {
		att.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(att).Error; err != nil {
		return fmt.Errorf("failed to store attachment: %w", err)
	}
	return nil
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (*model.Attachment, error) {
	var att model.Attachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&att).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: attachment %s", model.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get attachment %s: %w", id, err)
	}
	return &att, nil
}
