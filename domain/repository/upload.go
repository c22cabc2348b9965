package repository

import (
	"context"
	"time"

	"youtube-auto-post/domain/dto"
	"youtube-auto-post/domain/model"
)

type ISettings interface {
	Create(ctx context.Context, s *model.APISettings) error
	Get(ctx context.Context) (*model.APISettings, error)
	Update(ctx context.Context, s *model.APISettings) error
}

type IAttachment interface {
	Create(ctx context.Context, att *model.Attachment) error
	GetByID(ctx context.Context, id string) (*model.Attachment, error)
}

type IVideoUpload interface {
	Create(ctx context.Context, u *model.VideoUpload) error
	GetByID(ctx context.Context, id int64) (*model.VideoUpload, error)
	// Update writes u only while the stored row is still in state from.
	Update(ctx context.Context, u *model.VideoUpload, from model.UploadState) error
	List(ctx context.Context, state model.UploadState, limit, offset int) ([]*model.VideoUpload, error)
	FindDueScheduled(ctx context.Context, now time.Time) ([]*model.VideoUpload, error)
}

type IUploadMessage interface {
	Post(ctx context.Context, msg *model.UploadMessage) error
	ListByUpload(ctx context.Context, uploadID int64) ([]*model.UploadMessage, error)
}

type IUploadEventPublisher interface {
	PublishUploadEvent(ctx context.Context, evt *model.UploadEvent) error
}

// IUploadProgressPublisher is implemented by publishers that also want
// per-chunk progress events.
type IUploadProgressPublisher interface {
	IUploadEventPublisher
	AcceptsProgress() bool
}

// IYouTubeUploader sends one video to the platform and returns its id.
type IYouTubeUploader interface {
	UploadVideo(ctx context.Context, req *dto.YouTubeVideoUploadRequest) (string, error)
}

// IYouTubeConnector authorises against the account described by the
// client secrets document and returns a ready uploader.
type IYouTubeConnector interface {
	Connect(ctx context.Context, clientSecrets []byte) (IYouTubeUploader, error)
}
