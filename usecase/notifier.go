package usecase

import (
	"context"
	"time"

	"youtube-auto-post/domain/model"
	"youtube-auto-post/domain/repository"
	"youtube-auto-post/infrastructure/logger"
	"youtube-auto-post/infrastructure/utils"
)

// Notifier records upload messages and fans events out to publishers.
// Delivery problems are logged, never returned.
type Notifier struct {
	messages   repository.IUploadMessage
	publishers []repository.IUploadEventPublisher
	now        func() time.Time
}

func NewNotifier(messages repository.IUploadMessage, publishers ...repository.IUploadEventPublisher) *Notifier {
	return &Notifier{messages: messages, publishers: publishers, now: utils.GetCurrentTime}
}

// Post appends a message to the record's log and publishes a status event.
func (n *Notifier) Post(ctx context.Context, u *model.VideoUpload, kind model.MessageKind, body string) {
	at := n.now().UTC()
	if n.messages != nil {
		msg := &model.UploadMessage{UploadID: u.ID, Kind: kind, Body: body, CreatedAt: at}
		if err := n.messages.Post(ctx, msg); err != nil {
			logger.GetLogger().WithField("upload_id", u.ID).WithField("error", err).Error("failed to post upload message")
		}
	}
	evt := &model.UploadEvent{
		Type:           model.UploadEventStatus,
		UploadID:       u.ID,
		Title:          u.Title,
		State:          u.State,
		YouTubeVideoID: u.YouTubeVideoID,
		Error:          u.ErrorMessage,
		Message:        body,
		At:             at,
	}
	for _, p := range n.publishers {
		n.publish(ctx, p, evt)
	}
}

// History returns the record's messages, oldest first.
func (n *Notifier) History(ctx context.Context, uploadID int64) ([]*model.UploadMessage, error) {
	if n.messages == nil {
		return []*model.UploadMessage{}, nil
	}
	return n.messages.ListByUpload(ctx, uploadID)
}

// Progress publishes a transfer fraction to the publishers that want it.
func (n *Notifier) Progress(ctx context.Context, u *model.VideoUpload, fraction float64) {
	evt := &model.UploadEvent{
		Type:     model.UploadEventProgress,
		UploadID: u.ID,
		Title:    u.Title,
		State:    u.State,
		Progress: fraction,
		At:       n.now().UTC(),
	}
	for _, p := range n.publishers {
		if pp, ok := p.(repository.IUploadProgressPublisher); ok && pp.AcceptsProgress() {
			n.publish(ctx, p, evt)
		}
	}
}

func (n *Notifier) publish(ctx context.Context, p repository.IUploadEventPublisher, evt *model.UploadEvent) {
	if err := p.PublishUploadEvent(ctx, evt); err != nil {
		logger.GetLogger().
			WithField("upload_id", evt.UploadID).
			WithField("type", evt.Type).
			WithField("error", err).
			Warn("failed to publish upload event")
	}
}
