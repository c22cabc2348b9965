package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"youtube-auto-post/domain/model"
	"youtube-auto-post/domain/repository"
	"youtube-auto-post/infrastructure/logger"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

var _ repository.IUploadEventPublisher = (*UploadEventPublisher)(nil)

func NewPubSub(ctx context.Context, projectID string, opts ...option.ClientOption) (*pubsub.Client, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	return client, nil
}

// UploadEventPublisher publishes upload status events to a Cloud Pub/Sub
// topic, creating the topic on first use when it does not exist.
type UploadEventPublisher struct {
	client  *pubsub.Client
	topicID string

	mu    sync.Mutex
	topic *pubsub.Topic
}

func NewUploadEventPublisher(client *pubsub.Client, topicID string) *UploadEventPublisher {
	return &UploadEventPublisher{client: client, topicID: topicID}
}

func (p *UploadEventPublisher) PublishUploadEvent(ctx context.Context, evt *model.UploadEvent) error {
	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode upload event: %w", err)
	}
	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"type":      evt.Type,
			"upload_id": strconv.FormatInt(evt.UploadID, 10),
			"state":     string(evt.State),
		},
	}
	serverID, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish upload event: %w", err)
	}
	logger.GetLogger().WithField("server_id", serverID).WithField("upload_id", evt.UploadID).Debug("upload event published")
	return nil
}

func (p *UploadEventPublisher) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		return p.topic, nil
	}
	topic := p.client.Topic(p.topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check pubsub topic %s: %w", p.topicID, err)
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicID).Info("pubsub topic missing, creating it")
		if topic, err = p.client.CreateTopic(ctx, p.topicID); err != nil {
			return nil, fmt.Errorf("failed to create pubsub topic %s: %w", p.topicID, err)
		}
	}
	p.topic = topic
	return topic, nil
}

// Close flushes pending messages.
func (p *UploadEventPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.topic != nil {
		p.topic.Stop()
	}
}
