package servicebus

import (
	"context"
	"encoding/json"
	"fmt"

	"youtube-auto-post/domain/model"
	"youtube-auto-post/domain/repository"
	"youtube-auto-post/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

var _ repository.IUploadEventPublisher = (*UploadEventPublisher)(nil)

const eventContentType = "application/json"

// NewServiceBus connects to a namespace such as
// "<name>.servicebus.windows.net" with the default Azure credential chain.
func NewServiceBus(_ context.Context, namespace string) (*azservicebus.Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build azure credential: %w", err)
	}
	client, err := azservicebus.NewClient(namespace, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create service bus client: %w", err)
	}
	return client, nil
}

type messageSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

// UploadEventPublisher sends upload status events to a Service Bus queue.
type UploadEventPublisher struct {
	sender messageSender
}

func NewUploadEventPublisher(client *azservicebus.Client, queue string) (*UploadEventPublisher, error) {
	sender, err := client.NewSender(queue, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("queue", queue).Error("Error while making new sender service bus.")
		return nil, err
	}
	return &UploadEventPublisher{sender: sender}, nil
}

func (p *UploadEventPublisher) PublishUploadEvent(ctx context.Context, evt *model.UploadEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode upload event: %w", err)
	}
	contentType := eventContentType
	subject := evt.Type
	msg := &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		Subject:     &subject,
		ApplicationProperties: map[string]any{
			"upload_id": evt.UploadID,
			"state":     string(evt.State),
		},
	}
	if err := p.sender.SendMessage(ctx, msg, nil); err != nil {
		logger.GetLogger().WithField("error", err).WithField("upload_id", evt.UploadID).Error("Error while sending message.")
		return err
	}
	return nil
}

func (p *UploadEventPublisher) Close(ctx context.Context) error {
	return p.sender.Close(ctx)
}
