package servicebus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youtube-auto-post/domain/model"
)

type recordingSender struct {
	sent   []*azservicebus.Message
	err    error
	closed bool
}

func (s *recordingSender) SendMessage(_ context.Context, message *azservicebus.Message, _ *azservicebus.SendMessageOptions) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, message)
	return nil
}

func (s *recordingSender) Close(_ context.Context) error {
	s.closed = true
	return nil
}

func TestPublishUploadEvent(t *testing.T) {
	sender := &recordingSender{}
	pub := &UploadEventPublisher{sender: sender}

	err := pub.PublishUploadEvent(context.Background(), &model.UploadEvent{
		Type:     model.UploadEventStatus,
		UploadID: 3,
		State:    model.UploadStateFailed,
		Message:  "Upload failed: quota",
	})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	require.NotNil(t, msg.Subject)
	assert.Equal(t, "upload_status", *msg.Subject)
	require.NotNil(t, msg.ContentType)
	assert.Equal(t, "application/json", *msg.ContentType)
	assert.Equal(t, int64(3), msg.ApplicationProperties["upload_id"])

	var evt model.UploadEvent
	require.NoError(t, json.Unmarshal(msg.Body, &evt))
	assert.Equal(t, model.UploadStateFailed, evt.State)
	assert.Equal(t, "Upload failed: quota", evt.Message)

	require.NoError(t, pub.Close(context.Background()))
	assert.True(t, sender.closed)
}

func TestPublishUploadEvent_SendError(t *testing.T) {
	pub := &UploadEventPublisher{sender: &recordingSender{err: errors.New("amqp link detached")}}

	err := pub.PublishUploadEvent(context.Background(), &model.UploadEvent{Type: model.UploadEventStatus, UploadID: 1})

	assert.EqualError(t, err, "amqp link detached")
}
