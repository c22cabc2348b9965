package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"youtube-auto-post/domain/model"
	"youtube-auto-post/domain/repository"

	"github.com/gin-gonic/gin"
)

var _ repository.IUploadProgressPublisher = (*UploadHub)(nil)

const subscriberBuffer = 16

// UploadHub fans upload events out to every connected SSE client.
type UploadHub struct {
	mu   sync.RWMutex
	subs map[chan *model.UploadEvent]struct{}
}

func NewUploadHub() *UploadHub {
	return &UploadHub{subs: make(map[chan *model.UploadEvent]struct{})}
}

// Subscribe registers a listener. The returned cancel func unregisters it
// and closes the channel.
func (h *UploadHub) Subscribe() (<-chan *model.UploadEvent, func()) {
	ch := make(chan *model.UploadEvent, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			close(ch)
			h.mu.Unlock()
		})
	}
}

// PublishUploadEvent never blocks: slow subscribers miss events.
func (h *UploadHub) PublishUploadEvent(_ context.Context, evt *model.UploadEvent) error {
	if evt == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

func (h *UploadHub) AcceptsProgress() bool { return true }

// Serve streams events as server-sent events until the client goes away.
func (h *UploadHub) Serve(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	events, cancel := h.Subscribe()
	defer cancel()

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			_, _ = c.Writer.Write([]byte("event: " + evt.Type + "\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}
