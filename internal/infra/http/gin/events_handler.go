package ginserver

import (
	"context"
	"io"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"tourbook/internal/app/policies"
	"tourbook/internal/infra/broadcast"
)

type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan broadcast.Signal, error)
}

// EventsHandler streams data-changed signals as server-sent events. Signals
// carry no payload; clients re-fetch whatever they display.
type EventsHandler struct {
	Subscriber Subscriber
	Heartbeat  time.Duration
}

type signalEvent struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
}

func (h EventsHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	signals, err := h.Subscriber.Subscribe(ctx, policies.TopicDataChanged)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.heartbeat())
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case sig, ok := <-signals:
			if !ok {
				return false
			}
			c.SSEvent(sig.Topic, signalEvent{ID: sig.ID, At: sig.At})
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Unix())
			return true
		}
	})
}

func (h EventsHandler) heartbeat() time.Duration {
	if h.Heartbeat <= 0 {
		return 25 * time.Second
	}
	return h.Heartbeat
}

var (
	_ EventsHTTP = EventsHandler{}
	_ Subscriber = (*broadcast.Broadcaster)(nil)
)
