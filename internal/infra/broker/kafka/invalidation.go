package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"

	"tourbook/internal/app/policies"
	"tourbook/internal/infra/inbox"
)

// InvalidationHandler turns booking and assignment events published by any
// instance into a local data-changed signal. Redelivered events are dropped
// through the inbox.
type InvalidationHandler struct {
	Inbox       inbox.Deduper
	Invalidator policies.Invalidator
	Logger      *slog.Logger
}

type cloudEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

func (h InvalidationHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil || evt.ID == "" {
		// poison message; marking it keeps the partition moving
		h.logger().WarnContext(ctx, "skipping undecodable event", "topic", msg.Topic, "offset", msg.Offset)
		return nil
	}
	if h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, evt.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	h.logger().DebugContext(ctx, "event consumed", "id", evt.ID, "type", evt.Type)
	return h.Invalidator.Invalidate(ctx, policies.TopicDataChanged)
}

func (h InvalidationHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Topics lists the event topics the handler listens on.
func Topics(prefix string) []string {
	return []string{prefix + "booking.events.v1", prefix + "assignment.events.v1"}
}
