// Package broadcast fans out the payload-free "data changed" signal inside
// one process. Publishing never waits for listeners, and listeners that fall
// behind see several signals collapse into one.
package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

var ErrTopicMissing = errors.New("broadcast: topic required")

// Signal tells a listener to re-fetch. It carries no data on purpose.
type Signal struct {
	ID    string
	Topic string
	At    time.Time
}

type Broadcaster struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func New(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, NewSlogAdapter(logger))
	return &Broadcaster{pubsub: pubsub, logger: logger}
}

// Invalidate publishes one signal on topic. With no listeners it is dropped.
func (b *Broadcaster) Invalidate(ctx context.Context, topic string) error {
	if topic == "" {
		return ErrTopicMissing
	}
	msg := message.NewMessage(watermill.NewUUID(), nil)
	msg.Metadata.Set("at", time.Now().UTC().Format(time.RFC3339Nano))
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return err
	}
	b.logger.DebugContext(ctx, "data changed broadcast", "topic", topic, "signal_id", msg.UUID)
	return nil
}

// Subscribe delivers signals for topic until ctx is done. The channel holds
// at most one pending signal.
func (b *Broadcaster) Subscribe(ctx context.Context, topic string) (<-chan Signal, error) {
	if topic == "" {
		return nil, ErrTopicMissing
	}
	msgs, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}
	out := make(chan Signal, 1)
	go func() {
		defer close(out)
		for msg := range msgs {
			msg.Ack()
			sig := Signal{ID: msg.UUID, Topic: topic, At: parseAt(msg.Metadata.Get("at"))}
			select {
			case out <- sig:
			default:
			}
		}
	}()
	return out, nil
}

func (b *Broadcaster) Close() error {
	return b.pubsub.Close()
}

func parseAt(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
