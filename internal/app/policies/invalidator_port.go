package policies

import "context"

// TopicDataChanged carries no payload; listeners re-fetch what they show.
const TopicDataChanged = "data.changed"

type Invalidator interface {
	Invalidate(ctx context.Context, topic string) error
}
