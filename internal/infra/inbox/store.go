// Package inbox remembers which consumed events were already handled.
package inbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Deduper reports whether eventID was seen before, recording it otherwise.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

type Store struct {
	col       *mongo.Collection
	consumer  string
	retention time.Duration
}

func NewStore(db *mongo.Database, consumer string, retention time.Duration) *Store {
	return &Store{col: db.Collection("app_inbox"), consumer: consumer, retention: retention}
}

// EnsureIndexes builds the unique (event_id, consumer) index Seen detects
// redeliveries with, plus the retention TTL when one is set.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "consumer", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if s.retention > 0 {
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: "received_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(s.retention.Seconds())),
		})
	}
	if _, err := s.col.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("inbox: create indexes: %w", err)
	}
	return nil
}

func (s *Store) Seen(ctx context.Context, eventID string) (bool, error) {
	doc := bson.M{"event_id": eventID, "consumer": s.consumer, "received_at": time.Now().UTC()}
	_, err := s.col.InsertOne(ctx, doc)
	if err == nil {
		return false, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return true, nil
	}
	return false, err
}

// Memory keeps the most recent ids in a ring. Older ids fall out once the
// ring is full.
type Memory struct {
	mu   sync.Mutex
	seen map[string]struct{}
	ring []string
	next int
}

func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 1024
	}
	return &Memory{seen: make(map[string]struct{}, size), ring: make([]string, size)}
}

func (m *Memory) Seen(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[eventID]; ok {
		return true, nil
	}
	if old := m.ring[m.next]; old != "" {
		delete(m.seen, old)
	}
	m.ring[m.next] = eventID
	m.next = (m.next + 1) % len(m.ring)
	m.seen[eventID] = struct{}{}
	return false, nil
}

var (
	_ Deduper = (*Store)(nil)
	_ Deduper = (*Memory)(nil)
)
