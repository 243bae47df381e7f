package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceQueue struct {
	docs   []*EventDocument
	sent   []string
	failed map[string]string
}

func (q *sliceQueue) Claim(_ context.Context, _ string) (*EventDocument, error) {
	for _, d := range q.docs {
		if d.State == StateNew {
			d.State = StateClaimed
			out := *d
			return &out, nil
		}
	}
	return nil, nil
}

func (q *sliceQueue) MarkSent(_ context.Context, id string) error {
	q.sent = append(q.sent, id)
	return nil
}

func (q *sliceQueue) MarkFailed(_ context.Context, id string, _ time.Time, msg string) error {
	q.failed[id] = msg
	return nil
}

type capture struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type captureProducer struct {
	got  []capture
	fail error
}

func (p *captureProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail != nil {
		return p.fail
	}
	p.got = append(p.got, capture{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func TestWorkerShipsCloudEvents(t *testing.T) {
	q := &sliceQueue{failed: map[string]string{}, docs: []*EventDocument{
		{ID: "e1", Name: "booking.created", Aggregate: "req-1", Payload: []byte(`{"BookingID":"b-1"}`), State: StateNew},
		{ID: "e2", Name: "assignment.removed", Aggregate: "p1", Payload: []byte(`{}`), State: StateNew},
	}}
	p := &captureProducer{}
	w := &Worker{Store: q, Producer: p, TopicPrefix: "dev."}

	w.drain(context.Background())

	assert.Equal(t, []string{"e1", "e2"}, q.sent)
	require.Len(t, p.got, 2)
	assert.Equal(t, "dev.booking.events.v1", p.got[0].topic)
	assert.Equal(t, "dev.assignment.events.v1", p.got[1].topic)
	assert.Equal(t, "req-1", p.got[0].key)
	assert.Equal(t, "application/cloudevents+json", p.got[0].headers["content-type"])

	var evt map[string]any
	require.NoError(t, json.Unmarshal(p.got[0].payload, &evt))
	assert.Equal(t, "booking.created.v1", evt["type"])
	assert.Equal(t, "app://tourbook", evt["source"])
	assert.Equal(t, map[string]any{"BookingID": "b-1"}, evt["data"])
}

func TestWorkerMarksFailures(t *testing.T) {
	q := &sliceQueue{failed: map[string]string{}, docs: []*EventDocument{
		{ID: "e1", Name: "booking.created", Payload: []byte(`{}`), State: StateNew},
		{ID: "bad", Name: "booking.created", Payload: []byte(`not json`), State: StateNew},
	}}
	w := &Worker{Store: q, Producer: &captureProducer{fail: errors.New("broker down")}}

	w.drain(context.Background())
	assert.Equal(t, "broker down", q.failed["e1"])
	assert.Empty(t, q.sent)

	w.Producer = &captureProducer{}
	w.drain(context.Background())
	assert.Contains(t, q.failed, "bad")
}

func TestWorkerRequiresDependencies(t *testing.T) {
	err := (&Worker{}).Run(context.Background())
	assert.ErrorIs(t, err, ErrWorkerNotConfigured)
}

func TestNextRetryUsesBackoff(t *testing.T) {
	w := &Worker{Backoff: []time.Duration{time.Second, time.Minute}}
	now := time.Now()
	assert.WithinDuration(t, now.Add(time.Second), w.nextRetry(0), time.Second)
	assert.WithinDuration(t, now.Add(time.Minute), w.nextRetry(5), time.Second)
}
