package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidateReachesEverySubscriber(t *testing.T) {
	b := New(nil)
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := b.Subscribe(ctx, "data.changed")
	require.NoError(t, err)
	second, err := b.Subscribe(ctx, "data.changed")
	require.NoError(t, err)

	require.NoError(t, b.Invalidate(ctx, "data.changed"))

	for _, ch := range []<-chan Signal{first, second} {
		select {
		case sig := <-ch:
			assert.Equal(t, "data.changed", sig.Topic)
			assert.NotEmpty(t, sig.ID)
			assert.False(t, sig.At.IsZero())
		case <-time.After(2 * time.Second):
			t.Fatal("signal not delivered")
		}
	}
}

func TestInvalidateWithoutSubscribers(t *testing.T) {
	b := New(nil)
	defer b.Close()
	assert.NoError(t, b.Invalidate(context.Background(), "data.changed"))
	assert.ErrorIs(t, b.Invalidate(context.Background(), ""), ErrTopicMissing)
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	b := New(nil)
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx, "data.changed")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
