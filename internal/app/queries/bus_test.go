package queries

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guideRate struct{ ID string }

func (guideRate) Key() string { return "guide.rate" }

func TestAskTyped(t *testing.T) {
	bus := NewInMemoryBus()
	boom := errors.New("catalog down")
	RegisterHandler[guideRate, int](bus, "guide.rate", HandlerFunc[guideRate, int](func(_ context.Context, q guideRate) (int, error) {
		if q.ID == "" {
			return 0, boom
		}
		return 120, nil
	}))

	rate, err := Ask[guideRate, int](context.Background(), bus, guideRate{ID: "g1"})
	require.NoError(t, err)
	assert.Equal(t, 120, rate)

	_, err = Ask[guideRate, int](context.Background(), bus, guideRate{})
	assert.ErrorIs(t, err, boom)

	_, err = Ask[guideRate, string](context.Background(), bus, guideRate{ID: "g1"})
	assert.ErrorIs(t, err, ErrResultType)
}

func TestAskUnknownKey(t *testing.T) {
	_, err := NewInMemoryBus().Ask(context.Background(), guideRate{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	_, err = Ask[guideRate, int](context.Background(), nil, guideRate{})
	assert.ErrorIs(t, err, ErrNilBus)
}
