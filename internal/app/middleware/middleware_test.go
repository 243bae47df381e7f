package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourbook/internal/app/commands"
	"tourbook/internal/app/outbox"
)

type echoResult struct {
	N int `json:"n"`
}

type echoCommand struct {
	key   string
	valid error
}

func (c echoCommand) Key() string            { return "test.echo" }
func (c echoCommand) IdempotencyKey() string { return c.key }
func (c echoCommand) ResultPrototype() any   { return &echoResult{} }
func (c echoCommand) Validate() error        { return c.valid }

type otherCommand struct{ key string }

func (c otherCommand) Key() string            { return "test.other" }
func (c otherCommand) IdempotencyKey() string { return c.key }
func (c otherCommand) ResultPrototype() any   { return &echoResult{} }

type mapStore struct {
	items map[string]IdempotencyRecord
}

func (s *mapStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *mapStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.items[rec.Key] = rec
	return nil
}

func newCountingBus(calls *int, fail *error) *commands.InMemoryBus {
	bus := commands.NewInMemoryBus()
	handler := commands.HandlerFunc[echoCommand, *echoResult](func(ctx context.Context, cmd echoCommand) (*echoResult, error) {
		*calls++
		if *fail != nil {
			return nil, *fail
		}
		return &echoResult{N: *calls}, nil
	})
	commands.RegisterHandler(bus, "test.echo", handler)
	commands.RegisterHandler(bus, "test.other", commands.HandlerFunc[otherCommand, *echoResult](func(ctx context.Context, cmd otherCommand) (*echoResult, error) {
		return &echoResult{}, nil
	}))
	return bus
}

func TestIdempotencyReplaysSuccess(t *testing.T) {
	calls := 0
	var fail error
	store := &mapStore{items: map[string]IdempotencyRecord{}}
	bus := ChainCommands(newCountingBus(&calls, &fail), Idempotency(store, nil))

	first, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{key: "k1"})
	require.NoError(t, err)
	second, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{key: "k1"})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.N, second.N)

	_, err = commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "no key means no dedup")
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	calls := 0
	fail := errors.New("rejected")
	store := &mapStore{items: map[string]IdempotencyRecord{}}
	bus := ChainCommands(newCountingBus(&calls, &fail), Idempotency(store, nil))

	_, err := bus.Dispatch(context.Background(), echoCommand{key: "k1"})
	require.ErrorIs(t, err, fail)
	assert.Empty(t, store.items)

	fail = nil
	res, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{key: "k1"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.N)
}

func TestIdempotencyKeyReusedAcrossCommands(t *testing.T) {
	calls := 0
	var fail error
	store := &mapStore{items: map[string]IdempotencyRecord{}}
	bus := ChainCommands(newCountingBus(&calls, &fail), Idempotency(store, nil))

	_, err := bus.Dispatch(context.Background(), echoCommand{key: "shared"})
	require.NoError(t, err)
	_, err = bus.Dispatch(context.Background(), otherCommand{key: "shared"})
	assert.ErrorIs(t, err, ErrKeyReused)
}

func TestValidationStopsBeforeHandler(t *testing.T) {
	calls := 0
	var fail error
	bad := errors.New("bad shape")
	bus := ChainCommands(newCountingBus(&calls, &fail), Validation(SelfValidator{}))

	_, err := bus.Dispatch(context.Background(), echoCommand{valid: bad})
	assert.ErrorIs(t, err, bad)
	assert.Zero(t, calls)

	_, err = bus.Dispatch(context.Background(), echoCommand{})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestChainOrderOutermostFirst(t *testing.T) {
	var order []string
	tag := func(name string) CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				order = append(order, name)
				return next.Dispatch(ctx, cmd)
			})
		}
	}
	calls := 0
	var fail error
	bus := ChainCommands(newCountingBus(&calls, &fail), tag("a"), tag("b"), Logging(nil))

	_, err := bus.Dispatch(context.Background(), echoCommand{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)
}

type flushCounter struct {
	flushes int
	err     error
}

func (f *flushCounter) Add(context.Context, outbox.EventRecord) error { return nil }

func (f *flushCounter) Flush(context.Context) error {
	f.flushes++
	return f.err
}

func TestOutboxFlushRunsOnFailureToo(t *testing.T) {
	calls := 0
	fail := errors.New("create failed")
	box := &flushCounter{}
	bus := ChainCommands(newCountingBus(&calls, &fail), OutboxFlush(box))

	_, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{})
	assert.ErrorIs(t, err, fail)
	assert.Equal(t, 1, box.flushes)

	fail = nil
	box.err = errors.New("flush failed")
	_, err = commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{})
	assert.ErrorIs(t, err, box.err)
	assert.Equal(t, 2, box.flushes)
}
