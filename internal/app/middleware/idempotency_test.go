package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	domainreservations "staybook/internal/domain/reservations"
	"staybook/internal/infra/storage/memory"
)

type bookCommand struct {
	Client string
}

func (c bookCommand) Key() string { return "test.book" }

func (c bookCommand) IdempotencyKey() string { return c.Client }

func (c bookCommand) ResultPrototype() any { return &bookResult{} }

type bookResult struct {
	ID string `json:"id"`
}

type plainCommand struct{}

func (plainCommand) Key() string { return "test.plain" }

func newBus(t *testing.T, calls *int, fail error) commands.Bus {
	t.Helper()
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, "test.book", commands.HandlerFunc[bookCommand, bookResult](
		func(ctx context.Context, cmd bookCommand) (bookResult, error) {
			*calls++
			if fail != nil {
				return bookResult{}, fail
			}
			return bookResult{ID: "res-1"}, nil
		}))
	commands.RegisterHandler(bus, "test.plain", commands.HandlerFunc[plainCommand, bookResult](
		func(ctx context.Context, cmd plainCommand) (bookResult, error) {
			*calls++
			return bookResult{ID: "plain"}, nil
		}))
	return bus
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	ctx := context.Background()
	var calls int
	bus := middleware.ChainCommands(
		newBus(t, &calls, nil),
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
	)

	first, err := commands.Dispatch[bookCommand, bookResult](ctx, bus, bookCommand{Client: "key-1"})
	require.NoError(t, err)
	assert.Equal(t, "res-1", first.ID)
	assert.Equal(t, 1, calls)

	replay, err := commands.Dispatch[bookCommand, bookResult](ctx, bus, bookCommand{Client: "key-1"})
	require.NoError(t, err)
	assert.Equal(t, first, replay)
	assert.Equal(t, 1, calls, "handler must not run again for the same key")

	_, err = commands.Dispatch[bookCommand, bookResult](ctx, bus, bookCommand{Client: "key-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyReplaysFailure(t *testing.T) {
	ctx := context.Background()
	var calls int
	bus := middleware.ChainCommands(
		newBus(t, &calls, domainreservations.ErrDateRangeConflict),
		middleware.Idempotency(memory.NewIdempotencyStore(), nil, domainreservations.ErrDateRangeConflict),
	)

	_, err := commands.Dispatch[bookCommand, bookResult](ctx, bus, bookCommand{Client: "key-1"})
	require.Error(t, err)
	require.Equal(t, 1, calls)

	// The replay must keep sentinel identity so the HTTP layer maps the
	// retry to the same status as the first attempt.
	_, err = commands.Dispatch[bookCommand, bookResult](ctx, bus, bookCommand{Client: "key-1"})
	assert.ErrorIs(t, err, domainreservations.ErrDateRangeConflict)
	assert.Equal(t, 1, calls)
}

func TestIdempotencyReplaysUnknownFailureByMessage(t *testing.T) {
	ctx := context.Background()
	var calls int
	boom := errors.New("dates already booked")
	bus := middleware.ChainCommands(
		newBus(t, &calls, boom),
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
	)

	_, err := commands.Dispatch[bookCommand, bookResult](ctx, bus, bookCommand{Client: "key-1"})
	require.Error(t, err)

	_, err = commands.Dispatch[bookCommand, bookResult](ctx, bus, bookCommand{Client: "key-1"})
	require.Error(t, err)
	assert.Equal(t, boom.Error(), err.Error())
	assert.Equal(t, 1, calls)
}

func TestIdempotencySkipsWithoutKey(t *testing.T) {
	ctx := context.Background()
	var calls int
	bus := middleware.ChainCommands(
		newBus(t, &calls, nil),
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
	)

	for i := 0; i < 2; i++ {
		_, err := commands.Dispatch[bookCommand, bookResult](ctx, bus, bookCommand{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls, "empty key bypasses deduplication")

	_, err := commands.Dispatch[plainCommand, bookResult](ctx, bus, plainCommand{})
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "non-idempotent commands pass through")
}
