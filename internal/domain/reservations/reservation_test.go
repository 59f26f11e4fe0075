package reservations_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/accommodations"
	"staybook/internal/domain/reservations"
	"staybook/internal/domain/shared/daterange"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newReservation(t *testing.T) *reservations.Reservation {
	t.Helper()
	dr, err := daterange.New(day(2030, 6, 10), day(2030, 6, 15))
	require.NoError(t, err)
	r, err := reservations.NewReservation(reservations.CreateParams{
		ID:              "res-1",
		AccommodationID: accommodations.AccommodationID("acc-1"),
		GuestID:         "guest-1",
		Range:           dr,
		Guests:          2,
		Capacity:        4,
		CreatedAt:       day(2030, 1, 1),
	})
	require.NoError(t, err)
	return r
}

func TestNewReservationValidation(t *testing.T) {
	dr, err := daterange.New(day(2030, 6, 10), day(2030, 6, 15))
	require.NoError(t, err)

	base := reservations.CreateParams{
		ID:              "res-1",
		AccommodationID: "acc-1",
		GuestID:         "guest-1",
		Range:           dr,
		Guests:          2,
		Capacity:        4,
		CreatedAt:       day(2030, 1, 1),
	}

	t.Run("missing id", func(t *testing.T) {
		params := base
		params.ID = "  "
		_, err := reservations.NewReservation(params)
		assert.ErrorIs(t, err, reservations.ErrIDRequired)
	})
	t.Run("missing guest", func(t *testing.T) {
		params := base
		params.GuestID = ""
		_, err := reservations.NewReservation(params)
		assert.ErrorIs(t, err, reservations.ErrGuestRequired)
	})
	t.Run("zero guests", func(t *testing.T) {
		params := base
		params.Guests = 0
		_, err := reservations.NewReservation(params)
		assert.ErrorIs(t, err, reservations.ErrInvalidGuests)
	})
	t.Run("over capacity", func(t *testing.T) {
		params := base
		params.Guests = 5
		_, err := reservations.NewReservation(params)
		assert.ErrorIs(t, err, reservations.ErrCapacityExceeded)
	})
	t.Run("at capacity is fine", func(t *testing.T) {
		params := base
		params.Guests = 4
		r, err := reservations.NewReservation(params)
		require.NoError(t, err)
		assert.Equal(t, reservations.StatePending, r.State)
	})
}

func TestNewReservationStartsPendingWithEvent(t *testing.T) {
	r := newReservation(t)
	assert.Equal(t, reservations.StatePending, r.State)
	events := r.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "reservation.requested", events[0].EventName())
}

func TestLifecycleTransitions(t *testing.T) {
	now := day(2030, 6, 1)

	t.Run("pending to confirmed to completed", func(t *testing.T) {
		r := newReservation(t)
		require.NoError(t, r.Confirm(now))
		assert.Equal(t, reservations.StateConfirmed, r.State)
		require.NoError(t, r.Complete(now))
		assert.Equal(t, reservations.StateCompleted, r.State)
		assert.True(t, r.Terminal())
	})

	t.Run("cancel from pending", func(t *testing.T) {
		r := newReservation(t)
		require.NoError(t, r.Cancel(now))
		assert.Equal(t, reservations.StateCancelled, r.State)
	})

	t.Run("cancel from confirmed", func(t *testing.T) {
		r := newReservation(t)
		require.NoError(t, r.Confirm(now))
		require.NoError(t, r.Cancel(now))
		assert.Equal(t, reservations.StateCancelled, r.State)
	})

	t.Run("second cancel fails", func(t *testing.T) {
		r := newReservation(t)
		require.NoError(t, r.Cancel(now))
		assert.ErrorIs(t, r.Cancel(now), reservations.ErrInvalidTransition)
	})

	t.Run("complete skipping confirm fails", func(t *testing.T) {
		r := newReservation(t)
		assert.ErrorIs(t, r.Complete(now), reservations.ErrInvalidTransition)
	})

	t.Run("confirm after cancel fails", func(t *testing.T) {
		r := newReservation(t)
		require.NoError(t, r.Cancel(now))
		assert.ErrorIs(t, r.Confirm(now), reservations.ErrInvalidTransition)
	})

	t.Run("cancel after complete fails", func(t *testing.T) {
		r := newReservation(t)
		require.NoError(t, r.Confirm(now))
		require.NoError(t, r.Complete(now))
		assert.ErrorIs(t, r.Cancel(now), reservations.ErrInvalidTransition)
	})
}

func TestBlockingStates(t *testing.T) {
	assert.ElementsMatch(t,
		[]reservations.State{reservations.StatePending, reservations.StateConfirmed},
		reservations.BlockingStates())
}
