package reservations_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/handlers/reservations"
	"staybook/internal/app/outbox"
	domainaccommodations "staybook/internal/domain/accommodations"
	domainreservations "staybook/internal/domain/reservations"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/storage/memory"
)

var clock = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	factory       memory.Factory
	outbox        *memory.Outbox
	createHdl     *reservations.CreateReservationHandler
	transition    *reservations.TransitionHandler
	accommodation *domainaccommodations.Accommodation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	accommodationRepo := memory.NewAccommodationRepository()
	reservationRepo := memory.NewReservationRepository()
	commentRepo := memory.NewCommentRepository()
	userRepo := memory.NewUserRepository()
	factory := memory.Factory{
		AccommodationsRepo: accommodationRepo,
		ReservationsRepo:   reservationRepo,
		CommentsRepo:       commentRepo,
		UsersRepo:          userRepo,
	}
	box := memory.NewOutbox()

	ctx := context.Background()
	guest, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           "guest-1",
		Email:        "guest@example.com",
		Name:         "Guest One",
		PasswordHash: "x",
		CreatedAt:    clock,
	})
	require.NoError(t, err)
	require.NoError(t, userRepo.Save(ctx, guest))

	acc, err := domainaccommodations.New(domainaccommodations.CreateParams{
		ID:                "acc-1",
		Host:              "host-1",
		Title:             "City loft",
		City:              "Madrid",
		NightlyPriceCents: 8000,
		MaxGuests:         2,
		Now:               clock,
	})
	require.NoError(t, err)
	acc.ClearEvents()
	require.NoError(t, accommodationRepo.Save(ctx, acc))

	return &fixture{
		factory:       factory,
		outbox:        box,
		createHdl:     &reservations.CreateReservationHandler{UoWFactory: factory, Outbox: box, Encoder: outbox.JSONEventEncoder{}},
		transition:    &reservations.TransitionHandler{UoWFactory: factory, Outbox: box, Encoder: outbox.JSONEventEncoder{}},
		accommodation: acc,
	}
}

func (f *fixture) createCmd(id string, checkIn, checkOut time.Time, guests int) reservations.CreateReservationCommand {
	return reservations.CreateReservationCommand{
		ReservationID:   id,
		AccommodationID: "acc-1",
		GuestID:         "guest-1",
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          guests,
		Now:             clock,
	}
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path starts pending", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.createHdl.Handle(ctx, f.createCmd("res-1", day(2030, 6, 10), day(2030, 6, 15), 2))
		require.NoError(t, err)
		assert.Equal(t, string(domainreservations.StatePending), result.Status)
		assert.Equal(t, 5, result.Nights)
	})

	t.Run("invalid date range", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.createHdl.Handle(ctx, f.createCmd("res-1", day(2030, 6, 15), day(2030, 6, 10), 2))
		assert.ErrorIs(t, err, daterange.ErrInvalidRange)

		_, err = f.createHdl.Handle(ctx, f.createCmd("res-1", day(2030, 6, 10), day(2030, 6, 10), 2))
		assert.ErrorIs(t, err, daterange.ErrInvalidRange)
	})

	t.Run("check-in in the past", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.createHdl.Handle(ctx, f.createCmd("res-1", day(2030, 4, 20), day(2030, 4, 25), 2))
		assert.ErrorIs(t, err, domainreservations.ErrCheckInPast)
	})

	t.Run("check-in today is allowed", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.createHdl.Handle(ctx, f.createCmd("res-1", day(2030, 5, 1), day(2030, 5, 3), 2))
		assert.NoError(t, err)
	})

	t.Run("unknown accommodation", func(t *testing.T) {
		f := newFixture(t)
		cmd := f.createCmd("res-1", day(2030, 6, 10), day(2030, 6, 15), 2)
		cmd.AccommodationID = "missing"
		_, err := f.createHdl.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainaccommodations.ErrNotFound)
	})

	t.Run("deleted accommodation behaves as missing", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.accommodation.Delist(clock))
		f.accommodation.ClearEvents()
		require.NoError(t, f.factory.AccommodationsRepo.Save(ctx, f.accommodation))

		_, err := f.createHdl.Handle(ctx, f.createCmd("res-1", day(2030, 6, 10), day(2030, 6, 15), 2))
		assert.ErrorIs(t, err, domainaccommodations.ErrNotFound)
	})

	t.Run("unknown guest", func(t *testing.T) {
		f := newFixture(t)
		cmd := f.createCmd("res-1", day(2030, 6, 10), day(2030, 6, 15), 2)
		cmd.GuestID = "nobody"
		_, err := f.createHdl.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainuser.ErrNotFound)
	})

	t.Run("capacity exceeded", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.createHdl.Handle(ctx, f.createCmd("res-1", day(2030, 6, 10), day(2030, 6, 15), 3))
		assert.ErrorIs(t, err, domainreservations.ErrCapacityExceeded)
	})

	t.Run("capacity checked before overlap", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.createHdl.Handle(ctx, f.createCmd("res-1", day(2030, 6, 10), day(2030, 6, 15), 2))
		require.NoError(t, err)
		// second request both over capacity and overlapping
		_, err = f.createHdl.Handle(ctx, f.createCmd("res-2", day(2030, 6, 12), day(2030, 6, 14), 3))
		assert.ErrorIs(t, err, domainreservations.ErrCapacityExceeded)
	})

	t.Run("overlapping range rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.createHdl.Handle(ctx, f.createCmd("res-1", day(2030, 6, 10), day(2030, 6, 15), 2))
		require.NoError(t, err)

		for _, r := range [][2]time.Time{
			{day(2030, 6, 10), day(2030, 6, 15)},
			{day(2030, 6, 12), day(2030, 6, 13)},
			{day(2030, 6, 8), day(2030, 6, 11)},
			{day(2030, 6, 14), day(2030, 6, 20)},
		} {
			_, err := f.createHdl.Handle(ctx, f.createCmd("res-x", r[0], r[1], 2))
			assert.ErrorIs(t, err, domainreservations.ErrDateRangeConflict)
		}
	})

	t.Run("back to back stays allowed", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.createHdl.Handle(ctx, f.createCmd("res-1", day(2030, 6, 10), day(2030, 6, 15), 2))
		require.NoError(t, err)
		_, err = f.createHdl.Handle(ctx, f.createCmd("res-2", day(2030, 6, 15), day(2030, 6, 20), 2))
		assert.NoError(t, err)
		_, err = f.createHdl.Handle(ctx, f.createCmd("res-3", day(2030, 6, 5), day(2030, 6, 10), 2))
		assert.NoError(t, err)
	})

	t.Run("cancelled reservation releases its dates", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.createHdl.Handle(ctx, f.createCmd("res-1", day(2030, 6, 10), day(2030, 6, 15), 2))
		require.NoError(t, err)
		_, err = f.transition.HandleCancel(ctx, reservations.CancelReservationCommand{ReservationID: "res-1", Now: clock})
		require.NoError(t, err)

		_, err = f.createHdl.Handle(ctx, f.createCmd("res-2", day(2030, 6, 10), day(2030, 6, 15), 2))
		assert.NoError(t, err)
	})
}

// Concurrent requests for the same dates must produce exactly one reservation;
// the repository's overlap constraint backstops races past the availability
// check.
func TestCreateReservationConcurrentSameRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cmd := f.createCmd("", day(2030, 6, 10), day(2030, 6, 15), 2)
			cmd.ReservationID = "res-" + string(rune('a'+n))
			_, errs[n] = f.createHdl.Handle(ctx, cmd)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domainreservations.ErrDateRangeConflict)
		}
	}
	assert.Equal(t, 1, succeeded)

	dr, err := daterange.New(day(2030, 6, 10), day(2030, 6, 15))
	require.NoError(t, err)
	blocking, err := f.factory.ReservationsRepo.FindOverlapping(ctx, "acc-1", dr, domainreservations.BlockingStates())
	require.NoError(t, err)
	assert.Len(t, blocking, 1)
}
