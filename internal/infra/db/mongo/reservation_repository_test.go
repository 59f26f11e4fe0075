package mongo

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/uow"
	domainaccommodations "staybook/internal/domain/accommodations"
	domainreservations "staybook/internal/domain/reservations"
	"staybook/internal/domain/shared/daterange"
)

// These tests need a replica-set mongod for session transactions; they skip
// when MONGO_TEST_URI is unset.
func testClient(t *testing.T) *Client {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	client, err := New(uri, fmt.Sprintf("staybook_test_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		_ = client.DB.Drop(ctx)
		_ = client.DB.Client().Disconnect(ctx)
	})
	require.NoError(t, client.EnsureIndexes(context.Background()))
	return client
}

func testFactory(client *Client) Factory {
	return Factory{
		DB:                 client.DB,
		AccommodationsRepo: NewAccommodationRepository(client.DB),
		ReservationsRepo:   NewReservationRepository(client.DB),
		CommentsRepo:       NewCommentRepository(client.DB),
		UsersRepo:          NewUserRepository(client.DB),
	}
}

func seedAccommodation(t *testing.T, client *Client) *domainaccommodations.Accommodation {
	t.Helper()
	acc, err := domainaccommodations.New(domainaccommodations.CreateParams{
		ID:                "acc-1",
		Host:              "host-1",
		Title:             "Loft",
		City:              "Madrid",
		NightlyPriceCents: 9000,
		MaxGuests:         4,
		Now:               time.Now(),
	})
	require.NoError(t, err)
	acc.ClearEvents()
	require.NoError(t, NewAccommodationRepository(client.DB).Save(context.Background(), acc))
	return acc
}

func stayRange(t *testing.T, from, to int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2030, 6, from, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 6, to, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return dr
}

// bookInTransaction runs the reservation insert inside its own session
// transaction, the way the unit-of-work middleware does in production.
func bookInTransaction(factory Factory, id string, dr daterange.DateRange) error {
	ctx := context.Background()
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	execCtx := unit.(*Unit).InjectContext(ctx)
	reservation, err := domainreservations.NewReservation(domainreservations.CreateParams{
		ID:              domainreservations.ReservationID(id),
		AccommodationID: "acc-1",
		GuestID:         "guest-1",
		Range:           dr,
		Guests:          2,
		Capacity:        4,
		CreatedAt:       time.Now(),
	})
	if err != nil {
		_ = unit.Rollback(execCtx)
		return err
	}
	reservation.ClearEvents()
	if err := unit.Reservations().Save(execCtx, reservation); err != nil {
		_ = unit.Rollback(execCtx)
		return err
	}
	return unit.Commit(execCtx)
}

func TestSaveRejectsOverlapInsideTransaction(t *testing.T) {
	client := testClient(t)
	seedAccommodation(t, client)
	factory := testFactory(client)

	require.NoError(t, bookInTransaction(factory, "res-1", stayRange(t, 10, 15)))

	err := bookInTransaction(factory, "res-2", stayRange(t, 12, 18))
	assert.ErrorIs(t, err, domainreservations.ErrDateRangeConflict)

	assert.NoError(t, bookInTransaction(factory, "res-3", stayRange(t, 15, 20)), "back-to-back stay must be allowed")
}

// Two transactions inserting distinct documents have no overlapping write
// set, so without the accommodation bump in Save both would commit on their
// snapshots and double-book the range.
func TestConcurrentSameRangeBooksOnce(t *testing.T) {
	client := testClient(t)
	acc := seedAccommodation(t, client)
	factory := testFactory(client)
	dr := stayRange(t, 10, 15)

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = bookInTransaction(factory, fmt.Sprintf("res-%d", i), dr)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one writer may book the range")

	booked, err := NewReservationRepository(client.DB).FindOverlapping(
		context.Background(), acc.ID, dr, domainreservations.BlockingStates())
	require.NoError(t, err)
	assert.Len(t, booked, 1)
}
