package accommodations_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/accommodations"
	reservationapp "staybook/internal/app/handlers/reservations"
	"staybook/internal/app/outbox"
	domainaccommodations "staybook/internal/domain/accommodations"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/storage/memory"
)

var clock = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	factory memory.Factory
	search  *accommodations.SearchHandler
	get     *accommodations.GetHandler
	host    *accommodations.HostHandler
	create  *reservationapp.CreateReservationHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	factory := memory.Factory{
		AccommodationsRepo: memory.NewAccommodationRepository(),
		ReservationsRepo:   memory.NewReservationRepository(),
		CommentsRepo:       memory.NewCommentRepository(),
		UsersRepo:          memory.NewUserRepository(),
	}
	box := memory.NewOutbox()
	encoder := outbox.JSONEventEncoder{}

	ctx := context.Background()
	for _, u := range []struct {
		id    string
		email string
		roles []domainuser.Role
	}{
		{"guest-1", "guest@example.com", nil},
		{"host-1", "host@example.com", []domainuser.Role{domainuser.RoleGuest, domainuser.RoleHost}},
	} {
		user, err := domainuser.NewUser(domainuser.CreateParams{
			ID: domainuser.ID(u.id), Email: u.email, Name: u.id, PasswordHash: "x",
			Roles: u.roles, CreatedAt: clock,
		})
		require.NoError(t, err)
		require.NoError(t, factory.UsersRepo.Save(ctx, user))
	}

	return &fixture{
		factory: factory,
		search:  &accommodations.SearchHandler{UoWFactory: factory},
		get:     &accommodations.GetHandler{UoWFactory: factory},
		host:    &accommodations.HostHandler{UoWFactory: factory, Outbox: box, Encoder: encoder},
		create:  &reservationapp.CreateReservationHandler{UoWFactory: factory, Outbox: box, Encoder: encoder},
	}
}

func (f *fixture) seedAccommodation(t *testing.T, id, city string, priceCents int64, maxGuests int) {
	t.Helper()
	_, err := f.host.HandleCreate(context.Background(), accommodations.CreateAccommodationCommand{
		AccommodationID:   id,
		HostID:            "host-1",
		Title:             "Listing " + id,
		City:              city,
		NightlyPriceCents: priceCents,
		MaxGuests:         maxGuests,
		Now:               clock,
	})
	require.NoError(t, err)
}

func TestHostCRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("create", func(t *testing.T) {
		f.seedAccommodation(t, "acc-1", "Madrid", 8000, 4)
		got, err := f.get.Handle(ctx, accommodations.GetQuery{AccommodationID: "acc-1"})
		require.NoError(t, err)
		assert.Equal(t, "Madrid", got.City)
		assert.Equal(t, string(domainaccommodations.StatusActive), got.Status)
	})

	t.Run("create validates price and capacity", func(t *testing.T) {
		_, err := f.host.HandleCreate(ctx, accommodations.CreateAccommodationCommand{
			AccommodationID: "acc-bad", HostID: "host-1", Title: "t", City: "c",
			NightlyPriceCents: -1, MaxGuests: 2, Now: clock,
		})
		assert.ErrorIs(t, err, domainaccommodations.ErrNegativePrice)

		_, err = f.host.HandleCreate(ctx, accommodations.CreateAccommodationCommand{
			AccommodationID: "acc-bad", HostID: "host-1", Title: "t", City: "c",
			NightlyPriceCents: 100, MaxGuests: 0, Now: clock,
		})
		assert.ErrorIs(t, err, domainaccommodations.ErrInvalidCapacity)
	})

	t.Run("update", func(t *testing.T) {
		_, err := f.host.HandleUpdate(ctx, accommodations.UpdateAccommodationCommand{
			AccommodationID: "acc-1", Title: "Renamed", City: "Madrid",
			NightlyPriceCents: 9000, MaxGuests: 3, Now: clock,
		})
		require.NoError(t, err)
		got, err := f.get.Handle(ctx, accommodations.GetQuery{AccommodationID: "acc-1"})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, int64(9000), got.NightlyPriceCents)
	})

	t.Run("delete is logical and idempotency fails loudly", func(t *testing.T) {
		_, err := f.host.HandleDelete(ctx, accommodations.DeleteAccommodationCommand{AccommodationID: "acc-1", Now: clock})
		require.NoError(t, err)

		got, err := f.get.Handle(ctx, accommodations.GetQuery{AccommodationID: "acc-1"})
		require.NoError(t, err)
		assert.Equal(t, string(domainaccommodations.StatusDeleted), got.Status)

		_, err = f.host.HandleDelete(ctx, accommodations.DeleteAccommodationCommand{AccommodationID: "acc-1", Now: clock})
		assert.ErrorIs(t, err, domainaccommodations.ErrAlreadyDeleted)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := f.get.Handle(ctx, accommodations.GetQuery{AccommodationID: "missing"})
		assert.ErrorIs(t, err, domainaccommodations.ErrNotFound)
	})
}

func TestSearchFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedAccommodation(t, "acc-1", "Madrid", 8000, 2)
	f.seedAccommodation(t, "acc-2", "Madrid", 12000, 6)
	f.seedAccommodation(t, "acc-3", "Barcelona", 5000, 4)

	t.Run("by city substring, case-insensitive", func(t *testing.T) {
		result, err := f.search.Handle(ctx, accommodations.SearchQuery{City: "mad"})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Total)
	})

	t.Run("by capacity", func(t *testing.T) {
		result, err := f.search.Handle(ctx, accommodations.SearchQuery{MinGuests: 4})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Total)
	})

	t.Run("by price band", func(t *testing.T) {
		result, err := f.search.Handle(ctx, accommodations.SearchQuery{PriceMinCents: 6000, PriceMaxCents: 10000})
		require.NoError(t, err)
		require.Equal(t, 1, result.Total)
		assert.Equal(t, "acc-1", result.Items[0].ID)
	})

	t.Run("deleted accommodations excluded", func(t *testing.T) {
		_, err := f.host.HandleDelete(ctx, accommodations.DeleteAccommodationCommand{AccommodationID: "acc-3", Now: clock})
		require.NoError(t, err)
		result, err := f.search.Handle(ctx, accommodations.SearchQuery{City: "Barcelona"})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Total)
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := f.search.Handle(ctx, accommodations.SearchQuery{City: "Madrid", Page: dto.PageRequest{Limit: 1, Offset: 1}})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Total)
		assert.Len(t, result.Items, 1)
	})
}

func TestSearchWithStayRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedAccommodation(t, "acc-1", "Madrid", 8000, 2)
	f.seedAccommodation(t, "acc-2", "Madrid", 12000, 6)

	_, err := f.create.Handle(ctx, reservationapp.CreateReservationCommand{
		ReservationID: "res-1", AccommodationID: "acc-1", GuestID: "guest-1",
		CheckIn: day(2030, 6, 10), CheckOut: day(2030, 6, 15), Guests: 2, Now: clock,
	})
	require.NoError(t, err)

	t.Run("booked accommodation filtered out", func(t *testing.T) {
		result, err := f.search.Handle(ctx, accommodations.SearchQuery{
			City: "Madrid", CheckIn: day(2030, 6, 12), CheckOut: day(2030, 6, 14),
		})
		require.NoError(t, err)
		require.Equal(t, 1, result.Total)
		assert.Equal(t, "acc-2", result.Items[0].ID)
	})

	t.Run("free period includes both", func(t *testing.T) {
		result, err := f.search.Handle(ctx, accommodations.SearchQuery{
			City: "Madrid", CheckIn: day(2030, 6, 20), CheckOut: day(2030, 6, 25),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Total)
	})

	t.Run("back to back stay keeps accommodation", func(t *testing.T) {
		result, err := f.search.Handle(ctx, accommodations.SearchQuery{
			City: "Madrid", CheckIn: day(2030, 6, 15), CheckOut: day(2030, 6, 18),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Total)
	})
}

// The repository clamps a single page, so the handler has to walk the whole
// candidate set; otherwise anything past the first page is invisible to the
// stay-range search.
func TestSearchWithStayRangeCoversAllCandidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const listings = 120
	for i := 0; i < listings; i++ {
		f.seedAccommodation(t, fmt.Sprintf("acc-%03d", i), "Madrid", int64(5000+i), 4)
	}

	plain, err := f.search.Handle(ctx, accommodations.SearchQuery{City: "Madrid"})
	require.NoError(t, err)
	require.Equal(t, listings, plain.Total)

	stay, err := f.search.Handle(ctx, accommodations.SearchQuery{
		City: "Madrid", CheckIn: day(2030, 6, 10), CheckOut: day(2030, 6, 15),
	})
	require.NoError(t, err)
	assert.Equal(t, listings, stay.Total)

	t.Run("pages past the first repository page", func(t *testing.T) {
		result, err := f.search.Handle(ctx, accommodations.SearchQuery{
			City: "Madrid", CheckIn: day(2030, 6, 10), CheckOut: day(2030, 6, 15),
			Page: dto.PageRequest{Limit: 30, Offset: 100},
		})
		require.NoError(t, err)
		assert.Equal(t, listings, result.Total)
		require.Len(t, result.Items, 20)
		assert.Equal(t, "acc-100", result.Items[0].ID)
	})

	t.Run("booked listing disappears from a late page", func(t *testing.T) {
		_, err := f.create.Handle(ctx, reservationapp.CreateReservationCommand{
			ReservationID: "res-late", AccommodationID: "acc-110", GuestID: "guest-1",
			CheckIn: day(2030, 6, 10), CheckOut: day(2030, 6, 15), Guests: 2, Now: clock,
		})
		require.NoError(t, err)

		stay, err := f.search.Handle(ctx, accommodations.SearchQuery{
			City: "Madrid", CheckIn: day(2030, 6, 12), CheckOut: day(2030, 6, 14),
		})
		require.NoError(t, err)
		assert.Equal(t, listings-1, stay.Total)
	})
}
