package reservations

import (
	"context"
	"errors"
	"strings"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/support"
	"staybook/internal/app/uow"
	domainaccommodations "staybook/internal/domain/accommodations"
	domainreservations "staybook/internal/domain/reservations"
)

const (
	listByGuestKey         = "reservations.list_by_guest"
	listByAccommodationKey = "reservations.list_by_accommodation"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListByGuestQuery pages through a guest's reservations, any state.
type ListByGuestQuery struct {
	GuestID string
	Page    dto.PageRequest
}

func (q ListByGuestQuery) Key() string { return listByGuestKey }

// ListByAccommodationQuery pages through an accommodation's reservations,
// read-only for the owning host.
type ListByAccommodationQuery struct {
	AccommodationID string
	Page            dto.PageRequest
}

func (q ListByAccommodationQuery) Key() string { return listByAccommodationKey }

type ListHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListHandler) HandleByGuest(ctx context.Context, q ListByGuestQuery) (dto.ReservationCollection, error) {
	guestID := strings.TrimSpace(q.GuestID)
	if guestID == "" {
		return dto.ReservationCollection{}, errors.New("reservations: guest id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	page := q.Page.Normalized(defaultPageLimit, maxPageLimit)
	items, total, err := unit.Reservations().ListByGuest(execCtx, guestID, domainreservations.Page{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	return dto.MapReservations(items, total), nil
}

func (h *ListHandler) HandleByAccommodation(ctx context.Context, q ListByAccommodationQuery) (dto.ReservationCollection, error) {
	id := strings.TrimSpace(q.AccommodationID)
	if id == "" {
		return dto.ReservationCollection{}, errors.New("reservations: accommodation id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	page := q.Page.Normalized(defaultPageLimit, maxPageLimit)
	items, total, err := unit.Reservations().ListByAccommodation(execCtx, domainaccommodations.AccommodationID(id), domainreservations.Page{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	return dto.MapReservations(items, total), nil
}

// Register wires the list queries onto a bus.
func (h *ListHandler) Register(bus *queries.InMemoryBus) {
	queries.RegisterHandler(bus, listByGuestKey, queries.HandlerFunc[ListByGuestQuery, dto.ReservationCollection](h.HandleByGuest))
	queries.RegisterHandler(bus, listByAccommodationKey, queries.HandlerFunc[ListByAccommodationQuery, dto.ReservationCollection](h.HandleByAccommodation))
}
