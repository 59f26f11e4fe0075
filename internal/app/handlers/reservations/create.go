package reservations

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/support"
	"staybook/internal/app/uow"
	domainaccommodations "staybook/internal/domain/accommodations"
	domainreservations "staybook/internal/domain/reservations"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/domain/shared/daterange"
)

const createReservationKey = "reservations.create"

// CreateReservationCommand requests a new stay. Validation order: date range,
// accommodation/guest existence, capacity, overlap.
type CreateReservationCommand struct {
	ReservationID   string
	AccommodationID string
	GuestID         string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	Now             time.Time
	// ClientKey, when present, dedupes retried requests via the idempotency
	// middleware.
	ClientKey string
}

func (c CreateReservationCommand) Key() string { return createReservationKey }

func (c CreateReservationCommand) IdempotencyKey() string { return c.ClientKey }

func (c CreateReservationCommand) ResultPrototype() any { return &dto.Reservation{} }

// CreateReservationHandler validates and persists a PENDING reservation. The
// overlap check and the insert share one unit of work; the repository's
// no-overlap constraint in Save backstops concurrent creates that raced past
// the checker.
type CreateReservationHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *CreateReservationHandler) Handle(ctx context.Context, cmd CreateReservationCommand) (dto.Reservation, error) {
	unit, execCtx, managed, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return dto.Reservation{}, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(execCtx)
			}
		}()
	}

	dr, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return dto.Reservation{}, err
	}
	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	if err := validateCheckInNotPast(dr, now); err != nil {
		return dto.Reservation{}, err
	}

	accommodation, err := unit.Accommodations().ByID(execCtx, domainaccommodations.AccommodationID(cmd.AccommodationID))
	if err != nil {
		return dto.Reservation{}, err
	}
	if accommodation.Status != domainaccommodations.StatusActive {
		return dto.Reservation{}, domainaccommodations.ErrNotFound
	}
	guest, err := unit.Users().ByID(execCtx, domainuser.ID(cmd.GuestID))
	if err != nil {
		return dto.Reservation{}, err
	}

	reservation, err := domainreservations.NewReservation(domainreservations.CreateParams{
		ID:              domainreservations.ReservationID(cmd.ReservationID),
		AccommodationID: accommodation.ID,
		GuestID:         string(guest.ID),
		Range:           dr,
		Guests:          cmd.Guests,
		Capacity:        accommodation.MaxGuests,
		CreatedAt:       now,
	})
	if err != nil {
		return dto.Reservation{}, err
	}

	checker := domainreservations.AvailabilityChecker{Reservations: unit.Reservations()}
	available, err := checker.IsAvailable(execCtx, accommodation.ID, dr)
	if err != nil {
		return dto.Reservation{}, err
	}
	if !available {
		return dto.Reservation{}, domainreservations.ErrDateRangeConflict
	}

	if err := unit.Reservations().Save(execCtx, reservation); err != nil {
		return dto.Reservation{}, err
	}

	pending := reservation.PendingEvents()
	reservation.ClearEvents()
	if err := outbox.RecordDomainEvents(execCtx, h.Outbox, h.Encoder, pending); err != nil {
		return dto.Reservation{}, err
	}

	if managed {
		if err := unit.Commit(execCtx); err != nil {
			return dto.Reservation{}, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("reservation requested",
			"reservation_id", reservation.ID,
			"accommodation_id", reservation.AccommodationID,
			"guest_id", reservation.GuestID,
			"nights", dr.Nights(),
			"guests", reservation.Guests)
	}
	return dto.MapReservation(reservation), nil
}

// validateCheckInNotPast compares calendar days, not instants, so a check-in
// later today is still accepted.
func validateCheckInNotPast(dr daterange.DateRange, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	checkInDay := time.Date(dr.CheckIn.Year(), dr.CheckIn.Month(), dr.CheckIn.Day(), 0, 0, 0, 0, time.UTC)
	if checkInDay.Before(today) {
		return domainreservations.ErrCheckInPast
	}
	return nil
}

// Register wires the create command onto a bus.
func (h *CreateReservationHandler) Register(bus *commands.InMemoryBus) {
	commands.RegisterHandler(bus, createReservationKey, commands.HandlerFunc[CreateReservationCommand, dto.Reservation](h.Handle))
}

var _ commands.Handler[CreateReservationCommand, dto.Reservation] = (*CreateReservationHandler)(nil)
