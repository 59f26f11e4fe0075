package reservations

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/accommodations"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
)

var (
	ErrNotFound          = errors.New("reservations: not found")
	ErrIDRequired        = errors.New("reservations: id is required")
	ErrGuestRequired     = errors.New("reservations: guest id is required")
	ErrInvalidGuests     = errors.New("reservations: guest count must be at least 1")
	ErrCapacityExceeded  = errors.New("reservations: guest count exceeds accommodation capacity")
	ErrDateRangeConflict = errors.New("reservations: date range conflicts with an existing reservation")
	ErrInvalidTransition = errors.New("reservations: invalid state transition")
	ErrCheckInPast       = errors.New("reservations: check-in date is in the past")
)

type ReservationID string

type State string

const (
	StatePending   State = "PENDING"
	StateConfirmed State = "CONFIRMED"
	StateCancelled State = "CANCELLED"
	StateCompleted State = "COMPLETED"
)

// BlockingStates are the states that keep a date range occupied. A cancelled
// reservation releases its nights; a completed one is in the past and only
// matters for rating eligibility.
func BlockingStates() []State {
	return []State{StatePending, StateConfirmed}
}

// Reservation is a guest's claim on an accommodation for a date range. It is
// created PENDING and only moves through Confirm, Complete and Cancel; it is
// never physically deleted so cancelled and completed stays stay auditable.
type Reservation struct {
	ID              ReservationID
	AccommodationID accommodations.AccommodationID
	GuestID         string
	Range           daterange.DateRange
	Guests          int
	State           State
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

type Page struct {
	Limit  int
	Offset int
}

type Repository interface {
	ByID(ctx context.Context, id ReservationID) (*Reservation, error)
	Save(ctx context.Context, reservation *Reservation) error
	// FindOverlapping returns reservations for the accommodation whose half-open
	// range overlaps dr and whose state is one of states.
	FindOverlapping(ctx context.Context, accommodationID accommodations.AccommodationID, dr daterange.DateRange, states []State) ([]*Reservation, error)
	ListByGuest(ctx context.Context, guestID string, page Page) ([]*Reservation, int, error)
	ListByAccommodation(ctx context.Context, accommodationID accommodations.AccommodationID, page Page) ([]*Reservation, int, error)
}

type CreateParams struct {
	ID              ReservationID
	AccommodationID accommodations.AccommodationID
	GuestID         string
	Range           daterange.DateRange
	Guests          int
	Capacity        int
	CreatedAt       time.Time
}

func NewReservation(params CreateParams) (*Reservation, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(params.GuestID) == "" {
		return nil, ErrGuestRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.Guests < 1 {
		return nil, ErrInvalidGuests
	}
	if params.Guests > params.Capacity {
		return nil, ErrCapacityExceeded
	}
	now := params.CreatedAt.UTC()
	r := &Reservation{
		ID:              params.ID,
		AccommodationID: params.AccommodationID,
		GuestID:         params.GuestID,
		Range:           params.Range,
		Guests:          params.Guests,
		State:           StatePending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.Record(ReservationRequested{
		ReservationID:   r.ID,
		AccommodationID: r.AccommodationID,
		GuestID:         r.GuestID,
		Range:           r.Range,
		Guests:          r.Guests,
		At:              now,
	})
	return r, nil
}

func (r *Reservation) Confirm(now time.Time) error {
	if r.State != StatePending {
		return ErrInvalidTransition
	}
	r.State = StateConfirmed
	r.UpdatedAt = now.UTC()
	r.Record(ReservationConfirmed{ReservationID: r.ID, AccommodationID: r.AccommodationID, At: r.UpdatedAt})
	return nil
}

// Cancel is allowed from PENDING and CONFIRMED only. A second cancel on an
// already terminal reservation fails loudly rather than succeeding silently.
func (r *Reservation) Cancel(now time.Time) error {
	if r.State != StatePending && r.State != StateConfirmed {
		return ErrInvalidTransition
	}
	r.State = StateCancelled
	r.UpdatedAt = now.UTC()
	r.Record(ReservationCancelled{ReservationID: r.ID, AccommodationID: r.AccommodationID, At: r.UpdatedAt})
	return nil
}

// Complete marks the stay finished and unlocks rating eligibility.
func (r *Reservation) Complete(now time.Time) error {
	if r.State != StateConfirmed {
		return ErrInvalidTransition
	}
	r.State = StateCompleted
	r.UpdatedAt = now.UTC()
	r.Record(ReservationCompleted{ReservationID: r.ID, AccommodationID: r.AccommodationID, GuestID: r.GuestID, At: r.UpdatedAt})
	return nil
}

func (r *Reservation) Terminal() bool {
	return r.State == StateCancelled || r.State == StateCompleted
}
