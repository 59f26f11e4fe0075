package reservations

import (
	"time"

	"staybook/internal/domain/accommodations"
	"staybook/internal/domain/shared/daterange"
)

type ReservationRequested struct {
	ReservationID   ReservationID
	AccommodationID accommodations.AccommodationID
	GuestID         string
	Range           daterange.DateRange
	Guests          int
	At              time.Time
}

func (e ReservationRequested) EventName() string     { return "reservation.requested" }
func (e ReservationRequested) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationRequested) OccurredAt() time.Time { return e.At }

type ReservationConfirmed struct {
	ReservationID   ReservationID
	AccommodationID accommodations.AccommodationID
	At              time.Time
}

func (e ReservationConfirmed) EventName() string     { return "reservation.confirmed" }
func (e ReservationConfirmed) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationConfirmed) OccurredAt() time.Time { return e.At }

type ReservationCancelled struct {
	ReservationID   ReservationID
	AccommodationID accommodations.AccommodationID
	At              time.Time
}

func (e ReservationCancelled) EventName() string     { return "reservation.cancelled" }
func (e ReservationCancelled) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationCancelled) OccurredAt() time.Time { return e.At }

type ReservationCompleted struct {
	ReservationID   ReservationID
	AccommodationID accommodations.AccommodationID
	GuestID         string
	At              time.Time
}

func (e ReservationCompleted) EventName() string     { return "reservation.completed" }
func (e ReservationCompleted) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationCompleted) OccurredAt() time.Time { return e.At }
