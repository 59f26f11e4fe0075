package dto

import (
	"time"

	domainreservations "staybook/internal/domain/reservations"
)

// Reservation is the public reservation payload.
type Reservation struct {
	ID              string    `json:"id"`
	AccommodationID string    `json:"accommodation_id"`
	GuestID         string    `json:"guest_id"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Guests          int       `json:"guests"`
	Nights          int       `json:"nights"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ReservationCollection struct {
	Items []Reservation `json:"items"`
	Total int           `json:"total"`
}

func MapReservation(r *domainreservations.Reservation) Reservation {
	if r == nil {
		return Reservation{}
	}
	return Reservation{
		ID:              string(r.ID),
		AccommodationID: string(r.AccommodationID),
		GuestID:         r.GuestID,
		CheckIn:         r.Range.CheckIn,
		CheckOut:        r.Range.CheckOut,
		Guests:          r.Guests,
		Nights:          r.Range.Nights(),
		Status:          string(r.State),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func MapReservations(items []*domainreservations.Reservation, total int) ReservationCollection {
	out := ReservationCollection{Items: make([]Reservation, 0, len(items)), Total: total}
	for _, item := range items {
		out.Items = append(out.Items, MapReservation(item))
	}
	return out
}
