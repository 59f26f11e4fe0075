package dto

import (
	"time"

	domainaccommodations "staybook/internal/domain/accommodations"
)

// Accommodation is the public directory payload.
type Accommodation struct {
	ID                string    `json:"id"`
	HostID            string    `json:"host_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	City              string    `json:"city"`
	NightlyPriceCents int64     `json:"nightly_price_cents"`
	MaxGuests         int       `json:"max_guests"`
	Status            string    `json:"status"`
	Rating            float64   `json:"rating"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type AccommodationCollection struct {
	Items []Accommodation `json:"items"`
	Total int             `json:"total"`
}

func MapAccommodation(a *domainaccommodations.Accommodation) Accommodation {
	if a == nil {
		return Accommodation{}
	}
	return Accommodation{
		ID:                string(a.ID),
		HostID:            string(a.Host),
		Title:             a.Title,
		Description:       a.Description,
		City:              a.City,
		NightlyPriceCents: a.NightlyPriceCents,
		MaxGuests:         a.MaxGuests,
		Status:            string(a.Status),
		Rating:            a.Rating,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func MapAccommodations(items []*domainaccommodations.Accommodation, total int) AccommodationCollection {
	out := AccommodationCollection{Items: make([]Accommodation, 0, len(items)), Total: total}
	for _, item := range items {
		out.Items = append(out.Items, MapAccommodation(item))
	}
	return out
}
