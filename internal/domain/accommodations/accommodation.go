package accommodations

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/shared/events"
)

var (
	ErrNotFound        = errors.New("accommodations: not found")
	ErrIDRequired      = errors.New("accommodations: id is required")
	ErrHostRequired    = errors.New("accommodations: host is required")
	ErrTitleRequired   = errors.New("accommodations: title is required")
	ErrCityRequired    = errors.New("accommodations: city is required")
	ErrNegativePrice   = errors.New("accommodations: nightly price must be non-negative")
	ErrInvalidCapacity = errors.New("accommodations: max guests must be at least 1")
	ErrAlreadyDeleted  = errors.New("accommodations: already deleted")
)

type AccommodationID string
type HostID string

type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusDeleted Status = "DELETED"
)

// Accommodation is a host-owned listing available for date-ranged rental.
// Deletion is logical only; the record stays around so past reservations and
// comments keep a valid reference.
type Accommodation struct {
	ID                AccommodationID
	Host              HostID
	Title             string
	Description       string
	City              string
	NightlyPriceCents int64
	MaxGuests         int
	Status            Status
	Rating            float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id AccommodationID) (*Accommodation, error)
	Save(ctx context.Context, accommodation *Accommodation) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateParams struct {
	ID                AccommodationID
	Host              HostID
	Title             string
	Description       string
	City              string
	NightlyPriceCents int64
	MaxGuests         int
	Now               time.Time
}

func New(params CreateParams) (*Accommodation, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(params.City) == "" {
		return nil, ErrCityRequired
	}
	if params.NightlyPriceCents < 0 {
		return nil, ErrNegativePrice
	}
	if params.MaxGuests < 1 {
		return nil, ErrInvalidCapacity
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	a := &Accommodation{
		ID:                params.ID,
		Host:              params.Host,
		Title:             strings.TrimSpace(params.Title),
		Description:       strings.TrimSpace(params.Description),
		City:              strings.TrimSpace(params.City),
		NightlyPriceCents: params.NightlyPriceCents,
		MaxGuests:         params.MaxGuests,
		Status:            StatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	a.Record(AccommodationListed{AccommodationID: a.ID, Host: a.Host, City: a.City, At: now})
	return a, nil
}

type UpdateParams struct {
	Title             string
	Description       string
	City              string
	NightlyPriceCents int64
	MaxGuests         int
}

func (a *Accommodation) Update(params UpdateParams, now time.Time) error {
	if a.Status == StatusDeleted {
		return ErrAlreadyDeleted
	}
	if strings.TrimSpace(params.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(params.City) == "" {
		return ErrCityRequired
	}
	if params.NightlyPriceCents < 0 {
		return ErrNegativePrice
	}
	if params.MaxGuests < 1 {
		return ErrInvalidCapacity
	}
	a.Title = strings.TrimSpace(params.Title)
	a.Description = strings.TrimSpace(params.Description)
	a.City = strings.TrimSpace(params.City)
	a.NightlyPriceCents = params.NightlyPriceCents
	a.MaxGuests = params.MaxGuests
	a.UpdatedAt = now.UTC()
	return nil
}

// Delist marks the accommodation as logically deleted. There is no way back.
func (a *Accommodation) Delist(now time.Time) error {
	if a.Status == StatusDeleted {
		return ErrAlreadyDeleted
	}
	a.Status = StatusDeleted
	a.UpdatedAt = now.UTC()
	a.Record(AccommodationDelisted{AccommodationID: a.ID, At: a.UpdatedAt})
	return nil
}

// RefreshRating stores the recomputed average so searches can sort on it
// without touching the comments collection.
func (a *Accommodation) RefreshRating(average float64, now time.Time) {
	a.Rating = average
	a.UpdatedAt = now.UTC()
}
