package accommodations

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/support"
	"staybook/internal/app/uow"
	domainaccommodations "staybook/internal/domain/accommodations"
	domainreservations "staybook/internal/domain/reservations"
	"staybook/internal/domain/shared/daterange"
)

const searchAccommodationsKey = "accommodations.search"

// SearchQuery covers both the plain city search and the extended search with
// price range, minimum capacity and a stay range. When CheckIn/CheckOut are
// set the candidate set is additionally filtered through the availability
// checker.
type SearchQuery struct {
	City          string
	MinGuests     int
	PriceMinCents int64
	PriceMaxCents int64
	CheckIn       time.Time
	CheckOut      time.Time
	Page          dto.PageRequest
}

func (q SearchQuery) Key() string { return searchAccommodationsKey }

type SearchHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *SearchHandler) Handle(ctx context.Context, q SearchQuery) (dto.AccommodationCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AccommodationCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	params := domainaccommodations.SearchParams{
		City:          q.City,
		MinGuests:     q.MinGuests,
		PriceMinCents: q.PriceMinCents,
		PriceMaxCents: q.PriceMaxCents,
		CheckIn:       q.CheckIn,
		CheckOut:      q.CheckOut,
		Limit:         q.Page.Limit,
		Offset:        q.Page.Offset,
		OnlyActive:    true,
	}.Normalized()

	if !params.HasStayRange() {
		result, err := unit.Accommodations().Search(execCtx, params)
		if err != nil {
			return dto.AccommodationCollection{}, err
		}
		return dto.MapAccommodations(result.Items, result.Total), nil
	}

	// Availability filtering happens after the storage search. The
	// repository clamps any single page, so walk the full candidate set page
	// by page and re-page the filtered result in memory.
	dr := daterange.DateRange{CheckIn: params.CheckIn, CheckOut: params.CheckOut}
	checker := domainreservations.AvailabilityChecker{Reservations: unit.Reservations()}
	var available []*domainaccommodations.Accommodation
	candidates := 0
	for offset := 0; ; offset += candidatePageSize {
		wide := params
		wide.Limit = candidatePageSize
		wide.Offset = offset
		result, err := unit.Accommodations().Search(execCtx, wide)
		if err != nil {
			return dto.AccommodationCollection{}, err
		}
		candidates += len(result.Items)
		for _, candidate := range result.Items {
			free, err := checker.IsAvailable(execCtx, candidate.ID, dr)
			if err != nil {
				return dto.AccommodationCollection{}, err
			}
			if free {
				available = append(available, candidate)
			}
		}
		if len(result.Items) == 0 || candidates >= result.Total {
			break
		}
	}

	total := len(available)
	start := params.Offset
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}
	if h.Logger != nil {
		h.Logger.Debug("availability search", "candidates", candidates, "available", total)
	}
	return dto.MapAccommodations(available[start:end], total), nil
}

// candidatePageSize is the page size used to walk the candidate set; it must
// not exceed the repositories' per-page clamp or pages would silently shrink.
const candidatePageSize = 100

// Register wires the search query onto a bus.
func (h *SearchHandler) Register(bus *queries.InMemoryBus) {
	queries.RegisterHandler(bus, searchAccommodationsKey, queries.HandlerFunc[SearchQuery, dto.AccommodationCollection](h.Handle))
}

var _ queries.Handler[SearchQuery, dto.AccommodationCollection] = (*SearchHandler)(nil)
