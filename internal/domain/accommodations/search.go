package accommodations

import (
	"strings"
	"time"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// SearchParams describe directory filters and paging options. City matching
// is a case-insensitive substring; a CheckIn/CheckOut pair makes the search
// compose with the availability checker on top of the candidate set.
type SearchParams struct {
	Host          HostID
	City          string
	Statuses      []Status
	MinGuests     int
	PriceMinCents int64
	PriceMaxCents int64
	CheckIn       time.Time
	CheckOut      time.Time
	Limit         int
	Offset        int
	OnlyActive    bool
}

type SearchResult struct {
	Items []*Accommodation
	Total int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.City = strings.TrimSpace(strings.ToLower(normalized.City))
	if normalized.MinGuests < 0 {
		normalized.MinGuests = 0
	}
	if normalized.PriceMinCents < 0 {
		normalized.PriceMinCents = 0
	}
	if normalized.PriceMaxCents > 0 && normalized.PriceMaxCents < normalized.PriceMinCents {
		normalized.PriceMaxCents = 0
	}
	if !normalized.CheckIn.IsZero() && !normalized.CheckOut.IsZero() && !normalized.CheckOut.After(normalized.CheckIn) {
		normalized.CheckIn = time.Time{}
		normalized.CheckOut = time.Time{}
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	return normalized
}

// HasStayRange reports whether the extended availability filter applies.
func (p SearchParams) HasStayRange() bool {
	return !p.CheckIn.IsZero() && !p.CheckOut.IsZero() && p.CheckOut.After(p.CheckIn)
}

func (p SearchParams) MatchesStatus(status Status) bool {
	if p.OnlyActive {
		return status == StatusActive
	}
	if len(p.Statuses) == 0 {
		return true
	}
	for _, s := range p.Statuses {
		if s == status {
			return true
		}
	}
	return false
}
