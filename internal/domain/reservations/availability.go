package reservations

import (
	"context"

	"staybook/internal/domain/accommodations"
	"staybook/internal/domain/shared/daterange"
)

// AvailabilityChecker answers whether a date range is free of blocking
// reservations. It is a pure read: callers are expected to have validated the
// range ordering already, and any check-relative-to-today filtering happens
// upstream.
type AvailabilityChecker struct {
	Reservations Repository
}

func (c AvailabilityChecker) IsAvailable(ctx context.Context, accommodationID accommodations.AccommodationID, dr daterange.DateRange) (bool, error) {
	overlapping, err := c.Reservations.FindOverlapping(ctx, accommodationID, dr, BlockingStates())
	if err != nil {
		return false, err
	}
	return len(overlapping) == 0, nil
}
