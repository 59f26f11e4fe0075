package daterange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/daterange"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsInvalidRanges(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
	}{
		{"zero check-in", time.Time{}, day(2030, 6, 10)},
		{"zero check-out", day(2030, 6, 10), time.Time{}},
		{"equal dates", day(2030, 6, 10), day(2030, 6, 10)},
		{"reversed", day(2030, 6, 12), day(2030, 6, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := daterange.New(tt.checkIn, tt.checkOut)
			assert.ErrorIs(t, err, daterange.ErrInvalidRange)
		})
	}
}

func TestNights(t *testing.T) {
	dr, err := daterange.New(day(2030, 6, 10), day(2030, 6, 13))
	require.NoError(t, err)
	assert.Equal(t, 3, dr.Nights())
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	base, err := daterange.New(day(2030, 6, 10), day(2030, 6, 15))
	require.NoError(t, err)

	tests := []struct {
		name    string
		other   daterange.DateRange
		overlap bool
	}{
		{"identical", mustRange(t, day(2030, 6, 10), day(2030, 6, 15)), true},
		{"contained", mustRange(t, day(2030, 6, 11), day(2030, 6, 13)), true},
		{"containing", mustRange(t, day(2030, 6, 8), day(2030, 6, 20)), true},
		{"left edge", mustRange(t, day(2030, 6, 8), day(2030, 6, 11)), true},
		{"right edge", mustRange(t, day(2030, 6, 14), day(2030, 6, 18)), true},
		{"back to back before", mustRange(t, day(2030, 6, 5), day(2030, 6, 10)), false},
		{"back to back after", mustRange(t, day(2030, 6, 15), day(2030, 6, 20)), false},
		{"disjoint before", mustRange(t, day(2030, 6, 1), day(2030, 6, 5)), false},
		{"disjoint after", mustRange(t, day(2030, 6, 20), day(2030, 6, 25)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlap, base.Overlaps(tt.other))
			// symmetry
			assert.Equal(t, tt.overlap, tt.other.Overlaps(base))
		})
	}
}

func TestAdjacent(t *testing.T) {
	a := mustRange(t, day(2030, 6, 10), day(2030, 6, 15))
	b := mustRange(t, day(2030, 6, 15), day(2030, 6, 20))
	assert.True(t, a.Adjacent(b))
	assert.True(t, b.Adjacent(a))
	assert.False(t, a.Overlaps(b))
}

func mustRange(t *testing.T, checkIn, checkOut time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(checkIn, checkOut)
	require.NoError(t, err)
	return dr
}
