package accommodations_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/accommodations"
)

func createParams() accommodations.CreateParams {
	return accommodations.CreateParams{
		ID:                "acc-1",
		Host:              "host-1",
		Title:             "Seaside flat",
		Description:       "two rooms near the beach",
		City:              "Valencia",
		NightlyPriceCents: 9500,
		MaxGuests:         4,
		Now:               time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewValidation(t *testing.T) {
	t.Run("negative price", func(t *testing.T) {
		params := createParams()
		params.NightlyPriceCents = -1
		_, err := accommodations.New(params)
		assert.ErrorIs(t, err, accommodations.ErrNegativePrice)
	})
	t.Run("zero price allowed", func(t *testing.T) {
		params := createParams()
		params.NightlyPriceCents = 0
		_, err := accommodations.New(params)
		assert.NoError(t, err)
	})
	t.Run("zero capacity", func(t *testing.T) {
		params := createParams()
		params.MaxGuests = 0
		_, err := accommodations.New(params)
		assert.ErrorIs(t, err, accommodations.ErrInvalidCapacity)
	})
	t.Run("missing title", func(t *testing.T) {
		params := createParams()
		params.Title = "  "
		_, err := accommodations.New(params)
		assert.ErrorIs(t, err, accommodations.ErrTitleRequired)
	})
	t.Run("missing city", func(t *testing.T) {
		params := createParams()
		params.City = ""
		_, err := accommodations.New(params)
		assert.ErrorIs(t, err, accommodations.ErrCityRequired)
	})
}

func TestDelist(t *testing.T) {
	acc, err := accommodations.New(createParams())
	require.NoError(t, err)
	now := time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, acc.Delist(now))
	assert.Equal(t, accommodations.StatusDeleted, acc.Status)

	assert.ErrorIs(t, acc.Delist(now), accommodations.ErrAlreadyDeleted)
	assert.ErrorIs(t, acc.Update(accommodations.UpdateParams{
		Title: "x", City: "y", NightlyPriceCents: 1, MaxGuests: 1,
	}, now), accommodations.ErrAlreadyDeleted)
}

func TestSearchParamsNormalized(t *testing.T) {
	p := accommodations.SearchParams{
		City:          "  VALENCIA ",
		MinGuests:     -2,
		PriceMinCents: 500,
		PriceMaxCents: 100,
		Limit:         0,
		Offset:        -5,
	}
	n := p.Normalized()
	assert.Equal(t, "valencia", n.City)
	assert.Equal(t, 0, n.MinGuests)
	assert.Equal(t, int64(0), n.PriceMaxCents, "max below min is dropped")
	assert.Equal(t, 20, n.Limit)
	assert.Equal(t, 0, n.Offset)

	p.Limit = 1000
	assert.Equal(t, 100, p.Normalized().Limit)
}

func TestSearchParamsStayRange(t *testing.T) {
	checkIn := time.Date(2030, 6, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.False(t, accommodations.SearchParams{}.HasStayRange())
	assert.True(t, accommodations.SearchParams{CheckIn: checkIn, CheckOut: checkOut}.HasStayRange())

	// reversed ranges are dropped by normalization
	n := accommodations.SearchParams{CheckIn: checkOut, CheckOut: checkIn}.Normalized()
	assert.False(t, n.HasStayRange())
}
