package policies

import (
	"context"
	"errors"

	"staybook/internal/domain/accommodations"
)

// ErrRatingCacheMiss signals the average must be recomputed from storage.
var ErrRatingCacheMiss = errors.New("policies: rating cache miss")

// RatingCache is a read-through cache for per-accommodation average ratings.
// Implementations must treat the storage-computed mean as the source of
// truth; the cache is invalidated whenever a new comment lands.
type RatingCache interface {
	Get(ctx context.Context, id accommodations.AccommodationID) (average float64, count int, err error)
	Set(ctx context.Context, id accommodations.AccommodationID, average float64, count int) error
	Invalidate(ctx context.Context, id accommodations.AccommodationID) error
}

// NoopRatingCache always misses; used when redis is not configured.
type NoopRatingCache struct{}

func (NoopRatingCache) Get(ctx context.Context, id accommodations.AccommodationID) (float64, int, error) {
	return 0, 0, ErrRatingCacheMiss
}

func (NoopRatingCache) Set(ctx context.Context, id accommodations.AccommodationID, average float64, count int) error {
	return nil
}

func (NoopRatingCache) Invalidate(ctx context.Context, id accommodations.AccommodationID) error {
	return nil
}
