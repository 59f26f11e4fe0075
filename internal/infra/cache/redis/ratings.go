// Package redis caches accommodation rating aggregates so the average-rating
// query does not scan comments on every hit.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"staybook/internal/app/policies"
	domainaccommodations "staybook/internal/domain/accommodations"
)

const defaultTTL = 15 * time.Minute

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRatingCache(client *redis.Client, ttl time.Duration) *RatingCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RatingCache{client: client, ttl: ttl}
}

func (c *RatingCache) Get(ctx context.Context, id domainaccommodations.AccommodationID) (float64, int, error) {
	raw, err := c.client.Get(ctx, ratingKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, 0, policies.ErrRatingCacheMiss
		}
		return 0, 0, err
	}
	var average float64
	var count int
	if _, err := fmt.Sscanf(raw, "%f|%d", &average, &count); err != nil {
		// Unparseable entries are treated as misses and overwritten on the
		// next Set.
		return 0, 0, policies.ErrRatingCacheMiss
	}
	return average, count, nil
}

func (c *RatingCache) Set(ctx context.Context, id domainaccommodations.AccommodationID, average float64, count int) error {
	value := fmt.Sprintf("%.1f|%d", average, count)
	return c.client.Set(ctx, ratingKey(id), value, c.ttl).Err()
}

func (c *RatingCache) Invalidate(ctx context.Context, id domainaccommodations.AccommodationID) error {
	return c.client.Del(ctx, ratingKey(id)).Err()
}

func ratingKey(id domainaccommodations.AccommodationID) string {
	return "rating:" + string(id)
}
