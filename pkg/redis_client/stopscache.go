package redis_client

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
)

const stopsCacheExpiration = 10 * time.Minute

// NewStopsCache returns the cache holding rendered route stop responses.
func NewStopsCache(client *redis.Client) *cache.Cache[string] {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(stopsCacheExpiration))
	return cache.New[string](redisStore)
}

func StopsCacheKey(routeID int64, detailed bool) string {
	variant := "basic"
	if detailed {
		variant = "detailed"
	}
	return fmt.Sprintf("segmenter:stops:%d:%s", routeID, variant)
}

// StopsInvalidator drops cached stops responses once new segments are stored.
type StopsInvalidator struct {
	Cache *cache.Cache[string]
}

func (i *StopsInvalidator) InvalidateRoutes(ctx context.Context, routeIDs []int64) error {
	for _, routeID := range routeIDs {
		for _, detailed := range []bool{false, true} {
			if err := i.Cache.Delete(ctx, StopsCacheKey(routeID, detailed)); err != nil {
				return fmt.Errorf("failed to invalidate route %d: %w", routeID, err)
			}
		}
	}
	return nil
}
