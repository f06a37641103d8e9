package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quick-route/internal/domain"
	"quick-route/internal/platform/obs"
)

const geocodeKeyPrefix = "quickroute:geocode:"

type cachedCoordinates struct {
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	CachedAt time.Time `json:"cached_at"`
}

// RedisGeocodeCache stores address -> coordinates as JSON values with a TTL.
type RedisGeocodeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGeocodeCache wraps an existing client. ttl <= 0 keeps entries forever.
func NewRedisGeocodeCache(client *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{client: client, ttl: ttl}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

func geocodeKey(address string) string { return geocodeKeyPrefix + address }

func (c *RedisGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.cache.redis.GetMany")(&err)

	uniq := uniqueKeys(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	keys := make([]string, len(uniq))
	for i, a := range uniq {
		keys[i] = geocodeKey(a)
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis mget failed: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// nil entry: key missing or expired
			continue
		}

		var cc cachedCoordinates
		if err := json.Unmarshal([]byte(s), &cc); err != nil {
			return nil, fmt.Errorf("unmarshal cached coordinates for %q: %w", uniq[i], err)
		}
		out[uniq[i]] = domain.Coordinates{Lat: cc.Lat, Lon: cc.Lon}
	}

	return out, nil
}

func (c *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, "geocode.cache.redis.PutMany")(&err)

	if len(results) == 0 {
		return nil
	}

	now := time.Now().UTC()
	pipe := c.client.TxPipeline()
	for addr, coords := range results {
		if addr == "" {
			return fmt.Errorf("insert geocode cache: empty address key")
		}

		data, err := json.Marshal(cachedCoordinates{Lat: coords.Lat, Lon: coords.Lon, CachedAt: now})
		if err != nil {
			return fmt.Errorf("marshal cached coordinates failed: %w", err)
		}
		pipe.Set(ctx, geocodeKey(addr), data, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
