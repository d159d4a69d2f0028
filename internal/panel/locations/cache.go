package locations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MKdir98/vendor-panel/internal/panel/observability"
)

// Cache stores JSON-encoded reference data.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value for ttl.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Keys mirror the reference data filters: cities:states:<country>,
// cities:cities:<state> and cities:city:<id>.
func statesKey(countryCode string) string { return "cities:states:" + strings.ToLower(countryCode) }
func citiesKey(stateID string) string     { return "cities:cities:" + stateID }
func cityKey(cityID string) string        { return "cities:city:" + cityID }

// RedisCache implements Cache on Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps client. prefix namespaces every key.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("locations: redis ping: %w", err)
	}
	return client, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("locations: decode cached %s: %w", key, err)
	}
	return true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, raw, ttl).Err()
}

// MemoryCache implements Cache in process.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache returns an empty MemoryCache. Expired entries are purged
// every cleanup interval.
func NewMemoryCache(cleanup time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(gocache.NoExpiration, cleanup)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	value, ok := c.store.Get(key)
	if !ok {
		return false, nil
	}
	raw, _ := value.([]byte)
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.store.Set(key, raw, ttl)
	return nil
}

// Len returns the number of stored entries, expired ones included until the
// next cleanup.
func (c *MemoryCache) Len() int {
	return c.store.ItemCount()
}

// CachedReferenceService decorates a ReferenceService with a Cache. Cache
// failures are logged and fall through to the underlying service.
type CachedReferenceService struct {
	next    ReferenceService
	cache   Cache
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewCachedReferenceService wraps next.
func NewCachedReferenceService(next ReferenceService, cache Cache, ttl time.Duration, metrics *observability.Metrics) *CachedReferenceService {
	return &CachedReferenceService{next: next, cache: cache, ttl: ttl, metrics: metrics}
}

// States implements ReferenceService.
func (s *CachedReferenceService) States(ctx context.Context, token, countryCode string) ([]State, error) {
	if strings.TrimSpace(countryCode) == "" {
		return nil, nil
	}
	var out []State
	err := fetch(ctx, s, "states", statesKey(countryCode), &out, func() (any, error) {
		return s.next.States(ctx, token, countryCode)
	})
	return out, err
}

// Cities implements ReferenceService.
func (s *CachedReferenceService) Cities(ctx context.Context, token, stateID string) ([]City, error) {
	if strings.TrimSpace(stateID) == "" {
		return nil, nil
	}
	var out []City
	err := fetch(ctx, s, "cities", citiesKey(stateID), &out, func() (any, error) {
		return s.next.Cities(ctx, token, stateID)
	})
	return out, err
}

// City implements ReferenceService.
func (s *CachedReferenceService) City(ctx context.Context, token, cityID string) (*City, error) {
	if strings.TrimSpace(cityID) == "" {
		return nil, nil
	}
	var out *City
	err := fetch(ctx, s, "city", cityKey(cityID), &out, func() (any, error) {
		return s.next.City(ctx, token, cityID)
	})
	return out, err
}

func fetch(ctx context.Context, s *CachedReferenceService, kind, key string, dest any, load func() (any, error)) error {
	logger := observability.FromContext(ctx)
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.Warn("reference cache read failed", zap.String("key", key), zap.Error(err))
	}
	s.metrics.ObserveReference(kind, found)
	if found {
		return nil
	}

	value, err := load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		logger.Warn("reference cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}
