package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/turma-apps/turma-web/pkg/errors"
)

// setIfCurrentScript writes the view payload only when the caller still
// holds the newest sequence for the key, so a slow refresh can never
// overwrite the result of a later one.
var setIfCurrentScript = redis.NewScript(`
if redis.call('GET', KEYS[2]) == ARGV[1] then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
  return 1
end
return 0
`)

// CacheService is the redis-backed view cache. Each cached view key carries
// a monotonically increasing sequence; refreshes register with Next and
// commit with SetIfCurrent, which discards stale fills.
type CacheService struct {
	redis   *redis.Client
	ttl     time.Duration
	enabled bool
	logger  *zap.Logger
	metrics *MetricsService
}

// WithMetrics attaches cache instrumentation.
func (c *CacheService) WithMetrics(metrics *MetricsService) *CacheService {
	c.metrics = metrics
	return c
}

// NewCacheService constructs a CacheService instance. A nil client or
// disabled flag turns every operation into a no-op miss.
func NewCacheService(redisClient *redis.Client, ttl time.Duration, enabled bool, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{redis: redisClient, ttl: ttl, enabled: enabled && redisClient != nil, logger: logger}
}

// Get loads a cached view into out, returning ErrCacheMiss when absent.
func (c *CacheService) Get(ctx context.Context, key string, out interface{}) error {
	if !c.enabled {
		return appErrors.ErrCacheMiss
	}
	raw, err := c.redis.Get(ctx, viewKey(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("view cache read failed", zap.String("key", key), zap.Error(err))
		}
		c.metrics.ObserveCache(false)
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode cached view")
	}
	c.metrics.ObserveCache(true)
	return nil
}

// Next registers a refresh for the key and returns its sequence number.
func (c *CacheService) Next(ctx context.Context, key string) (uint64, error) {
	if !c.enabled {
		return 0, nil
	}
	seq, err := c.redis.Incr(ctx, seqKey(key)).Result()
	if err != nil {
		c.logger.Warn("view cache sequence failed", zap.String("key", key), zap.Error(err))
		return 0, nil
	}
	return uint64(seq), nil
}

// SetIfCurrent commits a refreshed view when seq is still the key's newest
// sequence. It reports whether the write happened.
func (c *CacheService) SetIfCurrent(ctx context.Context, key string, seq uint64, value interface{}) (bool, error) {
	if !c.enabled || seq == 0 {
		return false, nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode view")
	}

	written, err := setIfCurrentScript.Run(ctx, c.redis,
		[]string{viewKey(key), seqKey(key)},
		strconv.FormatUint(seq, 10), payload, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		c.logger.Warn("view cache write failed", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	if written == 0 {
		c.metrics.ObserveStaleDiscard()
		c.logger.Debug("stale view refresh discarded", zap.String("key", key), zap.Uint64("seq", seq))
	}
	return written == 1, nil
}

// Invalidate drops cached views after a write, bumping their sequences so
// in-flight refreshes of the old state are discarded too.
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) {
	if !c.enabled {
		return
	}
	for _, key := range keys {
		if err := c.redis.Del(ctx, viewKey(key)).Err(); err != nil {
			c.logger.Warn("view cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
		if err := c.redis.Incr(ctx, seqKey(key)).Err(); err != nil {
			c.logger.Warn("view cache sequence bump failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Generation returns the write generation of a key group. Embedding it in
// cache keys retires every cached page of the group on the next write
// without enumerating the keys.
func (c *CacheService) Generation(ctx context.Context, group string) uint64 {
	if !c.enabled {
		return 0
	}
	gen, err := c.redis.Get(ctx, genKey(group)).Uint64()
	if err != nil {
		return 0
	}
	return gen
}

// BumpGeneration retires all cached pages of a key group.
func (c *CacheService) BumpGeneration(ctx context.Context, group string) {
	if !c.enabled {
		return
	}
	if err := c.redis.Incr(ctx, genKey(group)).Err(); err != nil {
		c.logger.Warn("view cache generation bump failed", zap.String("group", group), zap.Error(err))
	}
}

func viewKey(key string) string { return "view:" + key }

func seqKey(key string) string { return "view:" + key + ":seq" }

func genKey(group string) string { return "view:" + group + ":gen" }
