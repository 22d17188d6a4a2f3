package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"ventas/config"
	"ventas/internal/errors"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills the bucket by whole intervals and takes one token.
// It returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + (intervals * refill_tokens))
		last_refill = last_refill + (intervals * interval_ms)
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// RateDecision is the outcome of one token request.
type RateDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	RetryAfter time.Duration
}

// TokenBucket is a distributed token-bucket limiter keyed by caller.
type TokenBucket struct {
	client *redis.Client
	cfg    config.RateLimitConfig
	now    func() time.Time
}

// NewTokenBucket returns nil when rate limiting is disabled or Redis is absent.
func NewTokenBucket(cfg *config.Config, client *redis.Client) *TokenBucket {
	if client == nil || cfg.RateLimit == nil || !cfg.RateLimit.Enabled {
		return nil
	}

	return &TokenBucket{
		client: client,
		cfg:    *cfg.RateLimit,
		now:    time.Now,
	}
}

// Allow takes one token from the bucket identified by key.
func (b *TokenBucket) Allow(ctx context.Context, key string) (RateDecision, error) {
	args := []any{
		b.now().UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(b.cfg.TTL / time.Second),
	}

	vals, err := tokenBucketScript.Run(ctx, b.client, []string{b.key(key)}, args...).Slice()
	if err != nil {
		return RateDecision{}, errors.Wrap(err, "failed to run rate limit script")
	}

	return parseDecision(vals, b.cfg.Capacity)
}

func (b *TokenBucket) key(key string) string {
	if b.cfg.Prefix == "" {
		return key
	}

	return b.cfg.Prefix + ":" + key
}

func parseDecision(vals []any, limit int) (RateDecision, error) {
	if len(vals) != 3 {
		return RateDecision{}, errors.Errorf("unexpected rate limit script result: %v", vals)
	}

	return RateDecision{
		Allowed:    asInt64(vals[0]) == 1,
		Limit:      limit,
		Remaining:  asInt64(vals[1]),
		RetryAfter: time.Duration(asInt64(vals[2])) * time.Millisecond,
	}, nil
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}

	n, _ := strconv.ParseInt(fmt.Sprint(v), 10, 64)

	return n
}
