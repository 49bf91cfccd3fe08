package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// minRetryDelay bounds how often Wait polls a saturated window
const minRetryDelay = 10 * time.Millisecond

// slidingWindow admits a request when fewer than limit requests were logged
// in the last window. Each request is logged under a unique member so that
// callers landing in the same millisecond are all counted.
//
// ARGV: now_ms, window_ms, limit, member
// Reply: {allowed, remaining, oldest_ms}
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

local count = redis.call('ZCARD', key)
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	redis.call('PEXPIRE', key, window)
	return {1, limit - count - 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {0, 0, tonumber(oldest[2]) or 0}
`)

// RateLimitConfig names a request budget shared through Redis
type RateLimitConfig struct {
	Key    string        // budget name, e.g. "yahoo"
	Limit  int           // requests per window
	Window time.Duration // sliding window length
}

// YahooRateLimit caps quote/chart requests shared by every process using the
// same Redis (several screeners behind one NAT share Yahoo's per-IP budget)
var YahooRateLimit = RateLimitConfig{
	Key:    "yahoo",
	Limit:  2,
	Window: time.Second,
}

// Decision is the outcome of one Allow call
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration // when denied: until the oldest logged request leaves the window
}

// RateLimiter is a sliding-window limiter whose state lives in Redis, so the
// budget holds across processes.
// ⭐ SSOT: 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	prefix string

	now    func() time.Time
	member func() string
}

// NewRateLimiter creates a limiter storing windows under prefix:ratelimit:<key>
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
		now:    time.Now,
		member: uuid.NewString,
	}
}

// Key returns the Redis key of cfg's window
func (r *RateLimiter) Key(cfg RateLimitConfig) string {
	return fmt.Sprintf("%s:ratelimit:%s", r.prefix, cfg.Key)
}

// Allow logs one request if the window has room. With Redis disabled every
// request is allowed.
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (Decision, error) {
	if !r.client.Enabled() {
		return Decision{Allowed: true, Remaining: cfg.Limit}, nil
	}

	now := r.now().UnixMilli()
	window := cfg.Window.Milliseconds()
	member := fmt.Sprintf("%d:%s", now, r.member())

	reply, err := slidingWindow.Run(ctx, r.client.Redis(), []string{r.Key(cfg)},
		now, window, cfg.Limit, member,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", cfg.Key, err)
	}
	if len(reply) != 3 {
		return Decision{}, fmt.Errorf("rate limit %s: unexpected reply %v", cfg.Key, reply)
	}

	d := Decision{
		Allowed:   reply[0] == 1,
		Remaining: int(reply[1]),
	}
	if !d.Allowed {
		d.RetryAfter = time.Duration(reply[2]+window-now) * time.Millisecond
	}
	return d, nil
}

// Wait blocks until Allow admits a request or ctx is done. Between attempts
// it sleeps until the oldest request leaves the window.
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	for {
		d, err := r.Allow(ctx, cfg)
		if err != nil {
			return err
		}
		if d.Allowed {
			return nil
		}

		delay := d.RetryAfter
		if delay < minRetryDelay {
			delay = minRetryDelay
		}
		if delay > cfg.Window {
			delay = cfg.Window
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
