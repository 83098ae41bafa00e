package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"prepwise/internal/metrics"
	"prepwise/internal/utils"
)

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// Scope names the limited route group, used in the key and in metrics.
	Scope string
	// KeyFunc defaults to the client IP.
	KeyFunc func(*http.Request) string
}

// INCR with TTL set on first hit. Returns {count, ttl_seconds}.
const rateLimitScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

type memoryEntry struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// RateLimiter counts requests per key in Redis and falls back to process memory
// when Redis is absent or failing.
type RateLimiter struct {
	rdb    *redis.Client
	logger *zap.Logger
	script *redis.Script
	local  sync.Map
	now    func() time.Time
}

func NewRateLimiter(rdb *redis.Client, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		logger: logger,
		script: redis.NewScript(rateLimitScript),
		now:    time.Now,
	}
}

func (rl *RateLimiter) Limit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	return func(next http.Handler) http.Handler {
		if cfg.Limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("prepwise:rl:%s:%s", cfg.Scope, cfg.KeyFunc(r))
			count, resetAt := rl.hit(r.Context(), key, cfg)

			remaining := cfg.Limit - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", resetAt.UTC().Format(time.RFC3339))

			if count > cfg.Limit {
				retryAfter := int(resetAt.Sub(rl.now()).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				metrics.RateLimited(cfg.Scope)
				utils.JSONError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) hit(ctx context.Context, key string, cfg RateLimitConfig) (int, time.Time) {
	if rl.rdb != nil {
		count, resetAt, err := rl.hitRedis(ctx, key, cfg)
		if err == nil {
			return count, resetAt
		}
		rl.logger.Warn("Rate limiter falling back to memory", zap.String("scope", cfg.Scope), zap.Error(err))
	}
	return rl.hitMemory(key, cfg)
}

func (rl *RateLimiter) hitRedis(ctx context.Context, key string, cfg RateLimitConfig) (int, time.Time, error) {
	res, err := rl.script.Run(ctx, rl.rdb, []string{key}, int(cfg.Window.Seconds())).Slice()
	if err != nil {
		return 0, time.Time{}, err
	}
	if len(res) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected rate limit reply: %v", res)
	}
	count, _ := res[0].(int64)
	ttl, _ := res[1].(int64)
	return int(count), rl.now().Add(time.Duration(ttl) * time.Second), nil
}

func (rl *RateLimiter) hitMemory(key string, cfg RateLimitConfig) (int, time.Time) {
	now := rl.now()
	v, _ := rl.local.LoadOrStore(key, &memoryEntry{resetAt: now.Add(cfg.Window)})
	entry := v.(*memoryEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(cfg.Window)
	}
	entry.count++
	return entry.count, entry.resetAt
}

// Sweep drops expired in-memory counters.
func (rl *RateLimiter) Sweep() {
	now := rl.now()
	rl.local.Range(func(key, value any) bool {
		entry := value.(*memoryEntry)
		entry.mu.Lock()
		expired := now.After(entry.resetAt)
		entry.mu.Unlock()
		if expired {
			rl.local.Delete(key)
		}
		return true
	})
}

// RunSweeper calls Sweep on every tick until ctx is done.
func (rl *RateLimiter) RunSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep()
		}
	}
}

// RealIP has already rewritten RemoteAddr when the request came through a
// trusted proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
