package middleware

import (
	"sync"
	"sync/atomic"
	"time"

	"tokoorder/internal/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// RateLimiter hands out one token bucket per client IP. Buckets idle for
// longer than limiterIdleTTL are dropped.
type RateLimiter struct {
	visitors  sync.Map
	rate      rate.Limit
	burst     int
	now       func() time.Time
	lastSweep atomic.Int64
}

// NewRateLimiter creates a limiter allowing r requests per second with the given burst.
func NewRateLimiter(r float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		rate:  rate.Limit(r),
		burst: burst,
		now:   time.Now,
	}
	rl.lastSweep.Store(rl.now().UnixNano())
	return rl
}

func (rl *RateLimiter) getVisitor(ip string) *visitor {
	if v, ok := rl.visitors.Load(ip); ok {
		return v.(*visitor)
	}
	v, _ := rl.visitors.LoadOrStore(ip, &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)})
	return v.(*visitor)
}

// Allow reports whether ip may make another request now.
func (rl *RateLimiter) Allow(ip string) bool {
	now := rl.now()
	rl.maybeSweep(now)

	v := rl.getVisitor(ip)
	v.lastSeen.Store(now.UnixNano())
	return v.limiter.AllowN(now, 1)
}

// maybeSweep evicts idle buckets at most once per limiterSweepEvery.
func (rl *RateLimiter) maybeSweep(now time.Time) {
	last := rl.lastSweep.Load()
	if now.UnixNano()-last < int64(limiterSweepEvery) {
		return
	}
	if !rl.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	cutoff := now.Add(-limiterIdleTTL).UnixNano()
	rl.visitors.Range(func(key, value interface{}) bool {
		if value.(*visitor).lastSeen.Load() < cutoff {
			rl.visitors.Delete(key)
		}
		return true
	})
}

// Len returns the number of tracked client IPs.
func (rl *RateLimiter) Len() int {
	n := 0
	rl.visitors.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// RateLimit throttles requests per client IP. A disabled config passes
// everything through.
func RateLimit(cfg config.RateLimitConfig, log *zap.Logger) fiber.Handler {
	if !cfg.Enabled || cfg.Rate <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if log == nil {
		log = zap.NewNop()
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	limiter := NewRateLimiter(cfg.Rate, burst)

	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if !limiter.Allow(ip) {
			log.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", c.Path()))
			return deny(c, fiber.StatusTooManyRequests, "too many requests")
		}
		return c.Next()
	}
}
