// Package ratelimit is the admission-control gate applied before a turn
// begins. It is not part of the state machine; a limited user simply never
// reaches the router.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rentalheights/agent-core/internal/agent/model"
	logx "github.com/rentalheights/agent-core/pkg/logger"
)

// Limiter reports whether a user may send another message right now. Allowing
// consumes one slot from both the minute and hour windows.
type Limiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

type RedisLimiter struct {
	rdb redis.Cmdable
	cfg model.RateLimitConfig
}

func NewRedisLimiter(rdb redis.Cmdable, cfg model.RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, cfg: cfg}
}

func (l *RedisLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	minuteKey := fmt.Sprintf("rate_limit:%s:minute", userID)
	hourKey := fmt.Sprintf("rate_limit:%s:hour", userID)

	allowed, err := l.consume(ctx, minuteKey, time.Minute, l.cfg.PerMinute)
	if err != nil || !allowed {
		return allowed, err
	}
	return l.consume(ctx, hourKey, time.Hour, l.cfg.PerHour)
}

func (l *RedisLimiter) consume(ctx context.Context, key string, window time.Duration, limit int) (bool, error) {
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			logx.Warn().Err(err).Str("key", key).Msg("failed to set rate limit window expiry")
		}
	}
	return n <= int64(limit), nil
}

var _ Limiter = (*RedisLimiter)(nil)

// MemoryLimiter is the in-process fallback, fixed-window like the Redis one.
type MemoryLimiter struct {
	cfg model.RateLimitConfig

	mu      sync.Mutex
	windows map[string]*userWindows
	now     func() time.Time
}

type userWindows struct {
	minuteCount int
	minuteReset time.Time
	hourCount   int
	hourReset   time.Time
}

func NewMemoryLimiter(cfg model.RateLimitConfig) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:     cfg,
		windows: make(map[string]*userWindows),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[userID]
	if !ok {
		w = &userWindows{}
		l.windows[userID] = w
	}

	if now.After(w.minuteReset) {
		w.minuteCount = 0
		w.minuteReset = now.Add(time.Minute)
	}
	if now.After(w.hourReset) {
		w.hourCount = 0
		w.hourReset = now.Add(time.Hour)
	}

	w.minuteCount++
	w.hourCount++
	return w.minuteCount <= l.cfg.PerMinute && w.hourCount <= l.cfg.PerHour, nil
}

var _ Limiter = (*MemoryLimiter)(nil)
