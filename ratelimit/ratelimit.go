// Package ratelimit throttles outbound calls per upstream.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter blocks until a call for key may proceed. It returns how long the
// caller was held back.
type Limiter interface {
	Wait(ctx context.Context, key string) (time.Duration, error)
}

// Unlimited never delays.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context, _ string) (time.Duration, error) {
	return 0, ctx.Err()
}

// Local keeps one token bucket per key in process memory.
type Local struct {
	rps   rate.Limit
	burst int

	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

func NewLocal(rps float64, burst int) *Local {
	if burst < 1 {
		burst = 1
	}
	return &Local{
		rps:      rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *Local) limiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[key]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok = l.limiters[key]; !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

func (l *Local) Wait(ctx context.Context, key string) (time.Duration, error) {
	res := l.limiter(key).Reserve()
	if !res.OK() {
		return 0, fmt.Errorf("rate limiter for %s cannot grant a token", key)
	}
	delay := res.Delay()
	if delay == 0 {
		return 0, nil
	}
	if err := sleep(ctx, delay); err != nil {
		res.Cancel()
		return 0, err
	}
	return delay, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
