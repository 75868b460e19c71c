package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLocal_Wait(t *testing.T) {
	l := NewLocal(1, 1)

	if d, err := l.Wait(context.Background(), "jackett"); err != nil || d != 0 {
		t.Fatalf("first call: delay=%v err=%v", d, err)
	}

	// other keys have their own bucket
	if d, err := l.Wait(context.Background(), "tmdb"); err != nil || d != 0 {
		t.Fatalf("other key: delay=%v err=%v", d, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Wait(ctx, "jackett"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestUnlimited_Wait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	if _, err := (Unlimited{}).Wait(ctx, "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancel()
	if _, err := (Unlimited{}).Wait(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func newTestRedis(t *testing.T, rps float64, now time.Time) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	r := NewRedis(client, rps)
	r.now = func() time.Time { return now }
	return r, mr
}

func TestRedis_Wait(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r, mr := newTestRedis(t, 2, now)

	for i := 0; i < 2; i++ {
		if d, err := r.Wait(context.Background(), "tmdb"); err != nil || d != 0 {
			t.Fatalf("call %d: delay=%v err=%v", i, d, err)
		}
	}

	key := "ratelimit:tmdb:1700000000"
	if got, err := mr.Get(key); err != nil || got != "2" {
		t.Fatalf("counter = %q (%v), want 2", got, err)
	}
	if ttl := mr.TTL(key); ttl <= 0 {
		t.Errorf("expected the window key to expire, ttl=%v", ttl)
	}

	// third call must wait for the next second
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := r.Wait(ctx, "tmdb"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRedis_SlowRateWidensWindow(t *testing.T) {
	r := NewRedis(nil, 0.5)
	if r.window != 2*time.Second || r.limit != 1 {
		t.Errorf("window=%v limit=%d", r.window, r.limit)
	}
}

func TestRedis_Unavailable(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r, mr := newTestRedis(t, 1, now)
	mr.Close()

	if _, err := r.Wait(context.Background(), "jackett"); err != nil {
		t.Fatalf("expected fail-open, got %v", err)
	}
}
