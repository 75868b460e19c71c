package ratelimit

import (
	"context"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/felipemarinho97/torrent-finder/logging"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit"

// Redis is a fixed-window limiter shared by every replica that points at the
// same Redis server.
type Redis struct {
	client *redis.Client
	window time.Duration
	limit  int64
	now    func() time.Time
}

// NewRedisClient connects to host on the default Redis port unless host
// already names one.
func NewRedisClient(host string) *redis.Client {
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = fmt.Sprintf("%s:6379", host)
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
	})
}

// NewRedis allows rps calls per second per key. Rates below one call per
// second widen the window instead.
func NewRedis(client *redis.Client, rps float64) *Redis {
	window := time.Second
	limit := int64(math.Floor(rps))
	if rps < 1 {
		window = time.Duration(float64(time.Second) / rps)
		limit = 1
	}
	return &Redis{client: client, window: window, limit: limit, now: time.Now}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Wait(ctx context.Context, key string) (time.Duration, error) {
	var waited time.Duration
	for {
		now := r.now()
		slot := now.UnixNano() / int64(r.window)
		redisKey := fmt.Sprintf("%s:%s:%d", keyPrefix, key, slot)

		var incr *redis.IntCmd
		_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, redisKey)
			pipe.Expire(ctx, redisKey, 2*r.window)
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return waited, ctx.Err()
			}
			// the limiter is advisory; an unreachable Redis must not stop searches
			logging.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable, letting request through")
			return waited, nil
		}
		if incr.Val() <= r.limit {
			return waited, nil
		}

		next := time.Unix(0, (slot+1)*int64(r.window))
		delay := next.Sub(now)
		if err := sleep(ctx, delay); err != nil {
			return waited, err
		}
		waited += delay
	}
}
