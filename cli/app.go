package cli

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"time"

	"github.com/felipemarinho97/torrent-finder/config"
	"github.com/felipemarinho97/torrent-finder/jackett"
	"github.com/felipemarinho97/torrent-finder/logging"
	"github.com/felipemarinho97/torrent-finder/monitoring"
	"github.com/felipemarinho97/torrent-finder/ratelimit"
	"github.com/felipemarinho97/torrent-finder/requester"
	"github.com/felipemarinho97/torrent-finder/tmdb"
	"github.com/felipemarinho97/torrent-finder/utils"
)

type services struct {
	jackett *jackett.Client
	tmdb    *tmdb.Client
}

// setup loads the configuration and builds the upstream clients. It is shared
// by every command that talks to Jackett or TMDB.
func setup(ctx context.Context, logOut io.Writer, metrics *monitoring.Metrics) (*config.Config, *services, error) {
	opts := logging.OptionsFromEnv()
	opts.Output = logOut
	logging.InitLogger(opts)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	r := requester.NewRequester(cfg.UpstreamTimeout, newLimiter(ctx, cfg), metrics)
	dates := utils.NewDateFormatter(cfg.DateLocale, cfg.Timezone)

	return cfg, &services{
		jackett: jackett.NewClient(cfg.Jackett, r, dates),
		tmdb:    tmdb.NewClient(cfg.TMDB, r),
	}, nil
}

// newLimiter prefers the shared Redis limiter and falls back to an in-process
// one when Redis cannot be reached.
func newLimiter(ctx context.Context, cfg *config.Config) ratelimit.Limiter {
	if cfg.RateLimit == 0 {
		return ratelimit.Unlimited{}
	}

	if cfg.RedisHost != "" {
		limiter := ratelimit.NewRedis(ratelimit.NewRedisClient(cfg.RedisHost), cfg.RateLimit)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := limiter.Ping(pingCtx)
		if err == nil {
			logging.Info().Str("redis", cfg.RedisHost).Float64("rps", cfg.RateLimit).Msg("Using shared rate limiter")
			return limiter
		}
		logging.Warn().Err(err).Str("redis", cfg.RedisHost).Msg("Redis unavailable, using in-process rate limiter")
	}

	return ratelimit.NewLocal(cfg.RateLimit, int(math.Max(1, math.Ceil(cfg.RateLimit))))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
