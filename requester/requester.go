package requester

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/felipemarinho97/torrent-finder/logging"
	"github.com/felipemarinho97/torrent-finder/monitoring"
	"github.com/felipemarinho97/torrent-finder/ratelimit"
)

const userAgent = "torrent-finder/1.0 (+https://github.com/felipemarinho97/torrent-finder)"

// Requester performs the outbound JSON calls shared by every upstream client.
type Requester struct {
	httpClient *http.Client
	limiter    ratelimit.Limiter
	metrics    *monitoring.Metrics
	timeout    time.Duration
}

func NewRequester(timeout time.Duration, limiter ratelimit.Limiter, metrics *monitoring.Metrics) *Requester {
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
	return New(httpClient, timeout, limiter, metrics)
}

// New wraps an existing client. limiter and metrics may be nil.
func New(httpClient *http.Client, timeout time.Duration, limiter ratelimit.Limiter, metrics *monitoring.Metrics) *Requester {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	return &Requester{httpClient: httpClient, limiter: limiter, metrics: metrics, timeout: timeout}
}

// GetJSON issues a GET to rawURL on behalf of upstream and decodes the body
// into v. A non-2xx status yields *RemoteServiceError.
func (r *Requester) GetJSON(ctx context.Context, upstream, rawURL string, v any) (err error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	waited, err := r.limiter.Wait(ctx, upstream)
	if err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", upstream, err)
	}
	if waited > 0 {
		r.observeWait(upstream)
		logging.Debug().Str("upstream", upstream).Dur("waited", waited).Msg("Request delayed by rate limiter")
	}

	start := time.Now()
	defer func() { r.observe(upstream, start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", upstream, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to do request to %s: %w", upstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return &RemoteServiceError{Service: upstream, URL: withoutQuery(req.URL), StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", upstream, err)
	}
	return nil
}

func (r *Requester) observe(upstream string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	r.metrics.UpstreamDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
	r.metrics.UpstreamRequests.WithLabelValues(upstream).Inc()
	if err != nil {
		r.metrics.UpstreamErrors.WithLabelValues(upstream).Inc()
	}
}

func (r *Requester) observeWait(upstream string) {
	if r.metrics != nil {
		r.metrics.RateLimitWaits.WithLabelValues(upstream).Inc()
	}
}

// withoutQuery drops the query string, which carries the API keys.
func withoutQuery(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	c.User = nil
	return c.String()
}
