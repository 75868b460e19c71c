package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felipemarinho97/torrent-finder/config"
	"github.com/felipemarinho97/torrent-finder/ratelimit"
	"github.com/felipemarinho97/torrent-finder/schema"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, k := range []string{
		"JACKETT_URL", "JACKETT_API_KEY", "TMDB_URL", "TMDB_API_KEY",
		"RATE_LIMIT", "REDIS_HOST", "LOG_FILE", "PORT", "METRICS_PORT",
	} {
		t.Setenv(k, env[k])
	}
}

func TestTagsCommand(t *testing.T) {
	out, err := run(t, "tags", "Movie.2024.1080p.BluRay.x264.DTS.5.1")
	require.NoError(t, err)

	var got schema.TagSet
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"1080p"}, got.Resolution)
	assert.Equal(t, []string{"5.1", "DTS"}, got.Audio)
	assert.Equal(t, []string{}, got.Other)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Contains(t, got, "version")
	assert.Contains(t, got, "revision")
}

func TestSearchCommand_MissingConfig(t *testing.T) {
	setEnv(t, map[string]string{"JACKETT_URL": "http://jackett:9117"})

	_, err := run(t, "search", "matrix")
	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "JACKETT_API_KEY", cfgErr.Key)
}

func TestSearchCommand(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Results":[{"Title":"The Matrix 1999 1080p","MagnetUri":"magnet:?xt=urn:btih:abc","Seeders":7,"Peers":1,"Size":2048,"PublishDate":"2024-01-02T00:00:00","Tracker":"t","CategoryDesc":"Movies"}]}`))
	}))
	t.Cleanup(srv.Close)

	setEnv(t, map[string]string{
		"JACKETT_URL":     srv.URL,
		"JACKETT_API_KEY": "key",
		"TMDB_API_KEY":    "key",
		"RATE_LIMIT":      "0",
	})

	out, err := run(t, "search", "the", "matrix")
	require.NoError(t, err)
	assert.Equal(t, "the matrix", gotQuery)

	var got []schema.TorrentResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "The Matrix 1999 1080p", got[0].Title)
	assert.Equal(t, "2 KB", got[0].Size)
}

func TestDiscoverCommand_InvalidType(t *testing.T) {
	_, err := run(t, "discover", "--type", "anime")
	assert.Error(t, err)
}

func TestNewLimiter(t *testing.T) {
	ctx := context.Background()

	assert.IsType(t, ratelimit.Unlimited{}, newLimiter(ctx, &config.Config{RateLimit: 0}))
	assert.IsType(t, &ratelimit.Local{}, newLimiter(ctx, &config.Config{RateLimit: 5}))

	// nothing listens on this port, so the in-process limiter is used
	assert.IsType(t, &ratelimit.Local{}, newLimiter(ctx, &config.Config{RateLimit: 5, RedisHost: "127.0.0.1:1"}))

	mr := miniredis.RunT(t)
	assert.IsType(t, &ratelimit.Redis{}, newLimiter(ctx, &config.Config{RateLimit: 5, RedisHost: mr.Addr()}))
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
}

func TestServe(t *testing.T) {
	port, metricsPort := freePort(t), freePort(t)
	setEnv(t, map[string]string{
		"JACKETT_URL":     "http://127.0.0.1:1",
		"JACKETT_API_KEY": "key",
		"TMDB_API_KEY":    "key",
		"RATE_LIMIT":      "0",
		"PORT":            port,
		"METRICS_PORT":    metricsPort,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- serve(ctx) }()

	get := func(url string) int {
		resp, err := http.Get(url)
		if err != nil {
			return 0
		}
		resp.Body.Close()
		return resp.StatusCode
	}
	assert.Eventually(t, func() bool {
		return get("http://127.0.0.1:"+port+"/health") == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	assert.Eventually(t, func() bool {
		return get("http://127.0.0.1:"+metricsPort+"/metrics") == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
