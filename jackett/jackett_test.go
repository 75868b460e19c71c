package jackett

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felipemarinho97/torrent-finder/config"
	"github.com/felipemarinho97/torrent-finder/requester"
	"github.com/felipemarinho97/torrent-finder/schema"
	"github.com/felipemarinho97/torrent-finder/utils"
)

const sampleResponse = `{
  "Results": [
    {
      "Title": "Movie.2024.1080p.BluRay.x264.DTS.5.1",
      "MagnetUri": "magnet:?xt=urn:btih:e9a96e84e4d763a8fa70bf156f5bd30b61f2fc5c&dn=Movie",
      "Seeders": 120,
      "Peers": 15,
      "Size": 1572864,
      "PublishDate": "2024-03-07T12:00:00",
      "Tracker": "1337x",
      "CategoryDesc": "Movies/HD"
    },
    {
      "Title": "Something Else",
      "MagnetUri": "magnet:?xt=urn:btih:0000000000000000000000000000000000000000",
      "Seeders": 3,
      "Peers": 1,
      "Size": 1024,
      "PublishDate": "2024-03-08T12:00:00Z",
      "Tracker": "rarbg",
      "CategoryDesc": "XXX/Movies"
    },
    {
      "Title": "Show.S01E01.720p.WEB",
      "MagnetUri": null,
      "Seeders": 0,
      "Peers": 0,
      "Size": 0,
      "PublishDate": "2024-03-09T12:00:00+00:00",
      "Tracker": "eztv",
      "CategoryDesc": null
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	r := requester.New(srv.Client(), time.Second, nil, nil)
	c := NewClient(config.Jackett{URL: srv.URL + "/", APIKey: "secret"}, r, utils.NewDateFormatter("en-US", "UTC"))
	return c, &calls
}

func TestSearch_EmptyQuery(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	got, err := c.Search(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestSearch_RequestShape(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2.0/indexers/all/results", r.URL.Path)
		assert.Equal(t, "the matrix & co", r.URL.Query().Get("query"))
		assert.Equal(t, "secret", r.URL.Query().Get("apikey"))
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"Results":[]}`))
	})

	got, err := c.Search(context.Background(), "the matrix & co")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_MapsAndFilters(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleResponse))
	})

	got, err := c.Search(context.Background(), "movie")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, schema.TorrentResult{
		Title:       "Movie.2024.1080p.BluRay.x264.DTS.5.1",
		MagnetLink:  "magnet:?xt=urn:btih:e9a96e84e4d763a8fa70bf156f5bd30b61f2fc5c&dn=Movie",
		Seeders:     120,
		Peers:       15,
		Size:        "1.5 MB",
		SizeBytes:   1572864,
		Date:        "3/7/2024",
		PublishDate: "2024-03-07T12:00:00",
		Tracker:     "1337x",
	}, got[0])

	assert.Equal(t, "Show.S01E01.720p.WEB", got[1].Title)
	assert.Equal(t, "0 Bytes", got[1].Size)
	assert.Equal(t, "3/9/2024", got[1].Date)
	assert.Equal(t, "2024-03-09T12:00:00+00:00", got[1].PublishDate)
}

func TestSearch_AdultFilterIsCaseInsensitive(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Results":[
			{"Title":"a","CategoryDesc":"xxx"},
			{"Title":"b","CategoryDesc":"Other/XxX/Pack"},
			{"Title":"c","CategoryDesc":"TV/SD"}
		]}`))
	})

	got, err := c.Search(context.Background(), "x")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Title)
}

func TestSearch_RemoteError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	got, err := c.Search(context.Background(), "movie")
	require.Error(t, err)
	assert.Nil(t, got)

	var failed *SearchFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "failed to fetch results", failed.Error())
	assert.Equal(t, "movie", failed.Query)

	var remote *requester.RemoteServiceError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusInternalServerError, remote.StatusCode)
}

func TestSearch_DecodeError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Results": "nope"}`))
	})

	_, err := c.Search(context.Background(), "movie")
	var failed *SearchFailedError
	require.ErrorAs(t, err, &failed)

	var remote *requester.RemoteServiceError
	assert.False(t, errors.As(err, &remote))
}

func TestSearch_MissingResults(t *testing.T) {
	for _, body := range []string{`{}`, `{"Results":null}`} {
		t.Run(body, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})

			got, err := c.Search(context.Background(), "movie")
			var failed *SearchFailedError
			require.ErrorAs(t, err, &failed)
			assert.Equal(t, "failed to fetch results", err.Error())
			assert.Nil(t, got)
		})
	}
}

func TestSearch_NetworkError(t *testing.T) {
	r := requester.New(nil, time.Second, nil, nil)
	c := NewClient(config.Jackett{URL: "http://127.0.0.1:1", APIKey: "k"}, r, utils.NewDateFormatter("en-US", "UTC"))

	_, err := c.Search(context.Background(), "movie")
	var failed *SearchFailedError
	require.ErrorAs(t, err, &failed)
	assert.NotNil(t, errors.Unwrap(err))
}
