// Package tmdb proxies The Movie Database discover endpoint.
package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/felipemarinho97/torrent-finder/config"
	"github.com/felipemarinho97/torrent-finder/logging"
	"github.com/felipemarinho97/torrent-finder/requester"
	"github.com/felipemarinho97/torrent-finder/schema"
)

const (
	Upstream = "tmdb"

	// ImageBaseURL serves posters at 500px width.
	ImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

type discoverResponse struct {
	Results []struct {
		ID           int    `json:"id"`
		Title        string `json:"title"`
		Name         string `json:"name"`
		PosterPath   string `json:"poster_path"`
		ReleaseDate  string `json:"release_date"`
		FirstAirDate string `json:"first_air_date"`
		Overview     string `json:"overview"`
	} `json:"results"`
}

type Client struct {
	baseURL   string
	apiKey    string
	requester *requester.Requester
}

func NewClient(cfg config.TMDB, r *requester.Requester) *Client {
	baseURL := strings.TrimRight(cfg.URL, "/")
	if baseURL == "" {
		baseURL = config.DefaultTMDBURL
	}
	return &Client{baseURL: baseURL, apiKey: cfg.APIKey, requester: r}
}

func (c *Client) discoverURL(page int, kind schema.MediaKind) string {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("sort_by", "popularity.desc")
	params.Set("watch_region", "US")
	params.Set("with_watch_monetization_types", "flatrate|rent|buy")
	params.Set("include_adult", "false")
	params.Set("language", "en-US")
	params.Set("page", strconv.Itoa(page))
	return fmt.Sprintf("%s/discover/%s?%s", c.baseURL, kind, params.Encode())
}

// Discover lists popular titles of the given kind. Without an API key it
// returns *config.ConfigurationError; any other failure is logged and
// reported as an empty list.
func (c *Client) Discover(ctx context.Context, page int, kind schema.MediaKind) ([]schema.DiscoveryItem, error) {
	if c.apiKey == "" {
		err := &config.ConfigurationError{Key: "TMDB_API_KEY"}
		logging.Error().Err(err).Msg("Discovery error")
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if kind == "" {
		kind = schema.MediaKindMovie
	}
	if !kind.Valid() {
		logging.Error().Str("media_kind", string(kind)).Msg("Discovery error: unknown media kind")
		return []schema.DiscoveryItem{}, nil
	}

	var resp discoverResponse
	if err := c.requester.GetJSON(ctx, Upstream, c.discoverURL(page, kind), &resp); err != nil {
		logging.Error().Err(err).Int("page", page).Str("media_kind", string(kind)).Msg("Discovery error")
		return []schema.DiscoveryItem{}, nil
	}

	items := make([]schema.DiscoveryItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		item := schema.DiscoveryItem{
			ID:          r.ID,
			Title:       r.Title,
			ReleaseDate: r.ReleaseDate,
			Overview:    r.Overview,
			MediaKind:   kind,
		}
		if item.Title == "" {
			item.Title = r.Name
		}
		if item.ReleaseDate == "" {
			item.ReleaseDate = r.FirstAirDate
		}
		if r.PosterPath != "" {
			item.PosterURL = ImageBaseURL + r.PosterPath
		}
		items = append(items, item)
	}
	return items, nil
}
