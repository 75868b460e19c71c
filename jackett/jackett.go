// Package jackett proxies the Jackett indexer aggregator's JSON results API.
package jackett

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/felipemarinho97/torrent-finder/config"
	"github.com/felipemarinho97/torrent-finder/logging"
	"github.com/felipemarinho97/torrent-finder/requester"
	"github.com/felipemarinho97/torrent-finder/schema"
	"github.com/felipemarinho97/torrent-finder/utils"
)

const (
	Upstream    = "jackett"
	resultLimit = 1000
	resultsPath = "/api/v2.0/indexers/all/results"
)

// SearchFailedError is returned for every failure on the search path. The
// underlying cause is available through errors.As / errors.Unwrap.
type SearchFailedError struct {
	Query string
	Err   error
}

func (e *SearchFailedError) Error() string {
	return "failed to fetch results"
}

func (e *SearchFailedError) Unwrap() error {
	return e.Err
}

type response struct {
	Results *[]result `json:"Results"`
}

var errMissingResults = errors.New("response has no Results array")

type result struct {
	Title        string `json:"Title"`
	MagnetURI    string `json:"MagnetUri"`
	Seeders      int    `json:"Seeders"`
	Peers        int    `json:"Peers"`
	Size         int64  `json:"Size"`
	PublishDate  string `json:"PublishDate"`
	Tracker      string `json:"Tracker"`
	CategoryDesc string `json:"CategoryDesc"`
}

type Client struct {
	baseURL   string
	apiKey    string
	requester *requester.Requester
	dates     utils.DateFormatter
}

func NewClient(cfg config.Jackett, r *requester.Requester, dates utils.DateFormatter) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		apiKey:    cfg.APIKey,
		requester: r,
		dates:     dates,
	}
}

func (c *Client) searchURL(query string) string {
	params := url.Values{}
	params.Set("query", query)
	params.Set("apikey", c.apiKey)
	params.Set("limit", strconv.Itoa(resultLimit))
	return fmt.Sprintf("%s%s?%s", c.baseURL, resultsPath, params.Encode())
}

// Search returns the aggregated results for query, adult categories removed.
// An empty query returns no results without calling Jackett.
func (c *Client) Search(ctx context.Context, query string) ([]schema.TorrentResult, error) {
	if query == "" {
		return []schema.TorrentResult{}, nil
	}

	var resp response
	if err := c.requester.GetJSON(ctx, Upstream, c.searchURL(query), &resp); err != nil {
		logging.Error().Err(err).Str("query", query).Msg("Search error")
		return nil, &SearchFailedError{Query: query, Err: err}
	}
	if resp.Results == nil {
		logging.Error().Err(errMissingResults).Str("query", query).Msg("Search error")
		return nil, &SearchFailedError{Query: query, Err: errMissingResults}
	}

	kept := utils.Filter(*resp.Results, func(r result) bool {
		return !isAdult(r)
	})

	torrents := make([]schema.TorrentResult, 0, len(kept))
	for _, r := range kept {
		torrents = append(torrents, c.toTorrent(r))
	}

	logging.Debug().
		Str("query", query).
		Int("received", len(*resp.Results)).
		Int("returned", len(torrents)).
		Msg("Search completed")

	return torrents, nil
}

func isAdult(r result) bool {
	return strings.Contains(strings.ToLower(r.CategoryDesc), "xxx")
}

func (c *Client) toTorrent(r result) schema.TorrentResult {
	return schema.TorrentResult{
		Title:       r.Title,
		MagnetLink:  r.MagnetURI,
		Seeders:     max(r.Seeders, 0),
		Peers:       max(r.Peers, 0),
		Size:        utils.FormatBytes(r.Size),
		SizeBytes:   max(r.Size, 0),
		Date:        c.dates.Format(r.PublishDate),
		PublishDate: r.PublishDate,
		Tracker:     r.Tracker,
	}
}
