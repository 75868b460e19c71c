package handler

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/hbollon/go-edlib"

	"github.com/felipemarinho97/torrent-finder/schema"
	"github.com/felipemarinho97/torrent-finder/tags"
	"github.com/felipemarinho97/torrent-finder/utils"
)

// PostProcessor enriches or reorders search results before they are served.
type PostProcessor func(h *Handler, r *http.Request, torrents []schema.TorrentResult) []schema.TorrentResult

// DefaultPostProcessors is the chain applied by the search endpoints.
var DefaultPostProcessors = []PostProcessor{
	AttachInfoHash,
	AttachTags,
	AddSimilarityCheck,
	SortResults,
}

// AttachInfoHash fills InfoHash from the magnet link when it can be parsed.
func AttachInfoHash(_ *Handler, _ *http.Request, torrents []schema.TorrentResult) []schema.TorrentResult {
	for i, t := range torrents {
		if t.MagnetLink == "" {
			continue
		}
		m, err := metainfo.ParseMagnetUri(t.MagnetLink)
		if err != nil {
			continue
		}
		torrents[i].InfoHash = m.InfoHash.HexString()
	}
	return torrents
}

// AttachTags runs the title tagger on every result.
func AttachTags(_ *Handler, _ *http.Request, torrents []schema.TorrentResult) []schema.TorrentResult {
	for i := range torrents {
		set := tags.Extract(torrents[i].Title)
		torrents[i].Tags = &set
	}
	return torrents
}

// AddSimilarityCheck scores results against the query when sort=relevance and
// orders them best first.
func AddSimilarityCheck(_ *Handler, r *http.Request, torrents []schema.TorrentResult) []schema.TorrentResult {
	if r.URL.Query().Get("sort") != "relevance" {
		return torrents
	}
	q := r.URL.Query().Get("q")
	qLower := strings.ToLower(q)

	for i, t := range torrents {
		jLower := strings.ReplaceAll(strings.ToLower(t.Title), ".", " ")
		splitLength := 2
		torrents[i].Similarity = edlib.JaccardSimilarity(jLower, qLower, splitLength)
	}

	// remove the ones with zero similarity
	if len(torrents) > 20 && r.URL.Query().Get("filter_results") != "" && q != "" {
		torrents = utils.Filter(torrents, func(t schema.TorrentResult) bool {
			return t.Similarity > 0
		})
	}

	slices.SortStableFunc(torrents, func(a, b schema.TorrentResult) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})
	return torrents
}

// SortResults orders by sort=seeders|size|date, largest or newest first.
func SortResults(_ *Handler, r *http.Request, torrents []schema.TorrentResult) []schema.TorrentResult {
	var key func(schema.TorrentResult) int64
	switch r.URL.Query().Get("sort") {
	case "seeders":
		key = func(t schema.TorrentResult) int64 { return int64(t.Seeders) }
	case "size":
		key = func(t schema.TorrentResult) int64 { return t.SizeBytes }
	case "date":
		key = func(t schema.TorrentResult) int64 {
			d, _ := utils.ParsePublishDate(t.PublishDate)
			return d.Unix()
		}
	default:
		return torrents
	}
	slices.SortStableFunc(torrents, func(a, b schema.TorrentResult) int {
		return cmp.Compare(key(b), key(a))
	})
	return torrents
}
