package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/felipemarinho97/torrent-finder/config"
	"github.com/felipemarinho97/torrent-finder/consts"
	"github.com/felipemarinho97/torrent-finder/jackett"
	"github.com/felipemarinho97/torrent-finder/logging"
	"github.com/felipemarinho97/torrent-finder/schema"
	"github.com/felipemarinho97/torrent-finder/tags"
	"github.com/felipemarinho97/torrent-finder/tmdb"
)

type torrentSearcher interface {
	Search(ctx context.Context, query string) ([]schema.TorrentResult, error)
}

type contentDiscoverer interface {
	Discover(ctx context.Context, page int, kind schema.MediaKind) ([]schema.DiscoveryItem, error)
}

var (
	_ torrentSearcher   = (*jackett.Client)(nil)
	_ contentDiscoverer = (*tmdb.Client)(nil)
)

type Handler struct {
	searcher       torrentSearcher
	discoverer     contentDiscoverer
	postProcessors []PostProcessor
}

func NewHandler(s torrentSearcher, d contentDiscoverer) *Handler {
	return &Handler{
		searcher:       s,
		discoverer:     d,
		postProcessors: DefaultPostProcessors,
	}
}

type Response[T any] struct {
	Results []T `json:"results"`
	Count   int `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// search runs the upstream search and the post-processor chain.
func (h *Handler) search(r *http.Request, q string) ([]schema.TorrentResult, error) {
	torrents, err := h.searcher.Search(r.Context(), q)
	if err != nil {
		return nil, err
	}
	for _, process := range h.postProcessors {
		torrents = process(h, r, torrents)
	}
	return torrents, nil
}

func (h *Handler) HandlerSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	torrents, err := h.search(r, q)
	if err != nil {
		logging.ErrorWithRequest(r).Err(err).Msg("Search failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if torrents == nil {
		torrents = []schema.TorrentResult{}
	}

	writeJSON(w, http.StatusOK, Response[schema.TorrentResult]{
		Results: torrents,
		Count:   len(torrents),
	})
}

type discoverParams struct {
	page int
	kind schema.MediaKind
}

func parseDiscoverParams(r *http.Request) (discoverParams, error) {
	p := discoverParams{page: 1}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, errors.New("page must be a positive integer")
		}
		p.page = page
	}
	kind, err := schema.ParseMediaKind(r.URL.Query().Get("type"))
	if err != nil {
		return p, err
	}
	p.kind = kind
	return p, nil
}

func (h *Handler) HandlerDiscover(w http.ResponseWriter, r *http.Request) {
	p, err := parseDiscoverParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.discoverer.Discover(r.Context(), p.page, p.kind)
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			logging.ErrorWithRequest(r).Err(err).Msg("Discovery is not configured")
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []schema.DiscoveryItem{}
	}

	writeJSON(w, http.StatusOK, Response[schema.DiscoveryItem]{
		Results: items,
		Count:   len(items),
	})
}

func (h *Handler) HandlerTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tags.Extract(r.URL.Query().Get("title")))
}

func (h *Handler) HandlerHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	for k, v := range consts.GetBuildInfo() {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}
