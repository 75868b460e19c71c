package handler

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/felipemarinho97/torrent-finder/logging"
	"github.com/felipemarinho97/torrent-finder/schema"
)

//go:embed templates/*.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type tagLabel struct {
	Category string
	Label    string
}

type resultRow struct {
	schema.TorrentResult
	Labels []tagLabel
	// html/template drops non-http schemes unless the URL is marked safe
	Href template.URL
}

type indexPage struct {
	Query string
	Sort  string
	Error string
	Rows  []resultRow

	Kind      schema.MediaKind
	Page      int
	PrevPage  int
	NextPage  int
	Discovery []schema.DiscoveryItem
}

func toRows(torrents []schema.TorrentResult) []resultRow {
	rows := make([]resultRow, 0, len(torrents))
	for _, t := range torrents {
		row := resultRow{TorrentResult: t}
		if strings.HasPrefix(strings.ToLower(t.MagnetLink), "magnet:") {
			row.Href = template.URL(t.MagnetLink)
		}
		if t.Tags != nil {
			for _, c := range schema.Categories {
				for _, l := range t.Tags.Get(c) {
					row.Labels = append(row.Labels, tagLabel{Category: string(c), Label: l})
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// HandlerIndex renders the search page. Without a query it shows the
// discovery grid instead.
func (h *Handler) HandlerIndex(w http.ResponseWriter, r *http.Request) {
	page := indexPage{
		Query: r.URL.Query().Get("q"),
		Sort:  r.URL.Query().Get("sort"),
	}
	status := http.StatusOK

	if page.Query != "" {
		torrents, err := h.search(r, page.Query)
		if err != nil {
			logging.ErrorWithRequest(r).Err(err).Msg("Search failed")
			page.Error = err.Error()
			status = http.StatusBadGateway
		}
		page.Rows = toRows(torrents)
	} else {
		p, err := parseDiscoverParams(r)
		if err != nil {
			page.Error = err.Error()
			status = http.StatusBadRequest
		} else {
			page.Kind, page.Page = p.kind, p.page
			page.PrevPage, page.NextPage = p.page-1, p.page+1
			items, err := h.discoverer.Discover(r.Context(), p.page, p.kind)
			if err != nil {
				page.Error = err.Error()
				status = http.StatusInternalServerError
			}
			page.Discovery = items
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, page); err != nil {
		logging.ErrorWithRequest(r).Err(err).Msg("Failed to render page")
	}
}
