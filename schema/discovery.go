package schema

import "fmt"

type MediaKind string

const (
	MediaKindMovie MediaKind = "movie"
	MediaKindTV    MediaKind = "tv"
)

// ParseMediaKind accepts "movie" or "tv". An empty string means movie.
func ParseMediaKind(s string) (MediaKind, error) {
	switch MediaKind(s) {
	case "", MediaKindMovie:
		return MediaKindMovie, nil
	case MediaKindTV:
		return MediaKindTV, nil
	}
	return "", fmt.Errorf("unknown media kind %q", s)
}

func (k MediaKind) Valid() bool {
	return k == MediaKindMovie || k == MediaKindTV
}

// DiscoveryItem is one title listed by the metadata service's discover endpoint.
type DiscoveryItem struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	PosterURL   string    `json:"poster_url"`
	ReleaseDate string    `json:"release_date"`
	Overview    string    `json:"overview"`
	MediaKind   MediaKind `json:"media_kind"`
}
