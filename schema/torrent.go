package schema

// TorrentResult is one entry returned by the indexer aggregator, reshaped for
// the front-end.
type TorrentResult struct {
	Title       string `json:"title"`
	MagnetLink  string `json:"magnet_link"`
	Seeders     int    `json:"seeders"`
	Peers       int    `json:"peers"`
	Size        string `json:"size"`
	SizeBytes   int64  `json:"size_bytes"`
	Date        string `json:"date"`
	PublishDate string `json:"publish_date"`
	Tracker     string `json:"tracker"`

	// filled in by the HTTP post-processors
	InfoHash   string  `json:"info_hash,omitempty"`
	Tags       *TagSet `json:"tags,omitempty"`
	Similarity float32 `json:"similarity,omitempty"`
}
