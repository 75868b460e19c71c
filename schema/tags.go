package schema

type Category string

const (
	CategoryResolution Category = "Resolution"
	CategorySource     Category = "Source"
	CategoryCodec      Category = "Codec"
	CategoryAudio      Category = "Audio"
	CategoryOther      Category = "Other"
)

// Categories lists every tag category in display order.
var Categories = []Category{
	CategoryResolution,
	CategorySource,
	CategoryCodec,
	CategoryAudio,
	CategoryOther,
}

// TagSet holds the labels found in a release title. Every category is always
// present; each slice is sorted and free of duplicates.
type TagSet struct {
	Resolution []string `json:"Resolution"`
	Source     []string `json:"Source"`
	Codec      []string `json:"Codec"`
	Audio      []string `json:"Audio"`
	Other      []string `json:"Other"`
}

// NewTagSet returns a TagSet with every category initialised to an empty slice.
func NewTagSet() TagSet {
	return TagSet{
		Resolution: []string{},
		Source:     []string{},
		Codec:      []string{},
		Audio:      []string{},
		Other:      []string{},
	}
}

// Get returns the labels of a category, or nil for an unknown category.
func (t TagSet) Get(c Category) []string {
	switch c {
	case CategoryResolution:
		return t.Resolution
	case CategorySource:
		return t.Source
	case CategoryCodec:
		return t.Codec
	case CategoryAudio:
		return t.Audio
	case CategoryOther:
		return t.Other
	}
	return nil
}

// Set replaces the labels of a category. Unknown categories are ignored.
func (t *TagSet) Set(c Category, labels []string) {
	switch c {
	case CategoryResolution:
		t.Resolution = labels
	case CategorySource:
		t.Source = labels
	case CategoryCodec:
		t.Codec = labels
	case CategoryAudio:
		t.Audio = labels
	case CategoryOther:
		t.Other = labels
	}
}

// Empty reports whether no category carries a label.
func (t TagSet) Empty() bool {
	for _, c := range Categories {
		if len(t.Get(c)) > 0 {
			return false
		}
	}
	return true
}
