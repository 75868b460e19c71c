package utils

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

// short date layouts, keyed by the tags the matcher can resolve to
var (
	shortDateTags = []language.Tag{
		language.Und, // ISO fallback, must stay first
		language.AmericanEnglish,
		language.BritishEnglish,
		language.German,
		language.French,
		language.Spanish,
		language.Italian,
		language.Portuguese,
		language.BrazilianPortuguese,
		language.Dutch,
		language.Japanese,
		language.Chinese,
		language.Korean,
	}
	shortDateLayouts = []string{
		"2006-01-02",
		"1/2/2006",
		"02/01/2006",
		"2.1.2006",
		"02/01/2006",
		"2/1/2006",
		"2/1/2006",
		"02/01/2006",
		"02/01/2006",
		"2-1-2006",
		"2006/1/2",
		"2006/1/2",
		"2006. 1. 2.",
	}
	shortDateMatcher = language.NewMatcher(shortDateTags)
)

var publishDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DateFormatter renders publish timestamps as locale short dates.
type DateFormatter struct {
	Layout   string
	Location *time.Location
}

// NewDateFormatter picks the short date layout closest to locale (a BCP 47
// tag such as "en-US" or "pt-BR") and renders dates in tz. An empty or
// unknown tz falls back to time.Local.
func NewDateFormatter(locale, tz string) DateFormatter {
	loc := time.Local
	if tz = strings.TrimSpace(tz); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	return DateFormatter{Layout: shortDateLayout(locale), Location: loc}
}

func shortDateLayout(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return shortDateLayouts[0]
	}
	_, index, confidence := shortDateMatcher.Match(tag)
	if confidence == language.No {
		return shortDateLayouts[0]
	}
	return shortDateLayouts[index]
}

// ParsePublishDate parses the timestamps the indexer aggregator emits. Values
// without a zone are taken as UTC.
func ParsePublishDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range publishDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Format returns the short date for an ISO timestamp, or "" when it cannot be
// parsed.
func (f DateFormatter) Format(publishDate string) string {
	t, ok := ParsePublishDate(publishDate)
	if !ok {
		return ""
	}
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	layout := f.Layout
	if layout == "" {
		layout = shortDateLayouts[0]
	}
	return t.In(loc).Format(layout)
}
