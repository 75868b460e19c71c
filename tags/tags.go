// Package tags extracts quality, codec and audio labels from free-text
// release titles.
package tags

import (
	"regexp"
	"slices"

	"github.com/felipemarinho97/torrent-finder/schema"
)

// Rule adds Label to Category whenever Pattern matches a title.
type Rule struct {
	Category schema.Category
	Pattern  *regexp.Regexp
	Label    string
}

func rule(c schema.Category, pattern, label string) Rule {
	return Rule{Category: c, Pattern: regexp.MustCompile(`(?i)` + pattern), Label: label}
}

// rules is evaluated in full for every title; several rules of the same
// category may fire at once (e.g. "5.1" and "7.1").
//
// The TS and TC patterns are short tokens and will also match unrelated
// words such as initials ("J.T.S."). Known limitation, kept on purpose.
var rules = []Rule{
	rule(schema.CategoryResolution, `\b2160p\b|\b4k\b`, "4K"),
	rule(schema.CategoryResolution, `\b1080p\b`, "1080p"),
	rule(schema.CategoryResolution, `\b720p\b`, "720p"),
	rule(schema.CategoryResolution, `\b480p\b`, "480p"),

	rule(schema.CategorySource, `\bbluray\b|\bblu-ray\b|\bbdrip\b|\bbrrip\b`, "BluRay"),
	rule(schema.CategorySource, `\bweb-?dl\b|\bweb-?rip\b|\bweb\b`, "WEB"),
	rule(schema.CategorySource, `\bdvdrip\b|\bdvd\b`, "DVD"),
	rule(schema.CategorySource, `\bhdrip\b`, "HDRip"),
	rule(schema.CategorySource, `\bcam\b|\bhdcam\b`, "CAM"),
	rule(schema.CategorySource, `\bts\b|\bhd-?ts\b|\btelevision sync\b`, "TS"),
	rule(schema.CategorySource, `\btc\b|\bhd-?tc\b|\btelecine\b`, "TC"),
	rule(schema.CategorySource, `\bscr\b|\bscreener\b|\bdvdscr\b`, "Screener"),

	rule(schema.CategoryCodec, `\bx265\b|\bh\.?265\b|\bhevc\b`, "x265"),
	rule(schema.CategoryCodec, `\bx264\b|\bh\.?264\b|\bavc\b`, "x264"),
	rule(schema.CategoryCodec, `\bav1\b`, "AV1"),
	rule(schema.CategoryCodec, `\bxvid\b`, "XviD"),
	rule(schema.CategoryCodec, `\bdivx\b`, "DivX"),

	rule(schema.CategoryAudio, `\batmos\b`, "Atmos"),
	rule(schema.CategoryAudio, `\bdts\b|\bdts-?hd\b`, "DTS"),
	rule(schema.CategoryAudio, `\bac3\b|\bddp\b|\beac3\b`, "AC3"),
	rule(schema.CategoryAudio, `\baac\b`, "AAC"),
	rule(schema.CategoryAudio, `\b5\.1\b`, "5.1"),
	rule(schema.CategoryAudio, `\b7\.1\b`, "7.1"),

	rule(schema.CategoryOther, `\bhdr\b`, "HDR"),
	rule(schema.CategoryOther, `\b10bit\b`, "10bit"),
	rule(schema.CategoryOther, `\b3d\b`, "3D"),
	rule(schema.CategoryOther, `\brepack\b`, "Repack"),
	rule(schema.CategoryOther, `\bremux\b`, "REMUX"),
}

// Rules returns a copy of the built-in rule table.
func Rules() []Rule {
	return slices.Clone(rules)
}

// Extract runs the built-in rules against title.
func Extract(title string) schema.TagSet {
	return ExtractWith(rules, title)
}

// ExtractWith runs every rule against title and returns the matched labels
// grouped by category, deduplicated and sorted.
func ExtractWith(rs []Rule, title string) schema.TagSet {
	found := make(map[schema.Category][]string, len(schema.Categories))
	for _, r := range rs {
		if r.Pattern.MatchString(title) {
			found[r.Category] = append(found[r.Category], r.Label)
		}
	}

	set := schema.NewTagSet()
	for c, labels := range found {
		slices.Sort(labels)
		set.Set(c, slices.Compact(labels))
	}
	return set
}
