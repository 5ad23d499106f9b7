package richtext

import (
	"regexp"

	"bskybot/pkg/bluesky"
)

// hashtagPattern matches '#' followed by one or more word characters
var hashtagPattern = regexp.MustCompile(`#\w+`)

// Hashtags returns a link facet for every hashtag in text, left to right.
// Offsets index the UTF-8 bytes of text, which is what Go's regexp reports.
func Hashtags(text string) []bluesky.Facet {
	matches := hashtagPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	facets := make([]bluesky.Facet, 0, len(matches))
	for _, m := range matches {
		tag := text[m[0]:m[1]]
		facets = append(facets, bluesky.Facet{
			Index: bluesky.Index{
				ByteStart: m[0],
				ByteEnd:   m[1],
			},
			Features: []bluesky.Feature{{
				Type: bluesky.LinkFeatureType,
				URI:  bluesky.SearchURL(tag),
			}},
		})
	}

	return facets
}
