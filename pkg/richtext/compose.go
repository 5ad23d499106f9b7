package richtext

import (
	"fmt"
	"strings"

	"bskybot/pkg/bluesky"
	errs "bskybot/pkg/errors"
)

// Mode selects how a post's final text is built from its content
type Mode string

const (
	// ModePlain posts the content as-is with no facets
	ModePlain Mode = "plain"

	// ModeHashtag appends the configured hashtag and links every hashtag in the result
	ModeHashtag Mode = "hashtag"
)

// DefaultHashtag is appended in hashtag mode when none is configured
const DefaultHashtag = "#bot"

// ParseMode converts a configuration value into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePlain:
		return ModePlain, nil
	case ModeHashtag:
		return ModeHashtag, nil
	default:
		return "", errs.New(errs.ErrorTypeConfig, fmt.Sprintf("unknown post mode %q (plain, hashtag)", s))
	}
}

// Annotated is the final text of a post and its facets
type Annotated struct {
	Text   string
	Facets []bluesky.Facet
}

// Composer builds annotated posts according to a Mode
type Composer struct {
	Mode    Mode
	Hashtag string
}

// NewComposer creates a composer, falling back to DefaultHashtag
func NewComposer(mode Mode, hashtag string) *Composer {
	if hashtag == "" {
		hashtag = DefaultHashtag
	}
	return &Composer{Mode: mode, Hashtag: hashtag}
}

// Compose returns the text that will be submitted for content. The returned
// Text is also the duplicate-check key.
func (c *Composer) Compose(content string) Annotated {
	if c.Mode != ModeHashtag {
		return Annotated{Text: content}
	}

	text := content + " " + c.Hashtag
	return Annotated{
		Text:   text,
		Facets: Hashtags(text),
	}
}
