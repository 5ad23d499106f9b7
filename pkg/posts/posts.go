// Package posts loads the ordered list of post contents a run publishes.
package posts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	errs "bskybot/pkg/errors"

	"gopkg.in/yaml.v3"
)

// Item is one entry of the posts file
type Item struct {
	Content string `json:"content" yaml:"content"`
}

// Load reads a posts file once. JSON is the default format; files ending in
// .yaml or .yml are read as YAML with the same shape. Order is preserved.
func Load(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeInput,
			Message: fmt.Sprintf("failed to read posts file %s: %v", path, err),
			Err:     err,
		}
	}

	items, err := Parse(data, formatFor(path))
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeInput,
			Message: fmt.Sprintf("failed to parse posts file %s: %v", path, err),
			Err:     err,
		}
	}

	return items, nil
}

// Format is the encoding of a posts file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes a list of items
func Parse(data []byte, format Format) ([]Item, error) {
	var items []Item

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		// A bare "null" decodes without error but is not a list
		if items == nil && strings.TrimSpace(string(data)) == "null" {
			return nil, fmt.Errorf("expected a list of posts, got null")
		}
	}

	if items == nil {
		items = []Item{}
	}
	return items, nil
}
