package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"rss_digest/internal/model"
)

type feedItem struct {
	Name     string  `json:"name" yaml:"name"`
	RSS      *string `json:"rss" yaml:"rss"`
	Priority any     `json:"priority" yaml:"priority"`
}

// category is one top-level entry of the feed file. list is false when the
// value is not a sequence.
type category struct {
	name  string
	list  bool
	items []feedItem
}

var errNotMapping = errors.New("top level must be a mapping of categories")

// LoadFeeds reads the feed list at path. See ParseFeeds for the format.
func LoadFeeds(path string) ([]model.FeedDescriptor, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("read feed config: %w", err)
	}
	return ParseFeeds(data)
}

// ParseFeeds decodes a mapping of category name to a list of feeds, each
// with "name", "rss" and an optional "priority". A document starting with
// "{" is read as JSON, anything else as YAML. Categories starting with "_"
// or not holding a list are ignored, as are items without an "rss" URL.
// File order is preserved; a repeated category keeps its first position and
// its last value.
func ParseFeeds(data []byte) ([]model.FeedDescriptor, error) {
	var (
		cats []category
		err  error
	)
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		cats, err = jsonCategories(data)
	} else {
		cats, err = yamlCategories(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse feed config: %w", err)
	}

	var feeds []model.FeedDescriptor
	for _, c := range cats {
		if !c.list || strings.HasPrefix(c.name, "_") {
			continue
		}
		for _, item := range c.items {
			if item.RSS == nil {
				continue
			}
			feeds = append(feeds, model.FeedDescriptor{
				Name:     item.Name,
				URL:      *item.RSS,
				Priority: truthy(item.Priority),
				Category: c.name,
			})
		}
	}
	return feeds, nil
}

// jsonCategories walks the top-level object token by token so that key
// order survives.
func jsonCategories(data []byte) ([]category, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotMapping
	}

	var cats []category
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}

		c := category{name: name}
		var elems []json.RawMessage
		if json.Unmarshal(raw, &elems) == nil && elems != nil {
			c.list = true
			for _, e := range elems {
				if !bytes.HasPrefix(bytes.TrimSpace(e), []byte("{")) {
					continue
				}
				var item feedItem
				if err := json.Unmarshal(e, &item); err != nil {
					return nil, fmt.Errorf("feed in %q: %w", name, err)
				}
				c.items = append(c.items, item)
			}
		}
		cats = setCategory(cats, c)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level object")
	}
	return cats, nil
}

// yamlCategories decodes through yaml.Node because a Go map would lose the
// category order.
func yamlCategories(data []byte) ([]category, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errNotMapping
	}

	var cats []category
	for i := 0; i+1 < len(root.Content); i += 2 {
		c := category{name: root.Content[i].Value}
		items := root.Content[i+1]
		if items.Kind == yaml.SequenceNode {
			c.list = true
			for _, node := range items.Content {
				if node.Kind != yaml.MappingNode {
					continue
				}
				var item feedItem
				if err := node.Decode(&item); err != nil {
					return nil, fmt.Errorf("feed in %q (line %d): %w", c.name, node.Line, err)
				}
				c.items = append(c.items, item)
			}
		}
		cats = setCategory(cats, c)
	}
	return cats, nil
}

func setCategory(cats []category, c category) []category {
	for i := range cats {
		if cats[i].name == c.name {
			cats[i] = c
			return cats
		}
	}
	return append(cats, c)
}

// truthy interprets loosely typed flags: false, zero, empty and null are
// false, anything else is true.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}
