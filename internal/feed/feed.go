// Package feed pulls articles to analyze out of an RSS/Atom feed, for batch
// submissions against a monitored outlet.
package feed

import (
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/disinfowatch/propextract/internal/webclean"
)

const defaultMax = 20

// Item is one feed entry ready for submission.
type Item struct {
	Title string
	URL   string
	Text  string
}

// Parse fetches and parses feedURL, returning up to max items with cleaned
// text content. max <= 0 uses a sane default.
func Parse(feedURL string, max int) ([]Item, error) {
	if max <= 0 {
		max = defaultMax
	}

	parsed, err := gofeed.NewParser().ParseURL(feedURL)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", feedURL, err)
	}

	var items []Item
	for _, it := range parsed.Items {
		if len(items) >= max {
			break
		}
		item := parseItem(it)
		if item != nil {
			items = append(items, *item)
		}
	}
	return items, nil
}

func parseItem(it *gofeed.Item) *Item {
	itemURL := it.Link
	if itemURL == "" {
		itemURL = it.GUID
	}
	title := strings.TrimSpace(it.Title)
	if itemURL == "" || title == "" {
		return nil
	}

	var text string
	if it.Content != "" {
		text = webclean.Clean(it.Content)
	} else if it.Description != "" {
		text = webclean.Clean(it.Description)
	}
	if text == "" {
		return nil
	}

	return &Item{Title: title, URL: itemURL, Text: text}
}
