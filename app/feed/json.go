package feed

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
)

const jsonFeedVersion = "https://jsonfeed.org/version/1"

// JSON Feed version 1 document

type JSONFeed struct {
	Version     string         `json:"version"`
	Title       string         `json:"title"`
	HomePageURL string         `json:"home_page_url,omitempty"`
	FeedURL     string         `json:"feed_url,omitempty"`
	Description string         `json:"description,omitempty"`
	Icon        string         `json:"icon,omitempty"`
	Favicon     string         `json:"favicon,omitempty"`
	Items       []JSONFeedItem `json:"items"`
}

type JSONFeedItem struct {
	ID           string   `json:"id"`
	URL          string   `json:"url,omitempty"`
	Title        string   `json:"title,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	DateModified string   `json:"date_modified,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

func (g *Generator) renderJSON(envelope Envelope) ([]byte, error) {
	doc := JSONFeed{
		Version:     jsonFeedVersion,
		Title:       envelope.Title,
		HomePageURL: envelope.Link,
		FeedURL:     envelope.FeedLinks[FormatJSON],
		Description: envelope.Description,
		Icon:        envelope.Image,
		Favicon:     envelope.Favicon,
		Items:       make([]JSONFeedItem, 0, len(envelope.Entries)),
	}

	for _, entry := range envelope.Entries {
		doc.Items = append(doc.Items, JSONFeedItem{
			ID:           cmp.Or(entry.ID, entry.Link),
			URL:          entry.Link,
			Title:        entry.Title,
			Summary:      entry.Description,
			DateModified: formatRFC3339(entry.Date),
			Tags:         entry.Categories,
		})
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode JSON feed: %w", err)
	}

	return buf.Bytes(), nil
}
