package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// Parsed feed types, as seen by a feed reader

type ParsedFeed struct {
	FeedType string
	Title    string
	Link     string
	Updated  *time.Time
	Entries  []ParsedEntry
}

type ParsedEntry struct {
	GUID       string
	Title      string
	Link       string
	Date       time.Time
	Categories []string
}

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses an RSS, Atom or JSON feed document.
func (p *Parser) Run(data []byte) (*ParsedFeed, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	result := &ParsedFeed{
		FeedType: parsed.FeedType,
		Title:    parsed.Title,
		Link:     parsed.Link,
		Updated:  parsed.UpdatedParsed,
		Entries:  make([]ParsedEntry, 0, len(parsed.Items)),
	}

	for _, item := range parsed.Items {
		result.Entries = append(result.Entries, p.normalizeItem(item))
	}

	return result, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) ParsedEntry {
	entry := ParsedEntry{
		GUID:       cmp.Or(item.GUID, item.Link),
		Title:      item.Title,
		Link:       item.Link,
		Categories: item.Categories,
	}

	if item.PublishedParsed != nil {
		entry.Date = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		entry.Date = *item.UpdatedParsed
	}

	return entry
}

// Verify checks that a parsed feed carries the envelope's entries, in order,
// with matching title, link and date.
func (p *Parser) Verify(envelope Envelope, data []byte) error {
	parsed, err := p.Run(data)
	if err != nil {
		return err
	}

	if len(parsed.Entries) != len(envelope.Entries) {
		return fmt.Errorf("expected %d entries, parsed %d", len(envelope.Entries), len(parsed.Entries))
	}

	for i, want := range envelope.Entries {
		got := parsed.Entries[i]
		if got.Title != want.Title {
			return fmt.Errorf("entry %d: expected title %q, got %q", i, want.Title, got.Title)
		}
		if got.Link != want.Link {
			return fmt.Errorf("entry %d: expected link %q, got %q", i, want.Link, got.Link)
		}
		if !got.Date.Equal(want.Date.Truncate(time.Second)) {
			return fmt.Errorf("entry %d: expected date %s, got %s", i, want.Date, got.Date)
		}
	}

	return nil
}
