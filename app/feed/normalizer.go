package feed

import (
	"fmt"
	"log/slog"
	"strings"
)

type Normalizer struct {
	dates *DateResolver
	links *LinkResolver
}

func NewNormalizer(dates *DateResolver, links *LinkResolver) *Normalizer {
	return &Normalizer{dates: dates, links: links}
}

func (n *Normalizer) Run(doc RawDocument) (Entry, error) {
	title := stringValue(doc.Metadata["title"])
	if title == "" {
		return Entry{}, fmt.Errorf("%w: title (%s)", ErrMissingRequiredField, doc.Path)
	}

	id := stringValue(doc.Metadata["id"])

	entry := Entry{
		Title:       title,
		ID:          id,
		Description: stringValue(doc.Metadata["description"]),
		Link:        n.links.Resolve(doc.Path, doc.FileName, id),
		Categories:  stringSlice(doc.Metadata["tags"]),
	}

	resolution := n.dates.Resolve(doc.Metadata)
	if resolution.Source == DateSourceInvalid {
		slog.Warn("Invalid document date, using current time",
			"path", doc.Path,
			"error", resolution.Err)
	}
	entry.Date = resolution.Time

	slog.Debug("Document normalized",
		"path", doc.Path,
		"link", entry.Link,
		"date", entry.Date,
		"date_source", resolution.Source)

	return entry, nil
}

// RunAll normalizes every document, stopping at the first failure.
func (n *Normalizer) RunAll(docs []RawDocument) ([]Entry, error) {
	entries := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		entry, err := n.Run(doc)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func stringValue(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func stringSlice(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := stringValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	}
	return nil
}
