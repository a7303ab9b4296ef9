package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"time"
)

const rssDocsURL = "https://validator.w3.org/feed/docs/rss2.html"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders the envelope in the given format. Output depends only on the
// envelope, so unchanged input renders byte-identical output.
func (g *Generator) Run(envelope Envelope, format Format) ([]byte, error) {
	switch format {
	case FormatRSS2:
		return g.renderRSS(envelope), nil
	case FormatAtom:
		return g.renderAtom(envelope), nil
	case FormatJSON:
		return g.renderJSON(envelope)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func (g *Generator) renderRSS(envelope Envelope) []byte {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", envelope.Title, 4)
	g.writeElement(&buf, "link", envelope.Link, 4)
	g.writeElement(&buf, "description", envelope.Description, 4)

	if selfLink := envelope.FeedLinks[FormatRSS2]; selfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(selfLink)))
	}

	g.writeElement(&buf, "lastBuildDate", formatRFC1123(envelope.Updated), 4)
	g.writeElement(&buf, "docs", rssDocsURL, 4)
	g.writeElement(&buf, "generator", envelope.Generator, 4)
	g.writeElement(&buf, "language", envelope.Language, 4)
	g.writeElement(&buf, "copyright", envelope.Copyright, 4)

	if envelope.Image != "" {
		buf.WriteString("    <image>\n")
		g.writeElement(&buf, "url", envelope.Image, 6)
		g.writeElement(&buf, "title", envelope.Title, 6)
		g.writeElement(&buf, "link", envelope.Link, 6)
		buf.WriteString("    </image>\n")
	}

	for _, entry := range envelope.Entries {
		g.writeItem(&buf, entry)
	}

	buf.WriteString("  </channel>\n</rss>\n")

	return buf.Bytes()
}

func (g *Generator) writeItem(buf *bytes.Buffer, entry Entry) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", entry.Title, 6)
	g.writeElement(buf, "link", entry.Link, 6)

	guid := cmp.Or(entry.ID, entry.Link)
	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(guid)))
	xml.EscapeText(buf, []byte(guid))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "pubDate", formatRFC1123(entry.Date), 6)
	g.writeElement(buf, "description", entry.Description, 6)

	for _, category := range entry.Categories {
		g.writeElement(buf, "category", category, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}

func formatRFC1123(t time.Time) string {
	return t.UTC().Format(time.RFC1123Z)
}

func formatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
