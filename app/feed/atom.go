package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"html"
)

func (g *Generator) renderAtom(envelope Envelope) []byte {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n")

	g.writeElement(&buf, "id", envelope.ID, 2)
	g.writeElement(&buf, "title", envelope.Title, 2)
	g.writeElement(&buf, "updated", formatRFC3339(envelope.Updated), 2)
	g.writeElement(&buf, "generator", envelope.Generator, 2)
	g.writeLink(&buf, "alternate", envelope.Link, 2)
	g.writeLink(&buf, "self", envelope.FeedLinks[FormatAtom], 2)
	g.writeElement(&buf, "subtitle", envelope.Description, 2)
	g.writeElement(&buf, "logo", envelope.Image, 2)
	g.writeElement(&buf, "icon", envelope.Favicon, 2)
	g.writeElement(&buf, "rights", envelope.Copyright, 2)

	for _, entry := range envelope.Entries {
		g.writeEntry(&buf, entry)
	}

	buf.WriteString("</feed>\n")

	return buf.Bytes()
}

func (g *Generator) writeEntry(buf *bytes.Buffer, entry Entry) {
	buf.WriteString("  <entry>\n")

	g.writeElement(buf, "title", entry.Title, 4)
	g.writeElement(buf, "id", cmp.Or(entry.ID, entry.Link), 4)
	g.writeLink(buf, "alternate", entry.Link, 4)
	g.writeElement(buf, "updated", formatRFC3339(entry.Date), 4)
	g.writeElement(buf, "summary", entry.Description, 4)

	for _, category := range entry.Categories {
		if category != "" {
			buf.WriteString(fmt.Sprintf("    <category term=\"%s\" />\n", html.EscapeString(category)))
		}
	}

	buf.WriteString("  </entry>\n")
}

func (g *Generator) writeLink(buf *bytes.Buffer, rel, href string, indent int) {
	if href == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString(fmt.Sprintf("<link rel=\"%s\" href=\"%s\" />\n", rel, html.EscapeString(href)))
}
