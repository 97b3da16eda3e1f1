package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"path/filepath"
	"time"

	"github.com/lysyi3m/rss-fetch/app/database"
)

// Generator renders the download history as an RSS 2.0 document.
type Generator struct {
	selfLink string
	version  string
}

func NewGenerator(selfLink, version string) *Generator {
	return &Generator{
		selfLink: selfLink,
		version:  version,
	}
}

func (g *Generator) Run(title string, records []database.Record) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", title, 4)
	g.writeElement(&buf, "description", "Items downloaded by rss-fetch", 4)
	if g.selfLink != "" {
		g.writeElement(&buf, "link", g.selfLink, 4)
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(g.selfLink)))
	}

	lastBuildDate := time.Now().UTC()
	if len(records) > 0 && records[0].FetchedAt > 0 {
		lastBuildDate = records[0].FetchedTime()
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("rss-fetch/%s", g.version), 4)

	for _, record := range records {
		g.writeItem(&buf, record)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, record database.Record) {
	buf.WriteString("    <item>\n")

	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"false\">%d</guid>\n", record.ID))
	g.writeElement(buf, "title", record.Name, 6)
	g.writeElement(buf, "link", record.URL, 6)

	if record.FilePath != "" {
		g.writeElement(buf, "description", fmt.Sprintf("Saved as %s", filepath.Base(record.FilePath)), 6)
	}
	if record.FeedName != "" {
		g.writeElement(buf, "category", record.FeedName, 6)
	}
	if record.FetchedAt > 0 {
		g.writeElement(buf, "pubDate", record.FetchedTime().Format(time.RFC1123Z), 6)
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
