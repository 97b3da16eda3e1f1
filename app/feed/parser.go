package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses an RSS, Atom or JSON feed document.
func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       feed.Title,
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		items = append(items, p.normalizeItem(item))
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	link := strings.TrimSpace(item.Link)
	normalized := Item{
		GUID:        cmp.Or(item.GUID, link),
		Title:       strings.TrimSpace(item.Title),
		Link:        link,
		PublishedAt: cmp.Or(item.PublishedParsed, item.UpdatedParsed),
	}

	// RSS 2.0 allows one enclosure per item; torrent and podcast feeds often carry the payload there
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		normalized.EnclosureURL = strings.TrimSpace(item.Enclosures[0].URL)
		normalized.EnclosureType = item.Enclosures[0].Type
	}

	return normalized
}
