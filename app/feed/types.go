package feed

import (
	"cmp"
	"time"
)

// Feed processing types

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

type Item struct {
	GUID          string
	Title         string
	Link          string
	PublishedAt   *time.Time
	EnclosureURL  string // first enclosure, if any
	EnclosureType string
}

// DownloadURL is the item link, or the first enclosure when the link is absent.
func (i Item) DownloadURL() string {
	return cmp.Or(i.Link, i.EnclosureURL)
}

// Decision is the outcome of the title filter for one item.
type Decision struct {
	Download bool
	Reason   string
}
