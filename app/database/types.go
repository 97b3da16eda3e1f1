package database

import (
	"time"
)

// FetchedItem is one successfully downloaded candidate. Only its URL takes
// part in deduplication; the rest is context for the history views.
type FetchedItem struct {
	Name     string
	URL      string
	FeedName string
	FilePath string
}

type Record struct {
	ID        int64  `db:"id"`
	URL       string `db:"url"`
	Name      string `db:"name"`
	FeedName  string `db:"feed_name"`
	FilePath  string `db:"file_path"`
	FetchedAt int64  `db:"fetched_at"` // unix seconds
}

func (r Record) FetchedTime() time.Time {
	return time.Unix(r.FetchedAt, 0).UTC()
}

type RecentQuery struct {
	Feed  string // empty for all feeds
	Limit int
}
