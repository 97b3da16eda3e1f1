package database

import "context"

// Ledger is the dedup gate used by the feed processor.
type Ledger interface {
	Seen(ctx context.Context, url string) (bool, error)
	Record(ctx context.Context, item FetchedItem) error
	Claim(url string) (release func(), ok bool)
}

// History is the read side used by the status API.
type History interface {
	Recent(ctx context.Context, q RecentQuery) ([]Record, error)
	Count(ctx context.Context) (int, error)
	CountByFeed(ctx context.Context) (map[string]int, error)
}

var (
	_ Ledger  = (*Store)(nil)
	_ History = (*Store)(nil)
)
