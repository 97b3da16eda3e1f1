package tasks

import (
	"context"

	"github.com/lysyi3m/rss-fetch/app/config"
	"github.com/lysyi3m/rss-fetch/app/download"
	"github.com/lysyi3m/rss-fetch/app/feed"
)

type FeedFetcher interface {
	Run(ctx context.Context, url string) ([]byte, error)
}

type FeedParser interface {
	Run(data []byte) (*feed.Metadata, []feed.Item, error)
}

type ItemFilter interface {
	Run(title string, feedConfig *config.Feed) feed.Decision
}

type ItemDownloader interface {
	Download(ctx context.Context, req download.Request, destDir string) (*download.Result, error)
}

// CycleRunner runs every configured feed once.
type CycleRunner interface {
	RunCycle(ctx context.Context) CycleReport
}

var (
	_ FeedFetcher    = (*feed.Fetcher)(nil)
	_ FeedParser     = (*feed.Parser)(nil)
	_ ItemFilter     = (*feed.Filterer)(nil)
	_ ItemDownloader = (*download.Downloader)(nil)
	_ CycleRunner    = (*Orchestrator)(nil)
)
