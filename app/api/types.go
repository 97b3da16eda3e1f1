package api

import (
	"context"

	"github.com/lysyi3m/rss-fetch/app/config"
	"github.com/lysyi3m/rss-fetch/app/database"
	"github.com/lysyi3m/rss-fetch/app/feed"
	"github.com/lysyi3m/rss-fetch/app/tasks"
)

type GeneratorInterface interface {
	Run(title string, records []database.Record) (string, error)
}

// FeedRunner is the part of the orchestrator the API drives and reports on.
type FeedRunner interface {
	Feeds() []*config.Feed
	RunFeed(ctx context.Context, name string) (tasks.FeedReport, error)
	LastCycle() (tasks.CycleReport, bool)
	LastReports() []tasks.FeedReport
}

type CycleTrigger interface {
	Trigger() bool
}

var (
	_ GeneratorInterface = (*feed.Generator)(nil)
	_ FeedRunner         = (*tasks.Orchestrator)(nil)
	_ CycleTrigger       = (*tasks.Scheduler)(nil)
)

type Handler struct {
	history   database.History
	runner    FeedRunner
	trigger   CycleTrigger
	generator GeneratorInterface
	version   string
}

type feedInfo struct {
	Name       string            `json:"name"`
	URL        string            `json:"url"`
	Include    string            `json:"include,omitempty"`
	Exclude    string            `json:"exclude,omitempty"`
	Triggers   []string          `json:"triggers"`
	Fetched    int               `json:"fetched"`
	LastReport *tasks.FeedReport `json:"last_report,omitempty"`
}
