package tasks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-fetch/app/config"
	"github.com/lysyi3m/rss-fetch/app/database"
	"github.com/lysyi3m/rss-fetch/app/download"
	"github.com/lysyi3m/rss-fetch/app/feed"
	"github.com/lysyi3m/rss-fetch/app/logging"
)

// Components are the collaborators shared by every feed task.
type Components struct {
	Fetcher     FeedFetcher
	Parser      FeedParser
	Filterer    ItemFilter
	Downloader  ItemDownloader
	Ledger      database.Ledger
	Logger      *slog.Logger
	DownloadDir string
	FeedTimeout time.Duration
}

// FeedReport counts what happened to one feed during a run.
type FeedReport struct {
	Feed            string        `json:"feed"`
	TaskID          string        `json:"task_id"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration_ns"`
	Items           int           `json:"items"`
	Invalid         int           `json:"invalid"`
	Matched         int           `json:"matched"`
	Seen            int           `json:"seen"`
	InFlight        int           `json:"in_flight"`
	Downloaded      int           `json:"downloaded"`
	SkippedExisting int           `json:"skipped_existing"`
	Failed          int           `json:"failed"`
	Error           string        `json:"error,omitempty"`
}

type ProcessFeedTask struct {
	Task
	FeedConfig *config.Feed
	components Components
	logger     *slog.Logger
	report     FeedReport
}

func NewProcessFeedTask(feedConfig *config.Feed, components Components) *ProcessFeedTask {
	task := NewTask(TaskTypeProcessFeed, feedConfig.Name)
	return &ProcessFeedTask{
		Task:       task,
		FeedConfig: feedConfig,
		components: components,
		logger:     components.Logger.With("feed", feedConfig.Name, "task_id", task.ID),
		report: FeedReport{
			Feed:   feedConfig.Name,
			TaskID: task.ID,
		},
	}
}

// Report returns the counters of the last Execute call.
func (t *ProcessFeedTask) Report() FeedReport {
	return t.report
}

func (t *ProcessFeedTask) Execute(ctx context.Context) error {
	if t.StartedAt == nil {
		t.Start()
	}
	t.report.StartedAt = *t.StartedAt
	defer func() { t.report.Duration = t.GetDuration() }()

	logger := t.logger

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetchFeed(ctx)
	if err != nil {
		return t.fail(&FeedError{Kind: KindFetch, Feed: t.FeedName, URL: t.FeedConfig.URL, Err: err})
	}

	_, items, err := t.components.Parser.Run(data)
	if err != nil {
		return t.fail(&FeedError{Kind: KindParse, Feed: t.FeedName, URL: t.FeedConfig.URL, Err: err})
	}

	t.report.Items = len(items)
	logger.DebugContext(ctx, "Feed parsed", "items", len(items))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.processItem(ctx, item)
	}

	logger.InfoContext(ctx, "Task completed",
		"type", string(t.Type),
		"duration", t.GetDuration(),
		"total", t.report.Items,
		"matched", t.report.Matched,
		"seen", t.report.Seen,
		"downloaded", t.report.Downloaded,
		"existing", t.report.SkippedExisting,
		"failed", t.report.Failed)

	return nil
}

func (t *ProcessFeedTask) fail(err error) error {
	t.report.Error = err.Error()
	return err
}

func (t *ProcessFeedTask) fetchFeed(ctx context.Context) ([]byte, error) {
	if t.components.FeedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.components.FeedTimeout)
		defer cancel()
	}

	return t.components.Fetcher.Run(ctx, t.FeedConfig.URL)
}

func (t *ProcessFeedTask) processItem(ctx context.Context, item feed.Item) {
	logger := t.logger

	if item.Title == "" {
		err := &ItemError{Kind: KindMissingTitle, Feed: t.FeedName, GUID: item.GUID}
		logger.DebugContext(ctx, "Skipping item", "error", err)
		t.report.Invalid++
		return
	}

	decision := t.components.Filterer.Run(item.Title, t.FeedConfig)
	if !decision.Download {
		logger.Log(ctx, logging.LevelTrace, "Item filtered", "title", item.Title, "reason", decision.Reason)
		return
	}
	t.report.Matched++

	url := item.DownloadURL()
	if url == "" {
		err := &ItemError{Kind: KindMissingLink, Feed: t.FeedName, GUID: item.GUID, Title: item.Title}
		logger.WarnContext(ctx, "Skipping item", "error", err)
		t.report.Invalid++
		return
	}

	ledger := t.components.Ledger

	release, ok := ledger.Claim(url)
	if !ok {
		logger.DebugContext(ctx, "Item is being fetched by another worker", "url", url)
		t.report.InFlight++
		return
	}
	defer release()

	seen, err := ledger.Seen(ctx, url)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to check fetched items, treating as new", "url", url, "error", err)
	} else if seen {
		logger.DebugContext(ctx, "Item already fetched", "title", item.Title, "url", url)
		t.report.Seen++
		return
	}

	result, err := t.components.Downloader.Download(ctx, download.Request{URL: url, Title: item.Title}, t.components.DownloadDir)
	if err != nil {
		var downloadErr *download.Error
		if errors.As(err, &downloadErr) {
			logger.ErrorContext(ctx, "Download failed", "title", item.Title, "url", url, "kind", downloadErr.Kind.String(), "error", err)
		} else {
			logger.ErrorContext(ctx, "Download failed", "title", item.Title, "url", url, "error", err)
		}
		t.report.Failed++
		return
	}

	if result.Skipped {
		logger.InfoContext(ctx, "File already present", "title", item.Title, "path", result.Path)
		t.report.SkippedExisting++
	} else {
		logger.InfoContext(ctx, "Downloaded item", "title", item.Title, "path", result.Path, "bytes", result.Bytes)
		t.report.Downloaded++
	}

	err = ledger.Record(ctx, database.FetchedItem{
		Name:     item.Title,
		URL:      url,
		FeedName: t.FeedName,
		FilePath: result.Path,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to record fetched item", "url", url, "error", err)
	}
}
