package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lysyi3m/rss-fetch/app/config"
)

type CycleReport struct {
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
	Feeds      []FeedReport  `json:"feeds"`
	Downloaded int           `json:"downloaded"`
	FeedErrors int           `json:"feed_errors"`
}

// Orchestrator runs feed tasks, either one after another in configured order
// or spread over a fixed pool of workers.
type Orchestrator struct {
	cfg         *config.Config
	components  Components
	workerCount int

	cycleMu sync.Mutex

	mu        sync.RWMutex
	lastCycle *CycleReport
	lastFeeds map[string]FeedReport
}

func NewOrchestrator(cfg *config.Config, components Components, workerCount int) *Orchestrator {
	if workerCount < 1 {
		workerCount = 1
	}
	if components.DownloadDir == "" {
		components.DownloadDir = cfg.DownloadDir
	}

	return &Orchestrator{
		cfg:         cfg,
		components:  components,
		workerCount: workerCount,
		lastFeeds:   make(map[string]FeedReport),
	}
}

func (o *Orchestrator) Feeds() []*config.Feed {
	return o.cfg.Feeds
}

// RunCycle processes every configured feed once. A failing feed is logged and
// recorded in the report; it never stops the others.
func (o *Orchestrator) RunCycle(ctx context.Context) CycleReport {
	o.cycleMu.Lock()
	defer o.cycleMu.Unlock()

	started := time.Now()
	o.components.Logger.InfoContext(ctx, "Starting fetch cycle", "feeds", len(o.cfg.Feeds), "workers", o.workerCount)

	tasks := make([]*ProcessFeedTask, 0, len(o.cfg.Feeds))
	for _, feedConfig := range o.cfg.Feeds {
		tasks = append(tasks, NewProcessFeedTask(feedConfig, o.components))
	}

	if o.workerCount == 1 {
		for _, task := range tasks {
			if ctx.Err() != nil {
				break
			}
			o.executeTask(ctx, 0, task)
		}
	} else {
		o.runPool(ctx, tasks)
	}

	report := CycleReport{StartedAt: started}
	for _, task := range tasks {
		if task.StartedAt == nil {
			continue
		}
		feedReport := task.Report()
		report.Feeds = append(report.Feeds, feedReport)
		report.Downloaded += feedReport.Downloaded
		if feedReport.Error != "" {
			report.FeedErrors++
		}
	}
	report.Duration = time.Since(started)

	o.mu.Lock()
	o.lastCycle = &report
	o.mu.Unlock()

	o.components.Logger.InfoContext(ctx, "Fetch cycle completed",
		"duration", report.Duration,
		"feeds", len(report.Feeds),
		"downloaded", report.Downloaded,
		"feed_errors", report.FeedErrors)

	return report
}

// RunFeed processes a single feed on demand.
func (o *Orchestrator) RunFeed(ctx context.Context, name string) (FeedReport, error) {
	feedConfig, ok := o.cfg.FeedByName(name)
	if !ok {
		return FeedReport{}, fmt.Errorf("%w: %s", ErrUnknownFeed, name)
	}

	task := NewProcessFeedTask(feedConfig, o.components)
	err := o.executeTask(ctx, 0, task)
	return task.Report(), err
}

func (o *Orchestrator) LastCycle() (CycleReport, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.lastCycle == nil {
		return CycleReport{}, false
	}
	return *o.lastCycle, true
}

// LastReports returns the most recent report of every feed that has run, in
// configured order.
func (o *Orchestrator) LastReports() []FeedReport {
	o.mu.RLock()
	defer o.mu.RUnlock()

	reports := make([]FeedReport, 0, len(o.lastFeeds))
	for _, feedConfig := range o.cfg.Feeds {
		if report, ok := o.lastFeeds[feedConfig.Name]; ok {
			reports = append(reports, report)
		}
	}
	return reports
}

func (o *Orchestrator) runPool(ctx context.Context, tasks []*ProcessFeedTask) {
	taskQueue := make(chan *ProcessFeedTask, len(tasks))
	for _, task := range tasks {
		taskQueue <- task
	}
	close(taskQueue)

	var wg sync.WaitGroup
	for i := 0; i < o.workerCount; i++ {
		wg.Add(1)
		go o.worker(ctx, i, taskQueue, &wg)
	}
	wg.Wait()
}

func (o *Orchestrator) worker(ctx context.Context, id int, taskQueue <-chan *ProcessFeedTask, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case task, ok := <-taskQueue:
			if !ok {
				return
			}
			o.executeTask(ctx, id, task)

		case <-ctx.Done():
			return
		}
	}
}

func (o *Orchestrator) executeTask(ctx context.Context, workerID int, task *ProcessFeedTask) error {
	task.Start()

	err := task.Execute(ctx)
	if err != nil {
		o.components.Logger.ErrorContext(ctx, "Worker task execution failed",
			"worker_id", workerID,
			"type", string(task.GetType()),
			"id", task.GetID(),
			"feed", task.GetFeedName(),
			"error", err)
	}

	o.mu.Lock()
	o.lastFeeds[task.FeedName] = task.Report()
	o.mu.Unlock()

	return err
}
