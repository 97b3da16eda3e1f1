package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-fetch/app/database"
	"github.com/lysyi3m/rss-fetch/app/tasks"
)

const historyTitle = "rss-fetch downloads"

func NewHandler(history database.History, runner FeedRunner, trigger CycleTrigger,
	generator GeneratorInterface, version string) *Handler {
	return &Handler{
		history:   history,
		runner:    runner,
		trigger:   trigger,
		generator: generator,
		version:   version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"feeds":     len(h.runner.Feeds()),
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.history.Count(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	byFeed, err := h.history.CountByFeed(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "count_by_feed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats := map[string]interface{}{
		"fetched_total":   total,
		"fetched_by_feed": byFeed,
		"feeds":           len(h.runner.Feeds()),
	}
	if cycle, ok := h.runner.LastCycle(); ok {
		stats["last_cycle"] = gin.H{
			"started_at":  cycle.StartedAt.Format(time.RFC3339),
			"duration":    cycle.Duration.String(),
			"feeds":       len(cycle.Feeds),
			"downloaded":  cycle.Downloaded,
			"feed_errors": cycle.FeedErrors,
		}
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetHistoryFeed(c *gin.Context) {
	query, ok := recentQuery(c)
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	records, err := h.history.Recent(c.Request.Context(), query)
	if err != nil {
		slog.Error("Database error", "operation", "recent", "feed", query.Feed, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	title := historyTitle
	if query.Feed != "" {
		title += ": " + query.Feed
	}

	rss, err := h.generator.Run(title, records)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(records)))
	c.String(http.StatusOK, rss)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	counts, err := h.history.CountByFeed(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "count_by_feed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	reports := make(map[string]tasks.FeedReport)
	for _, report := range h.runner.LastReports() {
		reports[report.Feed] = report
	}

	configs := h.runner.Feeds()
	feeds := make([]feedInfo, 0, len(configs))
	for _, feedConfig := range configs {
		info := feedInfo{
			Name:     feedConfig.Name,
			URL:      feedConfig.URL,
			Triggers: make([]string, 0, len(feedConfig.Triggers)),
			Fetched:  counts[feedConfig.Name],
		}
		if feedConfig.Include != nil {
			info.Include = feedConfig.Include.String()
		}
		if feedConfig.Exclude != nil {
			info.Exclude = feedConfig.Exclude.String()
		}
		for _, trigger := range feedConfig.Triggers {
			info.Triggers = append(info.Triggers, trigger.String())
		}
		if report, ok := reports[feedConfig.Name]; ok {
			info.LastReport = &report
		}

		feeds = append(feeds, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) APIListItems(c *gin.Context) {
	query, ok := recentQuery(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return
	}

	records, err := h.history.Recent(c.Request.Context(), query)
	if err != nil {
		slog.Error("Database error", "operation", "recent", "feed", query.Feed, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		items = append(items, gin.H{
			"id":         record.ID,
			"name":       record.Name,
			"url":        record.URL,
			"feed":       record.FeedName,
			"file_path":  record.FilePath,
			"fetched_at": record.FetchedTime().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

func (h *Handler) APIRunFeed(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed name parameter"})
		return
	}

	report, err := h.runner.RunFeed(c.Request.Context(), name)
	if errors.Is(err, tasks.ErrUnknownFeed) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	var feedErr *tasks.FeedError
	if errors.As(err, &feedErr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Feed could not be processed",
			"details": err.Error(),
			"report":  report,
		})
		return
	}
	if err != nil {
		slog.Error("Feed run failed", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Feed run failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"report":  report,
	})
}

func (h *Handler) APITriggerCycle(c *gin.Context) {
	queued := h.trigger.Trigger()

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"queued":  queued,
		"message": "Fetch cycle will start shortly",
	})
}

func recentQuery(c *gin.Context) (database.RecentQuery, bool) {
	query := database.RecentQuery{Feed: c.Query("feed")}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return query, false
		}
		query.Limit = limit
	}

	return query, true
}
