package config

import (
	"math"
	"regexp"
	"time"
)

const DefaultRefreshInterval = 720 * time.Minute

// Larger minute counts overflow time.Duration.
const maxRefreshMins = int64(math.MaxInt64 / time.Minute)

// Config is the fully materialized configuration document. It is shared
// read-only by every poll cycle.
type Config struct {
	DownloadDir     string
	RefreshInterval time.Duration
	Feeds           []*Feed // polling order
	LogDir          string
	LogLevel        string
}

// Feed is one monitored feed and its three-stage title filter.
type Feed struct {
	Name     string
	URL      string
	Include  *regexp.Regexp // title must match, when set
	Exclude  *regexp.Regexp // title must not match, when set
	Triggers []*regexp.Regexp
}

// FeedByName returns the configured feed with the given name.
func (c *Config) FeedByName(name string) (*Feed, bool) {
	for _, f := range c.Feeds {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Document keys
const (
	keyDownloadDir     = "download_dir"
	keyRefreshInterval = "refresh_interval_mins"
	keyLogDir          = "log_dir"
	keyLogLevel        = "log_level"
	keyFeeds           = "feeds"
	keyFeedURL         = "feedurl"
	keyFeedInclude     = "feed_regex"
	keyFeedExclude     = "feed_skip_regex"
	keyFeedTriggers    = "download_regex_list"
)
