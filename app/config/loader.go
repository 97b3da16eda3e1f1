package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatFor picks the document format from the file extension. TOML is the default.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Loader turns a configuration document into a Config. Bad feeds and bad
// patterns are logged and dropped; only document-level problems are errors.
type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads and parses the document at path.
func (l *Loader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: KindUnreadable, Source: path, Err: err}
	}

	cfg, err := l.Parse(data, FormatFor(path))
	if err != nil {
		var cfgErr *Error
		if errors.As(err, &cfgErr) && cfgErr.Source == "" {
			cfgErr.Source = path
		}
		return nil, err
	}

	l.logger.Debug("Configuration loaded", "path", path, "feeds", len(cfg.Feeds), "download_dir", cfg.DownloadDir)
	return cfg, nil
}

// Parse builds a Config from raw document bytes.
func (l *Loader) Parse(data []byte, format Format) (*Config, error) {
	doc, err := decode(data, format)
	if err != nil {
		return nil, &Error{Kind: KindParse, Err: err}
	}

	feedsTable, ok := doc[keyFeeds].(map[string]any)
	if !ok {
		return nil, &Error{Kind: KindMissingFeeds}
	}

	feeds := make([]*Feed, 0, len(feedsTable))
	for _, name := range slices.Sorted(maps.Keys(feedsTable)) {
		feed, err := l.buildFeed(name, feedsTable[name])
		if err != nil {
			l.logger.Error("Skipping feed with invalid configuration", "feed", name, "error", err)
			continue
		}
		feeds = append(feeds, feed)
	}

	downloadDir, ok := doc[keyDownloadDir].(string)
	if !ok || strings.TrimSpace(downloadDir) == "" {
		return nil, &Error{Kind: KindMissingDownloadDir}
	}

	cfg := &Config{
		DownloadDir:     expandHome(downloadDir),
		RefreshInterval: DefaultRefreshInterval,
		Feeds:           feeds,
	}

	if raw, present := doc[keyRefreshInterval]; present {
		if mins, ok := positiveInt(raw); ok && mins <= maxRefreshMins {
			cfg.RefreshInterval = time.Duration(mins) * time.Minute
		} else {
			l.logger.Debug("Ignoring invalid refresh interval, keeping default",
				"value", raw, "default", DefaultRefreshInterval.String())
		}
	}

	if logDir, ok := doc[keyLogDir].(string); ok && strings.TrimSpace(logDir) != "" {
		cfg.LogDir = expandHome(logDir)
	} else if dir, err := AppDir(); err == nil {
		cfg.LogDir = dir
	}
	if logLevel, ok := doc[keyLogLevel].(string); ok {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

func (l *Loader) buildFeed(name string, raw any) (*Feed, error) {
	values, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("feed entry is not a table")
	}

	url, _ := values[keyFeedURL].(string)
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("no URL found for feed")
	}

	feed := &Feed{
		Name:    name,
		URL:     strings.TrimSpace(url),
		Include: l.optionalPattern(name, keyFeedInclude, values[keyFeedInclude]),
		Exclude: l.optionalPattern(name, keyFeedExclude, values[keyFeedExclude]),
	}

	if rawList, present := values[keyFeedTriggers]; present {
		list, ok := rawList.([]any)
		if !ok {
			l.logger.Error("Download pattern list is not a list, feed will match nothing", "feed", name)
		}
		for i, entry := range list {
			pattern, ok := entry.(string)
			if !ok {
				l.logger.Error("Skipping non-string download pattern", "feed", name, "index", i)
				continue
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				l.logger.Error("Skipping invalid download pattern", "feed", name, "pattern", pattern, "error", err)
				continue
			}
			feed.Triggers = append(feed.Triggers, re)
		}
	}

	l.logger.Debug("Feed configured", "feed", name, "url", feed.URL, "triggers", len(feed.Triggers))
	return feed, nil
}

// optionalPattern compiles an optional single filter. Anything unusable means "no filter".
func (l *Loader) optionalPattern(feedName, key string, raw any) *regexp.Regexp {
	if raw == nil {
		return nil
	}
	pattern, ok := raw.(string)
	if !ok {
		l.logger.Error("Ignoring non-string filter", "feed", feedName, "key", key)
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		l.logger.Error("Ignoring invalid filter", "feed", feedName, "key", key, "pattern", pattern, "error", err)
		return nil
	}
	return re
}

func decode(data []byte, format Format) (map[string]any, error) {
	doc := map[string]any{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}
	return doc, nil
}
