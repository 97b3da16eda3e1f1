package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/lysyi3m/rss-fetch/app/config"
	"github.com/lysyi3m/rss-fetch/app/database"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Files
	ConfigPath string `short:"c" long:"config" env:"RSSFETCH_CONFIG" description:"Path to the configuration document (default ~/.rss-fetch/config.toml)"`
	DBPath     string `long:"db-path" env:"RSSFETCH_DB" description:"Path to the fetched items database (default ~/.rss-fetch/fetched.db)"`

	// Status API
	Port         string `long:"port" env:"PORT" description:"HTTP server port; the API is disabled when empty"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL used in the history feed"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the control endpoints (optional)"`

	// Fetching
	UserAgent       string `long:"user-agent" env:"USER_AGENT" default:"rss-fetch/1.0" description:"User agent string for HTTP requests"`
	ConnectTimeout  int    `long:"connect-timeout" env:"CONNECT_TIMEOUT" default:"5" description:"Connect timeout in seconds"`
	FeedTimeout     int    `long:"feed-timeout" env:"FEED_TIMEOUT" default:"30" description:"Feed request timeout in seconds"`
	DownloadTimeout int    `long:"download-timeout" env:"DOWNLOAD_TIMEOUT" default:"300" description:"Item download timeout in seconds"`
	WorkerCount     int    `long:"worker-count" env:"WORKER_COUNT" default:"1" description:"Number of feeds processed in parallel"`
	Once            bool   `long:"once" description:"Run a single fetch cycle and exit"`

	// Logging
	LogFormat string `long:"log-format" env:"LOG_FORMAT" default:"text" choice:"text" choice:"json" description:"Log output format"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging, overriding log_level"`
}

func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.ConnectTimeout <= 0 || raw.FeedTimeout <= 0 || raw.DownloadTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be positive")
	}
	if raw.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", raw.WorkerCount)
	}

	configPath := raw.ConfigPath
	if configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		configPath = path
	}

	dbPath := raw.DBPath
	if dbPath == "" {
		dir, err := config.AppDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		dbPath = database.DefaultPath(dir)
	}

	cfg := &Cfg{
		ConfigPath:      configPath,
		DBPath:          dbPath,
		Port:            raw.Port,
		BaseUrl:         raw.BaseUrl,
		APIAccessKey:    raw.APIAccessKey,
		UserAgent:       raw.UserAgent,
		ConnectTimeout:  time.Duration(raw.ConnectTimeout) * time.Second,
		FeedTimeout:     time.Duration(raw.FeedTimeout) * time.Second,
		DownloadTimeout: time.Duration(raw.DownloadTimeout) * time.Second,
		WorkerCount:     raw.WorkerCount,
		Once:            raw.Once,
		LogFormat:       raw.LogFormat,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	return cfg, nil
}
