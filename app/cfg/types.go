package cfg

import "time"

// Cfg holds process options. The feed list and download policy live in the
// configuration document loaded by package config.
type Cfg struct {
	// Files
	ConfigPath string
	DBPath     string

	// Status API
	Port         string
	BaseUrl      string
	APIAccessKey string

	// Fetching
	UserAgent       string
	ConnectTimeout  time.Duration
	FeedTimeout     time.Duration
	DownloadTimeout time.Duration
	WorkerCount     int
	Once            bool

	// Logging
	LogFormat string
	Debug     bool
	Version   string
}
