package cfg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"RSSFETCH_CONFIG", "RSSFETCH_DB", "PORT", "BASE_URL", "API_ACCESS_KEY", "USER_AGENT",
		"CONNECT_TIMEOUT", "FEED_TIMEOUT", "DOWNLOAD_TIMEOUT", "WORKER_COUNT", "LOG_FORMAT", "DEBUG",
	} {
		// Setenv restores the original value after the test
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.HasSuffix(cfg.ConfigPath, filepath.Join(".rss-fetch", "config.toml")) {
		t.Errorf("Expected default config path, got '%s'", cfg.ConfigPath)
	}
	if !strings.HasSuffix(cfg.DBPath, filepath.Join(".rss-fetch", "fetched.db")) {
		t.Errorf("Expected default db path, got '%s'", cfg.DBPath)
	}
	if cfg.Port != "" {
		t.Errorf("Expected API to be disabled by default, got port '%s'", cfg.Port)
	}
	if cfg.ConnectTimeout != 5*time.Second {
		t.Errorf("Expected connect timeout 5s, got %v", cfg.ConnectTimeout)
	}
	if cfg.FeedTimeout != 30*time.Second {
		t.Errorf("Expected feed timeout 30s, got %v", cfg.FeedTimeout)
	}
	if cfg.DownloadTimeout != 300*time.Second {
		t.Errorf("Expected download timeout 300s, got %v", cfg.DownloadTimeout)
	}
	if cfg.WorkerCount != 1 {
		t.Errorf("Expected worker count 1, got %d", cfg.WorkerCount)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("Expected log format 'text', got '%s'", cfg.LogFormat)
	}
	if cfg.Once || cfg.Debug {
		t.Error("Expected once and debug to be off")
	}
	if cfg.Version == "" {
		t.Error("Expected version to be set")
	}
}

func TestLoadFlags(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{
		"-c", "/etc/rss-fetch.toml",
		"--db-path", "/var/lib/rss-fetch/fetched.db",
		"--port", "8080",
		"--api-key", "secret",
		"--user-agent", "Test Agent",
		"--feed-timeout", "10",
		"--worker-count", "4",
		"--log-format", "json",
		"--debug",
		"--once",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.ConfigPath != "/etc/rss-fetch.toml" {
		t.Errorf("Expected config path '/etc/rss-fetch.toml', got '%s'", cfg.ConfigPath)
	}
	if cfg.DBPath != "/var/lib/rss-fetch/fetched.db" {
		t.Errorf("Expected db path, got '%s'", cfg.DBPath)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.APIAccessKey != "secret" {
		t.Errorf("Expected API key 'secret', got '%s'", cfg.APIAccessKey)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.FeedTimeout != 10*time.Second {
		t.Errorf("Expected feed timeout 10s, got %v", cfg.FeedTimeout)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("Expected worker count 4, got %d", cfg.WorkerCount)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("Expected log format 'json', got '%s'", cfg.LogFormat)
	}
	if !cfg.Debug || !cfg.Once {
		t.Error("Expected debug and once to be enabled")
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("RSSFETCH_CONFIG", "/srv/config.yaml")
	t.Setenv("WORKER_COUNT", "3")

	cfg, err := Load([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.ConfigPath != "/srv/config.yaml" {
		t.Errorf("Expected config path from env, got '%s'", cfg.ConfigPath)
	}
	if cfg.WorkerCount != 3 {
		t.Errorf("Expected worker count 3, got %d", cfg.WorkerCount)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero workers", []string{"--worker-count", "0"}},
		{"zero timeout", []string{"--download-timeout=0"}},
		{"unknown log format", []string{"--log-format", "xml"}},
		{"unknown flag", []string{"--no-such-flag"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if _, err := Load(tt.args); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
