package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appDirName = ".rss-fetch"

// AppDir returns the per-user working directory (~/.rss-fetch).
func AppDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// DefaultPath is where the configuration document lives unless --config says otherwise.
func DefaultPath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// positiveInt accepts the integer types produced by the TOML and YAML decoders.
func positiveInt(raw any) (int64, bool) {
	var n int64
	switch v := raw.(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	case uint64:
		if v > 1<<62 {
			return 0, false
		}
		n = int64(v)
	default:
		return 0, false
	}
	return n, n > 0
}
