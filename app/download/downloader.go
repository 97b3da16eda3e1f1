package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

type Request struct {
	URL   string
	Title string
}

type Result struct {
	Path    string
	Bytes   int64
	Skipped bool // destination already existed, nothing written
}

// Downloader saves item payloads into a directory without ever replacing an
// existing file.
type Downloader struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

func NewDownloader(httpClient *http.Client, userAgent string, logger *slog.Logger) *Downloader {
	return &Downloader{
		httpClient: httpClient,
		userAgent:  userAgent,
		logger:     logger,
	}
}

func (d *Downloader) Download(ctx context.Context, req Request, destDir string) (*Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, &Error{Kind: KindRequest, URL: req.URL, Err: err}
	}
	httpReq.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindRequest, URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind:       KindStatus,
			URL:        req.URL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP error: %s", resp.Status),
		}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, &Error{Kind: KindWrite, URL: req.URL, Err: fmt.Errorf("failed to create download directory: %w", err)}
	}

	name := fileName(req.URL, req.Title, resp.Header.Get("Content-Disposition"), resp.Header.Get("Content-Type"))
	dest := filepath.Join(destDir, name)

	if _, err := os.Lstat(dest); err == nil {
		d.logger.Debug("Destination already exists, not overwriting", "path", dest)
		return &Result{Path: dest, Skipped: true}, nil
	}

	written, err := writeNew(dest, resp.Body)
	if errors.Is(err, os.ErrExist) {
		d.logger.Debug("Destination appeared during download, not overwriting", "path", dest)
		return &Result{Path: dest, Skipped: true}, nil
	}
	if err != nil {
		return nil, &Error{Kind: KindWrite, URL: req.URL, Err: err}
	}

	return &Result{Path: dest, Bytes: written}, nil
}

// writeNew streams body into a temp file beside dest and links it into place.
// It returns an error wrapping os.ErrExist if dest exists by then.
func writeNew(dest string, body io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".rss-fetch-*.part")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	written, err := io.Copy(tmp, body)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write body: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Link(tmpPath, dest); err != nil {
		if errors.Is(err, os.ErrExist) {
			return 0, err
		}
		// Some filesystems do not support hard links
		if _, statErr := os.Lstat(dest); statErr == nil {
			return 0, fmt.Errorf("destination exists: %w", os.ErrExist)
		}
		if err := os.Rename(tmpPath, dest); err != nil {
			return 0, fmt.Errorf("failed to move file into place: %w", err)
		}
	}

	return written, nil
}
