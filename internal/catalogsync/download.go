package catalogsync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tapeshelf/internal/failures"
)

const userAgent = "tapeshelf/0.1.0"

// Downloader fetches spreadsheet exports over HTTP.
type Downloader struct {
	Client *http.Client
}

// NewDownloader builds a downloader whose requests time out after timeout.
func NewDownloader(timeout time.Duration) *Downloader {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Downloader{Client: &http.Client{Timeout: timeout}}
}

// Fetch downloads url into dest. The body is written to a sibling temp file
// and renamed into place once complete.
func (d *Downloader) Fetch(ctx context.Context, url, dest string) error {
	client := http.DefaultClient
	if d != nil && d.Client != nil {
		client = d.Client
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return failures.Wrap(failures.ErrConfig, "catalog sync", "build request", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return failures.Wrap(failures.ErrExternalTool, "catalog sync", "download", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return failures.Wrap(failures.ErrExternalTool, "catalog sync", "download",
			fmt.Sprintf("%s returned %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	tmp := dest + ".part"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return failures.Wrap(failures.ErrExternalTool, "catalog sync", "download", url, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
