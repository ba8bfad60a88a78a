// Package download fetches remote result files to local paths and unpacks
// zip archives.
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
	"strings"
	"time"
)

// ErrExists is returned when a target already exists and overwriting was
// not requested.
var ErrExists = errors.New("target already exists")

// File pairs a remote location with the relative name it is stored under.
type File struct {
	URL  string
	Name string
}

// Downloader writes remote files beneath a base directory, sequentially,
// one at a time.
type Downloader struct {
	dir        string
	overwrite  bool
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Downloader rooted at dir. When overwrite is false, files
// that already exist locally are skipped.
func New(dir string, overwrite bool, timeout time.Duration) *Downloader {
	return &Downloader{
		dir:       dir,
		overwrite: overwrite,
		httpClient: &http.Client{
			// Result payloads can be large; size the timeout accordingly.
			Timeout: timeout,
		},
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger for the downloader.
func (d *Downloader) WithLogger(logger *slog.Logger) *Downloader {
	d.logger = logger
	return d
}

// Fetch downloads each file in order and returns the local paths written
// or skipped. Parent directories are created as needed.
func (d *Downloader) Fetch(ctx context.Context, files []File) ([]string, error) {
	paths := make([]string, 0, len(files))

	for _, f := range files {
		path, err := d.fetchOne(ctx, f)
		if err != nil {
			return paths, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func (d *Downloader) fetchOne(ctx context.Context, f File) (string, error) {
	path, err := d.localPath(f.Name)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil && !d.overwrite {
		d.logger.InfoContext(ctx, "file exists, skipping",
			slog.String("path", path),
		)
		return path, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	// Write to a temp file first so an interrupted download never leaves
	// a truncated file at the final path.
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	d.logger.InfoContext(ctx, "downloaded file",
		slog.String("path", path),
		slog.Int64("bytes", n),
	)

	return path, nil
}

// localPath resolves a relative result name beneath the base directory,
// rejecting names that would escape it.
func (d *Downloader) localPath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty file name")
	}

	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("unsafe file name %q", name)
	}

	return filepath.Join(d.dir, clean), nil
}
