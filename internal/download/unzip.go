package download

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Unzip extracts an archive into a directory named after the archive's
// stem, next to the archive itself ("orders/march.zip" -> "orders/march/").
// An existing extraction directory is an error unless overwrite is set, in
// which case it is replaced. Returns the extraction directory.
func Unzip(archivePath string, overwrite bool) (string, error) {
	dest := strings.TrimSuffix(archivePath, filepath.Ext(archivePath))
	if dest == archivePath {
		// Without an extension the directory would collide with the
		// archive itself.
		return "", fmt.Errorf("cannot derive extraction directory for %s: no file extension", archivePath)
	}

	if _, err := os.Stat(dest); err == nil {
		if !overwrite {
			return "", fmt.Errorf("extraction directory %s: %w", dest, ErrExists)
		}
		if err := os.RemoveAll(dest); err != nil {
			return "", fmt.Errorf("failed to remove existing directory: %w", err)
		}
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractFile(f, dest); err != nil {
			return "", fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}

	return dest, nil
}

func extractFile(f *zip.File, dest string) error {
	path := filepath.Join(dest, filepath.FromSlash(f.Name))

	// Reject entries that would escape the destination.
	if !strings.HasPrefix(path, filepath.Clean(dest)+string(os.PathSeparator)) {
		return fmt.Errorf("entry path escapes destination")
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(path, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}

	_, err = io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	return err
}
