// Package source computes upstream archive locations and materializes
// them on disk through a download cache.
package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/arc-language/ftrecipe/pkg/archive"
	"github.com/arc-language/ftrecipe/pkg/core"
)

// ArchiveURL builds <base>/<name>/<name>-<version>.<ext>
func ArchiveURL(base, name, version string, format archive.Format) string {
	base = strings.TrimRight(base, "/")
	return fmt.Sprintf("%s/%s/%s", base, name, ArchiveName(name, version, format))
}

// ArchiveName is the file name of a release tarball
func ArchiveName(name, version string, format archive.Format) string {
	return fmt.Sprintf("%s-%s.%s", name, version, format)
}

// Fetcher downloads archives into a cache directory and unpacks them
type Fetcher struct {
	client   *Client
	cacheDir string
	logger   *log.Logger
}

// NewFetcher creates a Fetcher caching downloads under cacheDir/downloads
func NewFetcher(client *Client, cacheDir string, logger *log.Logger) *Fetcher {
	if client == nil {
		client = NewClient()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Fetcher{
		client:   client,
		cacheDir: filepath.Join(cacheDir, "downloads"),
		logger:   logger,
	}
}

// Get downloads url (unless already cached), verifies sha256 when given and
// extracts it into destDir. It returns the cached archive path.
func (f *Fetcher) Get(ctx context.Context, url, sha256sum, destDir string) (string, error) {
	archivePath := filepath.Join(f.cacheDir, path.Base(url))

	if err := f.download(ctx, url, archivePath); err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}

	if sha256sum != "" {
		if err := verifyFileHash(archivePath, sha256sum); err != nil {
			// A corrupt cache entry must not survive to the next run
			os.Remove(archivePath)
			return "", err
		}
		f.logger.Printf("Verified sha256 of %s", filepath.Base(archivePath))
	}

	f.logger.Printf("Extracting %s...", filepath.Base(archivePath))
	n, err := archive.Extract(archivePath, destDir)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", filepath.Base(archivePath), err)
	}
	f.logger.Printf("✓ Extracted %d files into %s", n, destDir)

	return archivePath, nil
}

func (f *Fetcher) download(ctx context.Context, url, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	if _, err := os.Stat(destPath); err == nil {
		f.logger.Printf("Using cached %s", filepath.Base(destPath))
		return nil
	}

	f.logger.Printf("Downloading %s...", url)

	// Write to a temporary name so an interrupted download is never cached
	tmpPath := destPath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	n, err := f.client.Download(ctx, url, out)
	out.Close()
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalizing download: %w", err)
	}

	f.logger.Printf("Downloaded %d bytes", n)
	return nil
}

// verifyFileHash verifies the SHA256 hash of a file
func verifyFileHash(filePath, expectedHash string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return fmt.Errorf("computing hash: %w", err)
	}

	actualHash := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(actualHash, expectedHash) {
		return fmt.Errorf("%w: expected %s, got %s", core.ErrHashMismatch, expectedHash, actualHash)
	}

	return nil
}
