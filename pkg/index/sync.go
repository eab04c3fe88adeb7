// pkg/index/sync.go
package index

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Options control where the registry is cloned from
type Options struct {
	URL      string
	Branch   string
	Progress io.Writer   // Clone progress, nil for silence
	Logger   *log.Logger // Optional
}

// Sync shallow-clones the registry repository and replaces
// <cacheDir>/deps with its deps/ folder
func Sync(ctx context.Context, cacheDir string, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	tempDir, err := os.MkdirTemp("", "ftrecipe-clone-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	logger.Printf("Updating dependency registry from %s (%s)...", opts.URL, opts.Branch)

	cloneOpts := &git.CloneOptions{
		URL:          opts.URL,
		SingleBranch: true,
		Depth:        1,
		Progress:     opts.Progress,
	}
	if opts.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
	}

	if _, err := git.PlainCloneContext(ctx, tempDir, false, cloneOpts); err != nil {
		return fmt.Errorf("git clone failed: %w", err)
	}

	return install(filepath.Join(tempDir, "deps"), filepath.Join(cacheDir, "deps"), logger)
}

// install swaps the cloned deps folder into place. The old folder is only
// removed once the new one has been copied completely.
func install(src, dst string, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("registry repository has no deps folder: %w", err)
	}

	staging := dst + ".new"
	os.RemoveAll(staging)
	if err := copyDir(src, staging); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("copying deps registry: %w", err)
	}

	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("removing old deps registry: %w", err)
	}
	if err := os.Rename(staging, dst); err != nil {
		return fmt.Errorf("installing deps registry: %w", err)
	}

	logger.Printf("Dependency registry updated in %s", dst)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}
