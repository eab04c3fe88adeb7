// pkg/archive/export.go
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"zombiezen.com/go/nix"
	"zombiezen.com/go/nix/nar"
)

// Export writes srcDir as a zstd compressed tarball. Entries are written in
// lexical order with fixed ownership and timestamps, so the same tree always
// produces the same bytes.
func Export(srcDir, dstPath string) error {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	defer out.Close()

	enc, err := zstd.NewWriter(out)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}

	tw := tar.NewWriter(enc)
	if err := writeTree(tw, srcDir); err != nil {
		enc.Close()
		os.Remove(dstPath)
		return err
	}
	if err := tw.Close(); err != nil {
		enc.Close()
		return fmt.Errorf("closing tar stream: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing zstd stream: %w", err)
	}

	return out.Close()
}

func writeTree(tw *tar.Writer, srcDir string) error {
	epoch := time.Unix(0, 0)

	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := os.Lstat(path)
		if err != nil {
			return err
		}

		link := ""
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}

		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return fmt.Errorf("building header for %s: %w", rel, err)
		}
		header.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			header.Name += "/"
		}
		header.ModTime = epoch
		header.AccessTime = time.Time{}
		header.ChangeTime = time.Time{}
		header.Uid, header.Gid = 0, 0
		header.Uname, header.Gname = "", ""
		header.Format = tar.FormatPAX

		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("writing header for %s: %w", rel, err)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		if _, err := io.Copy(tw, f); err != nil {
			return fmt.Errorf("writing %s: %w", rel, err)
		}
		return nil
	})
}

// Digest returns the SRI form ("sha256-...") of the SHA-256 of the NAR
// serialisation of path. NAR ignores timestamps and ownership, so the digest
// depends only on names, contents, executable bits and link targets.
func Digest(path string) (string, error) {
	h := nix.NewHasher(nix.SHA256)
	if err := nar.DumpPath(h, path); err != nil {
		return "", fmt.Errorf("serializing %s: %w", path, err)
	}
	return h.SumHash().SRI(), nil
}
