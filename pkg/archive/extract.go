// pkg/archive/extract.go
package archive

import (
	"archive/tar"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Format is a supported tarball compression
type Format string

const (
	FormatTar   Format = "tar"
	FormatGzip  Format = "tar.gz"
	FormatXZ    Format = "tar.xz"
	FormatBzip2 Format = "tar.bz2"
	FormatZstd  Format = "tar.zst"
)

// DetectFormat infers the format from an archive file name
func DetectFormat(name string) (Format, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatGzip, nil
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return FormatXZ, nil
	case strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tbz2"):
		return FormatBzip2, nil
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tzst"):
		return FormatZstd, nil
	case strings.HasSuffix(lower, ".tar"):
		return FormatTar, nil
	}
	return "", fmt.Errorf("unsupported archive format: %s", name)
}

// Extract unpacks a tarball into destPath and returns the number of regular files written
func Extract(archivePath, destPath string) (int, error) {
	format, err := DetectFormat(archivePath)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	r, closeFn, err := decompressor(format, f)
	if err != nil {
		return 0, err
	}
	defer closeFn()

	return extractTar(tar.NewReader(r), destPath)
}

// decompressor wraps r according to format
func decompressor(format Format, r io.Reader) (io.Reader, func(), error) {
	noop := func() {}

	switch format {
	case FormatTar:
		return r, noop, nil
	case FormatGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gz, func() { gz.Close() }, nil
	case FormatXZ:
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("creating xz reader: %w", err)
		}
		return xzReader, noop, nil
	case FormatBzip2:
		return bzip2.NewReader(r), noop, nil
	case FormatZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("creating zstd reader: %w", err)
		}
		return dec, dec.Close, nil
	}
	return nil, noop, fmt.Errorf("unsupported archive format: %s", format)
}

func extractTar(tr *tar.Reader, destPath string) (int, error) {
	if err := os.MkdirAll(destPath, 0755); err != nil {
		return 0, fmt.Errorf("creating destination: %w", err)
	}

	fileCount := 0
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fileCount, fmt.Errorf("reading tar entry: %w", err)
		}

		// pax_global_header and similar carry no file
		if header.Typeflag == tar.TypeXGlobalHeader {
			continue
		}

		targetPath, err := safeJoin(destPath, header.Name)
		if err != nil {
			return fileCount, err
		}
		if err := checkParents(destPath, targetPath); err != nil {
			return fileCount, err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(targetPath, 0755); err != nil {
				return fileCount, fmt.Errorf("creating directory %s: %w", targetPath, err)
			}
		case tar.TypeSymlink:
			if err := checkLink(destPath, targetPath, header.Linkname); err != nil {
				return fileCount, err
			}
			if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
				return fileCount, fmt.Errorf("creating parent directory: %w", err)
			}
			os.Remove(targetPath)
			if err := os.Symlink(header.Linkname, targetPath); err != nil {
				return fileCount, fmt.Errorf("creating symlink: %w", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
				return fileCount, fmt.Errorf("creating parent directory: %w", err)
			}

			if fi, err := os.Lstat(targetPath); err == nil && fi.Mode()&os.ModeSymlink != 0 {
				if err := os.Remove(targetPath); err != nil {
					return fileCount, fmt.Errorf("replacing symlink %s: %w", targetPath, err)
				}
			}

			perm := os.FileMode(0644)
			if header.Mode&0111 != 0 {
				perm = 0755
			}

			outFile, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
			if err != nil {
				return fileCount, fmt.Errorf("creating file %s: %w", targetPath, err)
			}
			_, err = io.Copy(outFile, tr)
			outFile.Close()
			if err != nil {
				return fileCount, fmt.Errorf("writing file %s: %w", targetPath, err)
			}
			fileCount++
		default:
			// Devices, fifos and hard links do not occur in source tarballs
		}
	}

	return fileCount, nil
}

// safeJoin joins name under root and refuses entries escaping it
func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, name)
	if !within(root, target) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return target, nil
}

// checkLink refuses symlinks whose target resolves outside root
func checkLink(root, linkPath, linkname string) error {
	if filepath.IsAbs(linkname) || !within(root, filepath.Join(filepath.Dir(linkPath), linkname)) {
		return fmt.Errorf("symlink %s -> %q escapes destination", filepath.Base(linkPath), linkname)
	}
	return nil
}

// checkParents refuses targets whose existing parent directories below
// root include a symlink
func checkParents(root, target string) error {
	rel, err := filepath.Rel(root, filepath.Dir(target))
	if err != nil || rel == "." {
		return err
	}

	cur := root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, part)
		fi, err := os.Lstat(cur)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if fi.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("archive entry %s is below symlink %s", target, cur)
		}
	}
	return nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
