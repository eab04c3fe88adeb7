// pkg/env/library.go
package env

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/blakesmith/ar"
)

// FindAllLibraries returns the libraries directly inside libDir, sorted by file name.
// Versioned names such as libfoo.so.6 are not linkable names and are skipped.
func FindAllLibraries(libDir string) ([]*Library, error) {
	entries, err := os.ReadDir(libDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", libDir, err)
	}

	var libraries []*Library
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := filepath.Ext(name)
		if !isCollectable(ext) {
			continue
		}

		// Extract library name (remove "lib" prefix and extension)
		libName := strings.TrimSuffix(name, ext)
		if ext != ".lib" {
			libName = strings.TrimPrefix(libName, "lib")
		}

		libraries = append(libraries, &Library{
			Name:     libName,
			Path:     filepath.Join(libDir, name),
			Type:     ext,
			IsStatic: ext == ".a" || ext == ".lib",
		})
	}

	sort.Slice(libraries, func(i, j int) bool {
		return filepath.Base(libraries[i].Path) < filepath.Base(libraries[j].Path)
	})
	return libraries, nil
}

// CollectLibs returns the unique link names of the libraries in libDir
func CollectLibs(libDir string) ([]string, error) {
	libs, err := FindAllLibraries(libDir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(libs))
	seen := make(map[string]bool)
	for _, lib := range libs {
		if !seen[lib.Name] {
			names = append(names, lib.Name)
			seen[lib.Name] = true
		}
	}

	return names, nil
}

// VerifyStaticLibraries checks every static library of the target OS in
// libDir is an ar archive with at least one object member
func VerifyStaticLibraries(libDir, osName string) error {
	libs, err := FindAllLibraries(libDir)
	if err != nil {
		return err
	}

	static := StaticLibraryExtensions(osName)
	for _, lib := range libs {
		if !lib.IsStatic || !contains(static, lib.Type) {
			continue
		}
		if err := verifyArchive(lib.Path); err != nil {
			return fmt.Errorf("static library %s: %w", filepath.Base(lib.Path), err)
		}
	}
	return nil
}

func verifyArchive(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic := make([]byte, len(arMagic))
	if _, err := io.ReadFull(br, magic); err != nil || string(magic) != arMagic {
		return fmt.Errorf("not an ar archive")
	}

	// GNU and BSD index members precede the objects; skip them.
	for {
		hdr, err := br.Peek(arHeaderSize)
		if len(hdr) == 0 && errors.Is(err, io.EOF) {
			return fmt.Errorf("archive has no members")
		}
		if err != nil {
			return fmt.Errorf("truncated member header")
		}
		size, err := memberSize(hdr)
		if err != nil {
			return err
		}
		if !isIndexMember(strings.TrimRight(string(hdr[:16]), " ")) {
			break
		}
		if _, err := br.Discard(arHeaderSize + int(size+size%2)); err != nil {
			return fmt.Errorf("truncated index member")
		}
	}

	return firstMember(io.MultiReader(strings.NewReader(arMagic), br))
}

func firstMember(r io.Reader) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed member header: %v", p)
		}
	}()

	header, err := ar.NewReader(r).Next()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("archive has no members")
	}
	if err != nil {
		return fmt.Errorf("not an ar archive: %w", err)
	}
	if header.Name == "" {
		return fmt.Errorf("member has no name")
	}
	return nil
}

// memberSize validates the fixed layout of a 60-byte member header
func memberSize(hdr []byte) (int64, error) {
	if string(hdr[58:60]) != arHeaderEnd {
		return 0, fmt.Errorf("bad member header terminator")
	}
	field := strings.TrimSpace(string(hdr[48:58]))
	size, err := strconv.ParseInt(field, 10, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("member has invalid size %q", field)
	}
	return size, nil
}

func isIndexMember(name string) bool {
	switch name {
	case "/", "//", "/SYM64/", "__.SYMDEF", "__.SYMDEF SORTED":
		return true
	}
	return false
}

// arMagic opens every ar archive, including MSVC .lib files
const arMagic = "!<arch>\n"

const (
	arHeaderSize = 60
	arHeaderEnd  = "`\n"
)

func isCollectable(ext string) bool {
	return contains(collectExtensions, ext)
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
