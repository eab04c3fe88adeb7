package recipe

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blakesmith/ar"
	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/ftrecipe/pkg/buildsys"
	"github.com/arc-language/ftrecipe/pkg/core"
	"github.com/arc-language/ftrecipe/pkg/source"
)

const testHeader = "#ifndef FTCONFIG_H_\n#ifdef _MSC_VER\n#define FT_LONG64\n#endif\n#endif\n"

func linuxSettings(buildType string) core.Settings {
	return core.Settings{
		OS:        core.OSLinux,
		Arch:      "x86_64",
		Compiler:  core.Compiler{Name: core.CompilerGCC, Version: "9", Libcxx: "libstdc++11"},
		BuildType: buildType,
	}
}

func windowsSettings(runtime, buildType string) core.Settings {
	return core.Settings{
		OS:        core.OSWindows,
		Arch:      "x86_64",
		Compiler:  core.Compiler{Name: core.CompilerVisualStudio, Version: "16", Runtime: runtime},
		BuildType: buildType,
	}
}

// upstreamCMakeLists returns a CMakeLists.txt the bundled diff applies to,
// optionally starting with the old MinGW guard
func upstreamCMakeLists(t *testing.T, withGuard bool) string {
	t.Helper()

	files, _, err := gitdiff.Parse(bytes.NewReader(ftconfigPatchData))
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Len(t, files[0].TextFragments, 1)
	frag := files[0].TextFragments[0]

	var b strings.Builder
	lines := 0
	if withGuard {
		b.WriteString(windowsSharedGuard)
		lines = strings.Count(windowsSharedGuard, "\n")
	}
	for ; lines < int(frag.OldPosition)-1; lines++ {
		fmt.Fprintf(&b, "# line %d\n", lines+1)
	}
	for _, line := range frag.Lines {
		if line.Op != gitdiff.OpAdd {
			b.WriteString(line.Line)
		}
	}
	b.WriteString("install(FILES ft2build.h DESTINATION include/freetype2)\n")
	return b.String()
}

// releaseTarball builds <dir>.tar.gz in memory
func releaseTarball(t *testing.T, dir string, withGuard bool) []byte {
	t.Helper()
	return tarGz(t, dir, releaseFiles(t, withGuard))
}

func releaseFiles(t *testing.T, withGuard bool) map[string]string {
	t.Helper()
	return map[string]string{
		"CMakeLists.txt":                     upstreamCMakeLists(t, withGuard),
		"include/freetype/config/ftconfig.h": testHeader,
		"docs/FTL.TXT":                       "FreeType License\n",
		"docs/GPLv2.TXT":                     "GNU GPL v2\n",
		"docs/LICENSE.TXT":                   "dual licensed\n",
		"configure":                          "#!/bin/sh\n",
	}
}

// tarGz packs files below dir/ into a gzip tarball
func tarGz(t *testing.T, dir string, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     dir + "/" + name,
			Mode:     0644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// mirror serves release tarballs and records requested paths
type mirror struct {
	*httptest.Server
	mu       sync.Mutex
	requests []string
}

func newMirror(t *testing.T, tarballs map[string][]byte) *mirror {
	t.Helper()
	m := &mirror{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests = append(m.requests, r.URL.Path)
		m.mu.Unlock()

		data, ok := tarballs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mirror) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requests...)
}

// staticLibrary returns a one-object ar archive laid out the way GNU ar
// writes it, with a symbol table member first
func staticLibrary(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := ar.NewWriter(&buf)
	require.NoError(t, w.WriteGlobalHeader())
	symbols := "\x00\x00\x00\x01\x00\x00\x00\x44FT_Init_FreeType\x00\x00"
	fmt.Fprintf(&buf, "%-16s%-12s%-6s%-6s%-8s%-10d`\n%s", "/", "0", "0", "0", "0", len(symbols), symbols)
	body := []byte("object code\n")
	require.NoError(t, w.WriteHeader(&ar.Header{
		Name:    "ftbase.o",
		ModTime: time.Unix(0, 0),
		Mode:    0644,
		Size:    int64(len(body)),
	}))
	_, err := w.Write(body)
	require.NoError(t, err)
	return buf.Bytes()
}

// fakeRunner records commands and simulates the files a real build writes
type fakeRunner struct {
	layout       core.Layout
	commands     []buildsys.Command
	pkgConfig    []string
	buildFiles   map[string][]byte // Relative to the build directory
	installFiles map[string][]byte // Relative to the install directory
	err          error
}

func (f *fakeRunner) Run(_ context.Context, cmd buildsys.Command) error {
	f.commands = append(f.commands, cmd)
	f.pkgConfig = append(f.pkgConfig, os.Getenv("PKG_CONFIG_PATH"))
	if f.err != nil {
		return f.err
	}

	var root string
	var files map[string][]byte
	switch {
	case len(cmd.Args) == 0:
	case cmd.Args[0] == "--build", cmd.Name == "make" && strings.HasPrefix(cmd.Args[0], "-j"):
		root, files = f.layout.BuildDir, f.buildFiles
	case cmd.Args[0] == "--install", cmd.Name == "make" && cmd.Args[0] == "install":
		root, files = f.layout.PackageDir, f.installFiles
	}
	for name, data := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
	}
	return nil
}

type fixture struct {
	recipe *FreeType
	runner *fakeRunner
	mirror *mirror
	layout core.Layout
}

// newFixture creates a recipe wired to a local mirror and a fake runner
func newFixture(t *testing.T, version string, settings core.Settings, options map[string]string) *fixture {
	t.Helper()

	srcVersion := SourceVersion(version)
	dir := fmt.Sprintf("freetype-%s", srcVersion)
	m := newMirror(t, map[string][]byte{
		"/freetype/" + dir + ".tar.gz": releaseTarball(t, dir, true),
	})

	cache := t.TempDir()
	layout := core.NewLayout(cache, core.Reference{Name: Name, Version: version}, "testid")
	runner := &fakeRunner{layout: layout}

	r, err := New(Config{
		Version:   version,
		Settings:  settings,
		Options:   options,
		SourceURL: m.URL,
		Fetcher:   source.NewFetcher(source.NewClient(), cache, nil),
		Runner:    runner,
	})
	require.NoError(t, err)
	r.UseLayout(layout)

	return &fixture{recipe: r, runner: runner, mirror: m, layout: layout}
}

// prepare runs requirements, configure and source
func (f *fixture) prepare(t *testing.T) *core.Requirements {
	t.Helper()
	reqs, err := f.recipe.Requirements()
	require.NoError(t, err)
	require.NoError(t, f.recipe.Configure())
	require.NoError(t, f.recipe.Source(context.Background()))
	return reqs
}

func testDeps(prefix string) core.Dependencies {
	return core.Dependencies{
		"libpng": {Reference: PNGRequirement, Libs: []string{"png16"}, Prefix: prefix},
		"zlib":   {Reference: ZlibRequirement, Libs: []string{"z"}},
		"bzip2":  {Reference: Bzip2Requirement, Libs: []string{"bz2"}},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
