package env

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blakesmith/ar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arArchive(t *testing.T, members ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := ar.NewWriter(&buf)
	require.NoError(t, w.WriteGlobalHeader())
	for _, m := range members {
		body := []byte("object " + m)
		require.NoError(t, w.WriteHeader(&ar.Header{Name: m, Size: int64(len(body)), Mode: 0644, ModTime: time.Unix(0, 0)}))
		_, err := w.Write(body)
		require.NoError(t, err)
	}
	return buf.Bytes()
}

// arHeader formats one member header the way GNU ar writes it
func arHeader(name, mode string, size int) string {
	return fmt.Sprintf("%-16s%-12s%-6s%-6s%-8s%-10d`\n", name, "0", "0", "0", mode, size)
}

// arMember returns a header plus body, padded to an even length
func arMember(name, mode, body string) string {
	m := arHeader(name, mode, len(body)) + body
	if len(body)%2 == 1 {
		m += "\n"
	}
	return m
}

// gnuArchive returns an archive with a symbol table and a long-name table
// ahead of its object members
func gnuArchive(objects ...string) []byte {
	var b strings.Builder
	b.WriteString(arMagic)
	b.WriteString(arMember("/", "0", "\x00\x00\x00\x00\x00"))
	b.WriteString(arMember("//", "", "ftsystem_with_a_long_name.o/\n"))
	for _, o := range objects {
		b.WriteString(arMember(o+"/", "644", "object "+o))
	}
	return []byte(b.String())
}

func touch(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
}

func TestCollectLibs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "libfreetyped.so.6", nil)
	touch(t, dir, "libfreetyped.so", nil)
	touch(t, dir, "libfreetype.a", arArchive(t, "ftbase.o"))
	touch(t, dir, "freetype.lib", nil)
	touch(t, dir, "README", nil)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkgconfig"), 0755))

	libs, err := CollectLibs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"freetype", "freetyped"}, libs)
}

func TestCollectLibsMissingDir(t *testing.T) {
	libs, err := CollectLibs(filepath.Join(t.TempDir(), "lib"))
	require.NoError(t, err)
	assert.Empty(t, libs)
}

func TestFindAllLibrariesMarksStatic(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "libfreetype.a", nil)
	touch(t, dir, "libfreetype.dylib", nil)

	libs, err := FindAllLibraries(dir)
	require.NoError(t, err)
	require.Len(t, libs, 2)
	assert.True(t, libs[0].IsStatic)
	assert.Equal(t, ".a", libs[0].Type)
	assert.False(t, libs[1].IsStatic)
}

func TestVerifyStaticLibraries(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "libfreetype.a", arArchive(t, "ftbase.o", "ftinit.o"))
	touch(t, dir, "libfreetype.so", []byte("\x7fELF"))
	assert.NoError(t, VerifyStaticLibraries(dir, "Linux"))

	touch(t, dir, "libbroken.a", []byte("not an archive at all"))
	assert.Error(t, VerifyStaticLibraries(dir, "Linux"))
}

func TestVerifyStaticLibrariesRejectsEmptyArchive(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "libempty.a", arArchive(t))
	assert.Error(t, VerifyStaticLibraries(dir, "Linux"))
}

func TestVerifyStaticLibrariesGNULayout(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "libfreetype.a", gnuArchive("ftbase.o", "ftinit.o"))

	assert.NotPanics(t, func() {
		assert.NoError(t, VerifyStaticLibraries(dir, "Linux"))
	})
}

func TestVerifyStaticLibrariesMalformedHeaders(t *testing.T) {
	header := arHeader("ftbase.o/", "644", 4)
	tests := []struct {
		name string
		data string
	}{
		{"index only", string(gnuArchive())},
		{"bad terminator", arMagic + header[:58] + "xx" + "code"},
		{"bad size", arMagic + header[:48] + fmt.Sprintf("%-10s", "-4") + header[58:] + "code"},
		{"truncated header", arMagic + "ftbase.o/       0"},
		{"truncated index", arMagic + arHeader("/", "0", 64) + "\x00\x00"},
		{"short mode", arMagic + arHeader("ftbase.o/", "0", 4) + "code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, "libfreetype.a", []byte(tt.data))
			assert.NotPanics(t, func() {
				assert.Error(t, VerifyStaticLibraries(dir, "Linux"))
			})
		})
	}
}

func TestVerifyStaticLibrariesPerOS(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "freetype.lib", []byte("not an archive"))
	assert.NoError(t, VerifyStaticLibraries(dir, "Linux"))
	assert.Error(t, VerifyStaticLibraries(dir, "Windows"))
}

func TestExtensionsPerOS(t *testing.T) {
	assert.Equal(t, []string{".dll"}, SharedLibraryExtensions("Windows"))
	assert.Equal(t, []string{".dylib"}, SharedLibraryExtensions("Macos"))
	assert.Equal(t, []string{".so"}, SharedLibraryExtensions("Linux"))
	assert.Equal(t, []string{".lib"}, StaticLibraryExtensions("Windows"))
	assert.Equal(t, []string{".a"}, StaticLibraryExtensions("Linux"))
}
