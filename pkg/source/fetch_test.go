package source

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/ftrecipe/pkg/archive"
	"github.com/arc-language/ftrecipe/pkg/core"
)

func tarball(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	body := []byte("project(freetype)\n")
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "freetype-2.9.1/CMakeLists.txt", Mode: 0644, Size: int64(len(body))}))
	_, err := tw.Write(body)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestArchiveURL(t *testing.T) {
	assert.Equal(t,
		"https://download.savannah.gnu.org/releases/freetype/freetype-2.9.1.tar.gz",
		ArchiveURL("https://download.savannah.gnu.org/releases/", "freetype", "2.9.1", archive.FormatGzip))
	assert.Equal(t, "freetype-2.8.tar.xz", ArchiveName("freetype", "2.8", archive.FormatXZ))
}

func TestFetcherDownloadsOnceAndExtracts(t *testing.T) {
	data := tarball(t)
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/freetype/freetype-2.9.1.tar.gz", r.URL.Path)
		w.Write(data)
	}))
	defer srv.Close()

	cache := t.TempDir()
	f := NewFetcher(NewClient(), cache, nil)
	url := ArchiveURL(srv.URL, "freetype", "2.9.1", archive.FormatGzip)
	sum := sha256.Sum256(data)

	for i := 0; i < 2; i++ {
		dest := filepath.Join(t.TempDir(), "src")
		archivePath, err := f.Get(context.Background(), url, hex.EncodeToString(sum[:]), dest)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cache, "downloads", "freetype-2.9.1.tar.gz"), archivePath)
		assert.FileExists(t, filepath.Join(dest, "freetype-2.9.1", "CMakeLists.txt"))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetcherHashMismatchRemovesCacheEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(tarball(t))
	}))
	defer srv.Close()

	cache := t.TempDir()
	f := NewFetcher(nil, cache, nil)
	url := ArchiveURL(srv.URL, "freetype", "2.9.1", archive.FormatGzip)

	_, err := f.Get(context.Background(), url, "00ff", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrHashMismatch))

	_, statErr := os.Stat(filepath.Join(cache, "downloads", "freetype-2.9.1.tar.gz"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetcherHTTPErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cache := t.TempDir()
	f := NewFetcher(nil, cache, nil)
	_, err := f.Get(context.Background(), srv.URL+"/freetype/freetype-9.9.tar.gz", "", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status: 404")

	entries, _ := os.ReadDir(filepath.Join(cache, "downloads"))
	assert.Empty(t, entries)
}
