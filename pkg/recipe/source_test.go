package recipe

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/ftrecipe/pkg/core"
	"github.com/arc-language/ftrecipe/pkg/patch"
)

func TestSourcePreparesWorkTree(t *testing.T) {
	f := newFixture(t, "2.9.1", linuxSettings(core.BuildTypeRelease), nil)
	f.prepare(t)

	assert.Equal(t, []string{"/freetype/freetype-2.9.1.tar.gz"}, f.mirror.Requests())
	assert.NoDirExists(t, filepath.Join(f.layout.WorkDir, "freetype-2.9.1"))

	cmakeLists := readFile(t, filepath.Join(f.layout.SourceDir, "CMakeLists.txt"))
	assert.Contains(t, cmakeLists, "elseif (WIN32)")
	// The guard only goes away for old releases on Windows
	assert.Contains(t, cmakeLists, windowsSharedGuard)

	assert.Equal(t, string(wrapperCMakeLists), readFile(t, filepath.Join(f.layout.WorkDir, "CMakeLists.txt")))
	assert.Equal(t, string(pkgConfigIn), readFile(t, filepath.Join(f.layout.WorkDir, "freetype.pc.in")))
}

func TestSourcePreCutoffWindowsRemovesGuard(t *testing.T) {
	f := newFixture(t, "2.8.1", windowsSettings("MD", core.BuildTypeRelease), nil)
	f.prepare(t)

	assert.Equal(t, []string{"/freetype/freetype-2.8.tar.gz"}, f.mirror.Requests())
	cmakeLists := readFile(t, filepath.Join(f.layout.SourceDir, "CMakeLists.txt"))
	assert.NotContains(t, cmakeLists, "needs MinGW")
	assert.Contains(t, cmakeLists, "elseif (WIN32)")
}

func TestSourcePreCutoffLinuxKeepsGuard(t *testing.T) {
	f := newFixture(t, "2.8.1", linuxSettings(core.BuildTypeRelease), nil)
	f.prepare(t)

	assert.Contains(t, readFile(t, filepath.Join(f.layout.SourceDir, "CMakeLists.txt")), "needs MinGW")
}

func TestSourceIsRepeatable(t *testing.T) {
	f := newFixture(t, "2.8.1", windowsSettings("MD", core.BuildTypeRelease), nil)
	f.prepare(t)

	// A second run starts from a fresh extraction, so both patches apply again
	require.NoError(t, f.recipe.Source(context.Background()))
	assert.NotContains(t, readFile(t, filepath.Join(f.layout.SourceDir, "CMakeLists.txt")), "needs MinGW")

	// The tarball is served from the download cache
	assert.Len(t, f.mirror.Requests(), 1)
}

func TestSourceHashMismatch(t *testing.T) {
	f := newFixture(t, "2.9.1", linuxSettings(core.BuildTypeRelease), nil)
	f.recipe.sha256 = "0000000000000000000000000000000000000000000000000000000000000000"

	_, err := f.recipe.Requirements()
	require.NoError(t, err)
	require.NoError(t, f.recipe.Configure())
	assert.ErrorIs(t, f.recipe.Source(context.Background()), core.ErrHashMismatch)
}

func TestSourceMissingTarball(t *testing.T) {
	f := newFixture(t, "2.9.1", linuxSettings(core.BuildTypeRelease), nil)
	f.recipe.ref.Version = "2.9.2"

	_, err := f.recipe.Requirements()
	require.NoError(t, err)
	require.NoError(t, f.recipe.Configure())
	assert.Error(t, f.recipe.Source(context.Background()))
}

func TestSourcePatchFailureIsClassified(t *testing.T) {
	dir := "freetype-2.9.1"
	m := newMirror(t, map[string][]byte{
		"/freetype/" + dir + ".tar.gz": tarballWithCMakeLists(t, dir, "project(freetype)\n"),
	})

	f := newFixture(t, "2.9.1", linuxSettings(core.BuildTypeRelease), nil)
	f.recipe.sourceURL = m.URL

	_, err := f.recipe.Requirements()
	require.NoError(t, err)
	require.NoError(t, f.recipe.Configure())

	err = f.recipe.Source(context.Background())
	require.Error(t, err)
	assert.True(t, patch.IsPatternNotFound(err))

	var perr *patch.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ftconfigPatch, perr.Record)
}

func TestSourceRequiresLayout(t *testing.T) {
	r := newOffline(t, linuxSettings(core.BuildTypeRelease), nil)
	_, err := r.Requirements()
	require.NoError(t, err)
	require.NoError(t, r.Configure())

	err = r.Source(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no layout")
}

// tarballWithCMakeLists builds a release whose CMakeLists.txt the bundled diff does not fit
func tarballWithCMakeLists(t *testing.T, dir, content string) []byte {
	t.Helper()
	files := releaseFiles(t, false)
	files["CMakeLists.txt"] = content
	return tarGz(t, dir, files)
}
