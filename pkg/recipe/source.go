// pkg/recipe/source.go
package recipe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arc-language/ftrecipe/pkg/archive"
	"github.com/arc-language/ftrecipe/pkg/core"
	"github.com/arc-language/ftrecipe/pkg/patch"
	"github.com/arc-language/ftrecipe/pkg/source"
)

// windowsSharedGuard is the CMakeLists block older releases use to refuse
// MSVC shared builds
const windowsSharedGuard = "if (WIN32 AND NOT MINGW AND BUILD_SHARED_LIBS)\n" +
	"  message(FATAL_ERROR \"Building shared libraries on Windows needs MinGW\")\n" +
	"endif ()\n"

// SourceVersion is the version string used in the tarball name. Releases
// before the cutoff drop the last two characters ("2.8.1" -> "2.8").
func SourceVersion(version string) string {
	if preCutoff(version) && len(version) > 2 {
		return version[:len(version)-2]
	}
	return version
}

// SourceURL returns the release tarball URL under the mirror base
func SourceURL(base, version string) string {
	return source.ArchiveURL(base, Name, SourceVersion(version), archive.FormatGzip)
}

// Source downloads and extracts the release, renames it to
// source_subfolder, applies the patches and writes the wrapper build files.
func (r *FreeType) Source(ctx context.Context) error {
	if err := r.enter(core.PhaseSource); err != nil {
		return err
	}
	if err := r.requireLayout(core.PhaseSource); err != nil {
		return err
	}

	work := r.layout.WorkDir
	extracted := filepath.Join(work, fmt.Sprintf("%s-%s", Name, SourceVersion(r.ref.Version)))

	if err := os.MkdirAll(work, 0755); err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}
	for _, dir := range []string{extracted, r.layout.SourceDir} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing stale %s: %w", filepath.Base(dir), err)
		}
	}

	url := SourceURL(r.sourceURL, r.ref.Version)
	r.logger.Printf("Fetching %s", url)
	if _, err := r.fetcher.Get(ctx, url, r.sha256, work); err != nil {
		return err
	}

	if err := os.Rename(extracted, r.layout.SourceDir); err != nil {
		return fmt.Errorf("renaming %s: %w", filepath.Base(extracted), err)
	}

	if err := r.patcher.ApplyDiff(r.layout.SourceDir, ftconfigPatch, bytes.NewReader(ftconfigPatchData)); err != nil {
		return err
	}
	if _, err := r.patcher.Apply(r.layout.SourceDir, r.sourcePatches()); err != nil {
		return err
	}

	files := map[string][]byte{
		wrapperFile:     wrapperCMakeLists,
		pkgConfigInFile: pkgConfigIn,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(work, name), data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	r.logger.Printf("Source ready in %s", r.layout.SourceDir)
	r.done = core.PhaseSource
	return nil
}

// sourcePatches are the substitutions applied once after extraction
func (r *FreeType) sourcePatches() []patch.Substitution {
	return []patch.Substitution{
		{
			Name:    "windows-shared-guard",
			File:    "CMakeLists.txt",
			Match:   windowsSharedGuard,
			Replace: "",
			When: func() bool {
				return preCutoff(r.ref.Version) && r.settings.OS == core.OSWindows
			},
			Required: true,
		},
	}
}
