// pkg/core/layout.go
package core

import "path/filepath"

// Conventional folder names inside a work directory
const (
	SourceSubfolder = "source_subfolder"
	BuildSubfolder  = "build_subfolder"
)

// Layout holds the on-disk folders a recipe works in
type Layout struct {
	WorkDir    string // Wrapper build files and the two subfolders
	SourceDir  string // WorkDir/source_subfolder
	BuildDir   string // WorkDir/build_subfolder
	PackageDir string // Final package folder
}

// NewLayout derives the layout for a package id under the cache path.
// The work tree lives in build/<name>/<version>/<id>, the package in
// package/<name>/<version>/<id>.
func NewLayout(cachePath string, ref Reference, packageID string) Layout {
	work := filepath.Join(cachePath, "build", ref.Name, ref.Version, packageID)
	return Layout{
		WorkDir:    work,
		SourceDir:  filepath.Join(work, SourceSubfolder),
		BuildDir:   filepath.Join(work, BuildSubfolder),
		PackageDir: filepath.Join(cachePath, "package", ref.Name, ref.Version, packageID),
	}
}
