// pkg/recipe/package.go
package recipe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/arc-language/ftrecipe/pkg/core"
	"github.com/arc-language/ftrecipe/pkg/env"
)

// License files shipped in source_subfolder/docs
var licenseFiles = []string{"FTL.TXT", "GPLv2.TXT", "LICENSE.TXT"}

// debugSymlink makes the debug library linkable as -lfreetype on Linux
const (
	debugSymlinkName   = "libfreetype.so"
	debugSymlinkTarget = "libfreetyped.so.6"
)

// Package reruns configure, installs into the package folder and adds the
// find module, licenses, Windows DLLs and the Linux debug symlink.
func (r *FreeType) Package(ctx context.Context, deps core.Dependencies) error {
	if err := r.enter(core.PhasePackage); err != nil {
		return err
	}
	if err := r.requireLayout(core.PhasePackage); err != nil {
		return err
	}

	vars, err := r.BuildVariables(deps)
	if err != nil {
		return err
	}
	if err := r.checkBuildVariables(vars); err != nil {
		return err
	}

	restore, err := pkgConfigOverride(deps)
	if err != nil {
		return err
	}
	defer restore()

	bs, err := r.newBuildSystem(deps)
	if err != nil {
		return err
	}
	if err := bs.Configure(ctx, vars); err != nil {
		return fmt.Errorf("configuring: %w", err)
	}
	if err := bs.Install(ctx); err != nil {
		return fmt.Errorf("installing: %w", err)
	}

	pkgDir := r.layout.PackageDir
	if err := os.MkdirAll(pkgDir, 0755); err != nil {
		return fmt.Errorf("creating package directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, findModuleFile), findModule, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", findModuleFile, err)
	}
	r.logger.Printf("Copied %s", findModuleFile)

	if err := r.copyLicenses(); err != nil {
		return err
	}

	if r.settings.OS == core.OSWindows {
		if err := r.copyDLLs(); err != nil {
			return err
		}
	}

	if NeedsDebugSymlink(r.buildSystem, r.settings) {
		if err := r.linkDebugLibrary(); err != nil {
			return err
		}
	}

	if err := env.VerifyStaticLibraries(filepath.Join(pkgDir, "lib"), r.settings.OS); err != nil {
		return err
	}

	r.done = core.PhasePackage
	return nil
}

// PackageInfo reports the collected libraries and the include directories
func (r *FreeType) PackageInfo() (*core.CppInfo, error) {
	if err := r.enter(core.PhasePackageInfo); err != nil {
		return nil, err
	}
	if err := r.requireLayout(core.PhasePackageInfo); err != nil {
		return nil, err
	}

	info := core.DefaultCppInfo()

	libs, err := env.CollectLibs(filepath.Join(r.layout.PackageDir, "lib"))
	if err != nil {
		return nil, fmt.Errorf("collecting libraries: %w", err)
	}
	info.Libs = libs

	if r.settings.OS == core.OSLinux {
		info.SystemLibs = append(info.SystemLibs, "m")
	}
	info.IncludeDirs = append(info.IncludeDirs, filepath.Join("include", "freetype2"))

	r.done = core.PhasePackageInfo
	return info, nil
}

// NeedsDebugSymlink reports whether packaging adds lib/libfreetype.so.
// Only CMake Debug builds install libfreetyped, so only they need it.
func NeedsDebugSymlink(buildSystem string, settings core.Settings) bool {
	return settings.OS == core.OSLinux && DebugPostfix(buildSystem, settings)
}

// copyLicenses copies the license texts that exist into licenses/
func (r *FreeType) copyLicenses() error {
	docs := filepath.Join(r.layout.SourceDir, "docs")
	dst := filepath.Join(r.layout.PackageDir, "licenses")

	for _, name := range licenseFiles {
		src := filepath.Join(docs, name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			r.logger.Printf("License %s not present, skipping", name)
			continue
		}
		if err := copyFile(src, filepath.Join(dst, name)); err != nil {
			return fmt.Errorf("copying license %s: %w", name, err)
		}
		r.logger.Printf("Copied licenses/%s", name)
	}
	return nil
}

// copyDLLs copies the runtime libraries in build_subfolder/bin into bin/
func (r *FreeType) copyDLLs() error {
	var matches []string
	for _, ext := range env.SharedLibraryExtensions(r.settings.OS) {
		found, err := filepath.Glob(filepath.Join(r.layout.BuildDir, "bin", "*"+ext))
		if err != nil {
			return err
		}
		matches = append(matches, found...)
	}

	for _, src := range matches {
		name := filepath.Base(src)
		if err := copyFile(src, filepath.Join(r.layout.PackageDir, "bin", name)); err != nil {
			return fmt.Errorf("copying %s: %w", name, err)
		}
		r.logger.Printf("Copied bin/%s", name)
	}
	return nil
}

func (r *FreeType) linkDebugLibrary() error {
	libDir := filepath.Join(r.layout.PackageDir, "lib")
	if err := os.MkdirAll(libDir, 0755); err != nil {
		return err
	}

	link := filepath.Join(libDir, debugSymlinkName)
	if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", debugSymlinkName, err)
	}
	if err := os.Symlink(debugSymlinkTarget, link); err != nil {
		return fmt.Errorf("linking %s: %w", debugSymlinkName, err)
	}

	r.logger.Printf("Linked lib/%s -> %s", debugSymlinkName, debugSymlinkTarget)
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
