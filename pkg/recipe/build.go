// pkg/recipe/build.go
package recipe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/arc-language/ftrecipe/pkg/buildsys"
	"github.com/arc-language/ftrecipe/pkg/core"
	"github.com/arc-language/ftrecipe/pkg/env"
	"github.com/arc-language/ftrecipe/pkg/patch"
)

// Build variable names
const (
	VarSystemLibraries = "PC_SYSTEM_LIBRARIES"
	VarFreetypeLibrary = "PC_FREETYPE_LIBRARY"
	VarPNGLibrary      = "PC_PNG_LIBRARY"
	VarZlibLibrary     = "PC_ZLIB_LIBRARY"
	VarBzip2Library    = "PC_BZIP2_LIBRARY"
	VarProjectVersion  = "PROJECT_VERSION"
	VarWithZlib        = "FT_WITH_ZLIB"
	VarWithBzip2       = "FT_WITH_BZIP2"
	VarWithPNG         = "FT_WITH_PNG"
	VarWithHarfbuzz    = "FT_WITH_HARFBUZZ"
	VarSharedLibs      = "BUILD_SHARED_LIBS"
	VarBuildType       = "CMAKE_BUILD_TYPE"
	VarPIC             = "CMAKE_POSITION_INDEPENDENT_CODE"
)

// ftconfigHeader is patched for static MSVC runtimes
const ftconfigHeader = "include/freetype/config/ftconfig.h"

// BuildVariables derives the build-system variables. It has no side
// effects, so repeated calls with the same inputs give equal maps.
func BuildVariables(version, buildSystem string, settings core.Settings, opts core.Options, deps core.Dependencies) (map[string]string, error) {
	vars := map[string]string{
		VarSystemLibraries: "",
		VarFreetypeLibrary: "-lfreetype",
		VarProjectVersion:  version,
		VarWithZlib:        onOff(opts.WithZlib),
		VarWithBzip2:       onOff(opts.WithBzip2),
		VarWithPNG:         onOff(opts.WithPNG),
		VarWithHarfbuzz:    onOff(false),
		VarSharedLibs:      onOff(opts.Shared),
		VarBuildType:       settings.BuildType,
	}

	if settings.OS == core.OSLinux {
		vars[VarSystemLibraries] = "-lm"
	}
	if DebugPostfix(buildSystem, settings) {
		vars[VarFreetypeLibrary] = "-lfreetyped"
	}
	if opts.FPIC != nil {
		vars[VarPIC] = onOff(*opts.FPIC)
	}

	libraries := []struct {
		key     string
		name    string
		enabled bool
	}{
		{VarPNGLibrary, PNGRequirement.Name, opts.WithPNG},
		{VarZlibLibrary, ZlibRequirement.Name, opts.WithZlib},
		{VarBzip2Library, Bzip2Requirement.Name, opts.WithBzip2},
	}
	for _, l := range libraries {
		if !l.enabled {
			vars[l.key] = ""
			continue
		}
		dep, ok := deps[l.name]
		if !ok || len(dep.Libs) == 0 {
			return nil, fmt.Errorf("%w: %s has no libraries", core.ErrDependencyNotResolved, l.name)
		}
		vars[l.key] = "-l" + dep.Libs[0]
	}

	return vars, nil
}

// BuildVariables derives the variables for the configured recipe
func (r *FreeType) BuildVariables(deps core.Dependencies) (map[string]string, error) {
	if r.done < core.PhaseConfigure {
		return nil, fmt.Errorf("%w: build variables need %s", core.ErrPhaseOrder, core.PhaseConfigure)
	}
	return BuildVariables(r.ref.Version, r.buildSystem, r.settings, r.options, deps)
}

// DebugPostfix reports whether the installed library is named freetyped.
// The CMake build appends the postfix for Debug; autotools never does.
func DebugPostfix(buildSystem string, settings core.Settings) bool {
	return buildSystem == core.BuildSystemCMake && settings.BuildType == core.BuildTypeDebug
}

// Build applies the MSVC workaround, configures and compiles
func (r *FreeType) Build(ctx context.Context, deps core.Dependencies) error {
	if err := r.enter(core.PhaseBuild); err != nil {
		return err
	}
	if err := r.requireLayout(core.PhaseBuild); err != nil {
		return err
	}

	vars, err := r.BuildVariables(deps)
	if err != nil {
		return err
	}

	restore, err := pkgConfigOverride(deps)
	if err != nil {
		return err
	}
	defer restore()

	if _, err := r.patcher.Apply(r.layout.SourceDir, r.buildPatches()); err != nil {
		return err
	}

	bs, err := r.newBuildSystem(deps)
	if err != nil {
		return err
	}
	if err := bs.Configure(ctx, vars); err != nil {
		return fmt.Errorf("configuring: %w", err)
	}
	if err := bs.Build(ctx); err != nil {
		return fmt.Errorf("building: %w", err)
	}

	r.buildVars = vars
	r.done = core.PhaseBuild
	return nil
}

// MSVCStaticRuntime reports whether the header workaround applies
func MSVCStaticRuntime(settings core.Settings) bool {
	return settings.OS == core.OSWindows &&
		settings.Compiler.Name == core.CompilerVisualStudio &&
		strings.Contains(settings.Compiler.Runtime, "MT")
}

// buildPatches are the substitutions applied before configuring. The
// header pattern is required from the cutoff on; older headers may lack it.
func (r *FreeType) buildPatches() []patch.Substitution {
	return []patch.Substitution{
		{
			Name:     "msvc-static-runtime",
			File:     filepath.FromSlash(ftconfigHeader),
			Match:    "#ifdef _MSC_VER",
			Replace:  "#if 0",
			When:     func() bool { return MSVCStaticRuntime(r.settings) },
			Required: !preCutoff(r.ref.Version),
		},
	}
}

func (r *FreeType) newBuildSystem(deps core.Dependencies) (buildsys.BuildSystem, error) {
	return buildsys.New(r.buildSystem, buildsys.Config{
		WorkDir:    r.layout.WorkDir,
		SourceDir:  r.layout.SourceDir,
		BuildDir:   r.layout.BuildDir,
		InstallDir: r.layout.PackageDir,
		Settings:   r.settings,
		Generator:  r.generator,
		Jobs:       r.jobs,
		PrefixPath: dependencyPrefixes(deps),
		Runner:     r.runner,
		Logger:     r.logger,
	})
}

// checkBuildVariables fails when the package phase derives different
// variables than the build phase did
func (r *FreeType) checkBuildVariables(vars map[string]string) error {
	if r.buildVars == nil {
		return nil
	}
	if diff := cmp.Diff(r.buildVars, vars); diff != "" {
		return fmt.Errorf("build variables changed since build (-build +package):\n%s", diff)
	}
	return nil
}

// pkgConfigOverride prepends every dependency's lib/pkgconfig to PKG_CONFIG_PATH
func pkgConfigOverride(deps core.Dependencies) (func(), error) {
	var dirs []string
	for _, prefix := range dependencyPrefixes(deps) {
		dirs = append(dirs, filepath.Join(prefix, "lib", "pkgconfig"))
	}
	if len(dirs) == 0 {
		return func() {}, nil
	}
	return env.Override(map[string]string{
		env.PkgConfigVar: env.SearchPath(env.PkgConfigVar, dirs...),
	})
}

// dependencyPrefixes returns the install prefixes of deps in requirement order
func dependencyPrefixes(deps core.Dependencies) []string {
	var prefixes []string
	for _, name := range []string{PNGRequirement.Name, ZlibRequirement.Name, Bzip2Requirement.Name} {
		if dep, ok := deps[name]; ok && dep.Prefix != "" {
			prefixes = append(prefixes, dep.Prefix)
		}
	}
	return prefixes
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}
