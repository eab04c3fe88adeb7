// pkg/core/settings.go
package core

import (
	"fmt"
	"strings"
)

// Operating systems
const (
	OSLinux   = "Linux"
	OSWindows = "Windows"
	OSMacos   = "Macos"
	OSFreeBSD = "FreeBSD"
)

// Compilers
const (
	CompilerGCC          = "gcc"
	CompilerClang        = "clang"
	CompilerAppleClang   = "apple-clang"
	CompilerVisualStudio = "Visual Studio"
)

// Build types
const (
	BuildTypeDebug          = "Debug"
	BuildTypeRelease        = "Release"
	BuildTypeRelWithDebInfo = "RelWithDebInfo"
	BuildTypeMinSizeRel     = "MinSizeRel"
)

var (
	knownOS         = []string{OSLinux, OSWindows, OSMacos, OSFreeBSD}
	knownArch       = []string{"x86", "x86_64", "armv7", "armv8"}
	knownCompilers  = []string{CompilerGCC, CompilerClang, CompilerAppleClang, CompilerVisualStudio}
	knownBuildTypes = []string{BuildTypeDebug, BuildTypeRelease, BuildTypeRelWithDebInfo, BuildTypeMinSizeRel}
	knownRuntimes   = []string{"MT", "MTd", "MD", "MDd"}
)

// Compiler describes the toolchain used for a build
type Compiler struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
	Runtime string `yaml:"runtime,omitempty"` // Visual Studio only
	Libcxx  string `yaml:"libcxx,omitempty"`  // C++ standard library ABI
}

// Settings are the externally supplied platform inputs of a build.
// A recipe branches on them but never changes them.
type Settings struct {
	OS        string   `yaml:"os"`
	Arch      string   `yaml:"arch"`
	Compiler  Compiler `yaml:"compiler"`
	BuildType string   `yaml:"build_type"`
}

// Set assigns a setting by its dotted name (e.g. "compiler.runtime")
func (s *Settings) Set(name, value string) error {
	switch name {
	case "os":
		s.OS = value
	case "arch":
		s.Arch = value
	case "compiler":
		s.Compiler.Name = value
	case "compiler.version":
		s.Compiler.Version = value
	case "compiler.runtime":
		s.Compiler.Runtime = value
	case "compiler.libcxx":
		s.Compiler.Libcxx = value
	case "build_type":
		s.BuildType = value
	default:
		return fmt.Errorf("%w: unknown setting %q", ErrInvalidSetting, name)
	}
	return nil
}

// Validate checks every setting against the known values
func (s Settings) Validate() error {
	if !contains(knownOS, s.OS) {
		return fmt.Errorf("%w: os=%q", ErrInvalidSetting, s.OS)
	}
	if !contains(knownArch, s.Arch) {
		return fmt.Errorf("%w: arch=%q", ErrInvalidSetting, s.Arch)
	}
	if !contains(knownCompilers, s.Compiler.Name) {
		return fmt.Errorf("%w: compiler=%q", ErrInvalidSetting, s.Compiler.Name)
	}
	if !contains(knownBuildTypes, s.BuildType) {
		return fmt.Errorf("%w: build_type=%q", ErrInvalidSetting, s.BuildType)
	}

	if s.Compiler.Name == CompilerVisualStudio {
		if s.OS != OSWindows {
			return fmt.Errorf("%w: compiler %q requires os=%s", ErrInvalidSetting, s.Compiler.Name, OSWindows)
		}
		if s.Compiler.Runtime != "" && !contains(knownRuntimes, s.Compiler.Runtime) {
			return fmt.Errorf("%w: compiler.runtime=%q", ErrInvalidSetting, s.Compiler.Runtime)
		}
	} else if s.Compiler.Runtime != "" {
		return fmt.Errorf("%w: compiler.runtime is only defined for %s", ErrInvalidSetting, CompilerVisualStudio)
	}

	return nil
}

// WithoutLibcxx returns a copy with the C++ standard library setting removed
func (s Settings) WithoutLibcxx() Settings {
	s.Compiler.Libcxx = ""
	return s
}

// Canonical returns a stable, sorted key=value rendering used for package ids
func (s Settings) Canonical() string {
	pairs := []string{
		"arch=" + s.Arch,
		"build_type=" + s.BuildType,
		"compiler=" + s.Compiler.Name,
	}
	if s.Compiler.Libcxx != "" {
		pairs = append(pairs, "compiler.libcxx="+s.Compiler.Libcxx)
	}
	if s.Compiler.Runtime != "" {
		pairs = append(pairs, "compiler.runtime="+s.Compiler.Runtime)
	}
	if s.Compiler.Version != "" {
		pairs = append(pairs, "compiler.version="+s.Compiler.Version)
	}
	pairs = append(pairs, "os="+s.OS)
	return strings.Join(pairs, "\n")
}

// String returns a short human readable form
func (s Settings) String() string {
	return fmt.Sprintf("%s/%s %s %s", s.OS, s.Arch, s.Compiler.Name, s.BuildType)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
