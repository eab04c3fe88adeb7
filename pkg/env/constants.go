// pkg/env/constants.go
package env

import "github.com/arc-language/ftrecipe/pkg/core"

// collectExtensions are the extensions whose files count as linkable
// libraries, whatever the target platform
var collectExtensions = []string{".so", ".lib", ".a", ".dylib", ".bc"}

// SharedLibraryExtensions returns the shared library extensions of a target OS
func SharedLibraryExtensions(osName string) []string {
	switch osName {
	case core.OSMacos:
		return []string{".dylib"}
	case core.OSWindows:
		return []string{".dll"}
	default:
		return []string{".so"}
	}
}

// StaticLibraryExtensions returns the static library extensions of a target OS
func StaticLibraryExtensions(osName string) []string {
	switch osName {
	case core.OSWindows:
		return []string{".lib"} // Can be import lib or static lib
	default:
		return []string{".a"}
	}
}

// PkgConfigVar is the search path variable pkg-config reads
const PkgConfigVar = "PKG_CONFIG_PATH"
