// pkg/env/types.go
package env

// Library represents a found library file
type Library struct {
	Name     string // Link name (e.g., "freetype")
	Path     string // Absolute path to library file
	Type     string // Extension: ".so", ".a", ".dylib", ".lib", ".bc"
	IsStatic bool   // True for .a and .lib files
}
