// pkg/core/package.go
package core

// DependencyInfo is what a recipe learns about one resolved requirement
type DependencyInfo struct {
	Reference Reference // Resolved edge
	Libs      []string  // Link names, first one is the main library
	Prefix    string    // Install prefix of the dependency package (optional)
}

// Dependencies maps package names to their resolved info
type Dependencies map[string]DependencyInfo

// CppInfo is what a package reports to its consumers
type CppInfo struct {
	Libs        []string `yaml:"libs"`
	SystemLibs  []string `yaml:"system_libs,omitempty"`
	IncludeDirs []string `yaml:"include_dirs"`
	LibDirs     []string `yaml:"lib_dirs"`
	BinDirs     []string `yaml:"bin_dirs"`
}

// DefaultCppInfo returns the conventional package directories
func DefaultCppInfo() *CppInfo {
	return &CppInfo{
		IncludeDirs: []string{"include"},
		LibDirs:     []string{"lib"},
		BinDirs:     []string{"bin"},
	}
}
