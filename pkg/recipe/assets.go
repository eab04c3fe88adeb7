// pkg/recipe/assets.go
package recipe

import _ "embed"

// Files shipped with the recipe
const (
	wrapperFile     = "CMakeLists.txt"
	pkgConfigInFile = "freetype.pc.in"
	findModuleFile  = "FindFreetype.cmake"
	ftconfigPatch   = "windows-cmake-ftconfig-h.patch"
)

var (
	//go:embed assets/CMakeLists.txt
	wrapperCMakeLists []byte

	//go:embed assets/freetype.pc.in
	pkgConfigIn []byte

	//go:embed assets/FindFreetype.cmake
	findModule []byte

	//go:embed assets/windows-cmake-ftconfig-h.patch
	ftconfigPatchData []byte
)
