// pkg/buildsys/cmake.go
package buildsys

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/arc-language/ftrecipe/pkg/core"
)

// CMake builds with cmake out of tree
type CMake struct {
	cfg Config
}

// Name returns the build system name
func (c *CMake) Name() string {
	return core.BuildSystemCMake
}

// Configure runs cmake -S <work> -B <build> with every variable as a definition
func (c *CMake) Configure(ctx context.Context, vars map[string]string) error {
	if err := os.MkdirAll(c.cfg.BuildDir, 0755); err != nil {
		return fmt.Errorf("creating build directory: %w", err)
	}

	args := []string{"-S", c.cfg.WorkDir, "-B", c.cfg.BuildDir}
	if c.cfg.Generator != "" {
		args = append(args, "-G", c.cfg.Generator)
	}
	if platform := msvcPlatform(c.cfg.Settings); platform != "" {
		args = append(args, "-A", platform)
	}

	args = append(args, "-DCMAKE_INSTALL_PREFIX="+c.cfg.InstallDir)
	if len(c.cfg.PrefixPath) > 0 {
		args = append(args, "-DCMAKE_PREFIX_PATH="+strings.Join(c.cfg.PrefixPath, ";"))
	}
	if runtime := msvcRuntimeLibrary(c.cfg.Settings.Compiler.Runtime); runtime != "" {
		args = append(args,
			"-DCMAKE_POLICY_DEFAULT_CMP0091=NEW",
			"-DCMAKE_MSVC_RUNTIME_LIBRARY="+runtime)
	}
	args = append(args, sortedDefinitions(vars)...)

	c.cfg.Logger.Printf("Configuring with cmake (%d definitions)", len(vars))
	return c.cfg.Runner.Run(ctx, Command{Dir: c.cfg.WorkDir, Name: "cmake", Args: args})
}

// Build runs cmake --build
func (c *CMake) Build(ctx context.Context) error {
	args := []string{"--build", c.cfg.BuildDir, "--config", c.cfg.Settings.BuildType}
	if c.cfg.Jobs > 0 {
		args = append(args, "--parallel", strconv.Itoa(c.cfg.Jobs))
	}

	c.cfg.Logger.Printf("Building with cmake (%d jobs)", c.cfg.Jobs)
	return c.cfg.Runner.Run(ctx, Command{Dir: c.cfg.BuildDir, Name: "cmake", Args: args})
}

// Install runs cmake --install
func (c *CMake) Install(ctx context.Context) error {
	args := []string{"--install", c.cfg.BuildDir, "--config", c.cfg.Settings.BuildType}

	c.cfg.Logger.Printf("Installing into %s", c.cfg.InstallDir)
	return c.cfg.Runner.Run(ctx, Command{Dir: c.cfg.BuildDir, Name: "cmake", Args: args})
}

// msvcPlatform maps the arch setting to a Visual Studio generator platform
func msvcPlatform(s core.Settings) string {
	if s.Compiler.Name != core.CompilerVisualStudio {
		return ""
	}
	switch s.Arch {
	case "x86_64":
		return "x64"
	case "x86":
		return "Win32"
	case "armv8":
		return "ARM64"
	case "armv7":
		return "ARM"
	}
	return ""
}

// msvcRuntimeLibrary maps MT/MTd/MD/MDd to CMAKE_MSVC_RUNTIME_LIBRARY values
func msvcRuntimeLibrary(runtime string) string {
	switch runtime {
	case "MT":
		return "MultiThreaded"
	case "MTd":
		return "MultiThreadedDebug"
	case "MD":
		return "MultiThreadedDLL"
	case "MDd":
		return "MultiThreadedDebugDLL"
	}
	return ""
}
