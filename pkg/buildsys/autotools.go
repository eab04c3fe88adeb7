// pkg/buildsys/autotools.go
package buildsys

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/arc-language/ftrecipe/pkg/core"
)

// autotoolsJobs is the fixed make parallelism of the autotools variant
const autotoolsJobs = 2

// Autotools builds with ./configure && make
type Autotools struct {
	cfg Config
}

// Name returns the build system name
func (a *Autotools) Name() string {
	return core.BuildSystemAutotools
}

// Configure runs the upstream configure script from the build directory.
// The FT_WITH_* and BUILD_SHARED_LIBS variables become --with/--enable flags.
func (a *Autotools) Configure(ctx context.Context, vars map[string]string) error {
	if err := os.MkdirAll(a.cfg.BuildDir, 0755); err != nil {
		return fmt.Errorf("creating build directory: %w", err)
	}

	args := []string{"--prefix=" + a.cfg.InstallDir}
	if isOn(vars["BUILD_SHARED_LIBS"]) {
		args = append(args, "--enable-shared", "--disable-static")
	} else {
		args = append(args, "--disable-shared", "--enable-static")
	}
	if isOn(vars["CMAKE_POSITION_INDEPENDENT_CODE"]) {
		args = append(args, "--with-pic")
	}
	args = append(args,
		"--with-zlib="+yesNo(vars["FT_WITH_ZLIB"]),
		"--with-bzip2="+yesNo(vars["FT_WITH_BZIP2"]),
		"--with-png="+yesNo(vars["FT_WITH_PNG"]),
		"--with-harfbuzz="+yesNo(vars["FT_WITH_HARFBUZZ"]),
	)

	var env []string
	if a.cfg.Settings.BuildType == core.BuildTypeDebug {
		env = append(env, "CFLAGS=-g -O0")
	}

	a.cfg.Logger.Printf("Configuring with autotools")
	return a.cfg.Runner.Run(ctx, Command{
		Dir:  a.cfg.BuildDir,
		Env:  env,
		Name: filepath.Join(a.cfg.SourceDir, "configure"),
		Args: args,
	})
}

// Build runs make with two jobs
func (a *Autotools) Build(ctx context.Context) error {
	a.cfg.Logger.Printf("Building with make (%d jobs)", autotoolsJobs)
	return a.cfg.Runner.Run(ctx, Command{
		Dir:  a.cfg.BuildDir,
		Name: "make",
		Args: []string{"-j" + strconv.Itoa(autotoolsJobs)},
	})
}

// Install runs make install
func (a *Autotools) Install(ctx context.Context) error {
	a.cfg.Logger.Printf("Installing into %s", a.cfg.InstallDir)
	return a.cfg.Runner.Run(ctx, Command{Dir: a.cfg.BuildDir, Name: "make", Args: []string{"install"}})
}

func isOn(v string) bool {
	switch v {
	case "ON", "On", "on", "TRUE", "True", "true", "1", "YES", "yes":
		return true
	}
	return false
}

func yesNo(v string) string {
	if isOn(v) {
		return "yes"
	}
	return "no"
}
