// Package buildsys drives the external build tools a recipe delegates to.
package buildsys

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/arc-language/ftrecipe/pkg/core"
)

// BuildSystem captures the lifecycle shared by CMake and autotools
type BuildSystem interface {
	// Name returns the build system name (e.g., "cmake")
	Name() string

	// Configure generates the build tree from the build variables
	Configure(ctx context.Context, vars map[string]string) error

	// Build compiles the configured tree
	Build(ctx context.Context) error

	// Install copies the build outputs into the install directory
	Install(ctx context.Context) error
}

// Config describes one build tree
type Config struct {
	WorkDir    string // Top-level source directory handed to the tool
	SourceDir  string // Upstream sources (autotools configures from here)
	BuildDir   string // Out-of-tree build directory
	InstallDir string // Install prefix, the package folder
	Settings   core.Settings
	Generator  string   // CMake generator, empty for the tool default
	Jobs       int      // Parallel jobs, 0 lets the tool decide
	PrefixPath []string // Dependency install prefixes
	Runner     Runner
	Logger     *log.Logger
}

// New returns the build system of the given kind
func New(kind string, cfg Config) (BuildSystem, error) {
	if cfg.Runner == nil {
		cfg.Runner = &ExecRunner{Logger: cfg.Logger}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}

	switch kind {
	case core.BuildSystemCMake:
		return &CMake{cfg: cfg}, nil
	case core.BuildSystemAutotools:
		if cfg.Settings.OS == core.OSWindows {
			return nil, fmt.Errorf("%w: autotools cannot build for %s", core.ErrUnsupportedPlatform, cfg.Settings.OS)
		}
		return &Autotools{cfg: cfg}, nil
	}
	return nil, fmt.Errorf("unsupported build system: %s", kind)
}

// Command is one external tool invocation
type Command struct {
	Dir  string
	Env  []string // KEY=VALUE pairs added to the process environment
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes commands
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands as subprocesses
type ExecRunner struct {
	Stdout io.Writer // Defaults to os.Stdout
	Stderr io.Writer // Defaults to os.Stderr
	Logger *log.Logger
}

// Run executes cmd and waits for it to finish
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	if r.Logger != nil {
		r.Logger.Printf("Running: %s (in %s)", cmd, cmd.Dir)
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), cmd.Env...)
	c.Stdout = r.Stdout
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	c.Stderr = r.Stderr
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}

	if err := c.Run(); err != nil {
		return fmt.Errorf("running %s: %w", cmd.Name, err)
	}
	return nil
}

// sortedDefinitions renders vars as -DKEY=VALUE in key order
func sortedDefinitions(vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	defs := make([]string, 0, len(keys))
	for _, k := range keys {
		defs = append(defs, fmt.Sprintf("-D%s=%s", k, vars[k]))
	}
	return defs
}
