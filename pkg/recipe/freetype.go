// Package recipe holds the FreeType recipe: dependency edges, option
// pruning, source preparation, build variables and packaging.
package recipe

import (
	"fmt"
	"io"
	"log"

	"golang.org/x/mod/semver"

	"github.com/arc-language/ftrecipe/pkg/buildsys"
	"github.com/arc-language/ftrecipe/pkg/core"
	"github.com/arc-language/ftrecipe/pkg/patch"
	"github.com/arc-language/ftrecipe/pkg/source"
)

const (
	// Name is the package name
	Name = "freetype"

	// DefaultVersion is the version built when none is given
	DefaultVersion = "2.9.1"

	// DefaultUser and DefaultChannel complete the package reference
	DefaultUser    = "conanos"
	DefaultChannel = "stable"

	// VersionCutoff is the first release whose tarball carries the full
	// version and whose CMakeLists no longer rejects MSVC shared builds
	VersionCutoff = "2.9.1"
)

// Pinned dependency edges
var (
	PNGRequirement   = core.Reference{Name: "libpng", Version: "1.6.34", User: "conanos", Channel: "stable"}
	ZlibRequirement  = core.Reference{Name: "zlib", Version: "1.2.11", User: "conanos", Channel: "stable"}
	Bzip2Requirement = core.Reference{Name: "bzip2", Version: "1.0.6", User: "conanos", Channel: "stable"}
)

// Config holds the inputs of one recipe instance
type Config struct {
	Version     string
	User        string
	Channel     string
	Settings    core.Settings
	Options     map[string]string // Overrides applied after platform pruning
	SourceURL   string            // Mirror base, DefaultSourceURL when empty
	SHA256      string            // Expected tarball checksum, unchecked when empty
	BuildSystem string            // cmake (default) or autotools
	Generator   string
	Jobs        int
	Fetcher     *source.Fetcher
	Runner      buildsys.Runner
	Logger      *log.Logger
}

// FreeType is the recipe. Hooks must run in lifecycle order.
type FreeType struct {
	ref         core.Reference
	settings    core.Settings
	options     core.Options
	sourceURL   string
	sha256      string
	buildSystem string
	generator   string
	jobs        int

	fetcher *source.Fetcher
	runner  buildsys.Runner
	patcher *patch.Patcher
	logger  *log.Logger

	done      core.Phase
	reqs      *core.Requirements
	layout    *core.Layout
	buildVars map[string]string
}

// New creates a recipe for the given settings and option overrides
func New(cfg Config) (*FreeType, error) {
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if !semver.IsValid("v" + cfg.Version) {
		return nil, fmt.Errorf("invalid version %q", cfg.Version)
	}
	if cfg.User == "" && cfg.Channel == "" {
		cfg.User, cfg.Channel = DefaultUser, DefaultChannel
	}
	if cfg.SourceURL == "" {
		cfg.SourceURL = core.DefaultSourceURL
	}
	if cfg.BuildSystem == "" {
		cfg.BuildSystem = core.BuildSystemCMake
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("recipe requires a source fetcher")
	}

	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}

	opts, err := ConfigOptions(cfg.Settings, cfg.Options)
	if err != nil {
		return nil, err
	}

	return &FreeType{
		ref: core.Reference{
			Name:    Name,
			Version: cfg.Version,
			User:    cfg.User,
			Channel: cfg.Channel,
		},
		settings:    cfg.Settings,
		options:     opts,
		sourceURL:   cfg.SourceURL,
		sha256:      cfg.SHA256,
		buildSystem: cfg.BuildSystem,
		generator:   cfg.Generator,
		jobs:        cfg.Jobs,
		fetcher:     cfg.Fetcher,
		runner:      cfg.Runner,
		patcher:     patch.New(cfg.Logger),
		logger:      cfg.Logger,
	}, nil
}

// ConfigOptions returns the option set for the platform with overrides
// applied. fPIC does not exist on Windows, so overriding it there fails
// with ErrOptionNotDefined.
func ConfigOptions(settings core.Settings, overrides map[string]string) (core.Options, error) {
	opts := core.DefaultOptions(settings)
	if err := opts.Apply(overrides); err != nil {
		return core.Options{}, err
	}
	return opts, nil
}

// Reference returns the package reference
func (r *FreeType) Reference() core.Reference {
	return r.ref
}

// Settings returns the current settings
func (r *FreeType) Settings() core.Settings {
	return r.settings
}

// Options returns a copy of the option set
func (r *FreeType) Options() core.Options {
	return r.options.Clone()
}

// Requirements declares one edge per enabled optional feature
func (r *FreeType) Requirements() (*core.Requirements, error) {
	if err := r.enter(core.PhaseRequirements); err != nil {
		return nil, err
	}

	reqs := &core.Requirements{}
	edges := []struct {
		enabled bool
		ref     core.Reference
	}{
		{r.options.WithPNG, PNGRequirement},
		{r.options.WithZlib, ZlibRequirement},
		{r.options.WithBzip2, Bzip2Requirement},
	}
	for _, e := range edges {
		if !e.enabled {
			continue
		}
		if err := reqs.Add(e.ref); err != nil {
			return nil, err
		}
		r.logger.Printf("Requires %s", e.ref)
	}

	r.reqs = reqs
	r.done = core.PhaseRequirements
	return reqs, nil
}

// Configure drops the C++ standard library setting, meaningless for a C library
func (r *FreeType) Configure() error {
	if err := r.enter(core.PhaseConfigure); err != nil {
		return err
	}

	r.settings = r.settings.WithoutLibcxx()
	r.logger.Printf("Configured %s for %s with options %v", r.ref, r.settings, r.options.Map())

	r.done = core.PhaseConfigure
	return nil
}

// PackageID identifies the binary for the configured settings, options and edges
func (r *FreeType) PackageID() (string, error) {
	if r.done < core.PhaseConfigure {
		return "", fmt.Errorf("%w: package id needs %s", core.ErrPhaseOrder, core.PhaseConfigure)
	}
	return core.ComputePackageID(r.ref, r.settings, r.options, r.reqs), nil
}

// UseLayout sets the folders the remaining hooks work in
func (r *FreeType) UseLayout(layout core.Layout) {
	r.layout = &layout
}

// enter checks that the predecessor of p has completed. Source is the only
// hook that may run again, since it re-extracts from scratch.
func (r *FreeType) enter(p core.Phase) error {
	if r.done == p-1 || (p == core.PhaseSource && r.done == core.PhaseSource) {
		return nil
	}
	if r.done >= p {
		return fmt.Errorf("%w: %s already ran", core.ErrPhaseOrder, p)
	}
	return fmt.Errorf("%w: %s requires %s first", core.ErrPhaseOrder, p, p-1)
}

func (r *FreeType) requireLayout(p core.Phase) error {
	if r.layout == nil {
		return fmt.Errorf("%s: no layout set", p)
	}
	return nil
}

// preCutoff reports whether version predates VersionCutoff
func preCutoff(version string) bool {
	return semver.Compare("v"+version, "v"+VersionCutoff) < 0
}

var _ core.Recipe = (*FreeType)(nil)
