// ftrecipe.go
package ftrecipe

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/arc-language/ftrecipe/pkg/archive"
	"github.com/arc-language/ftrecipe/pkg/buildsys"
	"github.com/arc-language/ftrecipe/pkg/core"
	"github.com/arc-language/ftrecipe/pkg/index"
	"github.com/arc-language/ftrecipe/pkg/recipe"
	"github.com/arc-language/ftrecipe/pkg/registry"
	"github.com/arc-language/ftrecipe/pkg/source"
)

// Re-export core types for convenience
type (
	Config       = core.Config
	Settings     = core.Settings
	Options      = core.Options
	Reference    = core.Reference
	Phase        = core.Phase
	CppInfo      = core.CppInfo
	Layout       = core.Layout
	Dependencies = core.Dependencies
	Recipe       = core.Recipe
	// RegistryEntry is the metadata for a dependency from the deps/ registry
	RegistryEntry = registry.Entry
)

// Re-export lifecycle phases
const (
	PhaseRequirements = core.PhaseRequirements
	PhaseConfigure    = core.PhaseConfigure
	PhaseSource       = core.PhaseSource
	PhaseBuild        = core.PhaseBuild
	PhasePackage      = core.PhasePackage
	PhasePackageInfo  = core.PhasePackageInfo
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return core.DefaultConfig()
}

// variableSource is implemented by recipes that can report their build variables
type variableSource interface {
	BuildVariables(deps core.Dependencies) (map[string]string, error)
}

// Result describes one lifecycle run
type Result struct {
	BuildID      string
	Reference    Reference
	PackageID    string
	Layout       Layout
	Requirements []Reference
	Dependencies Dependencies
	Variables    map[string]string // Build variables, once configure ran
	Info         *CppInfo          // Set when package_info ran
	Completed    Phase             // Last phase that finished
	ArchivePath  string            // Set by Export
	Digest       string            // NAR SHA-256 of the package folder, set by Export
}

// Manager drives recipes through their lifecycle
type Manager struct {
	config   *Config
	registry *registry.Registry
	fetcher  *source.Fetcher
	runner   buildsys.Runner
	logger   *log.Logger
}

// NewManager creates a manager for the given configuration
func NewManager(config *Config) (*Manager, error) {
	if config == nil {
		config = core.DefaultConfig()
	}

	if config.CachePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			config.CachePath = filepath.Join(os.TempDir(), "ftrecipe")
		} else {
			config.CachePath = filepath.Join(home, ".cache", "ftrecipe")
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := config.NewLogger()
	client := source.NewClientWithTimeout(config.Timeout.Duration())

	return &Manager{
		config:   config,
		registry: registry.New(config.CachePath),
		fetcher:  source.NewFetcher(client, config.CachePath, logger),
		logger:   logger,
	}, nil
}

// WithRunner replaces the command runner used by recipes created afterwards
func (m *Manager) WithRunner(runner buildsys.Runner) *Manager {
	m.runner = runner
	return m
}

// NewRecipe creates the FreeType recipe for version with the manager's
// mirror, checksums, build system and logger
func (m *Manager) NewRecipe(version string, settings Settings, options map[string]string) (*recipe.FreeType, error) {
	if version == "" {
		version = recipe.DefaultVersion
	}

	return recipe.New(recipe.Config{
		Version:     version,
		Settings:    settings,
		Options:     options,
		SourceURL:   m.config.SourceURL,
		SHA256:      m.config.Checksums[version],
		BuildSystem: m.config.BuildSystem,
		Generator:   m.config.Generator,
		Jobs:        m.config.Jobs,
		Fetcher:     m.fetcher,
		Runner:      m.runner,
		Logger:      m.logger,
	})
}

// Create runs the lifecycle of r in order, stopping after through.
// Requirements are resolved through the registry before configure, and
// the layout is derived from the package id once configure has run.
func (m *Manager) Create(ctx context.Context, r Recipe, through Phase) (*Result, error) {
	if through == core.PhaseNone {
		through = core.PhasePackageInfo
	}
	if through > core.PhasePackageInfo {
		return nil, fmt.Errorf("invalid phase %d", through)
	}

	ref := r.Reference()
	res := &Result{
		BuildID:   uuid.NewString(),
		Reference: ref,
	}
	m.logger.Printf("Build %s: %s through %s", res.BuildID, ref, through)

	steps := []struct {
		phase Phase
		run   func() error
	}{
		{core.PhaseRequirements, func() error {
			reqs, err := r.Requirements()
			if err != nil {
				return err
			}
			res.Requirements = reqs.List()

			deps, err := m.registry.ResolveAll(reqs)
			if err != nil {
				return err
			}
			res.Dependencies = deps
			return nil
		}},
		{core.PhaseConfigure, func() error {
			if err := r.Configure(); err != nil {
				return err
			}

			id, err := r.PackageID()
			if err != nil {
				return err
			}
			res.PackageID = id
			res.Layout = core.NewLayout(m.config.CachePath, ref, id)
			r.UseLayout(res.Layout)

			if vs, ok := r.(variableSource); ok {
				vars, err := vs.BuildVariables(res.Dependencies)
				if err != nil {
					return err
				}
				res.Variables = vars
			}
			return nil
		}},
		{core.PhaseSource, func() error {
			return r.Source(ctx)
		}},
		{core.PhaseBuild, func() error {
			return r.Build(ctx, res.Dependencies)
		}},
		{core.PhasePackage, func() error {
			return r.Package(ctx, res.Dependencies)
		}},
		{core.PhasePackageInfo, func() error {
			info, err := r.PackageInfo()
			if err != nil {
				return err
			}
			res.Info = info
			return nil
		}},
	}

	for _, step := range steps {
		if step.phase > through {
			break
		}
		if err := ctx.Err(); err != nil {
			return res, &Error{Op: step.phase.String(), Package: ref.String(), Err: err}
		}

		m.logger.Printf("Build %s: %s", res.BuildID, step.phase)
		if err := step.run(); err != nil {
			return res, &Error{Op: step.phase.String(), Package: ref.String(), Err: err}
		}
		res.Completed = step.phase
	}

	m.logger.Printf("Build %s: completed %s", res.BuildID, res.Completed)
	return res, nil
}

// Export writes the package folder of a packaged result to
// dir/<package id>.tar.zst and records the folder's NAR digest
func (m *Manager) Export(res *Result, dir string) error {
	if res.Completed < core.PhasePackage {
		return &Error{Op: "export", Package: res.Reference.String(),
			Err: fmt.Errorf("%w: export needs %s", core.ErrPhaseOrder, core.PhasePackage)}
	}

	path := filepath.Join(dir, res.PackageID+"."+string(archive.FormatZstd))
	if err := archive.Export(res.Layout.PackageDir, path); err != nil {
		return &Error{Op: "export", Package: res.Reference.String(), Err: err}
	}

	digest, err := archive.Digest(res.Layout.PackageDir)
	if err != nil {
		return &Error{Op: "export", Package: res.Reference.String(), Err: err}
	}

	res.ArchivePath = path
	res.Digest = digest
	m.logger.Printf("Exported %s (%s)", path, digest)
	return nil
}

// Sync updates the cached dependency registry from the configured repository
func (m *Manager) Sync(ctx context.Context, progress io.Writer) error {
	return index.Sync(ctx, m.config.CachePath, index.Options{
		URL:      m.config.RegistryURL,
		Branch:   m.config.RegistryBranch,
		Progress: progress,
		Logger:   m.logger,
	})
}

// GetRegistryEntry retrieves the registry entry for a dependency
func (m *Manager) GetRegistryEntry(name string) (*RegistryEntry, error) {
	return m.registry.Load(name)
}

// Config returns the manager configuration
func (m *Manager) Config() *Config {
	return m.config
}
