// pkg/registry/registry.go
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/arc-language/ftrecipe/pkg/core"
)

// Entry represents a single deps/<name>/index.toml file
type Entry struct {
	Name    string   `toml:"name"`
	Version string   `toml:"version"`
	User    string   `toml:"user"`
	Channel string   `toml:"channel"`
	Libs    []string `toml:"libs"`
	Prefix  string   `toml:"prefix"` // Where the built dependency is installed
}

// builtin covers the dependencies FreeType can require, so a build works
// before the registry has been synced
var builtin = map[string]Entry{
	"libpng": {Name: "libpng", Version: "1.6.34", User: "conanos", Channel: "stable", Libs: []string{"png16"}},
	"zlib":   {Name: "zlib", Version: "1.2.11", User: "conanos", Channel: "stable", Libs: []string{"z"}},
	"bzip2":  {Name: "bzip2", Version: "1.0.6", User: "conanos", Channel: "stable", Libs: []string{"bz2"}},
}

// Registry provides lookup into the cached deps/ folder
type Registry struct {
	depsDir    string
	useBuiltin bool
}

// New creates a Registry pointed at the cached deps directory. Packages
// missing from disk fall back to the builtin entries.
func New(cacheDir string) *Registry {
	return &Registry{
		depsDir:    filepath.Join(cacheDir, "deps"),
		useBuiltin: true,
	}
}

// NewStrict creates a Registry that only reads from disk
func NewStrict(cacheDir string) *Registry {
	return &Registry{depsDir: filepath.Join(cacheDir, "deps")}
}

// Dir returns the deps directory the registry reads
func (r *Registry) Dir() string {
	return r.depsDir
}

// Load reads and parses deps/<name>/index.toml.
// This is the primary method for retrieving package metadata.
func (r *Registry) Load(name string) (*Entry, error) {
	path := filepath.Join(r.depsDir, name, "index.toml")

	data, err := os.ReadFile(path)
	if err != nil {
		// Check if the directory exists, to give a better error message.
		if _, statErr := os.Stat(filepath.Dir(path)); statErr == nil {
			return nil, fmt.Errorf("registry: found package '%s' directory, but missing index.toml", name)
		}
		if entry, ok := builtin[name]; ok && r.useBuiltin {
			return &entry, nil
		}
		return nil, fmt.Errorf("registry: package '%s' not found", name)
	}

	var entry Entry
	if _, err := toml.Decode(string(data), &entry); err != nil {
		return nil, fmt.Errorf("registry: failed to parse '%s': %w", name, err)
	}
	if entry.Name == "" {
		entry.Name = name
	}

	return &entry, nil
}

// Resolve looks up one dependency edge. The entry must match the required
// version and list at least one library.
func (r *Registry) Resolve(ref core.Reference) (core.DependencyInfo, error) {
	entry, err := r.Load(ref.Name)
	if err != nil {
		return core.DependencyInfo{}, fmt.Errorf("%w: %s: %v", core.ErrDependencyNotResolved, ref, err)
	}

	if entry.Version != "" && entry.Version != ref.Version {
		return core.DependencyInfo{}, fmt.Errorf("%w: %s: registry has version %s",
			core.ErrDependencyNotResolved, ref, entry.Version)
	}
	if len(entry.Libs) == 0 {
		return core.DependencyInfo{}, fmt.Errorf("%w: %s: registry entry lists no libraries",
			core.ErrDependencyNotResolved, ref)
	}

	return core.DependencyInfo{
		Reference: ref,
		Libs:      append([]string(nil), entry.Libs...),
		Prefix:    entry.Prefix,
	}, nil
}

// ResolveAll resolves every edge of reqs
func (r *Registry) ResolveAll(reqs *core.Requirements) (core.Dependencies, error) {
	deps := make(core.Dependencies, reqs.Len())
	for _, ref := range reqs.List() {
		info, err := r.Resolve(ref)
		if err != nil {
			return nil, err
		}
		deps[ref.Name] = info
	}
	return deps, nil
}

// List returns the package names available on disk and builtin
func (r *Registry) List() []string {
	seen := map[string]bool{}
	if r.useBuiltin {
		for name := range builtin {
			seen[name] = true
		}
	}

	entries, _ := os.ReadDir(r.depsDir)
	for _, e := range entries {
		if e.IsDir() {
			seen[e.Name()] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
