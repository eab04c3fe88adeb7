// pkg/core/reference.go
package core

import (
	"fmt"
	"sort"
	"strings"
)

// Reference identifies a package as name/version@user/channel
type Reference struct {
	Name    string `yaml:"name" toml:"name"`
	Version string `yaml:"version" toml:"version"`
	User    string `yaml:"user,omitempty" toml:"user"`
	Channel string `yaml:"channel,omitempty" toml:"channel"`
}

// ParseReference parses "name/version" or "name/version@user/channel"
func ParseReference(s string) (Reference, error) {
	var ref Reference

	nameVersion, userChannel, hasUser := strings.Cut(s, "@")
	name, version, ok := strings.Cut(nameVersion, "/")
	if !ok || name == "" || version == "" {
		return ref, fmt.Errorf("invalid reference %q: expected name/version[@user/channel]", s)
	}
	ref.Name = name
	ref.Version = version

	if hasUser {
		user, channel, ok := strings.Cut(userChannel, "/")
		if !ok || user == "" || channel == "" {
			return ref, fmt.Errorf("invalid reference %q: expected @user/channel", s)
		}
		ref.User = user
		ref.Channel = channel
	}

	return ref, nil
}

// String returns the canonical form of the reference
func (r Reference) String() string {
	if r.User == "" && r.Channel == "" {
		return r.Name + "/" + r.Version
	}
	return fmt.Sprintf("%s/%s@%s/%s", r.Name, r.Version, r.User, r.Channel)
}

// Requirements is an ordered set of dependency edges, at most one per name
type Requirements struct {
	refs []Reference
}

// Add records an edge. Adding the same edge twice is a no-op; a different
// edge for an already required name fails with ErrDuplicateRequirement.
func (r *Requirements) Add(ref Reference) error {
	for _, existing := range r.refs {
		if existing.Name != ref.Name {
			continue
		}
		if existing == ref {
			return nil
		}
		return fmt.Errorf("%w: %s conflicts with %s", ErrDuplicateRequirement, ref, existing)
	}
	r.refs = append(r.refs, ref)
	return nil
}

// Get returns the edge for a package name
func (r *Requirements) Get(name string) (Reference, bool) {
	for _, ref := range r.refs {
		if ref.Name == name {
			return ref, true
		}
	}
	return Reference{}, false
}

// Has reports whether a package name is required
func (r *Requirements) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns the edges in insertion order
func (r *Requirements) List() []Reference {
	return append([]Reference(nil), r.refs...)
}

// Len returns the number of edges
func (r *Requirements) Len() int {
	return len(r.refs)
}

// Canonical returns the sorted edge list used for package ids
func (r *Requirements) Canonical() string {
	lines := make([]string, 0, len(r.refs))
	for _, ref := range r.refs {
		lines = append(lines, ref.String())
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
