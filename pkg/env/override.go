// pkg/env/override.go
package env

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Override sets every variable in vars and returns a function restoring
// the previous state: variables that were set get their old value back,
// variables that were unset are unset again. Callers defer the restore
// so it also runs when the step fails.
func Override(vars map[string]string) (func(), error) {
	type saved struct {
		value string
		set   bool
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	previous := make(map[string]saved, len(keys))
	restore := func() {
		for key, old := range previous {
			if old.set {
				os.Setenv(key, old.value)
			} else {
				os.Unsetenv(key)
			}
		}
	}

	for _, key := range keys {
		value, set := os.LookupEnv(key)
		previous[key] = saved{value: value, set: set}

		if err := os.Setenv(key, vars[key]); err != nil {
			restore()
			return func() {}, fmt.Errorf("setting %s: %w", key, err)
		}
	}

	return restore, nil
}

// SearchPath returns dirs prepended to the current value of key, joined with
// the platform list separator. Empty entries are dropped.
func SearchPath(key string, dirs ...string) string {
	parts := make([]string, 0, len(dirs)+1)
	for _, d := range dirs {
		if d != "" {
			parts = append(parts, d)
		}
	}
	if current := os.Getenv(key); current != "" {
		parts = append(parts, current)
	}
	return strings.Join(parts, string(os.PathListSeparator))
}
