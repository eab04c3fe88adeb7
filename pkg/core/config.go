// pkg/core/config.go
package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Build system variants
const (
	BuildSystemCMake     = "cmake"
	BuildSystemAutotools = "autotools"
)

// DefaultSourceURL is where FreeType release tarballs are published
const DefaultSourceURL = "https://download.savannah.gnu.org/releases"

// DefaultRegistryURL hosts the deps/ registry of dependency metadata
const DefaultRegistryURL = "https://github.com/arc-language/upkg"

// Config holds ftrecipe configuration
type Config struct {
	CachePath      string            `yaml:"cache_path"`
	Debug          bool              `yaml:"debug"`
	BuildSystem    string            `yaml:"build_system"`
	Generator      string            `yaml:"generator"`
	Jobs           int               `yaml:"jobs"`
	SourceURL      string            `yaml:"source_url"`
	Timeout        Duration          `yaml:"timeout"`
	RegistryURL    string            `yaml:"registry_url"`
	RegistryBranch string            `yaml:"registry_branch"`
	Checksums      map[string]string `yaml:"checksums"` // version -> sha256 of the source archive

	// Logger for custom logging, never read from file
	Logger *log.Logger `yaml:"-"`
}

// Duration is a time.Duration written as "2m0s" in YAML
type Duration time.Duration

// Duration returns the value as a time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Profile is a reusable set of setting and option overrides
type Profile struct {
	Settings map[string]string `yaml:"settings"`
	Options  map[string]string `yaml:"options"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		CachePath:      getDefaultCachePath(),
		Debug:          false,
		BuildSystem:    BuildSystemCMake,
		Jobs:           runtime.NumCPU(),
		SourceURL:      DefaultSourceURL,
		Timeout:        Duration(2 * time.Minute),
		RegistryURL:    DefaultRegistryURL,
		RegistryBranch: "main",
		Checksums:      make(map[string]string),
	}
}

// LoadConfig loads configuration from file. Values missing from the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = filepath.Join(home, ".config", "ftrecipe", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, ".config", "ftrecipe", "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate rejects values the builder cannot act on
func (c *Config) Validate() error {
	switch c.BuildSystem {
	case BuildSystemCMake, BuildSystemAutotools:
	default:
		return fmt.Errorf("config: unknown build_system %q", c.BuildSystem)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("config: jobs must not be negative")
	}
	return nil
}

// NewLogger returns the configured logger, a debug logger on stdout, or a
// logger that discards everything
func (c *Config) NewLogger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if c.Debug {
		return log.New(os.Stdout, "[ftrecipe] ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

// LoadProfile reads a profile file
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}

	return &p, nil
}

// ApplySettings applies the profile's setting overrides
func (p *Profile) ApplySettings(s *Settings) error {
	for _, name := range sortedKeys(p.Settings) {
		if err := s.Set(name, p.Settings[name]); err != nil {
			return fmt.Errorf("profile: %w", err)
		}
	}
	return nil
}

func getDefaultCachePath() string {
	if path := os.Getenv("FTRECIPE_CACHE_PATH"); path != "" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "ftrecipe")
	}

	return filepath.Join(home, ".cache", "ftrecipe")
}
