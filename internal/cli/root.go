// internal/cli/root.go
package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arc-language/ftrecipe"
	"github.com/arc-language/ftrecipe/pkg/core"
	"github.com/arc-language/ftrecipe/pkg/platform"
)

var (
	cfgFile     string
	profileFile string
	cachePath   string
	debug       bool
	config      *core.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ftrecipe",
	Short: "FreeType package builder",
	Long: `ftrecipe - FreeType package builder

Fetches, patches, builds and packages the FreeType library with CMake or
autotools, declaring libpng, zlib and bzip2 as dependencies.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/ftrecipe/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&profileFile, "profile", "", "profile with settings and options overrides")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "cache directory for downloads, builds and packages")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add commands
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(varsCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	var err error
	config, err = core.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		config = core.DefaultConfig()
	}

	// Override config with flags
	if cachePath != "" {
		config.CachePath = cachePath
	}
	if debug {
		config.Debug = true
	}
}

func newManager() (*ftrecipe.Manager, error) {
	return ftrecipe.NewManager(config)
}

// recipeInputs are the settings and option overrides shared by the build commands
type recipeInputs struct {
	version  string
	settings []string // name=value
	options  []string // name=value
}

func (in *recipeInputs) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.version, "version", "", "FreeType version to build (default "+defaultVersion()+")")
	cmd.Flags().StringArrayVarP(&in.settings, "setting", "s", nil, "setting override, e.g. -s build_type=Debug")
	cmd.Flags().StringArrayVarP(&in.options, "option", "o", nil, "option override, e.g. -o shared=True")
}

// resolve detects the host settings, then applies the profile and the flags
func (in *recipeInputs) resolve() (core.Settings, map[string]string, error) {
	settings, err := platform.Detect()
	if err != nil {
		return settings, nil, fmt.Errorf("detecting platform: %w", err)
	}

	options := map[string]string{}
	if profileFile != "" {
		profile, err := core.LoadProfile(profileFile)
		if err != nil {
			return settings, nil, err
		}
		if err := profile.ApplySettings(&settings); err != nil {
			return settings, nil, err
		}
		for k, v := range profile.Options {
			options[k] = v
		}
	}

	for _, kv := range in.settings {
		name, value, err := splitAssignment(kv)
		if err != nil {
			return settings, nil, err
		}
		if err := settings.Set(name, value); err != nil {
			return settings, nil, err
		}
	}
	for _, kv := range in.options {
		name, value, err := splitAssignment(kv)
		if err != nil {
			return settings, nil, err
		}
		options[name] = value
	}

	return settings, options, nil
}

func splitAssignment(kv string) (string, string, error) {
	name, value, ok := strings.Cut(kv, "=")
	if !ok || name == "" {
		return "", "", fmt.Errorf("expected name=value, got %q", kv)
	}
	return name, value, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
