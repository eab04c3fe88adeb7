// internal/cli/create.go
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/arc-language/ftrecipe"
	"github.com/arc-language/ftrecipe/pkg/core"
)

var (
	createInputs  recipeInputs
	createThrough string
	createExport  string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Run the recipe lifecycle and package FreeType",
	Long: `Run requirements, configure, source, build, package and package_info
in order, optionally stopping after a given phase.

Examples:
  ftrecipe create
  ftrecipe create -s build_type=Debug -o shared=True
  ftrecipe create -o with_png=False --export ./dist
  ftrecipe create --through source`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		through, ok := core.ParsePhase(createThrough)
		if !ok {
			return fmt.Errorf("unknown phase %q", createThrough)
		}
		return runCreate(cmd, &createInputs, through, createExport)
	},
}

var (
	sourceInputs recipeInputs
	buildInputs  recipeInputs
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Fetch and patch the FreeType sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, &sourceInputs, core.PhaseSource, "")
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch, patch and build FreeType without packaging",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, &buildInputs, core.PhaseBuild, "")
	},
}

func init() {
	createInputs.register(createCmd)
	createCmd.Flags().StringVar(&createThrough, "through", core.PhasePackageInfo.String(), "last phase to run")
	createCmd.Flags().StringVar(&createExport, "export", "", "write the package as <package id>.tar.zst into this directory")

	sourceInputs.register(sourceCmd)
	buildInputs.register(buildCmd)
}

func runCreate(cmd *cobra.Command, in *recipeInputs, through core.Phase, exportDir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	settings, options, err := in.resolve()
	if err != nil {
		return err
	}

	m, err := newManager()
	if err != nil {
		return err
	}

	r, err := m.NewRecipe(in.version, settings, options)
	if err != nil {
		return err
	}

	fmt.Printf("Building %s for %s\n", r.Reference(), settings)

	res, err := m.Create(ctx, r, through)
	if err != nil {
		if res != nil && res.Completed != core.PhaseNone {
			fmt.Fprintf(os.Stderr, "✗ Failed after %s\n", res.Completed)
		}
		return err
	}

	fmt.Printf("✓ Completed %s (build %s)\n", res.Completed, res.BuildID)
	fmt.Printf("Package id: %s\n", res.PackageID)
	if res.Completed >= core.PhaseSource {
		fmt.Printf("Sources:    %s\n", res.Layout.SourceDir)
	}
	if res.Completed >= core.PhasePackage {
		fmt.Printf("Package:    %s\n", res.Layout.PackageDir)
	}
	if res.Info != nil {
		printCppInfo(res.Info)
	}

	if exportDir != "" {
		if err := m.Export(res, exportDir); err != nil {
			return err
		}
		fmt.Printf("✓ Exported %s\n", res.ArchivePath)
		fmt.Printf("Digest:     %s\n", res.Digest)
	}

	return nil
}

func printCppInfo(info *ftrecipe.CppInfo) {
	fmt.Printf("Libs:        %v\n", info.Libs)
	if len(info.SystemLibs) > 0 {
		fmt.Printf("System libs: %v\n", info.SystemLibs)
	}
	fmt.Printf("Include:     %v\n", info.IncludeDirs)
}
