// internal/cli/deps.go
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arc-language/ftrecipe"
	"github.com/arc-language/ftrecipe/pkg/core"
)

var (
	depsInputs recipeInputs
	varsInputs recipeInputs
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Print the dependency edges for the selected options",
	Args:  cobra.NoArgs,
	RunE:  runDeps,
}

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "Print the build variables passed to the build system",
	Args:  cobra.NoArgs,
	RunE:  runVars,
}

func init() {
	depsInputs.register(depsCmd)
	varsInputs.register(varsCmd)
}

type depsOutput struct {
	Reference    string             `yaml:"reference"`
	Requirements []dependencyOutput `yaml:"requires"`
}

type dependencyOutput struct {
	Reference string   `yaml:"ref"`
	Libs      []string `yaml:"libs"`
	Prefix    string   `yaml:"prefix,omitempty"`
}

func runDeps(cmd *cobra.Command, args []string) error {
	res, err := configureOnly(&depsInputs)
	if err != nil {
		return err
	}

	out := depsOutput{Reference: res.Reference.String()}
	for _, ref := range res.Requirements {
		dep := res.Dependencies[ref.Name]
		out.Requirements = append(out.Requirements, dependencyOutput{
			Reference: ref.String(),
			Libs:      dep.Libs,
			Prefix:    dep.Prefix,
		})
	}
	return writeYAML(out)
}

func runVars(cmd *cobra.Command, args []string) error {
	res, err := configureOnly(&varsInputs)
	if err != nil {
		return err
	}

	for _, k := range sortedKeys(res.Variables) {
		fmt.Printf("%s=%s\n", k, res.Variables[k])
	}
	return nil
}

// configureOnly runs requirements and configure, which never touch the network
func configureOnly(in *recipeInputs) (*ftrecipe.Result, error) {
	settings, options, err := in.resolve()
	if err != nil {
		return nil, err
	}

	m, err := newManager()
	if err != nil {
		return nil, err
	}

	r, err := m.NewRecipe(in.version, settings, options)
	if err != nil {
		return nil, err
	}

	return m.Create(context.Background(), r, core.PhaseConfigure)
}

func writeYAML(v interface{}) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return enc.Close()
}
