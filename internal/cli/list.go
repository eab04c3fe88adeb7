// internal/cli/list.go
package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/arc-language/ftrecipe/pkg/platform"
	"github.com/arc-language/ftrecipe/pkg/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List host settings, build tools and known dependencies",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	settings, err := platform.Detect()
	if err != nil {
		return fmt.Errorf("detecting platform: %w", err)
	}

	fmt.Printf("Host settings: %s\n\n", settings)

	fmt.Printf("Build tools:\n")
	tools := platform.Tools()
	for _, name := range sortedToolNames(tools) {
		marker := " "
		if tools[name] {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, name)
	}
	fmt.Printf("\n* = found on PATH\n")

	reg := registry.New(config.CachePath)
	fmt.Printf("\nDependencies in %s:\n", reg.Dir())
	for _, name := range reg.List() {
		fmt.Printf("  %s\n", name)
	}

	return nil
}

func sortedToolNames(tools map[string]bool) []string {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
