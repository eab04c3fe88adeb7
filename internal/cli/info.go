// internal/cli/info.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [dependency]",
	Short: "Show the registry entry of a dependency",
	Long:  `Display the registry metadata (version, libraries, prefix) used to resolve a dependency edge.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	entry, err := m.GetRegistryEntry(args[0])
	if err != nil {
		return err
	}

	// Display info
	fmt.Printf("Package: %s\n", entry.Name)
	fmt.Printf("Version: %s\n", entry.Version)
	if entry.User != "" || entry.Channel != "" {
		fmt.Printf("Channel: %s/%s\n", entry.User, entry.Channel)
	}
	fmt.Printf("Libs:    %v\n", entry.Libs)
	if entry.Prefix != "" {
		fmt.Printf("Prefix:  %s\n", entry.Prefix)
	}

	return nil
}
