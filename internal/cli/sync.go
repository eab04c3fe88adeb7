// internal/cli/sync.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Update the dependency registry",
	Long:  `Clone the registry repository configured as registry_url and replace the cached deps/ folder.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := newManager()
		if err != nil {
			return err
		}

		var progress io.Writer
		if config.Debug {
			progress = os.Stdout
		}
		if err := m.Sync(ctx, progress); err != nil {
			return fmt.Errorf("syncing registry: %w", err)
		}

		fmt.Printf("✓ Registry updated from %s\n", config.RegistryURL)
		return nil
	},
}
