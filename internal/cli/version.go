// internal/cli/version.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/ftrecipe/pkg/recipe"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ftrecipe version %s\n", version)
		fmt.Printf("FreeType recipe, default version %s\n", defaultVersion())
		fmt.Println("https://github.com/arc-language/ftrecipe")
	},
}

func defaultVersion() string {
	return recipe.DefaultVersion
}
