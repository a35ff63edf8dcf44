package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/extrakt/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("extrakt version %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
