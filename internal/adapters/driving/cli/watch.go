package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/extrakt/internal/config"
	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/watch"
)

var watchConfigJSON string

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-extract documents when they change on disk",
	Long: `Watches the given files and directories and re-runs extraction
whenever a watched document changes. Directory paths pick up new files as
they appear. Runs until interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchConfigJSON, "config-json", "", "extraction configuration as a JSON object")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if extractionService == nil {
		return errors.New("extraction service not configured")
	}

	cfg := baseConfig()
	if watchConfigJSON != "" {
		parsed, err := config.ParseJSON([]byte(watchConfigJSON))
		if err != nil {
			return fmt.Errorf("parsing --config-json: %w", err)
		}
		cfg = parsed
	}

	handler := func(path string, result *domain.ExtractionResult, err error) {
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			return
		}
		cmd.Printf("%s: extracted %d characters\n", path, len(result.Content))
	}

	w := watch.New(extractionService, cfg, handler)
	cmd.Printf("watching %d path(s)\n", len(args))
	return w.Watch(cmd.Context(), args)
}
