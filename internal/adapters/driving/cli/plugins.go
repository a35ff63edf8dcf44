package cli

import (
	"errors"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	pluginHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7C3AED"))

	pluginEmptyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6C7086"))
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Plugin registry commands",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered plugins by category",
	RunE:  runPluginsList,
}

func init() {
	pluginsCmd.AddCommand(pluginsListCmd)
	rootCmd.AddCommand(pluginsCmd)
}

func runPluginsList(cmd *cobra.Command, _ []string) error {
	if pluginManager == nil {
		return errors.New("plugin registry not configured")
	}

	printCategory(cmd, "OCR backends", pluginManager.ListOCRBackends())
	printCategory(cmd, "Post-processors", pluginManager.ListPostProcessors())
	printCategory(cmd, "Validators", pluginManager.ListValidators())
	printCategory(cmd, "Document extractors", pluginManager.ListDocumentExtractors())
	return nil
}

func printCategory(cmd *cobra.Command, title string, names []string) {
	cmd.Println(pluginHeaderStyle.Render(title))
	if len(names) == 0 {
		cmd.Println(pluginEmptyStyle.Render("  (none)"))
	}
	for _, name := range names {
		cmd.Printf("  %s\n", name)
	}
	cmd.Println()
}
