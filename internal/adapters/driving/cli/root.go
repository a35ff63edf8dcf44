// Package cli implements the extrakt command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driving"
	"github.com/custodia-labs/extrakt/internal/logger"
)

var (
	verboseFlag bool
	configFlag  string
)

// Services bundles everything the commands need to run.
type Services struct {
	// Extraction runs single and batch extractions.
	Extraction driving.ExtractionService

	// Detector resolves MIME types.
	Detector driving.MIMEDetector

	// Plugins exposes the plugin registry.
	Plugins driving.PluginManager

	// Config is the extraction configuration loaded at startup. Commands
	// clone it before applying per-invocation flags.
	Config *domain.ExtractionConfig
}

// Initializer builds the services from the resolved config path.
// An empty path means "discover the config in the usual places".
type Initializer func(configPath string) (*Services, error)

var (
	initialize Initializer

	extractionService driving.ExtractionService
	mimeDetector      driving.MIMEDetector
	pluginManager     driving.PluginManager
	defaultConfig     *domain.ExtractionConfig
)

// SetInitializer installs the function that wires the services before a
// command runs. Must be called before Execute.
func SetInitializer(fn Initializer) {
	initialize = fn
}

func setServices(svcs *Services) {
	if svcs == nil {
		return
	}
	extractionService = svcs.Extraction
	mimeDetector = svcs.Detector
	pluginManager = svcs.Plugins
	defaultConfig = svcs.Config
}

var rootCmd = &cobra.Command{
	Use:   "extrakt",
	Short: "Extract text, metadata and structure from documents",
	Long: `extrakt pulls text, tables and metadata out of documents
(PDF, DOCX, XLSX, HTML, Markdown, images and plain text), with optional
OCR, chunking, language detection and a plugin system for custom
extractors, post-processors and validators.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		if initialize == nil {
			return nil
		}
		svcs, err := initialize(configFlag)
		if err != nil {
			return err
		}
		setServices(svcs)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to the config file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// baseConfig returns the configuration commands start from.
func baseConfig() *domain.ExtractionConfig {
	if defaultConfig != nil {
		clone := *defaultConfig
		return &clone
	}
	return domain.DefaultConfig()
}
