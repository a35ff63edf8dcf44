package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/extrakt/internal/config"
	"github.com/custodia-labs/extrakt/internal/core/domain"
)

var (
	extractMIME       string
	extractConfigJSON string
	extractJSON       bool
	extractForceOCR   bool
	extractNoCache    bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Extract content from one or more documents",
	Long: `Extracts text, tables and metadata from the given documents.
With a single path the result is printed directly; with several paths the
files are extracted concurrently and reported in input order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractMIME, "mime", "", "MIME type hint (skip auto-detection)")
	extractCmd.Flags().StringVar(&extractConfigJSON, "config-json", "", "extraction configuration as a JSON object")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "output the full result as JSON")
	extractCmd.Flags().BoolVar(&extractForceOCR, "force-ocr", false, "run OCR even when the document has a text layer")
	extractCmd.Flags().BoolVar(&extractNoCache, "no-cache", false, "bypass the result cache")
	rootCmd.AddCommand(extractCmd)
}

func extractConfig() (*domain.ExtractionConfig, error) {
	cfg := baseConfig()
	if extractConfigJSON != "" {
		parsed, err := config.ParseJSON([]byte(extractConfigJSON))
		if err != nil {
			return nil, err
		}
		cfg = parsed
	}
	if extractForceOCR {
		cfg.ForceOCR = true
	}
	if extractNoCache {
		cfg.UseCache = false
	}
	return cfg, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractionService == nil {
		return errors.New("extraction service not configured")
	}

	cfg, err := extractConfig()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		result, err := extractionService.ExtractFile(cmd.Context(), args[0], extractMIME, cfg)
		if err != nil {
			return fmt.Errorf("extracting %s: %w", args[0], err)
		}
		return outputResult(cmd, result)
	}

	batch, err := extractionService.BatchExtractFiles(cmd.Context(), args, cfg)
	if err != nil {
		return fmt.Errorf("batch extraction failed: %w", err)
	}
	return outputBatch(cmd, args, batch)
}

func outputResult(cmd *cobra.Command, result *domain.ExtractionResult) error {
	if extractJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(result.Content)
	return nil
}

func outputBatch(cmd *cobra.Command, paths []string, batch *domain.BatchResult) error {
	if extractJSON {
		data, err := json.MarshalIndent(batch, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	failures := 0
	for i, result := range batch.Results {
		cmd.Printf("=== %s ===\n", paths[i])
		switch {
		case result == nil:
			failures++
			cmd.Println("error: no result")
		case result.Error != nil:
			failures++
			cmd.Printf("error: %s\n", result.Error.String())
		default:
			cmd.Println(result.Content)
		}
		cmd.Println()
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(batch.Results))
	}
	return nil
}
