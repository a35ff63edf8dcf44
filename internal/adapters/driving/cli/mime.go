package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect [path]",
	Short: "Detect the MIME type of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	if mimeDetector == nil {
		return errors.New("mime detector not configured")
	}

	mime, err := mimeDetector.DetectFile(args[0], true)
	if err != nil {
		return err
	}

	cmd.Println(mime)
	if exts := mimeDetector.ExtensionsFor(mime); len(exts) > 0 {
		cmd.Printf("extensions: %s\n", strings.Join(exts, ", "))
	}
	return nil
}
