package driven

import "context"

// CommandRunner executes an external command and returns its output.
// It exists so extractors and OCR backends that shell out (tesseract,
// plugin executables) can be stubbed in tests.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}
