package extractors

import (
	"bytes"
	"context"
	"image"
	_ "image/gif" // decoders for DecodeConfig
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/mimetype"
)

// Image records image dimensions and format. It produces no text by
// itself; the OCR stage of the pipeline recognises text in images.
type Image struct {
	builtin
}

var _ driven.DocumentExtractor = (*Image)(nil)

// NewImage creates the image extractor.
func NewImage() *Image { return &Image{} }

func (i *Image) Name() string { return "builtin-image" }

func (i *Image) SupportedMIMETypes() []string {
	return []string{mimetype.PNG, mimetype.JPEG, mimetype.TIFF, mimetype.WebP, mimetype.BMP, mimetype.GIF}
}

func (i *Image) Extract(_ context.Context, data []byte, mimeType string, _ *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	result := &domain.ExtractionResult{
		MIMEType: mimeType,
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// Dimensions are best-effort, OCR may still manage.
		result.SetMetadata("image_decode_error", err.Error())
		return result, nil
	}

	result.SetMetadata("width", cfg.Width)
	result.SetMetadata("height", cfg.Height)
	result.SetMetadata("format", format)
	return result, nil
}
