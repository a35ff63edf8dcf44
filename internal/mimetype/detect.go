// Package mimetype resolves content types for files and raw bytes.
//
// Detection prefers content sniffing (magic bytes, with a peek inside
// zip containers to tell office formats apart) and falls back to the
// file extension. File lookups can be cached per path.
package mimetype

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driving"
)

// sniffLen is how many leading bytes detection looks at.
const sniffLen = 8192

// Well-known MIME types used across the engine.
const (
	PDF       = "application/pdf"
	DOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	XLSX      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	PPTX      = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	HTML      = "text/html"
	Markdown  = "text/markdown"
	PlainText = "text/plain"
	CSV       = "text/csv"
	JSON      = "application/json"
	YAML      = "application/yaml"
	Zip       = "application/zip"
	PNG       = "image/png"
	JPEG      = "image/jpeg"
	TIFF      = "image/tiff"
	WebP      = "image/webp"
	BMP       = "image/bmp"
	GIF       = "image/gif"
)

// byExtension maps lower-case file extensions to MIME types.
var byExtension = map[string]string{
	".pdf":  PDF,
	".docx": DOCX,
	".xlsx": XLSX,
	".pptx": PPTX,
	".html": HTML,
	".htm":  HTML,
	".md":   Markdown,
	".txt":  PlainText,
	".text": PlainText,
	".csv":  CSV,
	".json": JSON,
	".yaml": YAML,
	".yml":  YAML,
	".zip":  Zip,
	".png":  PNG,
	".jpg":  JPEG,
	".jpeg": JPEG,
	".tif":  TIFF,
	".tiff": TIFF,
	".webp": WebP,
	".bmp":  BMP,
	".gif":  GIF,
}

// Detector implements driving.MIMEDetector with a per-path cache.
type Detector struct {
	mu    sync.RWMutex
	cache map[string]string
}

var _ driving.MIMEDetector = (*Detector)(nil)

// NewDetector creates a detector with an empty cache.
func NewDetector() *Detector {
	return &Detector{cache: make(map[string]string)}
}

// DetectFile resolves the MIME type of the file at path. With useCache
// a previous answer for the same path is reused and new answers are
// remembered.
func (d *Detector) DetectFile(path string, useCache bool) (string, error) {
	if useCache {
		d.mu.RLock()
		cached, ok := d.cache[path]
		d.mu.RUnlock()
		if ok {
			return cached, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	head = head[:n]

	mime := sniff(head)
	if mime == Zip {
		if refined := refineZip(path); refined != "" {
			mime = refined
		}
	}
	if mime == "" || isGenericText(mime) {
		if byExt, ok := byExtension[strings.ToLower(filepath.Ext(path))]; ok {
			mime = byExt
		}
	}
	if mime == "" {
		mime = "application/octet-stream"
	}

	if useCache {
		d.mu.Lock()
		d.cache[path] = mime
		d.mu.Unlock()
	}
	return mime, nil
}

// DetectBytes resolves the MIME type of raw content. Zip containers are
// refined into office formats when the archive structure gives them away.
func (d *Detector) DetectBytes(data []byte) string {
	mime := sniff(data)
	if mime == Zip {
		if refined := refineZipBytes(data); refined != "" {
			mime = refined
		}
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	return mime
}

// ExtensionsFor returns the known extensions for a MIME type, dotted
// like mime.ExtensionsByType, in stable order.
func (d *Detector) ExtensionsFor(mimeType string) []string {
	var exts []string
	for ext, mime := range byExtension {
		if mime == mimeType {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// ClearCache drops all remembered path answers.
func (d *Detector) ClearCache() {
	d.mu.Lock()
	d.cache = make(map[string]string)
	d.mu.Unlock()
}

// sniff identifies content by magic bytes, with net/http sniffing as
// the generic fallback.
func sniff(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return PDF
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return Zip
	case bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}):
		return PNG
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return JPEG
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return TIFF
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return GIF
	case bytes.HasPrefix(data, []byte("BM")):
		return BMP
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return WebP
	}

	detected := http.DetectContentType(data)
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = detected[:i]
	}
	if detected == "application/octet-stream" {
		return ""
	}
	return detected
}

// refineZip distinguishes office formats from plain zip archives by the
// entries the archive carries.
func refineZip(path string) string {
	r, err := zip.OpenReader(path)
	if err != nil {
		return ""
	}
	defer r.Close()
	return classifyZipEntries(r.File)
}

func refineZipBytes(data []byte) string {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	return classifyZipEntries(r.File)
}

func classifyZipEntries(files []*zip.File) string {
	for _, f := range files {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX
		case strings.HasPrefix(f.Name, "ppt/"):
			return PPTX
		}
	}
	return ""
}

// isGenericText reports whether a sniffed type is too vague to beat an
// extension hint. Markdown and CSV both sniff as plain text.
func isGenericText(mime string) bool {
	return mime == PlainText || mime == "text/plain; charset=utf-8"
}

// Normalize canonicalises a caller-supplied MIME hint: lower-case, no
// parameters. An empty hint stays empty.
func Normalize(hint string) string {
	hint = strings.TrimSpace(strings.ToLower(hint))
	if i := strings.Index(hint, ";"); i >= 0 {
		hint = strings.TrimSpace(hint[:i])
	}
	return hint
}

// Validate reports whether the hint looks like a MIME type at all.
func Validate(hint string) error {
	if hint == "" {
		return nil
	}
	if !strings.Contains(hint, "/") {
		return fmt.Errorf("malformed mime type %q: %w", hint, domain.ErrInvalidInput)
	}
	return nil
}
