// Package bridge adapts foreign extraction logic to the plugin
// capability interfaces. Two carriers exist: funcs, which wrap in-process
// closures, and commands, which drive an external executable over a
// newline-delimited JSON protocol on stdin/stdout.
package bridge

import (
	"fmt"

	"github.com/custodia-labs/extrakt/internal/core/domain"
)

// Wire operation names understood by command plugins.
const (
	opPing         = "ping"
	opProcessImage = "process_image"
	opProcess      = "process"
	opValidate     = "validate"
	opExtract      = "extract"
	opShutdown     = "shutdown"
)

// request is one line sent to a command plugin. Byte payloads travel
// base64-encoded, which encoding/json does for []byte on its own.
type request struct {
	ID       string                   `json:"id"`
	Op       string                   `json:"op"`
	Language string                   `json:"language,omitempty"`
	MIMEType string                   `json:"mime_type,omitempty"`
	Data     []byte                   `json:"data,omitempty"`
	Result   *domain.ExtractionResult `json:"result,omitempty"`
	Config   *domain.ExtractionConfig `json:"config,omitempty"`
}

// response is one line read back from a command plugin.
type response struct {
	ID     string                   `json:"id"`
	Result *domain.ExtractionResult `json:"result,omitempty"`
	Error  *wireError               `json:"error,omitempty"`
}

// wireError carries a plugin-side failure across the pipe. Kind maps onto
// the domain error taxonomy; unknown kinds collapse to a plugin error.
type wireError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *wireError) toDomain(stage, plugin string) error {
	kind := domain.ErrorKind(e.Kind)
	switch kind {
	case domain.KindMissingDependency, domain.KindUnsupportedFormat,
		domain.KindParsing, domain.KindOCR, domain.KindValidation, domain.KindInternal:
	default:
		kind = domain.KindPlugin
	}
	return domain.NewExtractError(kind, stage, plugin, e.Message)
}

func wireErrorFrom(err error) *wireError {
	info := domain.ErrorInfoFrom(err)
	return &wireError{Kind: string(info.Kind), Message: info.Message}
}

func unexpectedResponse(plugin, wantID, gotID string) error {
	return domain.NewExtractError(domain.KindPlugin, "", plugin,
		fmt.Sprintf("response id %q does not match request id %q", gotID, wantID))
}
