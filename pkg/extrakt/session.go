package extrakt

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Session is a handle on the shared engine with its own last-error slot.
// Concurrent sessions never see each other's failures. The zero value is
// not usable; call NewSession or use the default session.
type Session struct {
	id  string
	eng *engine
}

var (
	defaultOnce    sync.Once
	defaultSession *Session
)

// NewSession creates an independent session.
func NewSession() *Session {
	return &Session{id: uuid.NewString(), eng: eng()}
}

// DefaultSession returns the session used by the package-level calls.
func DefaultSession() *Session {
	defaultOnce.Do(func() {
		defaultSession = NewSession()
	})
	return defaultSession
}

// Close drops the session's error slot.
func (s *Session) Close() {
	s.eng.slots.Clear(s.id)
}

// LastError returns the session's most recent failure, or nil after a
// successful call.
func (s *Session) LastError() *ErrorInfo {
	return s.eng.slots.Last(s.id)
}

// ClearError drops the session's recorded failure.
func (s *Session) ClearError() {
	s.eng.slots.Clear(s.id)
}

// ExtractFile extracts one document from disk.
func (s *Session) ExtractFile(ctx context.Context, path, mimeHint string, cfg *ExtractionConfig) (*ExtractionResult, error) {
	result, err := s.eng.service.ExtractFile(ctx, path, mimeHint, cfg)
	s.eng.slots.Record(s.id, err)
	return result, err
}

// ExtractBytes extracts one document from memory.
func (s *Session) ExtractBytes(ctx context.Context, data []byte, mimeHint string, cfg *ExtractionConfig) (*ExtractionResult, error) {
	result, err := s.eng.service.ExtractBytes(ctx, data, mimeHint, cfg)
	s.eng.slots.Record(s.id, err)
	return result, err
}

// ExtractFileAsync is the asynchronous form of ExtractFile. The returned
// channel delivers exactly one outcome and is then closed; the outcome is
// byte-identical to what the blocking form returns.
func (s *Session) ExtractFileAsync(ctx context.Context, path, mimeHint string, cfg *ExtractionConfig) <-chan Outcome {
	return s.recordOutcome(s.eng.service.ExtractFileAsync(ctx, path, mimeHint, cfg))
}

// ExtractBytesAsync is the asynchronous form of ExtractBytes.
func (s *Session) ExtractBytesAsync(ctx context.Context, data []byte, mimeHint string, cfg *ExtractionConfig) <-chan Outcome {
	return s.recordOutcome(s.eng.service.ExtractBytesAsync(ctx, data, mimeHint, cfg))
}

// BatchExtractFiles extracts many documents concurrently, results in
// input order.
func (s *Session) BatchExtractFiles(ctx context.Context, paths []string, cfg *ExtractionConfig) (*BatchResult, error) {
	result, err := s.eng.service.BatchExtractFiles(ctx, paths, cfg)
	s.eng.slots.Record(s.id, err)
	return result, err
}

// BatchExtractFilesAsync is the asynchronous form of BatchExtractFiles.
func (s *Session) BatchExtractFilesAsync(ctx context.Context, paths []string, cfg *ExtractionConfig) <-chan BatchOutcome {
	inner := s.eng.service.BatchExtractFilesAsync(ctx, paths, cfg)
	out := make(chan BatchOutcome, 1)
	go func() {
		outcome := <-inner
		s.eng.slots.Record(s.id, outcome.Err)
		out <- outcome
		close(out)
	}()
	return out
}

func (s *Session) recordOutcome(inner <-chan Outcome) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		outcome := <-inner
		s.eng.slots.Record(s.id, outcome.Err)
		out <- outcome
		close(out)
	}()
	return out
}
