package plugins

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
)

type fakePlugin struct {
	name    string
	initErr error
	closed  int
	mu      sync.Mutex
}

func (f *fakePlugin) Name() string    { return f.name }
func (f *fakePlugin) Version() string { return "1.0.0" }
func (f *fakePlugin) Init() error     { return f.initErr }

func (f *fakePlugin) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakePlugin) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeOCR struct {
	fakePlugin
}

func (f *fakeOCR) ProcessImage(_ context.Context, _ []byte, _ string) (*domain.ExtractionResult, error) {
	return &domain.ExtractionResult{Content: "ocr text"}, nil
}

func (f *fakeOCR) SupportsLanguage(string) bool { return true }

type fakeProcessor struct {
	fakePlugin
	stage driven.ProcessingStage
}

func (f *fakeProcessor) Stage() driven.ProcessingStage { return f.stage }

func (f *fakeProcessor) Process(_ context.Context, _ *domain.ExtractionResult, _ *domain.ExtractionConfig) error {
	return nil
}

type fakeValidator struct {
	fakePlugin
}

func (f *fakeValidator) Validate(_ context.Context, _ *domain.ExtractionResult, _ *domain.ExtractionConfig) error {
	return nil
}

type fakeExtractor struct {
	fakePlugin
	mimes []string
}

func (f *fakeExtractor) SupportedMIMETypes() []string { return f.mimes }

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, _ string, _ *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
	return &domain.ExtractionResult{Content: "extracted"}, nil
}

func TestRegisterOCRBackend(t *testing.T) {
	r := New()

	err := r.RegisterOCRBackend(&fakeOCR{fakePlugin: fakePlugin{name: "tesseract"}}, driven.ConcurrentSafe)
	require.NoError(t, err)

	backend, ok := r.OCRBackend("tesseract")
	require.True(t, ok)
	assert.Equal(t, "tesseract", backend.Name())
}

func TestRegisterOCRBackendDuplicate(t *testing.T) {
	r := New()

	require.NoError(t, r.RegisterOCRBackend(&fakeOCR{fakePlugin: fakePlugin{name: "tesseract"}}, driven.ConcurrentSafe))

	err := r.RegisterOCRBackend(&fakeOCR{fakePlugin: fakePlugin{name: "tesseract"}}, driven.ConcurrentSafe)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRegisterRejectsInvalidNames(t *testing.T) {
	r := New()

	tests := []struct {
		label string
		name  string
	}{
		{"empty", ""},
		{"space", "my backend"},
		{"tab", "my\tbackend"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			err := r.RegisterOCRBackend(&fakeOCR{fakePlugin: fakePlugin{name: tt.name}}, driven.ConcurrentSafe)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestRegisterInitFailureRejects(t *testing.T) {
	r := New()

	boom := errors.New("no binary on PATH")
	err := r.RegisterOCRBackend(&fakeOCR{fakePlugin: fakePlugin{name: "broken", initErr: boom}}, driven.ConcurrentSafe)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	_, ok := r.OCRBackend("broken")
	assert.False(t, ok)
	assert.Empty(t, r.ListOCRBackends())
}

func TestUnregisterClosesPlugin(t *testing.T) {
	r := New()

	backend := &fakeOCR{fakePlugin: fakePlugin{name: "tesseract"}}
	require.NoError(t, r.RegisterOCRBackend(backend, driven.ConcurrentSafe))

	r.UnregisterOCRBackend("tesseract")

	_, ok := r.OCRBackend("tesseract")
	assert.False(t, ok)
	assert.Equal(t, 1, backend.closeCount())

	// Unknown names are a no-op.
	r.UnregisterOCRBackend("tesseract")
	assert.Equal(t, 1, backend.closeCount())
}

func TestClearClosesEveryPlugin(t *testing.T) {
	r := New()

	a := &fakeOCR{fakePlugin: fakePlugin{name: "a"}}
	b := &fakeOCR{fakePlugin: fakePlugin{name: "b"}}
	require.NoError(t, r.RegisterOCRBackend(a, driven.ConcurrentSafe))
	require.NoError(t, r.RegisterOCRBackend(b, driven.ConcurrentSafe))

	r.ClearOCRBackends()

	assert.Empty(t, r.ListOCRBackends())
	assert.Equal(t, 1, a.closeCount())
	assert.Equal(t, 1, b.closeCount())
}

func TestClearLeavesHeldReferencesUsable(t *testing.T) {
	r := New()

	require.NoError(t, r.RegisterOCRBackend(&fakeOCR{fakePlugin: fakePlugin{name: "tesseract"}}, driven.ConcurrentSafe))

	held, ok := r.OCRBackend("tesseract")
	require.True(t, ok)

	r.ClearOCRBackends()

	// The snapshot obtained before the clear still works.
	result, err := held.ProcessImage(context.Background(), []byte{0x89}, "eng")
	require.NoError(t, err)
	assert.Equal(t, "ocr text", result.Content)
}

func TestListOCRBackendsPreservesRegistrationOrder(t *testing.T) {
	r := New()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.RegisterOCRBackend(&fakeOCR{fakePlugin: fakePlugin{name: name}}, driven.ConcurrentSafe))
	}

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, r.ListOCRBackends())
}

func TestProcessorsForStage(t *testing.T) {
	r := New()

	require.NoError(t, r.RegisterPostProcessor(&fakeProcessor{fakePlugin: fakePlugin{name: "late-1"}, stage: driven.StageLate}, driven.ConcurrentSafe))
	require.NoError(t, r.RegisterPostProcessor(&fakeProcessor{fakePlugin: fakePlugin{name: "early-1"}, stage: driven.StageEarly}, driven.ConcurrentSafe))
	require.NoError(t, r.RegisterPostProcessor(&fakeProcessor{fakePlugin: fakePlugin{name: "early-2"}, stage: driven.StageEarly}, driven.ConcurrentSafe))

	early := r.ProcessorsForStage(driven.StageEarly)
	require.Len(t, early, 2)
	assert.Equal(t, "early-1", early[0].Name())
	assert.Equal(t, "early-2", early[1].Name())

	assert.Empty(t, r.ProcessorsForStage(driven.StageMiddle))

	late := r.ProcessorsForStage(driven.StageLate)
	require.Len(t, late, 1)
	assert.Equal(t, "late-1", late[0].Name())
}

func TestValidatorsOrderedByPriorityDescending(t *testing.T) {
	r := New()

	require.NoError(t, r.RegisterValidator(&fakeValidator{fakePlugin: fakePlugin{name: "low"}}, 10, driven.ConcurrentSafe))
	require.NoError(t, r.RegisterValidator(&fakeValidator{fakePlugin: fakePlugin{name: "high"}}, 100, driven.ConcurrentSafe))
	require.NoError(t, r.RegisterValidator(&fakeValidator{fakePlugin: fakePlugin{name: "mid-a"}}, 50, driven.ConcurrentSafe))
	require.NoError(t, r.RegisterValidator(&fakeValidator{fakePlugin: fakePlugin{name: "mid-b"}}, 50, driven.ConcurrentSafe))

	assert.Equal(t, []string{"high", "mid-a", "mid-b", "low"}, r.ListValidators())
}

func TestExtractorForMIME(t *testing.T) {
	r := New()

	require.NoError(t, r.RegisterDocumentExtractor(&fakeExtractor{
		fakePlugin: fakePlugin{name: "pdf"},
		mimes:      []string{"application/pdf"},
	}, driven.ConcurrentSafe))

	ex, ok := r.ExtractorForMIME("application/pdf")
	require.True(t, ok)
	assert.Equal(t, "pdf", ex.Name())

	_, ok = r.ExtractorForMIME("application/zip")
	assert.False(t, ok)
}

func TestExtractorForMIMEFirstRegistrationWins(t *testing.T) {
	r := New()

	require.NoError(t, r.RegisterDocumentExtractor(&fakeExtractor{
		fakePlugin: fakePlugin{name: "first"},
		mimes:      []string{"text/plain"},
	}, driven.ConcurrentSafe))
	require.NoError(t, r.RegisterDocumentExtractor(&fakeExtractor{
		fakePlugin: fakePlugin{name: "second"},
		mimes:      []string{"text/plain", "text/csv"},
	}, driven.ConcurrentSafe))

	ex, ok := r.ExtractorForMIME("text/plain")
	require.True(t, ok)
	assert.Equal(t, "first", ex.Name())

	ex, ok = r.ExtractorForMIME("text/csv")
	require.True(t, ok)
	assert.Equal(t, "second", ex.Name())
}

func TestExclusiveAccessSerialisesCalls(t *testing.T) {
	r := New()

	require.NoError(t, r.RegisterOCRBackend(&fakeOCR{fakePlugin: fakePlugin{name: "fragile"}}, driven.ExclusiveAccess))

	backend, ok := r.OCRBackend("fragile")
	require.True(t, ok)

	// Hammer the wrapped backend; the race detector flags unserialised
	// access if the wrapper is broken.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := backend.ProcessImage(context.Background(), []byte{0x01}, "eng")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestConcurrentRegistration(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			assert.NoError(t, r.RegisterValidator(&fakeValidator{fakePlugin: fakePlugin{name: name}}, 0, driven.ConcurrentSafe))
		}(name)
	}
	wg.Wait()

	assert.Len(t, r.ListValidators(), len(names))
}

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
