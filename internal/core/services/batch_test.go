package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/extrakt/internal/core/domain"
	"github.com/custodia-labs/extrakt/internal/core/ports/driven"
	"github.com/custodia-labs/extrakt/internal/mimetype"
	"github.com/custodia-labs/extrakt/internal/plugins/bridge"
)

func TestBatchPreservesInputOrder(t *testing.T) {
	svc, _ := newTestService(t, nil)

	paths := make([]string, 5)
	for i := range paths {
		paths[i] = writeFile(t, fmt.Sprintf("doc-%d.txt", i), fmt.Sprintf("content %d", i))
	}

	batch, err := svc.BatchExtractFiles(context.Background(), paths, nil)
	require.NoError(t, err)
	require.Len(t, batch.Results, len(paths))

	for i, result := range batch.Results {
		require.NotNil(t, result, "slot %d is empty", i)
		assert.Nil(t, result.Error)
		assert.Equal(t, fmt.Sprintf("content %d", i), result.Content)
	}
}

func TestBatchSlowItemKeepsItsSlot(t *testing.T) {
	svc, registry := newTestService(t, nil)

	// Takes over the text/plain claim and dawdles on one marker payload,
	// so the first input finishes last.
	slow := bridge.NewExtractorFunc("sometimes-slow", []string{mimetype.PlainText},
		func(_ context.Context, data []byte, mimeType string, _ *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
			if string(data) == "tortoise" {
				time.Sleep(60 * time.Millisecond)
			}
			return &domain.ExtractionResult{Content: string(data), MIMEType: mimeType}, nil
		})
	require.NoError(t, registry.RegisterDocumentExtractor(slow, driven.ConcurrentSafe))

	paths := []string{writeFile(t, "first.txt", "tortoise")}
	for i := 0; i < 3; i++ {
		paths = append(paths, writeFile(t, fmt.Sprintf("fast-%d.txt", i), fmt.Sprintf("fast %d", i)))
	}

	batch, err := svc.BatchExtractFiles(context.Background(), paths, nil)
	require.NoError(t, err)
	require.Len(t, batch.Results, 4)

	assert.Equal(t, "tortoise", batch.Results[0].Content)
	for i := 1; i < 4; i++ {
		assert.Equal(t, fmt.Sprintf("fast %d", i-1), batch.Results[i].Content)
	}
}

func TestBatchItemFailureIsIsolated(t *testing.T) {
	svc, _ := newTestService(t, nil)

	good1 := writeFile(t, "one.txt", "first")
	missing := filepath.Join(t.TempDir(), "does-not-exist.txt")
	good2 := writeFile(t, "three.txt", "third")

	batch, err := svc.BatchExtractFiles(context.Background(), []string{good1, missing, good2}, nil)
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)

	assert.Equal(t, "first", batch.Results[0].Content)
	assert.Equal(t, "third", batch.Results[2].Content)

	failed := batch.Results[1]
	require.NotNil(t, failed)
	require.NotNil(t, failed.Error)
	assert.Empty(t, failed.Content)
	assert.NotEmpty(t, failed.Error.Message)
}

func TestBatchEmptyInput(t *testing.T) {
	svc, _ := newTestService(t, nil)

	batch, err := svc.BatchExtractFiles(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, batch.Results)
}

func TestBatchHonoursConcurrencyLimit(t *testing.T) {
	svc, registry := newTestService(t, nil)

	var current, peak atomic.Int32
	gauge := bridge.NewExtractorFunc("gauge", []string{mimetype.PlainText},
		func(_ context.Context, data []byte, mimeType string, _ *domain.ExtractionConfig) (*domain.ExtractionResult, error) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return &domain.ExtractionResult{Content: string(data), MIMEType: mimeType}, nil
		})
	require.NoError(t, registry.RegisterDocumentExtractor(gauge, driven.ConcurrentSafe))

	cfg := domain.DefaultConfig()
	cfg.MaxConcurrentExtractions = 2

	paths := make([]string, 6)
	for i := range paths {
		paths[i] = writeFile(t, fmt.Sprintf("g%d.txt", i), "body")
	}

	batch, err := svc.BatchExtractFiles(context.Background(), paths, cfg)
	require.NoError(t, err)
	assert.Len(t, batch.Results, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestBatchCancelledContext(t *testing.T) {
	svc, _ := newTestService(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths := []string{writeFile(t, "a.txt", "a"), writeFile(t, "b.txt", "b")}
	_, err := svc.BatchExtractFiles(ctx, paths, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAsyncMatchesBlocking(t *testing.T) {
	svc, _ := newTestService(t, nil)
	path := writeFile(t, "same.txt", "identical either way")

	blocking, blockErr := svc.ExtractFile(context.Background(), path, "", nil)

	outcome, ok := <-svc.ExtractFileAsync(context.Background(), path, "", nil)
	require.True(t, ok)

	require.Equal(t, blockErr, outcome.Err)
	require.NotNil(t, outcome.Result)
	assert.Equal(t, blocking.Content, outcome.Result.Content)
	assert.Equal(t, blocking.MIMEType, outcome.Result.MIMEType)
}

func TestAsyncDeliversExactlyOneOutcome(t *testing.T) {
	svc, _ := newTestService(t, nil)

	ch := svc.ExtractBytesAsync(context.Background(), []byte("body"), mimetype.PlainText, nil)

	first, ok := <-ch
	require.True(t, ok)
	assert.NoError(t, first.Err)

	_, ok = <-ch
	assert.False(t, ok, "channel must be closed after one outcome")
}

func TestBatchAsync(t *testing.T) {
	svc, _ := newTestService(t, nil)

	paths := []string{writeFile(t, "x.txt", "x"), writeFile(t, "y.txt", "y")}
	outcome, ok := <-svc.BatchExtractFilesAsync(context.Background(), paths, nil)
	require.True(t, ok)
	require.NoError(t, outcome.Err)
	require.Len(t, outcome.Result.Results, 2)
	assert.Equal(t, "x", outcome.Result.Results[0].Content)
	assert.Equal(t, "y", outcome.Result.Results[1].Content)
}

func TestAsyncErrorOutcome(t *testing.T) {
	svc, _ := newTestService(t, nil)

	outcome := <-svc.ExtractBytesAsync(context.Background(), []byte("x"), "application/x-mystery", nil)
	require.Error(t, outcome.Err)
	assert.Nil(t, outcome.Result)
}
