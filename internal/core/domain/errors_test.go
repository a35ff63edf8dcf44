package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *ExtractError
		expected string
	}{
		{
			"stage and plugin",
			NewExtractError(KindPlugin, "ocr", "echo-ocr", "backend crashed"),
			"plugin_error: stage ocr (plugin echo-ocr): backend crashed",
		},
		{
			"stage only",
			NewExtractError(KindParsing, "extract", "", "truncated archive"),
			"parsing_error: stage extract: truncated archive",
		},
		{
			"bare",
			NewExtractError(KindUnsupportedFormat, "", "", "application/x-unknown"),
			"unsupported_format: application/x-unknown",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestExtractErrorUnwrapsToSentinel(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		sentinel error
	}{
		{KindMissingDependency, ErrMissingDependency},
		{KindUnsupportedFormat, ErrUnsupportedFormat},
		{KindParsing, ErrParsing},
		{KindOCR, ErrOCR},
		{KindValidation, ErrValidationFailed},
		{KindPlugin, ErrPluginFailure},
		{KindInternal, ErrInternal},
	}

	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			err := NewExtractError(tc.kind, "stage", "plugin", "boom")
			assert.ErrorIs(t, err, tc.sentinel)
		})
	}
}

func TestExtractErrorSurvivesWrapping(t *testing.T) {
	inner := NewExtractError(KindValidation, "validate", "strict", "empty content")
	wrapped := fmt.Errorf("extracting /tmp/doc.pdf: %w", inner)

	assert.ErrorIs(t, wrapped, ErrValidationFailed)

	var ee *ExtractError
	require.True(t, errors.As(wrapped, &ee))
	assert.Equal(t, "strict", ee.Plugin)
}

func TestErrorInfoFrom(t *testing.T) {
	assert.Nil(t, ErrorInfoFrom(nil))

	info := ErrorInfoFrom(NewExtractError(KindMissingDependency, "ocr", "", "backend 'x' not registered"))
	require.NotNil(t, info)
	assert.Equal(t, KindMissingDependency, info.Kind)
	assert.Equal(t, "ocr", info.Stage)

	info = ErrorInfoFrom(errors.New("plain"))
	require.NotNil(t, info)
	assert.Equal(t, KindInternal, info.Kind)
	assert.Equal(t, "plain", info.Message)
}
