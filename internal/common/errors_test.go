package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	e := NewAppError("DOCUMENT_READ", "stat /tmp/x", ErrDocumentRead)
	assert.Equal(t, "DOCUMENT_READ: stat /tmp/x: document read failed", e.Error())
	assert.ErrorIs(t, e, ErrDocumentRead)

	bare := NewAppError("CONFIG_ERROR", "bad value", nil)
	assert.Equal(t, "CONFIG_ERROR: bad value", bare.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("%w: 503", ErrProviderService)))
	assert.True(t, IsRetryable(fmt.Errorf("%w: slow", ErrProviderTimeout)))

	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(fmt.Errorf("%w: bad json", ErrValidation)))
	assert.False(t, IsRetryable(ErrConfiguration))
	// Exhaustion wraps the last transient error but must not look retryable.
	assert.False(t, IsRetryable(fmt.Errorf("%w after 3 attempts: %w", ErrRetryExhausted, ErrProviderTimeout)))
}

func TestIsDocumentFailure(t *testing.T) {
	assert.True(t, IsDocumentFailure(fmt.Errorf("%w: stat", ErrDocumentRead)))
	assert.True(t, IsDocumentFailure(NewAppError("UNSUPPORTED_FORMAT", "odt", ErrUnsupportedFormat)))
	assert.True(t, IsDocumentFailure(fmt.Errorf("%w: empty", ErrTextExtraction)))

	assert.False(t, IsDocumentFailure(nil))
	assert.False(t, IsDocumentFailure(ErrProviderTimeout))
	assert.False(t, IsDocumentFailure(errors.New("unrelated")))
}
