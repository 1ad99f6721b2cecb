package types

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrAPIKeyNotConfigured, "OpenAI API key not configured").
		WithCause(root).
		WithParam("provider", "OpenAI").
		WithProvider("openai")

	assert.Equal(t, ErrAPIKeyNotConfigured, GetErrorCode(err))
	assert.Equal(t, http.StatusInternalServerError, err.Status())
	assert.Equal(t, "OpenAI", err.Params["provider"])
	assert.ErrorIs(t, err, root)
	assert.Contains(t, err.Error(), "API_KEY_NOT_CONFIGURED")
}

func TestError_AsErrorThroughWrap(t *testing.T) {
	t.Parallel()

	inner := NewError(ErrInvalidSize, "Unsupported size: 300x300")
	wrapped := errors.Join(errors.New("context"), inner)

	got, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, got)
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
}

func TestErrorCode_CategoryAndStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code     ErrorCode
		category ErrorCategory
		status   int
	}{
		{ErrInvalidBody, CategoryClientInput, http.StatusBadRequest},
		{ErrPromptRequired, CategoryClientInput, http.StatusBadRequest},
		{ErrModelRequired, CategoryClientInput, http.StatusBadRequest},
		{ErrInvalidSize, CategoryClientInput, http.StatusBadRequest},
		{ErrUnsupportedModel, CategoryClientInput, http.StatusBadRequest},
		{ErrRateLimited, CategoryClientInput, http.StatusTooManyRequests},
		{ErrMethodNotAllowed, CategoryClientInput, http.StatusMethodNotAllowed},
		{ErrAPIKeyNotConfigured, CategoryConfiguration, http.StatusInternalServerError},
		{ErrGenerationFailed, CategoryUpstream, http.StatusInternalServerError},
		{ErrInternalError, CategoryInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.category, tt.code.Category())
			assert.Equal(t, tt.status, tt.code.DefaultHTTPStatus())
			assert.Equal(t, tt.status, NewError(tt.code, "x").Status())
		})
	}
}

func TestError_StatusFallback(t *testing.T) {
	t.Parallel()

	e := &Error{Code: ErrUnsupportedModel}
	assert.Equal(t, http.StatusBadRequest, e.Status())
	assert.Equal(t, http.StatusTeapot, e.WithHTTPStatus(http.StatusTeapot).Status())
}
