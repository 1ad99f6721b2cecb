package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BaSui01/imagegate/provider"
	"github.com/BaSui01/imagegate/types"
)

func TestNormalizeError_Priority(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"data.error.message beats message", map[string]any{
			"data":    map[string]any{"error": map[string]any{"message": "A"}},
			"message": "B",
		}, "A"},
		{"data.message", map[string]any{"data": map[string]any{"message": "D"}, "message": "M"}, "D"},
		{"error.message", map[string]any{"error": map[string]any{"message": "E"}, "message": "M"}, "E"},
		{"message", map[string]any{"message": "M"}, "M"},
		{"response.data.error.message", map[string]any{
			"response": map[string]any{"data": map[string]any{"error": map[string]any{"message": "R"}}},
		}, "R"},
		{"response.data.error string", map[string]any{
			"response": map[string]any{"data": map[string]any{"error": "quota exceeded"}},
		}, "quota exceeded"},
		{"response.data.error object serialized", map[string]any{
			"response": map[string]any{"data": map[string]any{"error": map[string]any{"code": 42}}},
		}, `{"code":42}`},
		{"empty message skipped", map[string]any{"message": "", "error": map[string]any{"message": ""}}, DefaultErrorMessage},
		{"non-string message skipped", map[string]any{"message": 12}, DefaultErrorMessage},
		{"plain string", "boom", "boom"},
		{"empty object", map[string]any{}, DefaultErrorMessage},
		{"nil", nil, DefaultErrorMessage},
		{"number", 3, DefaultErrorMessage},
		{"unmarshalable", map[string]any{"f": func() {}}, DefaultErrorMessage},
		{"unmarshalable sibling keeps message", map[string]any{"message": "X", "hook": func() {}}, "X"},
		{"unmarshalable nested sibling", map[string]any{
			"data": map[string]any{"message": "D", "ch": make(chan int)},
		}, "D"},
		{"error valued message", map[string]any{"data": map[string]any{"message": errors.New("Z")}}, "Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeError(tt.input))
		})
	}
}

func TestNormalizeError_Cause(t *testing.T) {
	assert.Equal(t, "X (Cause: Y)", NormalizeError(map[string]any{"message": "X", "cause": "Y"}))
	assert.Equal(t, "Failed to generate image (Cause: Y)", NormalizeError(map[string]any{"cause": "Y"}))
	assert.Equal(t, `X (Cause: {"k":"v"})`, NormalizeError(map[string]any{"message": "X", "cause": map[string]any{"k": "v"}}))
	assert.Equal(t, "X", NormalizeError(map[string]any{"message": "X", "cause": ""}))
	assert.Equal(t, "X", NormalizeError(map[string]any{"message": "X", "cause": nil}))
	assert.Equal(t, "X (Cause: Y)", NormalizeError(map[string]any{"message": "X", "cause": errors.New("Y")}))
	assert.Equal(t, "X (Cause: wrap: Y)",
		NormalizeError(map[string]any{"message": "X", "cause": fmt.Errorf("wrap: %w", errors.New("Y"))}))
	assert.Equal(t, "X (Cause: Y)", NormalizeError(map[string]any{"message": "X", "cause": "Y", "hook": func() {}}))
}

func TestNormalizeError_GoErrors(t *testing.T) {
	assert.Equal(t, "plain failure", NormalizeError(errors.New("plain failure")))
	assert.Equal(t, DefaultErrorMessage, NormalizeError(errors.New("")))

	apiErr := &provider.APIError{
		Provider:   "OpenAI",
		StatusCode: http.StatusBadRequest,
		Data:       map[string]any{"error": map[string]any{"message": "Billing hard limit has been reached"}},
		Message:    "OpenAI API error (status 400)",
	}
	assert.Equal(t, "Billing hard limit has been reached", NormalizeError(apiErr))

	// wrapping keeps the shape reachable
	assert.Equal(t, "Billing hard limit has been reached", NormalizeError(fmt.Errorf("invoke: %w", apiErr)))

	transport := &provider.APIError{Provider: "FAL", Message: "FAL request failed", Cause: errors.New("dial tcp: connection refused")}
	assert.Equal(t, "FAL request failed (Cause: dial tcp: connection refused)", NormalizeError(transport))

	textBody := &provider.APIError{Provider: "Luma", StatusCode: 502, Data: "Bad Gateway", Message: "Luma API error (status 502): Bad Gateway"}
	assert.Equal(t, "Luma API error (status 502): Bad Gateway", NormalizeError(textBody))
}

func TestNormalizeError_MultilingualPassThrough(t *testing.T) {
	msg := "内容违反了安全策略"
	assert.Equal(t, msg, NormalizeError(map[string]any{"data": map[string]any{"message": msg}}))
}

func TestToSignal(t *testing.T) {
	assert.Nil(t, ToSignal(nil))

	typed := types.NewError(types.ErrAPIKeyNotConfigured, "OpenAI API key not configured")
	assert.Same(t, typed, ToSignal(typed))
	assert.Same(t, typed, ToSignal(fmt.Errorf("wrapped: %w", typed)))

	sig := ToSignal(errors.New("upstream exploded"))
	assert.Equal(t, types.ErrGenerationFailed, sig.Code)
	assert.Equal(t, 500, sig.Status())
	assert.Equal(t, "upstream exploded", sig.Message)

	assert.Equal(t, "provider returned no image", ToSignal(ErrNoImage).Message)
}
