package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/BaSui01/imagegate/types"
)

// ParseRequest validates a raw request body. It is a pure function of body.
func ParseRequest(body []byte) (*types.GenerationRequest, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		// Also rejects JSON null, arrays and scalars.
		return nil, types.NewError(types.ErrInvalidBody, "Invalid JSON body")
	}

	prompt, ok := fields["prompt"].(string)
	if !ok || prompt == "" {
		return nil, types.NewError(types.ErrPromptRequired, "Prompt is required")
	}

	model, ok := fields["model"].(string)
	if !ok || model == "" {
		return nil, types.NewError(types.ErrModelRequired, "Model is required")
	}

	req := &types.GenerationRequest{Prompt: prompt, Model: model}

	raw := fields["size"]
	if isAbsent(raw) {
		return req, nil
	}
	size, ok := raw.(string)
	if !ok || !IsKnownSize(size) {
		return nil, types.NewError(types.ErrInvalidSize, fmt.Sprintf("Unsupported size: %s", displayValue(raw)))
	}
	req.Size = size
	return req, nil
}

// isAbsent treats null, false, 0 and "" as "not provided".
func isAbsent(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	}
	return false
}

func displayValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}
