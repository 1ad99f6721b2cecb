package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

const maxErrorBodyInMessage = 512

// APIError is returned by every variant when the upstream call fails.
// Data holds the decoded error body (or the raw text when it is not JSON).
type APIError struct {
	Provider   string
	StatusCode int
	Data       any
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Cause }

// ErrorShape exposes the error as a JSON-like tree:
// {message, data, response:{status,data}, cause}.
func (e *APIError) ErrorShape() map[string]any {
	shape := map[string]any{"message": e.Message}
	if e.Data != nil {
		shape["data"] = e.Data
		shape["response"] = map[string]any{
			"status": e.StatusCode,
			"data":   e.Data,
		}
	}
	if e.Cause != nil {
		shape["cause"] = e.Cause.Error()
	}
	return shape
}

// newStatusError builds an APIError from a non-2xx upstream response.
func newStatusError(name string, status int, body []byte) *APIError {
	e := &APIError{
		Provider:   name,
		StatusCode: status,
		Message:    fmt.Sprintf("%s API error (status %d)", name, status),
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		e.Data = decoded
		if detail := detailOf(decoded); detail != "" {
			e.Message += ": " + detail
		}
		return e
	}

	text := strings.TrimSpace(string(body))
	if text != "" {
		e.Data = text
		if len(text) > maxErrorBodyInMessage {
			text = text[:maxErrorBodyInMessage] + "..."
		}
		e.Message += ": " + text
	}
	return e
}

// detailOf picks the free-form detail fields used by Replicate, FAL, Luma and DeepInfra.
func detailOf(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	switch d := m["detail"].(type) {
	case string:
		return d
	case map[string]any:
		if s, ok := d["error"].(string); ok {
			return s
		}
	case []any:
		raw, _ := json.Marshal(d)
		return string(raw)
	}
	return ""
}

func newTransportError(name string, cause error) *APIError {
	return &APIError{Provider: name, Message: fmt.Sprintf("%s request failed", name), Cause: cause}
}

func newDecodeError(name string, status int, cause error) *APIError {
	return &APIError{
		Provider:   name,
		StatusCode: status,
		Message:    fmt.Sprintf("invalid response from %s", name),
		Cause:      cause,
	}
}
