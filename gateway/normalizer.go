package gateway

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"

	"github.com/BaSui01/imagegate/types"
)

// DefaultErrorMessage is returned when no message can be extracted.
const DefaultErrorMessage = "Failed to generate image"

// messagePaths are probed in order; the first non-empty string wins.
var messagePaths = []string{
	"data.error.message",
	"data.message",
	"error.message",
	"message",
	"response.data.error.message",
}

// ErrorShaper is implemented by errors that can describe themselves as a JSON-like tree.
type ErrorShaper interface {
	ErrorShape() map[string]any
}

// NormalizeError extracts one human-readable message from an arbitrary failure value.
// Provider text is returned verbatim.
func NormalizeError(v any) string {
	doc := errorDocument(v)

	msg := ""
	for _, path := range messagePaths {
		if r := gjson.GetBytes(doc, path); r.Type == gjson.String && r.Str != "" {
			msg = r.Str
			break
		}
	}
	if msg == "" {
		if r := gjson.GetBytes(doc, "response.data.error"); truthy(r) {
			if r.Type == gjson.String {
				msg = r.Str
			} else {
				msg = r.Raw
			}
		}
	}
	if msg == "" {
		if s, ok := v.(string); ok && s != "" {
			msg = s
		}
	}
	if msg == "" {
		msg = DefaultErrorMessage
	}

	if cause := gjson.GetBytes(doc, "cause"); truthy(cause) {
		text := cause.Raw
		if cause.Type == gjson.String {
			text = cause.Str
		}
		msg += " (Cause: " + text + ")"
	}
	return msg
}

// errorDocument renders v as JSON for probing. Strings and unrenderable values yield nil.
// Nested error values become their text; when the tree still cannot be rendered,
// a top-level object keeps every entry that can.
func errorDocument(v any) []byte {
	var tree any
	switch t := v.(type) {
	case nil, string:
		return nil
	case error:
		var shaper ErrorShaper
		if errors.As(t, &shaper) {
			tree = shaper.ErrorShape()
		} else {
			tree = map[string]any{"message": t.Error()}
		}
	default:
		tree = v
	}
	tree = errorsToText(tree)
	raw, err := json.Marshal(tree)
	if err == nil {
		return raw
	}
	if m, ok := tree.(map[string]any); ok {
		return renderEntries(m)
	}
	return nil
}

// errorsToText replaces error values inside maps and slices with their Error() text.
func errorsToText(v any) any {
	switch t := v.(type) {
	case error:
		return t.Error()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = errorsToText(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = errorsToText(val)
		}
		return out
	}
	return v
}

// renderEntries marshals each entry on its own and drops the ones that fail.
func renderEntries(m map[string]any) []byte {
	obj := make(map[string]json.RawMessage, len(m))
	for k, val := range m {
		if raw, err := json.Marshal(val); err == nil {
			obj[k] = raw
		} else if nested, ok := val.(map[string]any); ok {
			if raw := renderEntries(nested); raw != nil {
				obj[k] = raw
			}
		}
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil
	}
	return raw
}

func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True, gjson.JSON:
		return true
	}
	return false
}

// ToSignal turns any pipeline failure into the error sent to the caller.
// Typed errors keep their own code and status; everything else is GENERATION_FAILED.
func ToSignal(err error) *types.Error {
	if err == nil {
		return nil
	}
	if e, ok := types.AsError(err); ok {
		return e
	}
	return types.NewError(types.ErrGenerationFailed, NormalizeError(err)).WithCause(err)
}
