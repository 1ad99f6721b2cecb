package types

// DataURIPrefix is prepended to base64 PNG payloads.
const DataURIPrefix = "data:image/png;base64,"

// GenerationRequest is a validated inbound request.
type GenerationRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	// Size is empty when the caller did not send one.
	Size string `json:"size,omitempty"`
}

// GeneratedImage is one image of a result.
type GeneratedImage struct {
	URL    string `json:"url"`
	Base64 string `json:"base64"`
}

// GenerationResult is the success body.
type GenerationResult struct {
	ImageURL string           `json:"imageUrl"`
	Images   []GeneratedImage `json:"images"`
}

// ErrorResponse is the error body. Params is only set for errors that carry them.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Params  map[string]string `json:"params,omitempty"`
}
