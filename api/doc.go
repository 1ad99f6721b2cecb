// Package api documents the ImageGate HTTP API.
//
// # API Overview
//
// ImageGate exposes one operation, image generation, behind two equivalent routes:
//
//	POST /api/generate-image
//	POST /api/ai
//
// Request body:
//
//	{"prompt": "a lighthouse at dusk", "model": "dall-e-3", "size": "1024x1024"}
//
// size is optional; when absent the model default is used. Success returns
//
//	{"imageUrl": "data:image/png;base64,...", "images": [{"url": "...", "base64": "..."}]}
//
// and every failure returns
//
//	{"error": "<CODE>", "message": "<text>", "params": {...}}
//
// with one of INVALID_BODY, PROMPT_REQUIRED, MODEL_REQUIRED, INVALID_SIZE,
// UNSUPPORTED_MODEL (400), RATE_LIMITED (429), METHOD_NOT_ALLOWED (405),
// API_KEY_NOT_CONFIGURED or GENERATION_FAILED (500).
//
// # Other Endpoints
//
//   - GET /api/models lists model ids, sizes and whether the credential is set
//   - GET /health, /healthz, /ready, /version for probes
//   - GET /metrics on the separate metrics port
//
// # Authentication
//
// There is no end-user authentication. Upstream API keys are server-side
// configuration and never leave the process.
//
// # Base URL
//
// The default base URL for the API is:
//
//	http://localhost:8080
package api
