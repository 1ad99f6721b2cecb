package provider

import (
	"context"
	"fmt"
	"time"
)

// GoogleProvider implements image generation using Google Imagen on the Generative Language API.
type GoogleProvider struct {
	cfg  Config
	http httpClient
}

// NewGoogleProvider creates a new Imagen provider.
func NewGoogleProvider(cfg Config) *GoogleProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfigs()[VariantGoogle].BaseURL
	}
	return &GoogleProvider{cfg: cfg, http: newHTTPClient("Google", cfg)}
}

func (p *GoogleProvider) Name() string { return "google" }

type imagenRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type imagenResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

// Generate creates images using Imagen.
// Endpoint: POST /v1beta/models/{model}:predict
// Auth: x-goog-api-key header
func (p *GoogleProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	n := req.N
	if n == 0 {
		n = 1
	}
	body := imagenRequest{
		Instances:  []imagenInstance{{Prompt: req.Prompt}},
		Parameters: imagenParameters{SampleCount: n},
	}
	// Imagen takes an aspect ratio rather than pixel sizes.
	if req.Size != "" {
		body.Parameters.AspectRatio = aspectRatio(req.Size)
	}

	var iResp imagenResponse
	url := joinURL(p.cfg.BaseURL, fmt.Sprintf("/v1beta/models/%s:predict", req.Model))
	if err := p.http.postJSON(ctx, url, map[string]string{"x-goog-api-key": p.cfg.APIKey}, body, &iResp); err != nil {
		return nil, err
	}

	images := make([]ImageData, 0, len(iResp.Predictions))
	for _, pred := range iResp.Predictions {
		if pred.BytesBase64Encoded == "" {
			continue
		}
		images = append(images, ImageData{B64JSON: pred.BytesBase64Encoded})
	}

	return &GenerateResponse{
		Provider:  p.Name(),
		Model:     req.Model,
		Images:    images,
		CreatedAt: time.Now(),
	}, nil
}
