package provider

import (
	"context"
	"time"
)

// DeepInfraProvider calls the DeepInfra inference endpoint for text-to-image models.
type DeepInfraProvider struct {
	cfg  Config
	http httpClient
}

func NewDeepInfraProvider(cfg Config) *DeepInfraProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfigs()[VariantDeepInfra].BaseURL
	}
	return &DeepInfraProvider{cfg: cfg, http: newHTTPClient("DeepInfra", cfg)}
}

func (p *DeepInfraProvider) Name() string { return "deepinfra" }

type deepInfraRequest struct {
	Prompt    string `json:"prompt"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	NumImages int    `json:"num_images,omitempty"`
}

type deepInfraResponse struct {
	Images []string `json:"images"`
}

// Generate posts to /v1/inference/{model}. Images come back as data URIs.
func (p *DeepInfraProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	body := deepInfraRequest{Prompt: req.Prompt, NumImages: req.N}
	if w, h, ok := parseSize(req.Size); ok {
		body.Width, body.Height = w, h
	}

	var dResp deepInfraResponse
	err := p.http.postJSON(ctx, joinURL(p.cfg.BaseURL, "/v1/inference", req.Model),
		map[string]string{"Authorization": "Bearer " + p.cfg.APIKey}, body, &dResp)
	if err != nil {
		return nil, err
	}

	images := make([]ImageData, 0, len(dResp.Images))
	for _, raw := range dResp.Images {
		b64, err := p.http.fetchBase64(ctx, raw)
		if err != nil {
			return nil, err
		}
		images = append(images, ImageData{B64JSON: b64})
	}

	return &GenerateResponse{
		Provider:  p.Name(),
		Model:     req.Model,
		Images:    images,
		CreatedAt: time.Now(),
	}, nil
}
