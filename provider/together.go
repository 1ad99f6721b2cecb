package provider

import (
	"context"
	"time"
)

// TogetherProvider calls the Together AI images API.
type TogetherProvider struct {
	cfg  Config
	http httpClient
}

func NewTogetherProvider(cfg Config) *TogetherProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfigs()[VariantTogether].BaseURL
	}
	return &TogetherProvider{cfg: cfg, http: newHTTPClient("TogetherAI", cfg)}
}

func (p *TogetherProvider) Name() string { return "together" }

type togetherRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

type togetherResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

// Generate posts to /v1/images/generations with width/height instead of size.
func (p *TogetherProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	body := togetherRequest{
		Model:          req.Model,
		Prompt:         req.Prompt,
		N:              1,
		ResponseFormat: "base64",
	}
	if req.N > 0 {
		body.N = req.N
	}
	if w, h, ok := parseSize(req.Size); ok {
		body.Width, body.Height = w, h
	}

	var tResp togetherResponse
	err := p.http.postJSON(ctx, joinURL(p.cfg.BaseURL, "/v1/images/generations"),
		map[string]string{"Authorization": "Bearer " + p.cfg.APIKey}, body, &tResp)
	if err != nil {
		return nil, err
	}

	images := make([]ImageData, 0, len(tResp.Data))
	for _, d := range tResp.Data {
		img := ImageData{B64JSON: d.B64JSON, URL: d.URL}
		if img.B64JSON == "" && img.URL != "" {
			b64, err := p.http.fetchBase64(ctx, img.URL)
			if err != nil {
				return nil, err
			}
			img.B64JSON = b64
		}
		images = append(images, img)
	}

	return &GenerateResponse{
		Provider:  p.Name(),
		Model:     req.Model,
		Images:    images,
		CreatedAt: time.Now(),
	}, nil
}
