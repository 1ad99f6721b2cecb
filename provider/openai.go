package provider

import (
	"context"
	"time"
)

// OpenAIProvider使用OpenAI DALL-E执行图像生成.
type OpenAIProvider struct {
	cfg  Config
	http httpClient
	// sendSize is false for OpenAI-compatible APIs that reject the size field.
	sendSize bool
	name     string
}

// NewOpenAIProvider 创建 OpenAI 图像提供商.
func NewOpenAIProvider(cfg Config) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfigs()[VariantOpenAI].BaseURL
	}
	return &OpenAIProvider{cfg: cfg, http: newHTTPClient("OpenAI", cfg), sendSize: true, name: "openai"}
}

// NewXAIProvider creates an xAI (grok) image provider. The xAI images endpoint
// speaks the OpenAI protocol but does not accept a size.
func NewXAIProvider(cfg Config) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfigs()[VariantXAI].BaseURL
	}
	return &OpenAIProvider{cfg: cfg, http: newHTTPClient("xAI", cfg), sendSize: false, name: "xai"}
}

func (p *OpenAIProvider) Name() string { return p.name }

type dalleRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type dalleResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url,omitempty"`
		B64JSON       string `json:"b64_json,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// Generate 从文本提示生成图像.
// Endpoint: POST /v1/images/generations
func (p *OpenAIProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	body := dalleRequest{
		Model:          req.Model,
		Prompt:         req.Prompt,
		N:              req.N,
		ResponseFormat: "b64_json",
	}
	if body.N == 0 {
		body.N = 1
	}
	if p.sendSize {
		body.Size = req.Size
	}

	var dResp dalleResponse
	err := p.http.postJSON(ctx, joinURL(p.cfg.BaseURL, "/v1/images/generations"),
		map[string]string{"Authorization": "Bearer " + p.cfg.APIKey}, body, &dResp)
	if err != nil {
		return nil, err
	}

	images := make([]ImageData, 0, len(dResp.Data))
	for _, d := range dResp.Data {
		img := ImageData{URL: d.URL, B64JSON: d.B64JSON, RevisedPrompt: d.RevisedPrompt}
		if img.B64JSON == "" && img.URL != "" {
			b64, err := p.http.fetchBase64(ctx, img.URL)
			if err != nil {
				return nil, err
			}
			img.B64JSON = b64
		}
		images = append(images, img)
	}

	createdAt := time.Now()
	if dResp.Created > 0 {
		createdAt = time.Unix(dResp.Created, 0)
	}
	return &GenerateResponse{
		Provider:  p.Name(),
		Model:     req.Model,
		Images:    images,
		CreatedAt: createdAt,
	}, nil
}
