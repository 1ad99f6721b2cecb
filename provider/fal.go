package provider

import (
	"context"
	"time"
)

// FalProvider calls fal.ai synchronous model endpoints (https://fal.run/{model}).
type FalProvider struct {
	cfg  Config
	http httpClient
}

func NewFalProvider(cfg Config) *FalProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfigs()[VariantFal].BaseURL
	}
	return &FalProvider{cfg: cfg, http: newHTTPClient("FAL", cfg)}
}

func (p *FalProvider) Name() string { return "fal" }

type falImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type falRequest struct {
	Prompt    string        `json:"prompt"`
	ImageSize *falImageSize `json:"image_size,omitempty"`
	NumImages int           `json:"num_images"`
	SyncMode  bool          `json:"sync_mode"`
}

type falResponse struct {
	Images []struct {
		URL         string `json:"url"`
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		ContentType string `json:"content_type"`
	} `json:"images"`
	Seed   int64  `json:"seed"`
	Prompt string `json:"prompt"`
}

// Generate posts to /{model}. With sync_mode the images come back inline as data URIs;
// otherwise they are downloaded from the CDN url.
func (p *FalProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	body := falRequest{Prompt: req.Prompt, NumImages: 1, SyncMode: true}
	if req.N > 0 {
		body.NumImages = req.N
	}
	if w, h, ok := parseSize(req.Size); ok {
		body.ImageSize = &falImageSize{Width: w, Height: h}
	}

	var fResp falResponse
	err := p.http.postJSON(ctx, joinURL(p.cfg.BaseURL, req.Model),
		map[string]string{"Authorization": "Key " + p.cfg.APIKey}, body, &fResp)
	if err != nil {
		return nil, err
	}

	images := make([]ImageData, 0, len(fResp.Images))
	for _, img := range fResp.Images {
		b64, err := p.http.fetchBase64(ctx, img.URL)
		if err != nil {
			return nil, err
		}
		data := ImageData{B64JSON: b64}
		if _, inline := stripDataURI(img.URL); !inline {
			data.URL = img.URL
		}
		images = append(images, data)
	}

	return &GenerateResponse{
		Provider:  p.Name(),
		Model:     req.Model,
		Images:    images,
		CreatedAt: time.Now(),
	}, nil
}
