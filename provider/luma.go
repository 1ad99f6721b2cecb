package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// LumaProvider implements image generation using Luma Dream Machine (Photon).
// Generation is asynchronous: submit, poll, then download the asset.
type LumaProvider struct {
	cfg  Config
	http httpClient
}

func NewLumaProvider(cfg Config) *LumaProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfigs()[VariantLuma].BaseURL
	}
	return &LumaProvider{cfg: cfg, http: newHTTPClient("Luma", cfg)}
}

func (p *LumaProvider) Name() string { return "luma" }

type lumaRequest struct {
	Prompt      string `json:"prompt"`
	Model       string `json:"model"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

type lumaGeneration struct {
	ID            string `json:"id"`
	State         string `json:"state"` // queued, dreaming, completed, failed
	FailureReason string `json:"failure_reason,omitempty"`
	Assets        struct {
		Image string `json:"image,omitempty"`
	} `json:"assets"`
}

// Generate submits to /dream-machine/v1/generations/image and polls /generations/{id}.
func (p *LumaProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	headers := map[string]string{"Authorization": "Bearer " + p.cfg.APIKey}
	body := lumaRequest{Prompt: req.Prompt, Model: req.Model}
	if req.Size != "" {
		body.AspectRatio = aspectRatio(req.Size)
	}

	var gen lumaGeneration
	if err := p.http.postJSON(ctx, joinURL(p.cfg.BaseURL, "/dream-machine/v1/generations/image"), headers, body, &gen); err != nil {
		return nil, err
	}

	if !lumaDone(gen.State) {
		statusURL := joinURL(p.cfg.BaseURL, "/dream-machine/v1/generations", gen.ID)
		err := poll(ctx, p.cfg.pollInterval(), defaultMaxPolls, func(ctx context.Context) (bool, error) {
			var cur lumaGeneration
			if err := p.http.getJSON(ctx, statusURL, headers, &cur); err != nil {
				return false, err
			}
			gen = cur
			return lumaDone(cur.State), nil
		})
		if err != nil {
			return nil, p.wrapPollError(err)
		}
	}

	if gen.State == "failed" {
		reason := gen.FailureReason
		if reason == "" {
			reason = "unknown reason"
		}
		return nil, &APIError{
			Provider:   "Luma",
			StatusCode: http.StatusOK,
			Message:    fmt.Sprintf("Luma generation failed: %s", reason),
		}
	}
	if gen.Assets.Image == "" {
		return nil, &APIError{Provider: "Luma", StatusCode: http.StatusOK, Message: "Luma generation completed without an image"}
	}

	b64, err := p.http.fetchBase64(ctx, gen.Assets.Image)
	if err != nil {
		return nil, err
	}
	return &GenerateResponse{
		Provider:  p.Name(),
		Model:     req.Model,
		Images:    []ImageData{{URL: gen.Assets.Image, B64JSON: b64}},
		CreatedAt: time.Now(),
	}, nil
}

func (p *LumaProvider) wrapPollError(err error) error {
	if err == errPollTimeout {
		return &APIError{Provider: "Luma", Message: "Luma generation timeout", Cause: err}
	}
	return err
}

func lumaDone(state string) bool {
	return state == "completed" || state == "failed"
}
