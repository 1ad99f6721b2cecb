package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ReplicateProvider runs official Replicate models through the predictions API.
type ReplicateProvider struct {
	cfg  Config
	http httpClient
}

func NewReplicateProvider(cfg Config) *ReplicateProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfigs()[VariantReplicate].BaseURL
	}
	return &ReplicateProvider{cfg: cfg, http: newHTTPClient("Replicate", cfg)}
}

func (p *ReplicateProvider) Name() string { return "replicate" }

type replicateRequest struct {
	Input replicateInput `json:"input"`
}

type replicateInput struct {
	Prompt       string `json:"prompt"`
	AspectRatio  string `json:"aspect_ratio,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
}

type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"` // starting, processing, succeeded, failed, canceled
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// Generate creates a prediction with "Prefer: wait" and polls urls.get when it is still running.
// Endpoint: POST /v1/models/{owner}/{name}/predictions
func (p *ReplicateProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	auth := map[string]string{"Authorization": "Bearer " + p.cfg.APIKey}
	body := replicateRequest{Input: replicateInput{Prompt: req.Prompt, OutputFormat: "png"}}
	if req.Size != "" {
		body.Input.AspectRatio = aspectRatio(req.Size)
	}

	headers := map[string]string{"Prefer": "wait"}
	for k, v := range auth {
		headers[k] = v
	}

	var pred replicatePrediction
	if err := p.http.postJSON(ctx, joinURL(p.cfg.BaseURL, "/v1/models", req.Model, "predictions"), headers, body, &pred); err != nil {
		return nil, err
	}

	if !replicateDone(pred.Status) {
		getURL := pred.URLs.Get
		if getURL == "" {
			getURL = joinURL(p.cfg.BaseURL, "/v1/predictions", pred.ID)
		}
		err := poll(ctx, p.cfg.pollInterval(), defaultMaxPolls, func(ctx context.Context) (bool, error) {
			var cur replicatePrediction
			if err := p.http.getJSON(ctx, getURL, auth, &cur); err != nil {
				return false, err
			}
			pred = cur
			return replicateDone(cur.Status), nil
		})
		if err != nil {
			if err == errPollTimeout {
				return nil, &APIError{Provider: "Replicate", Message: "Replicate prediction timeout", Cause: err}
			}
			return nil, err
		}
	}

	if pred.Status != "succeeded" {
		e := &APIError{
			Provider:   "Replicate",
			StatusCode: http.StatusOK,
			Message:    fmt.Sprintf("Replicate prediction %s", pred.Status),
		}
		if pred.Error != nil {
			e.Data = map[string]any{"error": pred.Error}
			if s, ok := pred.Error.(string); ok && s != "" {
				e.Message += ": " + s
			}
		}
		return nil, e
	}

	outputs, err := replicateOutputs(pred.Output)
	if err != nil {
		return nil, newDecodeError("Replicate", http.StatusOK, err)
	}

	images := make([]ImageData, 0, len(outputs))
	for _, u := range outputs {
		b64, err := p.http.fetchBase64(ctx, u)
		if err != nil {
			return nil, err
		}
		images = append(images, ImageData{URL: u, B64JSON: b64})
	}

	return &GenerateResponse{
		Provider:  p.Name(),
		Model:     req.Model,
		Images:    images,
		CreatedAt: time.Now(),
	}, nil
}

// replicateOutputs accepts both a single URL and a list of URLs.
func replicateOutputs(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("unexpected replicate output: %w", err)
	}
	return many, nil
}

func replicateDone(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}
