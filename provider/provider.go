package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Variant 标识一种上游图像生成 API.
type Variant string

const (
	VariantOpenAI    Variant = "openai"
	VariantXAI       Variant = "xai"
	VariantGoogle    Variant = "google"
	VariantDeepInfra Variant = "deepinfra"
	VariantFireworks Variant = "fireworks"
	VariantLuma      Variant = "luma"
	VariantTogether  Variant = "together"
	VariantFal       Variant = "fal"
	VariantReplicate Variant = "replicate"
)

// Params are per-model variant parameters carried by the model registry.
type Params map[string]string

// Get returns the value for key, or def when unset.
func (p Params) Get(key, def string) string {
	if v, ok := p[key]; ok && v != "" {
		return v
	}
	return def
}

// GenerateRequest 代表一次文生图请求.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	Size   string `json:"size,omitempty"` // 1024x1024, 1792x1024, etc.
	N      int    `json:"n,omitempty"`
}

// GenerateResponse 代表图像生成的响应.
type GenerateResponse struct {
	Provider  string      `json:"provider"`
	Model     string      `json:"model"`
	Images    []ImageData `json:"images"`
	CreatedAt time.Time   `json:"created_at"`
}

// ImageData代表生成的图像. B64JSON is always populated by the built-in variants;
// URL keeps the upstream location when the image was downloaded.
type ImageData struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// Provider 定义了图像生成提供者接口.
type Provider interface {
	// Generate 从文本提示生成图像.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name 返回提供者名称.
	Name() string
}

// Constructor builds a Provider for one variant.
type Constructor func(cfg Config, params Params) Provider

// Factory maps variant tags to constructors. It is safe for concurrent use.
type Factory struct {
	mu       sync.RWMutex
	ctors    map[Variant]Constructor
	defaults map[Variant]Config
}

// NewFactory creates a factory with every built-in variant registered.
// overrides replace the default BaseURL/Timeout per variant; empty fields keep the default.
func NewFactory(overrides map[Variant]Config) *Factory {
	f := &Factory{
		ctors:    make(map[Variant]Constructor),
		defaults: DefaultConfigs(),
	}
	for v, cfg := range overrides {
		f.defaults[v] = f.defaults[v].merge(cfg)
	}

	f.Register(VariantOpenAI, func(cfg Config, _ Params) Provider { return NewOpenAIProvider(cfg) })
	f.Register(VariantXAI, func(cfg Config, _ Params) Provider { return NewXAIProvider(cfg) })
	f.Register(VariantGoogle, func(cfg Config, _ Params) Provider { return NewGoogleProvider(cfg) })
	f.Register(VariantDeepInfra, func(cfg Config, _ Params) Provider { return NewDeepInfraProvider(cfg) })
	f.Register(VariantFireworks, func(cfg Config, p Params) Provider { return NewFireworksProvider(cfg, p) })
	f.Register(VariantLuma, func(cfg Config, _ Params) Provider { return NewLumaProvider(cfg) })
	f.Register(VariantTogether, func(cfg Config, _ Params) Provider { return NewTogetherProvider(cfg) })
	f.Register(VariantFal, func(cfg Config, _ Params) Provider { return NewFalProvider(cfg) })
	f.Register(VariantReplicate, func(cfg Config, _ Params) Provider { return NewReplicateProvider(cfg) })
	return f
}

// Register adds or replaces the constructor for a variant.
func (f *Factory) Register(v Variant, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctors[v] = ctor
}

// Build creates a provider client for the variant with the given credential.
func (f *Factory) Build(v Variant, apiKey string, params Params) (Provider, error) {
	f.mu.RLock()
	ctor, ok := f.ctors[v]
	cfg := f.defaults[v]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no provider registered for variant %q", v)
	}
	cfg.APIKey = apiKey
	if base := params.Get("base_url", ""); base != "" {
		cfg.BaseURL = base
	}
	return ctor(cfg, params), nil
}

// Variants returns the registered variant tags, sorted.
func (f *Factory) Variants() []Variant {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Variant, 0, len(f.ctors))
	for v := range f.ctors {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
