package gateway

import (
	"fmt"
	"strings"

	"github.com/BaSui01/imagegate/types"
)

// FallbackSize is used for models without an explicit size entry.
const FallbackSize = "1024x1024"

// KnownSizes is the global set a request size must belong to.
var KnownSizes = []string{"256x256", "512x512", "768x768", "1024x1024", "1024x1792", "1792x1024"}

// IsKnownSize reports whether size is in KnownSizes.
func IsKnownSize(size string) bool {
	for _, s := range KnownSizes {
		if s == size {
			return true
		}
	}
	return false
}

// SizePolicy holds per-model supported sizes. The first size of each list is the default.
type SizePolicy struct {
	sizes map[string][]string
}

// NewSizePolicy copies the table; empty lists are dropped so lookups fall back.
func NewSizePolicy(table map[string][]string) *SizePolicy {
	p := &SizePolicy{sizes: make(map[string][]string, len(table))}
	for model, list := range table {
		if len(list) == 0 {
			continue
		}
		p.sizes[model] = append([]string(nil), list...)
	}
	return p
}

// SupportedSizes never returns an empty slice.
func (p *SizePolicy) SupportedSizes(modelID string) []string {
	if list, ok := p.sizes[modelID]; ok {
		return append([]string(nil), list...)
	}
	return []string{FallbackSize}
}

func (p *SizePolicy) IsSupported(modelID, size string) bool {
	for _, s := range p.SupportedSizes(modelID) {
		if s == size {
			return true
		}
	}
	return false
}

func (p *SizePolicy) DefaultSize(modelID string) string {
	return p.SupportedSizes(modelID)[0]
}

// Resolve picks the size sent upstream. An empty request gets the default.
// An unsupported size fails INVALID_SIZE when strict, otherwise falls back to the default
// and reports substituted=true.
func (p *SizePolicy) Resolve(modelID, requested string, strict bool) (size string, substituted bool, err error) {
	if requested == "" {
		return p.DefaultSize(modelID), false, nil
	}
	if p.IsSupported(modelID, requested) {
		return requested, false, nil
	}
	if strict {
		return "", false, types.NewError(types.ErrInvalidSize,
			fmt.Sprintf("Size %s is not supported by model %s. Supported sizes: %s",
				requested, modelID, strings.Join(p.SupportedSizes(modelID), ", ")))
	}
	return p.DefaultSize(modelID), true, nil
}

// DefaultSizeTable 返回每个内置模型支持的尺寸.
func DefaultSizeTable() map[string][]string {
	return map[string][]string{
		// Fireworks
		"accounts/fireworks/models/stable-diffusion-xl-1024-v1-0":  {"1024x1024"},
		"accounts/fireworks/models/playground-v2-1024px-aesthetic": {"1024x1024"},
		"accounts/fireworks/models/flux-1-dev-fp8":                 {"1024x1024"},

		// FAL
		"fal-ai/flux/dev":      {"1024x1024"},
		"fal-ai/flux/schnell":  {"256x256"},
		"fal-ai/flux-pro/v1.1": {"1024x1024"},

		// OpenAI
		"dall-e-3": {"1024x1024", "1024x1792", "1792x1024"},
		"dall-e-2": {"256x256", "512x512", "1024x1024"},

		// Replicate
		"stability-ai/stable-diffusion-3.5-medium": {"512x512", "768x768", "1024x1024"},
		"stability-ai/stable-diffusion-3.5-large":  {"512x512", "768x768", "1024x1024"},

		// Google
		"imagen-3.0-generate-002": {"1024x1024", "512x512"},

		// DeepInfra
		"stabilityai/sdxl-turbo":           {"512x512", "1024x1024"},
		"black-forest-labs/FLUX-1-dev":     {"1024x1024"},
		"black-forest-labs/FLUX-1-schnell": {"1024x1024"},

		// Luma
		"photon-1":       {"1024x1024", "512x512"},
		"photon-flash-1": {"1024x1024", "512x512"},

		// TogetherAI
		"stabilityai/stable-diffusion-xl-base-1.0": {"1024x1024", "512x512"},
		"black-forest-labs/FLUX.1-dev":             {"1024x1024"},
		"black-forest-labs/FLUX.1-schnell":         {"1024x1024"},

		// xAI
		"grok-2-image": {"1024x1024", "512x512"},
	}
}

// DefaultSizePolicy builds a SizePolicy from DefaultSizeTable.
func DefaultSizePolicy() *SizePolicy {
	return NewSizePolicy(DefaultSizeTable())
}
