package gateway

import (
	"fmt"
	"strings"

	"github.com/BaSui01/imagegate/provider"
	"github.com/BaSui01/imagegate/types"
)

// ModelConfig binds one model id to a provider variant and the credential it needs.
type ModelConfig struct {
	ID            string           `json:"id" yaml:"id"`
	Variant       provider.Variant `json:"variant" yaml:"variant"`
	CredentialKey string           `json:"credential_key" yaml:"credential_key"`
	ProviderName  string           `json:"provider_name" yaml:"provider_name"`
	Params        provider.Params  `json:"params,omitempty" yaml:"params,omitempty"`
}

// Registry is the immutable model table. Lookup is exact and case-sensitive.
type Registry struct {
	order   []string
	entries map[string]ModelConfig
}

// NewRegistry builds a registry preserving declaration order.
func NewRegistry(models []ModelConfig) (*Registry, error) {
	r := &Registry{
		order:   make([]string, 0, len(models)),
		entries: make(map[string]ModelConfig, len(models)),
	}
	for _, m := range models {
		if m.ID == "" {
			return nil, fmt.Errorf("model entry without id")
		}
		if m.Variant == "" {
			return nil, fmt.Errorf("model %q: variant is required", m.ID)
		}
		if m.CredentialKey == "" {
			return nil, fmt.Errorf("model %q: credential key is required", m.ID)
		}
		if _, dup := r.entries[m.ID]; dup {
			return nil, fmt.Errorf("model %q registered twice", m.ID)
		}
		if m.ProviderName == "" {
			m.ProviderName = string(m.Variant)
		}
		r.entries[m.ID] = m
		r.order = append(r.order, m.ID)
	}
	return r, nil
}

// Resolve returns the config for modelID or UNSUPPORTED_MODEL listing every known id.
func (r *Registry) Resolve(modelID string) (ModelConfig, error) {
	if m, ok := r.entries[modelID]; ok {
		return m, nil
	}
	return ModelConfig{}, types.NewError(types.ErrUnsupportedModel,
		fmt.Sprintf("Unsupported model: %s. Available models: %s", modelID, strings.Join(r.order, ", ")))
}

// Models returns the model ids in declaration order.
func (r *Registry) Models() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered models.
func (r *Registry) Len() int { return len(r.order) }

// DefaultModels 返回内置的模型表（声明顺序即 UNSUPPORTED_MODEL 消息中的顺序）.
func DefaultModels() []ModelConfig {
	openai := func(id string) ModelConfig {
		return ModelConfig{ID: id, Variant: provider.VariantOpenAI, CredentialKey: "OPENAI_API_KEY", ProviderName: "OpenAI"}
	}
	deepinfra := func(id string) ModelConfig {
		return ModelConfig{ID: id, Variant: provider.VariantDeepInfra, CredentialKey: "DEEPINFRA_API_KEY", ProviderName: "DeepInfra"}
	}
	fireworks := func(id string, params provider.Params) ModelConfig {
		return ModelConfig{ID: id, Variant: provider.VariantFireworks, CredentialKey: "FIREWORKS_API_KEY", ProviderName: "Fireworks", Params: params}
	}
	luma := func(id string) ModelConfig {
		return ModelConfig{ID: id, Variant: provider.VariantLuma, CredentialKey: "LUMA_API_KEY", ProviderName: "Luma"}
	}
	together := func(id string) ModelConfig {
		return ModelConfig{ID: id, Variant: provider.VariantTogether, CredentialKey: "TOGETHER_AI_API_KEY", ProviderName: "TogetherAI"}
	}
	fal := func(id string) ModelConfig {
		return ModelConfig{ID: id, Variant: provider.VariantFal, CredentialKey: "FAL_API_KEY", ProviderName: "FAL"}
	}
	replicate := func(id string) ModelConfig {
		return ModelConfig{ID: id, Variant: provider.VariantReplicate, CredentialKey: "REPLICATE_API_TOKEN", ProviderName: "Replicate"}
	}

	return []ModelConfig{
		// OpenAI
		openai("dall-e-3"),
		openai("dall-e-2"),

		// Google
		{ID: "imagen-3.0-generate-002", Variant: provider.VariantGoogle, CredentialKey: "GOOGLE_GENERATIVE_AI_API_KEY", ProviderName: "Google"},

		// DeepInfra
		deepinfra("stabilityai/sdxl-turbo"),
		deepinfra("black-forest-labs/FLUX-1-dev"),
		deepinfra("black-forest-labs/FLUX-1-schnell"),

		// Fireworks
		fireworks("accounts/fireworks/models/stable-diffusion-xl-1024-v1-0", nil),
		fireworks("accounts/fireworks/models/playground-v2-1024px-aesthetic", nil),
		fireworks("accounts/fireworks/models/flux-1-dev-fp8", provider.Params{"endpoint": provider.FireworksEndpointWorkflow}),

		// Luma
		luma("photon-1"),
		luma("photon-flash-1"),

		// TogetherAI
		together("stabilityai/stable-diffusion-xl-base-1.0"),
		together("black-forest-labs/FLUX.1-dev"),
		together("black-forest-labs/FLUX.1-schnell"),

		// xAI
		{ID: "grok-2-image", Variant: provider.VariantXAI, CredentialKey: "XAI_API_KEY", ProviderName: "xAI"},

		// FAL
		fal("fal-ai/flux/schnell"),
		fal("fal-ai/flux/dev"),
		fal("fal-ai/flux-pro/v1.1"),

		// Replicate
		replicate("stability-ai/stable-diffusion-3.5-medium"),
		replicate("stability-ai/stable-diffusion-3.5-large"),
	}
}

// DefaultRegistry builds the registry from DefaultModels.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultModels())
	if err != nil {
		panic(err)
	}
	return r
}
