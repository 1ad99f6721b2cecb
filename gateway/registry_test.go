package gateway

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/BaSui01/imagegate/provider"
	"github.com/BaSui01/imagegate/types"
)

func TestDefaultRegistry_Order(t *testing.T) {
	r := DefaultRegistry()
	models := r.Models()

	require.Equal(t, 20, r.Len())
	assert.Equal(t, "dall-e-3", models[0])
	assert.Equal(t, "stability-ai/stable-diffusion-3.5-large", models[len(models)-1])

	models[0] = "mutated"
	assert.Equal(t, "dall-e-3", r.Models()[0], "Models must return a copy")
}

func TestRegistry_ResolveKnownModels(t *testing.T) {
	r := DefaultRegistry()
	ids := r.Models()

	rapid.Check(t, func(t *rapid.T) {
		id := rapid.SampledFrom(ids).Draw(t, "model")
		cfg, err := r.Resolve(id)
		require.NoError(t, err)
		assert.Equal(t, id, cfg.ID)
		assert.NotEmpty(t, cfg.CredentialKey)
		assert.NotEmpty(t, cfg.ProviderName)
		assert.NotEmpty(t, cfg.Variant)
	})
}

func TestRegistry_ResolveUnknownModels(t *testing.T) {
	r := DefaultRegistry()
	known := make(map[string]bool)
	for _, id := range r.Models() {
		known[id] = true
	}

	rapid.Check(t, func(t *rapid.T) {
		id := rapid.String().Filter(func(s string) bool { return !known[s] }).Draw(t, "model")

		_, err := r.Resolve(id)
		e, ok := types.AsError(err)
		require.True(t, ok)
		assert.Equal(t, types.ErrUnsupportedModel, e.Code)
		assert.Equal(t, 400, e.Status())
		assert.True(t, strings.HasPrefix(e.Message, "Unsupported model: "+id+". Available models: "))
		assert.Contains(t, e.Message, "dall-e-3")
	})
}

func TestRegistry_CaseSensitive(t *testing.T) {
	_, err := DefaultRegistry().Resolve("DALL-E-3")
	assert.Equal(t, types.ErrUnsupportedModel, types.GetErrorCode(err))
}

func TestRegistry_UnsupportedMessageListsInDeclarationOrder(t *testing.T) {
	r, err := NewRegistry([]ModelConfig{
		{ID: "b", Variant: provider.VariantOpenAI, CredentialKey: "K"},
		{ID: "a", Variant: provider.VariantOpenAI, CredentialKey: "K"},
	})
	require.NoError(t, err)

	_, err = r.Resolve("zzz")
	assert.EqualError(t, err, "[UNSUPPORTED_MODEL] Unsupported model: zzz. Available models: b, a")
}

func TestNewRegistry_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		models []ModelConfig
	}{
		{"missing id", []ModelConfig{{Variant: provider.VariantOpenAI, CredentialKey: "K"}}},
		{"missing variant", []ModelConfig{{ID: "m", CredentialKey: "K"}}},
		{"missing credential key", []ModelConfig{{ID: "m", Variant: provider.VariantOpenAI}}},
		{"duplicate", []ModelConfig{
			{ID: "m", Variant: provider.VariantOpenAI, CredentialKey: "K"},
			{ID: "m", Variant: provider.VariantFal, CredentialKey: "K2"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.models)
			assert.Error(t, err)
		})
	}
}

func TestNewRegistry_DefaultsProviderName(t *testing.T) {
	r, err := NewRegistry([]ModelConfig{{ID: "m", Variant: provider.VariantFal, CredentialKey: "K"}})
	require.NoError(t, err)
	cfg, err := r.Resolve("m")
	require.NoError(t, err)
	assert.Equal(t, "fal", cfg.ProviderName)
}

func TestDefaultModels_HaveSizeEntries(t *testing.T) {
	table := DefaultSizeTable()
	for _, m := range DefaultModels() {
		_, ok := table[m.ID]
		assert.True(t, ok, "model %s has no size entry", m.ID)
	}
}
