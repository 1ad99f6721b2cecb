package gateway

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/imagegate/types"
)

func TestSizePolicy_Lookups(t *testing.T) {
	p := DefaultSizePolicy()

	assert.Equal(t, []string{"1024x1024", "1024x1792", "1792x1024"}, p.SupportedSizes("dall-e-3"))
	assert.Equal(t, "256x256", p.DefaultSize("fal-ai/flux/schnell"))
	assert.Equal(t, "512x512", p.DefaultSize("stability-ai/stable-diffusion-3.5-medium"))
	assert.True(t, p.IsSupported("dall-e-2", "512x512"))
	assert.False(t, p.IsSupported("dall-e-3", "512x512"))

	// unknown models fall back
	assert.Equal(t, []string{FallbackSize}, p.SupportedSizes("unknown"))
	assert.Equal(t, FallbackSize, p.DefaultSize("unknown"))
}

func TestSizePolicy_Resolve(t *testing.T) {
	p := DefaultSizePolicy()

	tests := []struct {
		name            string
		model           string
		requested       string
		strict          bool
		wantSize        string
		wantSubstituted bool
		wantErr         bool
	}{
		{"empty gets default", "dall-e-2", "", true, "256x256", false, false},
		{"supported kept", "dall-e-3", "1792x1024", true, "1792x1024", false, false},
		{"strict rejects", "dall-e-3", "512x512", true, "", false, true},
		{"lenient falls back", "dall-e-3", "512x512", false, "1024x1024", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, substituted, err := p.Resolve(tt.model, tt.requested, tt.strict)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, types.ErrInvalidSize, types.GetErrorCode(err))
				assert.Contains(t, err.Error(), "Supported sizes: 1024x1024, 1024x1792, 1792x1024")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, size)
			assert.Equal(t, tt.wantSubstituted, substituted)
		})
	}
}

func TestNewSizePolicy_CopiesAndDropsEmpty(t *testing.T) {
	table := map[string][]string{"m": {"512x512"}, "empty": {}}
	p := NewSizePolicy(table)
	table["m"][0] = "mutated"

	assert.Equal(t, []string{"512x512"}, p.SupportedSizes("m"))
	assert.Equal(t, []string{FallbackSize}, p.SupportedSizes("empty"))
}

func TestDefaultSizeTable_SubsetOfKnownSizes(t *testing.T) {
	for model, sizes := range DefaultSizeTable() {
		for _, s := range sizes {
			assert.True(t, IsKnownSize(s), "%s lists unknown size %s", model, s)
		}
	}
}

func TestProperty_SizePolicyDefaultIsSupported(t *testing.T) {
	p := DefaultSizePolicy()
	ids := DefaultRegistry().Models()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("supported sizes never empty and default is a member", prop.ForAll(
		func(model string) bool {
			sizes := p.SupportedSizes(model)
			return len(sizes) > 0 && p.IsSupported(model, p.DefaultSize(model))
		},
		gen.OneGenOf(gen.OneConstOf(toInterfaces(ids)...), gen.AnyString()),
	))

	properties.Property("lenient resolve always yields a supported size", prop.ForAll(
		func(model, size string) bool {
			got, _, err := p.Resolve(model, size, false)
			return err == nil && p.IsSupported(model, got)
		},
		gen.OneConstOf(toInterfaces(ids)...),
		gen.OneConstOf(toInterfaces(KnownSizes)...),
	))

	properties.TestingRun(t)
}

func toInterfaces(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
