package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/imagegate/provider"
	"github.com/BaSui01/imagegate/types"
)

func TestCredentialResolver(t *testing.T) {
	cfg := ModelConfig{ID: "dall-e-3", Variant: provider.VariantOpenAI, CredentialKey: "OPENAI_API_KEY", ProviderName: "OpenAI"}

	t.Run("present", func(t *testing.T) {
		r := NewCredentialResolver(StaticCredentials{"OPENAI_API_KEY": "sk-1"})
		key, err := r.Resolve(cfg)
		require.NoError(t, err)
		assert.Equal(t, "sk-1", key)
	})

	for name, source := range map[string]CredentialSource{
		"missing":    StaticCredentials{},
		"blank":      StaticCredentials{"OPENAI_API_KEY": "   "},
		"nil source": nil,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewCredentialResolver(source).Resolve(cfg)
			e, ok := types.AsError(err)
			require.True(t, ok)
			assert.Equal(t, types.ErrAPIKeyNotConfigured, e.Code)
			assert.Equal(t, 500, e.Status())
			assert.Equal(t, "OpenAI API key not configured", e.Message)
			assert.Equal(t, map[string]string{"provider": "OpenAI"}, e.Params)
		})
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("IMAGEGATE_TEST_KEY", "from-env")
	assert.Equal(t, "from-env", EnvCredentials{}.Lookup("IMAGEGATE_TEST_KEY"))
}

func TestCredentialResolver_Configured(t *testing.T) {
	r := NewCredentialResolver(StaticCredentials{"OPENAI_API_KEY": "sk"})
	got := r.Configured(DefaultModels())
	assert.True(t, got["OPENAI_API_KEY"])
	assert.False(t, got["FAL_API_KEY"])
	assert.Len(t, got, 9)
}
