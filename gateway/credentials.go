package gateway

import (
	"fmt"
	"os"
	"strings"

	"github.com/BaSui01/imagegate/types"
)

// CredentialSource looks up a secret by its well-known name.
type CredentialSource interface {
	Lookup(key string) string
}

// StaticCredentials is a fixed key/secret table, usually built from config at startup.
type StaticCredentials map[string]string

func (s StaticCredentials) Lookup(key string) string { return s[key] }

// EnvCredentials reads the process environment on every lookup.
type EnvCredentials struct{}

func (EnvCredentials) Lookup(key string) string { return os.Getenv(key) }

// CredentialResolver checks that the secret for a model is present before any network call.
type CredentialResolver struct {
	source CredentialSource
}

func NewCredentialResolver(source CredentialSource) *CredentialResolver {
	if source == nil {
		source = StaticCredentials{}
	}
	return &CredentialResolver{source: source}
}

// Resolve returns the secret for cfg or API_KEY_NOT_CONFIGURED with params.provider set.
func (r *CredentialResolver) Resolve(cfg ModelConfig) (string, error) {
	key := strings.TrimSpace(r.source.Lookup(cfg.CredentialKey))
	if key == "" {
		return "", types.NewError(types.ErrAPIKeyNotConfigured,
			fmt.Sprintf("%s API key not configured", cfg.ProviderName)).
			WithParam("provider", cfg.ProviderName).
			WithProvider(string(cfg.Variant))
	}
	return key, nil
}

// Configured reports, per credential key, whether a secret is present. Used by readiness output.
func (r *CredentialResolver) Configured(models []ModelConfig) map[string]bool {
	out := make(map[string]bool)
	for _, m := range models {
		out[m.CredentialKey] = strings.TrimSpace(r.source.Lookup(m.CredentialKey)) != ""
	}
	return out
}
