package provider

import "time"

const (
	defaultTimeout      = 120 * time.Second
	defaultPollInterval = 2 * time.Second
	defaultMaxPolls     = 120
)

// Config 配置单个上游供应商的连接参数.
type Config struct {
	APIKey       string        `json:"api_key" yaml:"api_key"`
	BaseURL      string        `json:"base_url" yaml:"base_url"`
	Timeout      time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	PollInterval time.Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
}

func (c Config) merge(o Config) Config {
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
	if o.PollInterval > 0 {
		c.PollInterval = o.PollInterval
	}
	return c
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultTimeout
}

func (c Config) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return defaultPollInterval
}

// DefaultConfigs 返回每个变体的默认端点.
func DefaultConfigs() map[Variant]Config {
	return map[Variant]Config{
		VariantOpenAI:    {BaseURL: "https://api.openai.com", Timeout: defaultTimeout},
		VariantXAI:       {BaseURL: "https://api.x.ai", Timeout: defaultTimeout},
		VariantGoogle:    {BaseURL: "https://generativelanguage.googleapis.com", Timeout: defaultTimeout},
		VariantDeepInfra: {BaseURL: "https://api.deepinfra.com", Timeout: defaultTimeout},
		VariantFireworks: {BaseURL: "https://api.fireworks.ai", Timeout: defaultTimeout},
		VariantLuma:      {BaseURL: "https://api.lumalabs.ai", Timeout: defaultTimeout, PollInterval: defaultPollInterval},
		VariantTogether:  {BaseURL: "https://api.together.xyz", Timeout: defaultTimeout},
		VariantFal:       {BaseURL: "https://fal.run", Timeout: defaultTimeout},
		VariantReplicate: {BaseURL: "https://api.replicate.com", Timeout: defaultTimeout, PollInterval: defaultPollInterval},
	}
}
