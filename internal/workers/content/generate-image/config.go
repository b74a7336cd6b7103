// internal/workers/content/generate-image/config.go
package generateimage

import (
	"time"

	"ai-post-scheduler/internal/common/config"
)

type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration

	// RequestURL asks the provider for a hosted image URL instead of inline
	// bytes, for platforms that fetch the image themselves.
	RequestURL bool
}

func LoadConfig(cfg *config.Config) *Config {
	ai := cfg.AIGeneration
	c := &Config{
		Provider: ai.Provider,
		Model:    ai.Model,
		APIKey:   ai.APIKey,
		BaseURL:  ai.BaseURL,
		Timeout:  config.GetDuration(ai.Timeout),

		RequestURL: cfg.SocialMedia.UsesProviderURL(),
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	return c
}
