// internal/workers/content/compose-caption/config.go
package composecaption

import (
	"ai-post-scheduler/internal/common/config"
	"ai-post-scheduler/internal/models"
)

// Config holds the caption settings. It is read-only after load.
type Config struct {
	UseEmojis      bool
	HashtagStyle   string
	CustomHashtags []string
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		UseEmojis:      cfg.Captions.UseEmojis,
		HashtagStyle:   cfg.Captions.HashtagStyle,
		CustomHashtags: cfg.Captions.CustomHashtags,
	}
	if c.HashtagStyle == "" {
		c.HashtagStyle = models.HashtagStyleComprehensive
	}
	return c
}
