// internal/workers/content/compose-prompt/config.go
package composeprompt

import (
	"time"

	"ai-post-scheduler/internal/common/config"
	"ai-post-scheduler/internal/models"
)

// KindConfig is the per-kind part of the composer settings.
type KindConfig struct {
	Enabled    bool
	Count      int
	Genres     []string
	Resolution string
}

type Config struct {
	Catalog         map[string]models.Genre
	Kinds           map[models.ContentKind]KindConfig
	Quality         string
	CreativityLevel string
	Strategy        string
	FreshWindow     time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	cg := cfg.ContentGeneration
	kinds := make(map[models.ContentKind]KindConfig, 2)
	for _, kind := range []models.ContentKind{models.KindPosts, models.KindStories} {
		k := cg.Kind(kind)
		kinds[kind] = KindConfig{
			Enabled:    k.Enabled,
			Count:      k.Count,
			Genres:     k.Genres,
			Resolution: k.Resolution,
		}
	}

	return &Config{
		Catalog:         cg.GenreCatalog(),
		Kinds:           kinds,
		Quality:         cfg.AIGeneration.ImageQuality,
		CreativityLevel: cfg.AIGeneration.CreativityLevel,
		Strategy:        cg.SelectionStrategy,
		FreshWindow:     time.Duration(cg.FreshWindowHours) * time.Hour,
	}
}
