// internal/scheduler/config.go
package scheduler

import (
	"time"

	"ai-post-scheduler/internal/common/config"
	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/models"
)

type Config struct {
	Location      *time.Location
	Entries       []models.ScheduleEntry
	Kinds         []models.ContentKind
	Concurrency   int
	RetryAttempts int
	RetryDelay    time.Duration
}

// LoadConfig maps scheduling and retry settings. Kinds keep the fixed
// order posts, stories.
func LoadConfig(cfg *config.Config) (*Config, error) {
	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return nil, errors.NewConfigInvalidError("scheduling.timezone: " + err.Error())
	}
	entries, err := cfg.Scheduling.Entries()
	if err != nil {
		return nil, errors.NewConfigInvalidError(err.Error())
	}

	var kinds []models.ContentKind
	for _, kind := range []models.ContentKind{models.KindPosts, models.KindStories} {
		if cfg.ContentGeneration.Kind(kind).Enabled {
			kinds = append(kinds, kind)
		}
	}

	concurrency := cfg.AIGeneration.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Config{
		Location:      loc,
		Entries:       entries,
		Kinds:         kinds,
		Concurrency:   concurrency,
		RetryAttempts: cfg.ErrorHandling.RetryAttempts,
		RetryDelay:    cfg.ErrorHandling.RetryDelay(),
	}, nil
}

func (c *Config) enabledEntries() []models.ScheduleEntry {
	var out []models.ScheduleEntry
	for _, e := range c.Entries {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out
}

func (c *Config) storiesEnabled() bool {
	for _, k := range c.Kinds {
		if k == models.KindStories {
			return true
		}
	}
	return false
}
