// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/validation"
	"ai-post-scheduler/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration once at startup. An empty path searches for
// config.yaml in ./configs and the working directory and merges
// config.<APP_ENVIRONMENT>.yaml on top. Any problem is returned as a
// CONFIG_INVALID StandardError.
func Load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigInvalidError(fmt.Sprintf("failed to read config file %s: %v", path, err))
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.NewConfigInvalidError(fmt.Sprintf("error reading base config: %v", err))
			}
		}

		if env := os.Getenv("APP_ENVIRONMENT"); env != "" {
			v.SetConfigName(fmt.Sprintf("config.%s", env))
			_ = v.MergeInConfig() // optional overlay
		}
	}

	expandEnvVars(v)

	if err := validateSettings(v.AllSettings()); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigInvalidError(fmt.Sprintf("failed to unmarshal config: %v", err))
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ai-post-scheduler")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("content_generation.resolution", "1024x1024")
	v.SetDefault("content_generation.selection_strategy", "random")
	v.SetDefault("content_generation.fresh_window_hours", 72)
	v.SetDefault("content_generation.posts.enabled", true)
	v.SetDefault("content_generation.posts.count", 1)
	v.SetDefault("content_generation.stories.enabled", false)
	v.SetDefault("content_generation.stories.count", 1)

	v.SetDefault("captions.use_emojis", true)
	v.SetDefault("captions.hashtag_style", models.HashtagStyleComprehensive)

	v.SetDefault("error_handling.retry_attempts", 3)
	v.SetDefault("error_handling.retry_delay_minutes", 5)
	v.SetDefault("error_handling.notifications.enabled", false)
	v.SetDefault("error_handling.notifications.channel", "ses")
	v.SetDefault("error_handling.notifications.region", "us-east-1")
	v.SetDefault("error_handling.notifications.subject_prefix", "[ai-post-scheduler]")

	v.SetDefault("social_media.enabled", true)
	v.SetDefault("social_media.platform", "instagram")
	v.SetDefault("social_media.post_types", []string{"feed", "story"})
	v.SetDefault("social_media.max_daily_posts", 3)
	v.SetDefault("social_media.min_publish_interval_seconds", 30)
	v.SetDefault("social_media.instagram.graph_base_url", "https://graph.facebook.com")
	v.SetDefault("social_media.instagram.api_version", "v19.0")
	v.SetDefault("social_media.instagram.status_poll_interval_seconds", 5)
	v.SetDefault("social_media.instagram.status_poll_attempts", 12)
	v.SetDefault("social_media.instagram.request_timeout_seconds", 30)
	v.SetDefault("social_media.telegram.request_timeout_seconds", 30)
	v.SetDefault("social_media.media_hosting.provider", "none")
	v.SetDefault("social_media.media_hosting.url_expiry_minutes", 60)

	v.SetDefault("ai_generation.provider", "openai")
	v.SetDefault("ai_generation.model", "dall-e-3")
	v.SetDefault("ai_generation.image_quality", models.QualityHD)
	v.SetDefault("ai_generation.creativity_level", "high")
	v.SetDefault("ai_generation.concurrency", 1)
	v.SetDefault("ai_generation.timeout_seconds", 120)

	v.SetDefault("counter.backend", "memory")
	v.SetDefault("counter.key_prefix", "ai-post-scheduler:daily-posts")
	v.SetDefault("database.redis.address", "localhost:6379")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.address", ":8080")
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets from well-known environment variables
// when the file left them empty.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.AIGeneration.APIKey, "OPENAI_API_KEY")
	setIfEmpty(&cfg.SocialMedia.Instagram.AccessToken, "INSTAGRAM_ACCESS_TOKEN")
	setIfEmpty(&cfg.SocialMedia.Instagram.UserID, "INSTAGRAM_USER_ID")
	setIfEmpty(&cfg.SocialMedia.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
	setIfEmpty(&cfg.ErrorHandling.Notifications.EmailFrom, "ALERT_EMAIL_FROM")

	if len(cfg.ErrorHandling.Notifications.EmailTo) == 0 {
		if val := os.Getenv("ALERT_EMAIL_TO"); val != "" {
			cfg.ErrorHandling.Notifications.EmailTo = strings.Split(val, ",")
		}
	}
}

func setIfEmpty(field *string, envKey string) {
	if *field != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

// applyDefaults fills values that depend on other settings.
func applyDefaults(cfg *Config) {
	cg := &cfg.ContentGeneration
	if len(cg.Genres) == 0 {
		cg.Genres = builtinGenres()
	}

	enabled := cfg.EnabledGenreNames()
	for _, kind := range []*ContentKindConfig{&cg.Posts, &cg.Stories} {
		if len(kind.Genres) == 0 {
			kind.Genres = enabled
		}
		if kind.Resolution == "" {
			kind.Resolution = cg.Resolution
		}
	}

	if len(cfg.Scheduling.DailyRuns) == 0 {
		cfg.Scheduling.DailyRuns = []DailyRunConfig{{Time: "10:00", Enabled: true}}
	}

	if cfg.AIGeneration.Concurrency < 1 {
		cfg.AIGeneration.Concurrency = 1
	}

	normalized := make([]string, 0, len(cfg.SocialMedia.PostTypes))
	for _, pt := range cfg.SocialMedia.PostTypes {
		switch strings.ToLower(pt) {
		case "post", "posts", "feed":
			normalized = append(normalized, string(models.PostTypeFeed))
		case "stories", "story":
			normalized = append(normalized, string(models.PostTypeStory))
		}
	}
	cfg.SocialMedia.PostTypes = normalized
}

func validateSettings(settings map[string]interface{}) error {
	validator, err := validation.NewValidator(settingsSchema)
	if err != nil {
		return errors.NewConfigInvalidError(err.Error())
	}
	result, err := validator.Validate(settings)
	if err != nil {
		return errors.NewConfigInvalidError(err.Error())
	}
	if !result.Valid {
		return errors.NewConfigInvalidError(strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}

// validateConfig checks cross-field rules and collects every problem.
func validateConfig(cfg *Config) error {
	var problems []string
	addf := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	catalog := cfg.ContentGeneration.GenreCatalog()
	for _, name := range cfg.EnabledGenreNames() {
		if err := catalog[name].Validate(); err != nil {
			addf("content_generation.genres: %v", err)
		}
	}

	for _, kind := range []models.ContentKind{models.KindPosts, models.KindStories} {
		kc := cfg.ContentGeneration.Kind(kind)
		if !kc.Enabled {
			continue
		}
		if kc.Count < 1 {
			addf("content_generation.%s.count must be at least 1", kind)
		}
		if len(kc.Genres) == 0 {
			addf("content_generation.%s.genres must list at least one enabled genre", kind)
		}
		for _, name := range kc.Genres {
			g, ok := catalog[name]
			switch {
			case !ok:
				addf("content_generation.%s.genres: unknown genre %q", kind, name)
			case !g.Enabled:
				addf("content_generation.%s.genres: genre %q is disabled", kind, name)
			}
		}
	}

	if _, err := cfg.Scheduling.Entries(); err != nil {
		addf("%v", err)
	}
	if _, err := cfg.Scheduling.Location(); err != nil {
		addf("scheduling.timezone: %v", err)
	}

	for _, tag := range cfg.Captions.CustomHashtags {
		if !validation.ValidateHashtag(tag) {
			addf("captions.custom_hashtags: invalid hashtag %q", tag)
		}
	}

	eh := cfg.ErrorHandling
	if eh.RetryAttempts < 1 {
		addf("error_handling.retry_attempts must be at least 1")
	}
	if eh.RetryDelayMinutes < 0 {
		addf("error_handling.retry_delay_minutes must not be negative")
	}
	if n := eh.Notifications; n.Enabled {
		switch n.Channel {
		case "ses":
			if !validation.ValidateEmail(n.EmailFrom) {
				addf("error_handling.notifications.email_from must be a valid address")
			}
			if len(n.EmailTo) == 0 {
				addf("error_handling.notifications.email_to is required for the ses channel")
			}
			for _, to := range n.EmailTo {
				if !validation.ValidateEmail(strings.TrimSpace(to)) {
					addf("error_handling.notifications.email_to: invalid address %q", to)
				}
			}
		case "sns":
			if n.TopicARN == "" {
				addf("error_handling.notifications.topic_arn is required for the sns channel")
			}
		}
	}

	sm := cfg.SocialMedia
	if sm.MaxDailyPosts < 1 {
		addf("social_media.max_daily_posts must be at least 1")
	}
	if sm.MinPublishIntervalSeconds < 0 {
		addf("social_media.min_publish_interval_seconds must not be negative")
	}
	if sm.Enabled {
		switch sm.Platform {
		case "instagram":
			if sm.Instagram.UserID == "" || sm.Instagram.AccessToken == "" {
				addf("social_media.instagram.user_id and access_token are required")
			}
			if !validation.ValidateURL(sm.Instagram.GraphBaseURL) {
				addf("social_media.instagram.graph_base_url must be an http(s) URL")
			}
		case "telegram":
			if sm.Telegram.BotToken == "" || sm.Telegram.ChatID == 0 {
				addf("social_media.telegram.bot_token and chat_id are required")
			}
		}
		if sm.UsesProviderURL() && cfg.AIGeneration.Provider == "mock" {
			addf("social_media.media_hosting.provider must be s3 for instagram with the mock provider, which returns no image URL")
		}
		if sm.MediaHosting.Provider == "s3" && sm.MediaHosting.Bucket == "" {
			addf("social_media.media_hosting.bucket is required for the s3 provider")
		}
	}

	ai := cfg.AIGeneration
	switch ai.Provider {
	case "openai":
		if ai.APIKey == "" {
			addf("ai_generation.api_key (or OPENAI_API_KEY) is required for the openai provider")
		}
	case "openai-compatible":
		if !validation.ValidateURL(ai.BaseURL) {
			addf("ai_generation.base_url is required for the openai-compatible provider")
		}
	}
	if ai.Timeout < 1 {
		addf("ai_generation.timeout_seconds must be at least 1")
	}

	if cfg.Counter.Backend == "redis" && cfg.Database.Redis.Address == "" {
		addf("database.redis.address is required for the redis counter backend")
	}

	if len(problems) > 0 {
		return errors.NewConfigInvalidError(strings.Join(problems, "; "))
	}
	return nil
}

// GetDuration converts seconds from config to time.Duration
func GetDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
