// internal/common/config/config.go
package config

import (
	"fmt"
	"sort"
	"time"

	"ai-post-scheduler/internal/models"
)

// Config is the main application configuration struct.
type Config struct {
	App               AppConfig               `mapstructure:"app"`
	Logging           LoggingConfig           `mapstructure:"logging"`
	ContentGeneration ContentGenerationConfig `mapstructure:"content_generation"`
	Scheduling        SchedulingConfig        `mapstructure:"scheduling"`
	Captions          CaptionsConfig          `mapstructure:"captions"`
	ErrorHandling     ErrorHandlingConfig     `mapstructure:"error_handling"`
	SocialMedia       SocialMediaConfig       `mapstructure:"social_media"`
	AIGeneration      AIGenerationConfig      `mapstructure:"ai_generation"`
	Counter           CounterConfig           `mapstructure:"counter"`
	Database          DatabaseConfig          `mapstructure:"database"`
	Metrics           MetricsConfig           `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// --- Content ---

// GenreConfig is one entry of content_generation.genres. A genre without an
// enabled key is enabled.
type GenreConfig struct {
	Enabled   *bool    `mapstructure:"enabled"`
	SubGenres []string `mapstructure:"sub_genres"`
	Styles    []string `mapstructure:"styles"`
	Themes    []string `mapstructure:"themes"`
	Palettes  []string `mapstructure:"palettes"`
}

// IsEnabled reports whether the genre may be selected.
func (g GenreConfig) IsEnabled() bool {
	return g.Enabled == nil || *g.Enabled
}

// ContentKindConfig configures one content kind (posts or stories).
type ContentKindConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Count      int      `mapstructure:"count"`
	Genres     []string `mapstructure:"genres"`
	Resolution string   `mapstructure:"resolution"` // falls back to content_generation.resolution
}

type ContentGenerationConfig struct {
	Resolution        string                 `mapstructure:"resolution"`
	SelectionStrategy string                 `mapstructure:"selection_strategy"` // random, rotation, fresh
	FreshWindowHours  int                    `mapstructure:"fresh_window_hours"`
	Genres            map[string]GenreConfig `mapstructure:"genres"`
	Posts             ContentKindConfig      `mapstructure:"posts"`
	Stories           ContentKindConfig      `mapstructure:"stories"`
}

// Kind returns the settings of a content kind.
func (c ContentGenerationConfig) Kind(kind models.ContentKind) ContentKindConfig {
	if kind == models.KindStories {
		return c.Stories
	}
	return c.Posts
}

// GenreCatalog converts configured genres into domain genres keyed by name.
func (c ContentGenerationConfig) GenreCatalog() map[string]models.Genre {
	out := make(map[string]models.Genre, len(c.Genres))
	for name, g := range c.Genres {
		out[name] = models.Genre{
			Name:      name,
			Enabled:   g.IsEnabled(),
			SubGenres: g.SubGenres,
			Styles:    g.Styles,
			Themes:    g.Themes,
			Palettes:  g.Palettes,
		}
	}
	return out
}

// --- Scheduling ---

type DailyRunConfig struct {
	Time    string `mapstructure:"time"`
	Enabled bool   `mapstructure:"enabled"`
}

type SchedulingConfig struct {
	Timezone  string           `mapstructure:"timezone"`
	DailyRuns []DailyRunConfig `mapstructure:"daily_runs"`
}

// Location resolves the configured timezone.
func (s SchedulingConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(s.Timezone)
}

// Entries parses daily runs in configured order.
func (s SchedulingConfig) Entries() ([]models.ScheduleEntry, error) {
	entries := make([]models.ScheduleEntry, 0, len(s.DailyRuns))
	for i, run := range s.DailyRuns {
		e, err := models.ParseScheduleEntry(run.Time, run.Enabled)
		if err != nil {
			return nil, fmt.Errorf("scheduling.daily_runs[%d]: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// --- Captions ---

type CaptionsConfig struct {
	UseEmojis      bool     `mapstructure:"use_emojis"`
	HashtagStyle   string   `mapstructure:"hashtag_style"`
	CustomHashtags []string `mapstructure:"custom_hashtags"`
}

// --- Error handling ---

type ErrorHandlingConfig struct {
	RetryAttempts     int                `mapstructure:"retry_attempts"`
	RetryDelayMinutes float64            `mapstructure:"retry_delay_minutes"`
	Notifications     NotificationConfig `mapstructure:"notifications"`
}

// RetryDelay converts the configured minutes to a duration.
func (e ErrorHandlingConfig) RetryDelay() time.Duration {
	return time.Duration(e.RetryDelayMinutes * float64(time.Minute))
}

// NotificationConfig holds settings for the failure alert sender.
type NotificationConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Channel       string   `mapstructure:"channel"` // ses or sns
	Region        string   `mapstructure:"region"`
	EmailFrom     string   `mapstructure:"email_from"`
	EmailTo       []string `mapstructure:"email_to"`
	TopicARN      string   `mapstructure:"topic_arn"`
	SubjectPrefix string   `mapstructure:"subject_prefix"`
}

// --- Social media ---

type InstagramConfig struct {
	UserID             string `mapstructure:"user_id"`
	AccessToken        string `mapstructure:"access_token"`
	GraphBaseURL       string `mapstructure:"graph_base_url"`
	APIVersion         string `mapstructure:"api_version"`
	StatusPollInterval int    `mapstructure:"status_poll_interval_seconds"`
	StatusPollAttempts int    `mapstructure:"status_poll_attempts"`
	RequestTimeout     int    `mapstructure:"request_timeout_seconds"`
}

type TelegramConfig struct {
	BotToken       string `mapstructure:"bot_token"`
	ChatID         int64  `mapstructure:"chat_id"`
	APIEndpoint    string `mapstructure:"api_endpoint"`
	RequestTimeout int    `mapstructure:"request_timeout_seconds"`
}

// MediaHostingConfig configures where prepared images are uploaded so the
// platform can fetch them by URL.
type MediaHostingConfig struct {
	Provider         string `mapstructure:"provider"` // s3 or none
	Bucket           string `mapstructure:"bucket"`
	Prefix           string `mapstructure:"prefix"`
	Region           string `mapstructure:"region"`
	URLExpiryMinutes int    `mapstructure:"url_expiry_minutes"`
}

type SocialMediaConfig struct {
	Enabled                   bool               `mapstructure:"enabled"`
	Platform                  string             `mapstructure:"platform"` // instagram or telegram
	PostTypes                 []string           `mapstructure:"post_types"`
	MaxDailyPosts             int                `mapstructure:"max_daily_posts"`
	MinPublishIntervalSeconds int                `mapstructure:"min_publish_interval_seconds"`
	Instagram                 InstagramConfig    `mapstructure:"instagram"`
	Telegram                  TelegramConfig     `mapstructure:"telegram"`
	MediaHosting              MediaHostingConfig `mapstructure:"media_hosting"`
}

// AllowsPostType reports whether post_types lists t.
func (s SocialMediaConfig) AllowsPostType(t models.PostType) bool {
	for _, pt := range s.PostTypes {
		if pt == string(t) {
			return true
		}
	}
	return false
}

// UsesProviderURL reports whether the platform is handed the image
// generator's own URL because no media host is configured.
func (s SocialMediaConfig) UsesProviderURL() bool {
	hosting := s.MediaHosting.Provider
	return s.Enabled && s.Platform == "instagram" && (hosting == "" || hosting == "none")
}

// --- AI generation ---

type AIGenerationConfig struct {
	Provider        string `mapstructure:"provider"` // openai, openai-compatible, mock
	Model           string `mapstructure:"model"`
	APIKey          string `mapstructure:"api_key"`
	BaseURL         string `mapstructure:"base_url"`
	ImageQuality    string `mapstructure:"image_quality"`    // standard or hd
	CreativityLevel string `mapstructure:"creativity_level"` // low, medium, high
	Concurrency     int    `mapstructure:"concurrency"`
	Timeout         int    `mapstructure:"timeout_seconds"`
}

type CounterConfig struct {
	Backend   string `mapstructure:"backend"` // memory or redis
	KeyPrefix string `mapstructure:"key_prefix"`
}

// EnabledGenreNames lists enabled genres, sorted for stable output.
func (c *Config) EnabledGenreNames() []string {
	var names []string
	for name, g := range c.ContentGeneration.Genres {
		if g.IsEnabled() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
