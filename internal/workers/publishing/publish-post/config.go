// internal/workers/publishing/publish-post/config.go
package publishpost

import (
	"time"

	"ai-post-scheduler/internal/common/config"
)

type Config struct {
	Enabled            bool
	Platform           string
	PostTypes          []string
	MaxDailyPosts      int
	MinPublishInterval time.Duration

	Instagram InstagramConfig
	Telegram  TelegramConfig
	Hosting   HostingConfig
}

type InstagramConfig struct {
	UserID       string
	AccessToken  string
	GraphBaseURL string
	APIVersion   string
	PollInterval time.Duration
	PollAttempts int
	Timeout      time.Duration
}

type TelegramConfig struct {
	BotToken    string
	ChatID      int64
	APIEndpoint string
	Timeout     time.Duration
}

type HostingConfig struct {
	Provider  string
	Bucket    string
	Prefix    string
	Region    string
	URLExpiry time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	sm := cfg.SocialMedia
	return &Config{
		Enabled:            sm.Enabled,
		Platform:           sm.Platform,
		PostTypes:          sm.PostTypes,
		MaxDailyPosts:      sm.MaxDailyPosts,
		MinPublishInterval: config.GetDuration(sm.MinPublishIntervalSeconds),
		Instagram: InstagramConfig{
			UserID:       sm.Instagram.UserID,
			AccessToken:  sm.Instagram.AccessToken,
			GraphBaseURL: sm.Instagram.GraphBaseURL,
			APIVersion:   sm.Instagram.APIVersion,
			PollInterval: config.GetDuration(sm.Instagram.StatusPollInterval),
			PollAttempts: sm.Instagram.StatusPollAttempts,
			Timeout:      config.GetDuration(sm.Instagram.RequestTimeout),
		},
		Telegram: TelegramConfig{
			BotToken:    sm.Telegram.BotToken,
			ChatID:      sm.Telegram.ChatID,
			APIEndpoint: sm.Telegram.APIEndpoint,
			Timeout:     config.GetDuration(sm.Telegram.RequestTimeout),
		},
		Hosting: HostingConfig{
			Provider:  sm.MediaHosting.Provider,
			Bucket:    sm.MediaHosting.Bucket,
			Prefix:    sm.MediaHosting.Prefix,
			Region:    sm.MediaHosting.Region,
			URLExpiry: time.Duration(sm.MediaHosting.URLExpiryMinutes) * time.Minute,
		},
	}
}
