// internal/workers/communication/send-alert/config.go
package sendalert

import (
	"time"

	"ai-post-scheduler/internal/common/config"
)

type Config struct {
	Enabled       bool
	Channel       string
	Region        string
	FromEmail     string
	ToEmails      []string
	TopicARN      string
	SubjectPrefix string
	Timeout       time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	n := cfg.ErrorHandling.Notifications
	return &Config{
		Enabled:       n.Enabled,
		Channel:       n.Channel,
		Region:        n.Region,
		FromEmail:     n.EmailFrom,
		ToEmails:      n.EmailTo,
		TopicARN:      n.TopicARN,
		SubjectPrefix: n.SubjectPrefix,
		Timeout:       30 * time.Second,
	}
}
