// internal/workers/publishing/publish-post/models.go
package publishpost

import (
	"context"
	"time"

	"ai-post-scheduler/internal/models"
)

// Publisher posts one asset with its caption.
//
// Errors are StandardErrors: PUBLISH_FAILED when a retry may help,
// PUBLISH_FATAL when it cannot, DAILY_CAP_REACHED from CappedPublisher.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, asset *models.GeneratedAsset, caption models.Caption, postType models.PostType) (*Result, error)
}

// Result acknowledges a successful publish.
type Result struct {
	Platform    string          `json:"platform"`
	MediaID     string          `json:"mediaId"`
	PostType    models.PostType `json:"postType"`
	Day         string          `json:"day,omitempty"` // day charged against the daily cap
	PublishedAt time.Time       `json:"publishedAt"`
}

// Platforms
const (
	PlatformInstagram = "instagram"
	PlatformTelegram  = "telegram"
	PlatformDryRun    = "dry-run"
)

// Media hosting providers
const (
	HostingNone = "none"
	HostingS3   = "s3"
)

// Instagram media limits.
const (
	FeedWidth   = 1080
	FeedHeight  = 1080
	StoryWidth  = 1080
	StoryHeight = 1920

	JPEGQuality   = 95
	MaxMediaBytes = 8 << 20
)
