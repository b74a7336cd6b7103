// internal/models/content.go
package models

import "time"

// PostType is the publishing target on the social platform.
type PostType string

const (
	PostTypeFeed  PostType = "feed"
	PostTypeStory PostType = "story"
)

// ContentKind is a configured block of content ("posts" or "stories").
type ContentKind string

const (
	KindPosts   ContentKind = "posts"
	KindStories ContentKind = "stories"
)

// PostType maps a content kind to the publishing target.
func (k ContentKind) PostType() PostType {
	if k == KindStories {
		return PostTypeStory
	}
	return PostTypeFeed
}

// Quality levels understood by the generation providers.
const (
	QualityStandard = "standard"
	QualityHD       = "hd"
)

// ContentRequest describes one item to generate. It is built once by the
// prompt composer and passed by value afterwards.
type ContentRequest struct {
	ID         string   `json:"id"`
	Genre      string   `json:"genre"`
	SubGenre   string   `json:"subGenre,omitempty"`
	Style      string   `json:"style"`
	Theme      string   `json:"theme"`
	Palette    string   `json:"palette"`
	Modifier   string   `json:"modifier,omitempty"`
	Resolution string   `json:"resolution"`
	Quality    string   `json:"quality"`
	Vividness  string   `json:"vividness"` // provider style hint, "vivid" or "natural"
	PostType   PostType `json:"postType"`
	Prompt     string   `json:"prompt"`
}

// LogFields returns the request as structured log fields.
func (r ContentRequest) LogFields() map[string]interface{} {
	return map[string]interface{}{
		"itemId":     r.ID,
		"genre":      r.Genre,
		"subGenre":   r.SubGenre,
		"style":      r.Style,
		"theme":      r.Theme,
		"palette":    r.Palette,
		"resolution": r.Resolution,
		"postType":   string(r.PostType),
	}
}

// GeneratedAsset is the provider output for one ContentRequest.
type GeneratedAsset struct {
	Image         []byte         `json:"-"`
	ContentType   string         `json:"contentType"`
	SourceURL     string         `json:"sourceUrl,omitempty"`
	RevisedPrompt string         `json:"revisedPrompt,omitempty"`
	Provider      string         `json:"provider"`
	GeneratedAt   time.Time      `json:"generatedAt"`
	Request       ContentRequest `json:"request"`
}
