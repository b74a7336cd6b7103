// internal/models/caption.go
package models

import "strings"

// Hashtag styles.
const (
	HashtagStyleNone          = "none"
	HashtagStyleMinimal       = "minimal"
	HashtagStyleComprehensive = "comprehensive"
)

// Caption is the text published with an asset.
type Caption struct {
	Body     string   `json:"body"`
	Hashtags []string `json:"hashtags"`
	Emojis   bool     `json:"emojis"`
}

// Text renders the caption as posted: body, blank line, hashtags.
func (c Caption) Text() string {
	if len(c.Hashtags) == 0 {
		return c.Body
	}
	return c.Body + "\n\n" + strings.Join(c.Hashtags, " ")
}
