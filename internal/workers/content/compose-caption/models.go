// internal/workers/content/compose-caption/models.go
package composecaption

import "ai-post-scheduler/internal/models"

// MaxHashtags is the per-post hashtag limit of the publishing platforms.
const MaxHashtags = 30

type template struct {
	emoji string
	body  func(genre string) string
}

var templates = []template{
	{emoji: "🎨", body: func(genre string) string {
		return models.DisplayGenre(genre) + " AI-generated art exploring creativity and technology"
	}},
	{emoji: "✨", body: func(genre string) string {
		return "Diving into the world of " + plainGenre(genre) + " through AI-powered imagination"
	}},
	{emoji: "🤖", body: func(genre string) string {
		return "Pushing artistic boundaries with " + plainGenre(genre) + " themed AI art"
	}},
}

var genericHashtags = []string{
	"#AICreativity",
	"#GenerativeArt",
	"#AIArt",
	"#GenerativeAI",
	"#ArtificialIntelligence",
}
