// internal/workers/content/compose-caption/handler.go
package composecaption

import (
	"hash/fnv"
	"strings"
	"unicode"

	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/common/validation"
	"ai-post-scheduler/internal/models"
)

const (
	TaskType = "compose-caption"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Compose(req models.ContentRequest) models.Caption {
	caption := Compose(req, *h.config)
	h.logger.Debug("caption composed", map[string]interface{}{
		"itemId":   req.ID,
		"hashtags": len(caption.Hashtags),
	})
	return caption
}

// Compose builds the caption for req. It has no side effects and returns
// the same caption for the same inputs.
func Compose(req models.ContentRequest, cfg Config) models.Caption {
	tpl := templates[templateIndex(req)]

	var body strings.Builder
	if cfg.UseEmojis {
		body.WriteString(tpl.emoji)
		body.WriteString(" ")
	}
	body.WriteString(tpl.body(req.Genre))
	if req.Style != "" {
		body.WriteString(" in " + req.Style + " style")
	}
	if req.Theme != "" {
		body.WriteString(", exploring the theme of " + req.Theme)
	}

	return models.Caption{
		Body:     body.String(),
		Hashtags: Hashtags(req, cfg.HashtagStyle, cfg.CustomHashtags),
		Emojis:   cfg.UseEmojis,
	}
}

// Hashtags returns the normalised, de-duplicated tag list for a style:
// comprehensive adds genre, style and theme tags to the custom ones,
// minimal keeps only the custom ones, none returns nothing.
func Hashtags(req models.ContentRequest, style string, custom []string) []string {
	var raw []string
	switch style {
	case models.HashtagStyleNone:
		return nil
	case models.HashtagStyleMinimal:
		raw = append(raw, custom...)
	default:
		raw = append(raw, custom...)
		raw = append(raw, "#"+camel(req.Genre)+"Art")
		raw = append(raw, genericHashtags...)
		if req.Style != "" {
			raw = append(raw, "#"+camel(req.Style)+"Art")
		}
		if req.Theme != "" {
			raw = append(raw, "#"+camel(req.Theme))
		}
	}

	seen := make(map[string]bool, len(raw))
	tags := make([]string, 0, len(raw))
	for _, r := range raw {
		tag := normalizeHashtag(r)
		if tag == "" || !validation.ValidateHashtag(tag) {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
		if len(tags) == MaxHashtags {
			break
		}
	}
	return tags
}

// templateIndex hashes the option values so a request always gets the same template.
func templateIndex(req models.ContentRequest) int {
	h := fnv.New32a()
	for _, part := range []string{req.Genre, req.SubGenre, req.Style, req.Theme, req.Palette} {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	return int(h.Sum32() % uint32(len(templates)))
}

// normalizeHashtag adds the leading '#' and strips characters a hashtag
// cannot contain.
func normalizeHashtag(tag string) string {
	tag = strings.TrimLeft(strings.TrimSpace(tag), "#")
	var b strings.Builder
	for _, r := range tag {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "#" + b.String()
}

// camel turns "dragon's lair" into "DragonsLair".
func camel(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	})
	var b strings.Builder
	for _, w := range words {
		runes := []rune(strings.ReplaceAll(w, "'", ""))
		if len(runes) == 0 {
			continue
		}
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

func plainGenre(genre string) string {
	return strings.ReplaceAll(genre, "_", " ")
}
