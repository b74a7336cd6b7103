// internal/workers/content/compose-prompt/handler.go
package composeprompt

import (
	"fmt"
	"strings"

	"ai-post-scheduler/internal/common/errors"
	"ai-post-scheduler/internal/common/logger"
	"ai-post-scheduler/internal/models"

	"github.com/google/uuid"
)

const (
	TaskType = "compose-prompt"

	// redraws before a fresh strategy accepts a repeated combination
	maxFreshDraws = 10
)

type Handler struct {
	config   *Config
	strategy Strategy
	logger   logger.Logger
}

func NewHandler(config *Config, strategy Strategy, log logger.Logger) *Handler {
	if strategy == nil {
		strategy = NewRandomStrategy(0)
	}
	return &Handler{
		config:   config,
		strategy: strategy,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Compose builds count requests for a content kind, picking a genre from
// the kind's genre list for every item. A count of 0 uses the configured one.
func (h *Handler) Compose(kind models.ContentKind, count int) ([]models.ContentRequest, error) {
	kc, ok := h.config.Kinds[kind]
	if !ok {
		return nil, errors.NewConfigInvalidError(fmt.Sprintf("unknown content kind %q", kind))
	}
	if count <= 0 {
		count = kc.Count
	}
	if len(kc.Genres) == 0 {
		return nil, errors.NewConfigInvalidError(fmt.Sprintf("content_generation.%s.genres is empty", kind))
	}

	requests := make([]models.ContentRequest, 0, count)
	for i := 0; i < count; i++ {
		name := kc.Genres[h.strategy.Pick(string(kind)+":"+poolGenre, len(kc.Genres))]
		genre, err := h.lookupGenre(name)
		if err != nil {
			return nil, err
		}
		requests = append(requests, h.composeOne(genre, kind))
	}

	h.logger.Info("prompts composed", map[string]interface{}{
		"kind":  string(kind),
		"count": len(requests),
	})
	return requests, nil
}

// ComposeForGenre builds count requests for one genre.
func (h *Handler) ComposeForGenre(genreName string, count int, kind models.ContentKind) ([]models.ContentRequest, error) {
	genre, err := h.lookupGenre(genreName)
	if err != nil {
		return nil, err
	}

	requests := make([]models.ContentRequest, 0, count)
	for i := 0; i < count; i++ {
		requests = append(requests, h.composeOne(genre, kind))
	}
	return requests, nil
}

func (h *Handler) lookupGenre(name string) (models.Genre, error) {
	genre, ok := h.config.Catalog[name]
	if !ok {
		return models.Genre{}, errors.NewConfigInvalidError(fmt.Sprintf("genre %q is not configured", name))
	}
	if !genre.Enabled {
		return models.Genre{}, errors.NewConfigInvalidError(fmt.Sprintf("genre %q is disabled", name))
	}
	if err := genre.Validate(); err != nil {
		return models.Genre{}, errors.NewConfigInvalidError(err.Error())
	}
	return genre, nil
}

func (h *Handler) composeOne(genre models.Genre, kind models.ContentKind) models.ContentRequest {
	tracker, _ := h.strategy.(freshnessTracker)

	var req models.ContentRequest
	for draw := 0; ; draw++ {
		req = h.draw(genre)
		if tracker == nil {
			break
		}
		key := combinationKey(req)
		if !tracker.Used(key) || draw >= maxFreshDraws-1 {
			tracker.Remember(key)
			break
		}
	}

	req.ID = uuid.NewString()
	req.PostType = kind.PostType()
	req.Resolution = h.config.Kinds[kind].Resolution
	req.Quality = h.config.Quality
	if req.Quality == "" {
		req.Quality = models.QualityHD
	}
	req.Vividness = VividnessVivid
	if h.config.CreativityLevel == CreativityLow {
		req.Vividness = VividnessNatural
	}
	if h.config.CreativityLevel == CreativityHigh || h.config.CreativityLevel == "" {
		req.Modifier = artisticModifiers[h.strategy.Pick(poolModifier, len(artisticModifiers))]
	}
	req.Prompt = BuildPrompt(req)

	h.logger.Debug("content request composed", req.LogFields())
	return req
}

// draw picks the option values of one item. Every value is a member of the
// genre's lists.
func (h *Handler) draw(genre models.Genre) models.ContentRequest {
	pick := func(pool string, options []string) string {
		return options[h.strategy.Pick(genre.Name+":"+pool, len(options))]
	}

	req := models.ContentRequest{
		Genre:   genre.Name,
		Style:   pick(poolStyle, genre.Styles),
		Theme:   pick(poolTheme, genre.Themes),
		Palette: pick(poolPalette, genre.Palettes),
	}
	if len(genre.SubGenres) > 0 {
		req.SubGenre = pick(poolSubGenre, genre.SubGenres)
	}
	return req
}

func combinationKey(req models.ContentRequest) string {
	return strings.Join([]string{req.Genre, req.SubGenre, req.Style, req.Theme, req.Palette}, "|")
}

// BuildPrompt renders the generation prompt for a request.
func BuildPrompt(req models.ContentRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A highly detailed, professional %s artwork in the %s genre", req.Style, strings.ReplaceAll(req.Genre, "_", " "))
	if req.SubGenre != "" {
		fmt.Fprintf(&b, ", specifically in the %s sub-genre", req.SubGenre)
	}
	fmt.Fprintf(&b, ". Theme: %s. Color palette: %s tones. ", req.Theme, req.Palette)
	b.WriteString("Exceptional artistic quality, intricate details, perfect composition, cinematic lighting, sharp focus, high resolution digital art.")
	if req.Modifier != "" {
		b.WriteString(" ")
		b.WriteString(req.Modifier)
	}
	return b.String()
}
