// internal/workers/content/compose-prompt/models.go
package composeprompt

// Selection strategies
const (
	StrategyRandom   = "random"
	StrategyRotation = "rotation"
	StrategyFresh    = "fresh"
)

// Creativity levels
const (
	CreativityLow    = "low"
	CreativityMedium = "medium"
	CreativityHigh   = "high"
)

// Provider style hints
const (
	VividnessVivid   = "vivid"
	VividnessNatural = "natural"
)

// Option pools a strategy picks from. Pools are namespaced per genre.
const (
	poolGenre    = "genre"
	poolSubGenre = "sub_genre"
	poolStyle    = "style"
	poolTheme    = "theme"
	poolPalette  = "palette"
	poolModifier = "modifier"
)

var artisticModifiers = []string{
	"Hyper-realistic rendering.",
	"Stunning visual complexity.",
	"Breathtaking artistic interpretation.",
	"Masterful use of light and shadow.",
	"Exceptional level of detail and precision.",
}
