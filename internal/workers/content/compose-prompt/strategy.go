// internal/workers/content/compose-prompt/strategy.go
package composeprompt

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Strategy picks an index in [0, n) from a named option pool. n is always
// at least 1.
type Strategy interface {
	Pick(pool string, n int) int
}

// freshnessTracker is implemented by strategies that want to avoid
// repeating whole combinations.
type freshnessTracker interface {
	Used(combination string) bool
	Remember(combination string)
}

// ==========================
// Random
// ==========================

type RandomStrategy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomStrategy returns a uniform random strategy. A zero seed seeds
// from the runtime source.
func NewRandomStrategy(seed uint64) *RandomStrategy {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RandomStrategy{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandomStrategy) Pick(_ string, n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// ==========================
// Rotation
// ==========================

// RotationStrategy walks every pool round-robin, independently per pool.
type RotationStrategy struct {
	mu   sync.Mutex
	next map[string]int
}

func NewRotationStrategy() *RotationStrategy {
	return &RotationStrategy{next: make(map[string]int)}
}

func (s *RotationStrategy) Pick(pool string, n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.next[pool] % n
	s.next[pool] = i + 1
	return i
}

// ==========================
// Fresh
// ==========================

// FreshStrategy is random but remembers combinations for a window so the
// composer can re-draw instead of repeating one.
type FreshStrategy struct {
	*RandomStrategy
	seen *cache.Cache
}

func NewFreshStrategy(seed uint64, window time.Duration) *FreshStrategy {
	if window <= 0 {
		window = 72 * time.Hour
	}
	return &FreshStrategy{
		RandomStrategy: NewRandomStrategy(seed),
		seen:           cache.New(window, window/4),
	}
}

func (s *FreshStrategy) Used(combination string) bool {
	_, ok := s.seen.Get(combination)
	return ok
}

func (s *FreshStrategy) Remember(combination string) {
	s.seen.Set(combination, struct{}{}, cache.DefaultExpiration)
}

// ==========================
// Sequence
// ==========================

// SequenceStrategy replays a fixed index sequence, wrapping around. Each
// index is reduced modulo the pool size.
type SequenceStrategy struct {
	mu      sync.Mutex
	indices []int
	pos     int
}

func NewSequenceStrategy(indices ...int) *SequenceStrategy {
	if len(indices) == 0 {
		indices = []int{0}
	}
	return &SequenceStrategy{indices: indices}
}

func (s *SequenceStrategy) Pick(_ string, n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indices[s.pos%len(s.indices)]
	s.pos++
	if i < 0 {
		i = -i
	}
	return i % n
}

// NewStrategy builds the strategy named in content_generation.selection_strategy.
func NewStrategy(name string, freshWindow time.Duration) (Strategy, error) {
	switch name {
	case "", StrategyRandom:
		return NewRandomStrategy(0), nil
	case StrategyRotation:
		return NewRotationStrategy(), nil
	case StrategyFresh:
		return NewFreshStrategy(0, freshWindow), nil
	default:
		return nil, fmt.Errorf("unknown selection strategy %q", name)
	}
}
