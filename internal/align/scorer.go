package align

import (
	"sync"

	"rmss/internal/model"
)

type pairKey struct {
	lo, hi model.Protein
}

// keyFor builds the unordered cache key: similarity is symmetric, so (a,b)
// and (b,a) share one entry.
func keyFor(a, b model.Protein) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// Scorer memoizes Similarity by unordered protein pair. Bounded the same way
// as the translation cache: wholesale clear on overflow plus periodic resets
// driven by the orchestrator. Safe for concurrent use by scoring workers.
type Scorer struct {
	mu         sync.Mutex
	cache      map[pairKey]float64
	maxEntries int
}

const defaultMaxEntries = 100000

func NewScorer() *Scorer {
	return &Scorer{
		cache:      make(map[pairKey]float64),
		maxEntries: defaultMaxEntries,
	}
}

func (s *Scorer) Similarity(a, b model.Protein) float64 {
	key := keyFor(a, b)

	s.mu.Lock()
	if score, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return score
	}
	s.mu.Unlock()

	score := Similarity(a, b)

	s.mu.Lock()
	if len(s.cache) >= s.maxEntries {
		s.cache = make(map[pairKey]float64)
	}
	s.cache[key] = score
	s.mu.Unlock()
	return score
}

// Reset clears the memoization cache.
func (s *Scorer) Reset() {
	s.mu.Lock()
	s.cache = make(map[pairKey]float64)
	s.mu.Unlock()
}

// Len reports the current number of memoized pairs.
func (s *Scorer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}
