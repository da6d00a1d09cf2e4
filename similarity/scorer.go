// Package similarity computes the shared-URL-id count between query pairs.
// Scores are symmetric and memoized per unordered pair for the lifetime of
// one engine run; nothing is persisted across runs.
package similarity

import "sync"

// Scorer holds the per-run score cache over dense query indices.
// Safe for concurrent use: Score is read-only apart from the guarded memo,
// so independent pairs can be scored from multiple workers.
type Scorer struct {
	sets [][]uint32
	mu   sync.RWMutex
	memo map[uint64]int
}

// NewScorer creates a scorer over the corpus id sets. sets[i] must be the
// sorted URL-id slice of query i, already restricted to the ranking depth.
func NewScorer(sets [][]uint32) *Scorer {
	return &Scorer{
		sets: sets,
		memo: make(map[uint64]int),
	}
}

// Score returns the number of shared URL ids between queries a and b.
// Symmetric; callers never evaluate Score(a, a).
func (s *Scorer) Score(a, b int) int {
	key := pairKey(a, b)

	s.mu.RLock()
	if v, ok := s.memo[key]; ok {
		s.mu.RUnlock()
		return v
	}
	s.mu.RUnlock()

	v := intersect(s.sets[a], s.sets[b])

	s.mu.Lock()
	s.memo[key] = v
	s.mu.Unlock()
	return v
}

// Pairs returns the number of distinct pairs scored so far.
func (s *Scorer) Pairs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memo)
}

// pairKey packs an unordered index pair into one cache key, smaller index
// in the high bits so (a,b) and (b,a) collide by construction.
func pairKey(a, b int) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)<<32 | uint64(uint32(b))
}

// intersect counts common elements of two sorted slices with a merge walk.
func intersect(x, y []uint32) int {
	var n, i, j int
	for i < len(x) && j < len(y) {
		switch {
		case x[i] < y[j]:
			i++
		case x[i] > y[j]:
			j++
		default:
			n++
			i++
			j++
		}
	}
	return n
}
