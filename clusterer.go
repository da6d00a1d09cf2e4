package serpcluster

import (
	"context"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/projectdiscovery/gologger"
)

type pair struct {
	a, b  int
	score int
}

func pairKey(a, b int) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(a)<<32 | uint64(b)
}

// candidatePairs enumerates query pairs sharing at least minScore URLs by
// walking the inverted index, so unrelated pairs are never materialized.
// When live is non-nil only pairs with both endpoints live are returned.
func (e *Engine) candidatePairs(ctx context.Context, minScore int, live func(int) bool) ([]pair, error) {
	var pairs []pair
	counts := make(map[int]int)
	for a := range e.idx.IDSets {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if e.idx.Empty(a) {
			continue
		}
		if live != nil && !live(a) {
			continue
		}
		for k := range counts {
			delete(counts, k)
		}
		for _, id := range e.idx.IDSets[a] {
			for _, b := range e.idx.Reverse[id] {
				if b > a && (live == nil || live(b)) {
					counts[b]++
				}
			}
		}
		for b, n := range counts {
			if n >= minScore {
				pairs = append(pairs, pair{a: a, b: b, score: n})
			}
		}
	}
	return pairs, nil
}

// sortPairs orders strongest first; ties in index order so runs are
// reproducible.
func sortPairs(pairs []pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})
}

// warmScores pushes every candidate pair through the scorer so the memo is
// fully populated before the single-threaded clustering loop starts.
func (e *Engine) warmScores(pairs []pair) {
	if e.Options.Workers <= 1 || len(pairs) < 2 {
		for _, p := range pairs {
			_ = e.scorer.Score(p.a, p.b)
		}
		return
	}
	pool, err := ants.NewPool(e.Options.Workers)
	if err != nil {
		gologger.Warning().Msgf("failed to create scoring pool: %v, falling back to serial scoring", err)
		for _, p := range pairs {
			_ = e.scorer.Score(p.a, p.b)
		}
		return
	}
	defer pool.Release()

	chunk := (len(pairs) + e.Options.Workers - 1) / e.Options.Workers
	var wg sync.WaitGroup
	for start := 0; start < len(pairs); start += chunk {
		end := start + chunk
		if end > len(pairs) {
			end = len(pairs)
		}
		batch := pairs[start:end]
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			for _, p := range batch {
				_ = e.scorer.Score(p.a, p.b)
			}
		}); err != nil {
			wg.Done()
			for _, p := range batch {
				_ = e.scorer.Score(p.a, p.b)
			}
		}
	}
	wg.Wait()
}

// cluster runs the iterative pass: thresholds decay from MaxThreshold to
// MinThreshold and each iteration enumerates candidate pairs afresh, only
// between queries still unassigned when the iteration starts. A query that
// settled at a stricter level therefore never recruits new members at a
// looser one; such captures are left to the reattach pass. The final
// iteration always runs at MinThreshold even when Step does not divide the
// range.
func (e *Engine) cluster(ctx context.Context) (clusters [][]int, singletons []int, err error) {
	all, err := e.candidatePairs(ctx, e.Options.MinThreshold, nil)
	if err != nil {
		return nil, nil, err
	}
	e.warmScores(all)

	clusterOf := make([]int, len(e.queries))
	for i := range clusterOf {
		clusterOf[i] = -1
	}
	unassigned := func(i int) bool { return clusterOf[i] < 0 }
	// geography conflicts are permanent, never re-checked at looser levels
	skip := make(map[uint64]struct{})

	for t := e.Options.MaxThreshold; ; {
		pairs, err := e.candidatePairs(ctx, t, unassigned)
		if err != nil {
			return nil, nil, err
		}
		sortPairs(pairs)
		for _, p := range pairs {
			if _, ok := skip[pairKey(p.a, p.b)]; ok {
				continue
			}
			ca, cb := clusterOf[p.a], clusterOf[p.b]
			if ca >= 0 && cb >= 0 {
				// both settled earlier in this iteration; never merged
				continue
			}
			if !e.compatible(p.a, p.b) {
				skip[pairKey(p.a, p.b)] = struct{}{}
				continue
			}
			switch {
			case ca < 0 && cb < 0:
				clusterOf[p.a], clusterOf[p.b] = len(clusters), len(clusters)
				clusters = append(clusters, []int{p.a, p.b})
			case ca >= 0:
				if e.admit(clusters[ca], p.b, t) {
					clusterOf[p.b] = ca
					clusters[ca] = append(clusters[ca], p.b)
				}
			default:
				if e.admit(clusters[cb], p.a, t) {
					clusterOf[p.a] = cb
					clusters[cb] = append(clusters[cb], p.a)
				}
			}
		}
		if t == e.Options.MinThreshold {
			break
		}
		t -= e.Options.Step
		if t < e.Options.MinThreshold {
			t = e.Options.MinThreshold
		}
	}

	for i, c := range clusterOf {
		if c < 0 && !e.idx.Empty(i) {
			singletons = append(singletons, i)
		}
	}
	return clusters, singletons, nil
}

// admit decides whether candidate may join members at threshold t: the
// cluster must have room and every existing member must share at least t
// URLs with the candidate and be geography-compatible with it. A two-member
// cluster whose mutual overlap reaches twice the threshold is a
// near-duplicate couple and demands the same strength from the candidate.
func (e *Engine) admit(members []int, candidate int, t int) bool {
	if len(members) >= e.Options.MaxClusterSize {
		return false
	}
	bar := t
	if len(members) == 2 && e.scorer.Score(members[0], members[1]) >= 2*t {
		bar = 2 * t
	}
	for _, m := range members {
		if e.scorer.Score(candidate, m) < bar || !e.compatible(candidate, m) {
			return false
		}
	}
	return true
}
