// Package urlindex interns normalized SERP URLs into dense integer ids and
// builds the forward (query -> id set) and reverse (id -> queries) mappings
// that the clustering engine operates on. Interned ids are stable within a
// single run only.
package urlindex

import (
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Index is the result of interning one query corpus.
type Index struct {
	// Depth is the ranking depth the index was built with.
	Depth int
	// IDSets maps query index -> sorted set of normalized URL ids,
	// restricted to the first Depth usable URLs of the query.
	IDSets [][]uint32
	// Reverse maps URL id -> ascending query indices containing that id.
	// Used for candidate pruning so pair enumeration stays near O(n*k)
	// instead of the full cross product.
	Reverse [][]int
	// URLs maps URL id -> normalized URL (first seen spelling wins).
	URLs []string
	// Malformed counts raw URLs that could not be parsed. Such URLs are
	// dropped from the id set; the affected query keeps its remaining URLs.
	Malformed int
}

// Build interns the ranked URL lists of a corpus. ranked[i] holds the
// search-ranking-ordered URLs of query i; only the first depth usable URLs
// contribute to its id set. A query with no usable URLs gets an empty id
// set, which callers treat as unclusterable rather than as an error.
func Build(ranked [][]string, depth int) *Index {
	idx := &Index{
		Depth:  depth,
		IDSets: make([][]uint32, len(ranked)),
	}
	intern := make(map[string]uint32)

	for qi, urls := range ranked {
		seen := make(map[uint32]struct{}, depth)
		set := make([]uint32, 0, depth)
		for _, raw := range urls {
			if len(set) >= depth {
				break
			}
			if strings.TrimSpace(raw) == "" {
				continue
			}
			if !usable(raw) {
				idx.Malformed++
				continue
			}
			norm := Normalize(raw)
			if norm == "" {
				idx.Malformed++
				continue
			}
			id, ok := intern[norm]
			if !ok {
				id = uint32(len(idx.URLs))
				intern[norm] = id
				idx.URLs = append(idx.URLs, norm)
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			set = append(set, id)
		}
		sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
		idx.IDSets[qi] = set
	}

	idx.Reverse = make([][]int, len(idx.URLs))
	for qi, set := range idx.IDSets {
		for _, id := range set {
			idx.Reverse[id] = append(idx.Reverse[id], qi)
		}
	}
	return idx
}

// Empty reports whether query qi has no usable URLs and is therefore
// excluded from clustering.
func (x *Index) Empty(qi int) bool {
	return len(x.IDSets[qi]) == 0
}

// RootDomains returns a census of eTLD+1 root domains across the interned
// corpus. Diagnostic only; URLs whose host has no derivable root domain
// (bare eTLDs, IPs) are skipped.
func (x *Index) RootDomains() map[string]int {
	census := make(map[string]int)
	for _, norm := range x.URLs {
		host := norm
		if idx := strings.IndexByte(host, '/'); idx >= 0 {
			host = host[:idx]
		}
		root, err := publicsuffix.EffectiveTLDPlusOne(host)
		if err != nil || root == "" {
			continue
		}
		census[root]++
	}
	return census
}
