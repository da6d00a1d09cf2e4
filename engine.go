// Package serpcluster groups search queries by search-intent using the
// overlap of their ranked result URLs. Clustering is iterative: the overlap
// threshold starts strict and decays, so tightly related queries bond first
// and looser ones attach only where every existing member agrees.
package serpcluster

import (
	"context"
	"runtime"
	"sort"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/utils/errkit"

	"github.com/serpkit/serpcluster/geo"
	"github.com/serpkit/serpcluster/similarity"
	"github.com/serpkit/serpcluster/urlindex"
)

// Defaults used by New when the corresponding option is zero.
const (
	DefaultMinThreshold       = 3
	DefaultMaxThreshold       = 10
	DefaultStep               = 1
	DefaultDepth              = 20
	DefaultMaxClusterSize     = 100
	DefaultReattachMaxCompare = 15
)

var (
	ErrNoQueries          = errkit.New("no queries provided to cluster")
	ErrInvalidThresholds  = errkit.New("min threshold must be at least 1 and not above max threshold")
	ErrInvalidDepth       = errkit.New("serp depth must be at least the max threshold")
	ErrInvalidStep        = errkit.New("threshold step must be at least 1")
	ErrInvalidClusterSize = errkit.New("max cluster size must be at least 2")
)

// Engine Options
type Options struct {
	// MinThreshold is the loosest overlap still treated as a bond; it is
	// also the bar a reattached singleton must clear
	MinThreshold int
	// MaxThreshold is the overlap the first clustering iteration demands
	MaxThreshold int
	// Step is the per-iteration threshold decrement
	Step int
	// Depth limits how many top-ranked URLs per query take part
	Depth int
	// MaxClusterSize caps cluster growth; oversized clusters get split
	MaxClusterSize int
	// ReattachMaxCompare bounds per-cluster comparisons during reattach
	ReattachMaxCompare int
	// EnableReattach runs the singleton reattachment pass after splitting
	EnableReattach bool
	// Workers sets the pair-scoring pool size (0 = NumCPU, 1 = serial)
	Workers int
	// Gazetteer maps region labels to curated place names; empty disables
	// the geography gate entirely
	Gazetteer map[string][]string
	// Aliases maps informal short forms to full place names
	Aliases map[string]string
	// Recognizer overrides the fallback gazetteer pattern matcher
	Recognizer geo.Recognizer
	// LabelFormat renders cluster titles, see DefaultLabelFormat
	LabelFormat string
}

// Engine clusters query corpora. One engine holds one gazetteer and one
// option set; Run may be called for successive corpora.
type Engine struct {
	Options *Options

	gaz        *geo.Gazetteer
	oracle     *geo.Oracle
	idx        *urlindex.Index
	scorer     *similarity.Scorer
	queries    []Query
	keywordIdx map[string]int
}

// New creates and returns a new clustering engine from options.
func New(opts *Options) (*Engine, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.MinThreshold == 0 {
		opts.MinThreshold = DefaultMinThreshold
	}
	if opts.MaxThreshold == 0 {
		opts.MaxThreshold = DefaultMaxThreshold
	}
	if opts.Step == 0 {
		opts.Step = DefaultStep
	}
	if opts.Depth == 0 {
		opts.Depth = DefaultDepth
	}
	if opts.MaxClusterSize == 0 {
		opts.MaxClusterSize = DefaultMaxClusterSize
	}
	if opts.ReattachMaxCompare == 0 {
		opts.ReattachMaxCompare = DefaultReattachMaxCompare
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.MinThreshold < 1 || opts.MinThreshold > opts.MaxThreshold {
		return nil, ErrInvalidThresholds
	}
	if opts.Depth < opts.MaxThreshold {
		return nil, ErrInvalidDepth
	}
	if opts.Step < 1 {
		return nil, ErrInvalidStep
	}
	if opts.MaxClusterSize < 2 {
		return nil, ErrInvalidClusterSize
	}
	e := &Engine{Options: opts}
	if len(opts.Gazetteer) > 0 || len(opts.Aliases) > 0 {
		e.gaz = geo.NewGazetteer(opts.Gazetteer, opts.Aliases, geo.NewRussianInflector())
		e.oracle = geo.NewOracle(e.gaz, opts.Recognizer)
	}
	return e, nil
}

// Run clusters queries into a complete partition: every query with usable
// URLs lands in exactly one cluster, singletons included as single-member
// clusters. Queries without usable URLs are excluded and reported with a -1
// assignment.
func (e *Engine) Run(ctx context.Context, queries []Query) (*Result, error) {
	queries = dedupeKeywords(queries)
	if len(queries) == 0 {
		return nil, ErrNoQueries
	}
	e.queries = queries
	e.keywordIdx = make(map[string]int, len(queries))
	ranked := make([][]string, len(queries))
	for i, q := range queries {
		e.keywordIdx[q.Keyword] = i
		ranked[i] = q.URLs
	}
	e.idx = urlindex.Build(ranked, e.Options.Depth)
	e.scorer = similarity.NewScorer(e.idx.IDSets)
	if e.oracle != nil {
		keywords := make([]string, len(queries))
		for i, q := range queries {
			keywords[i] = q.Keyword
		}
		e.oracle.Warm(keywords)
	}

	clusters, singletons, err := e.cluster(ctx)
	if err != nil {
		return nil, err
	}

	var splits, forced int
	clusters, splits, forced = e.splitOversized(clusters)

	var reattached int
	if e.Options.EnableReattach {
		clusters, singletons, reattached = e.reattach(clusters, singletons)
	}

	res := e.assemble(clusters, singletons)
	res.Stats.Splits = splits
	res.Stats.ForcedChunks = forced
	res.Stats.Reattached = reattached
	return res, nil
}

// assemble orders clusters by size, assigns ids and resolves the shared
// geography label of each cluster.
func (e *Engine) assemble(clusters [][]int, singletons []int) *Result {
	for _, s := range singletons {
		clusters = append(clusters, []int{s})
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		if len(clusters[i]) != len(clusters[j]) {
			return len(clusters[i]) > len(clusters[j])
		}
		return clusters[i][0] < clusters[j][0]
	})

	res := &Result{
		Assignments: make(map[string]int, len(e.queries)),
		Clusters:    make([]Cluster, 0, len(clusters)),
		Stats: Stats{
			Queries:       len(e.queries),
			MalformedURLs: e.idx.Malformed,
			ScoredPairs:   e.scorer.Pairs(),
			SizeHistogram: make(map[int]int),
			RootDomains:   len(e.idx.RootDomains()),
		},
	}
	for i := range e.queries {
		if e.idx.Empty(i) {
			res.Assignments[e.queries[i].Keyword] = -1
			res.Stats.Unclusterable++
		}
	}
	for i, members := range clusters {
		c := Cluster{ID: i + 1, Queries: make([]Query, 0, len(members))}
		sort.Ints(members)
		for _, m := range members {
			c.Queries = append(c.Queries, e.queries[m])
			res.Assignments[e.queries[m].Keyword] = c.ID
		}
		if e.oracle != nil {
			// members share one geography by construction, any member works
			if place, ok := e.oracle.Extract(c.Queries[0].Keyword); ok {
				c.Geography = place
			}
		}
		c.Label = renderLabel(c, e.Options.LabelFormat)
		if len(members) == 1 {
			res.Stats.Singletons++
		}
		res.Stats.SizeHistogram[len(members)]++
		res.Clusters = append(res.Clusters, c)
	}
	res.Stats.Clusters = len(res.Clusters)
	if e.oracle != nil {
		res.Stats.DegradedGeo = e.oracle.Degraded()
		res.Stats.GeoForms = e.gaz.Size()
	}
	return res
}

// compatible defers to the geography oracle; with no gazetteer configured
// every pair passes.
func (e *Engine) compatible(a, b int) bool {
	if e.oracle == nil {
		return true
	}
	return e.oracle.Compatible(e.queries[a].Keyword, e.queries[b].Keyword)
}

// dedupeKeywords drops repeated keywords keeping the first occurrence.
func dedupeKeywords(queries []Query) []Query {
	seen := make(map[string]struct{}, len(queries))
	out := queries[:0:0]
	for _, q := range queries {
		if _, ok := seen[q.Keyword]; ok {
			gologger.Warning().Msgf("duplicate keyword %q found in input. keeping first occurrence", q.Keyword)
			continue
		}
		seen[q.Keyword] = struct{}{}
		out = append(out, q)
	}
	return out
}
