package serpcluster

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/serpkit/serpcluster/similarity"
	"github.com/serpkit/serpcluster/urlindex"
)

func urlSeq(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("https://serp.example/%s%d", prefix, i+1)
	}
	return out
}

func mergeURLs(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

func runEngine(t *testing.T, opts *Options, queries []Query) (*Engine, *Result) {
	t.Helper()
	e, err := New(opts)
	require.NoError(t, err)
	res, err := e.Run(context.Background(), queries)
	require.NoError(t, err)
	return e, res
}

func clusterWith(t *testing.T, res *Result, keyword string) Cluster {
	t.Helper()
	for _, c := range res.Clusters {
		for _, q := range c.Queries {
			if q.Keyword == keyword {
				return c
			}
		}
	}
	t.Fatalf("keyword %q missing from result", keyword)
	return Cluster{}
}

func keywords(c Cluster) []string {
	out := make([]string, 0, len(c.Queries))
	for _, q := range c.Queries {
		out = append(out, q.Keyword)
	}
	return out
}

func TestRunSharedResultsCluster(t *testing.T) {
	shared := urlSeq("s", 10)
	_, res := runEngine(t, &Options{Workers: 1}, []Query{
		{Keyword: "купить окна", URLs: shared},
		{Keyword: "окна цена", URLs: shared},
		{Keyword: "ремонт холодильников", URLs: urlSeq("other", 10)},
	})

	c := clusterWith(t, res, "купить окна")
	require.ElementsMatch(t, []string{"купить окна", "окна цена"}, keywords(c))
	require.Equal(t, 1, clusterWith(t, res, "ремонт холодильников").Size())
	require.Equal(t, 1, res.Stats.Singletons)
	require.Equal(t, res.Assignments["купить окна"], res.Assignments["окна цена"])
	require.NotEqual(t, res.Assignments["купить окна"], res.Assignments["ремонт холодильников"])
}

func TestRunIsCompletePartition(t *testing.T) {
	var queries []Query
	for i := 0; i < 30; i++ {
		queries = append(queries, Query{
			Keyword: fmt.Sprintf("query %d", i),
			URLs:    urlSeq(fmt.Sprintf("b%d-", i/5), 12),
		})
	}
	// a couple of unclusterable stragglers
	queries = append(queries,
		Query{Keyword: "no urls at all"},
		Query{Keyword: "only junk", URLs: []string{"/just/a/path"}},
	)

	_, res := runEngine(t, &Options{Workers: 1}, queries)

	// every usable query lands in exactly one cluster
	seen := make(map[string]int)
	for _, c := range res.Clusters {
		for _, q := range c.Queries {
			seen[q.Keyword]++
		}
	}
	require.Len(t, seen, len(queries)-2)
	for kw, n := range seen {
		require.Equal(t, 1, n, kw)
	}

	// unclusterable queries appear only in the assignment map, as -1
	require.Len(t, res.Assignments, len(queries))
	require.Equal(t, -1, res.Assignments["no urls at all"])
	require.Equal(t, -1, res.Assignments["only junk"])
	require.Equal(t, 2, res.Stats.Unclusterable)
	require.Equal(t, 1, res.Stats.MalformedURLs)
	require.Equal(t, len(queries), res.Stats.Queries)
	require.Equal(t, 6, res.Stats.SizeHistogram[5])
}

func TestGeographyNeverMixes(t *testing.T) {
	shared := urlSeq("s", 15)
	opts := &Options{
		Workers:        1,
		EnableReattach: true,
		Gazetteer:      map[string][]string{"центр": {"москва"}},
		Aliases:        map[string]string{"спб": "санкт-петербург"},
	}
	_, res := runEngine(t, opts, []Query{
		{Keyword: "пластиковые окна москва", URLs: shared},
		{Keyword: "пластиковые окна спб", URLs: shared},
		{Keyword: "пластиковые окна недорого", URLs: shared},
	})

	// perfect SERP overlap, yet three different intents
	require.Len(t, res.Clusters, 3)
	require.Equal(t, "москва", clusterWith(t, res, "пластиковые окна москва").Geography)
	require.Equal(t, "санкт-петербург", clusterWith(t, res, "пластиковые окна спб").Geography)
	require.Empty(t, clusterWith(t, res, "пластиковые окна недорого").Geography)
	require.True(t, res.Stats.DegradedGeo)
	require.Positive(t, res.Stats.GeoForms)
}

func TestAliasAndInflectionShareCluster(t *testing.T) {
	shared := urlSeq("s", 10)
	opts := &Options{
		Workers: 1,
		Aliases: map[string]string{"спб": "санкт-петербург"},
	}
	_, res := runEngine(t, opts, []Query{
		{Keyword: "окна спб", URLs: shared},
		{Keyword: "окна в санкт-петербурге", URLs: shared},
	})

	c := clusterWith(t, res, "окна спб")
	require.Equal(t, 2, c.Size())
	require.Equal(t, "санкт-петербург", c.Geography)
}

// splitterEngine primes an engine with a prebuilt corpus so the splitter
// can be driven on a hand-made oversized cluster.
func splitterEngine(t *testing.T, opts *Options, ranked [][]string) *Engine {
	t.Helper()
	e, err := New(opts)
	require.NoError(t, err)
	e.idx = urlindex.Build(ranked, e.Options.Depth)
	e.scorer = similarity.NewScorer(e.idx.IDSets)
	return e
}

func TestSplitterLowestThresholdWins(t *testing.T) {
	common := urlSeq("c", 7)
	var ranked [][]string
	var members []int
	for i := 0; i < 7; i++ {
		ranked = append(ranked, mergeURLs(common, urlSeq("a", 8)))
		members = append(members, len(ranked)-1)
	}
	for i := 0; i < 6; i++ {
		ranked = append(ranked, mergeURLs(common, urlSeq("b", 8)))
		members = append(members, len(ranked)-1)
	}
	e := splitterEngine(t, &Options{MaxClusterSize: 10, Workers: 1}, ranked)

	// intra-block overlap 15, cross-block 7: the cluster must fall apart at
	// threshold 8, the first level where only intra-block edges survive
	parts, splits, forced := e.splitOversized([][]int{members})
	require.Equal(t, 1, splits)
	require.Equal(t, 0, forced)
	require.Len(t, parts, 2)
	require.ElementsMatch(t, []int{7, 6}, []int{len(parts[0]), len(parts[1])})
}

func TestSplitterForcedChunking(t *testing.T) {
	shared := urlSeq("s", 20)
	ranked := [][]string{shared, shared, shared, shared, shared}
	e := splitterEngine(t, &Options{MaxClusterSize: 3, Workers: 1}, ranked)

	// no threshold separates five identical queries, chunking is forced
	parts, splits, forced := e.splitOversized([][]int{{0, 1, 2, 3, 4}})
	require.Equal(t, 1, splits)
	require.Equal(t, 2, forced)
	require.Len(t, parts, 2)
	require.Equal(t, 3, len(parts[0]))
	require.Equal(t, 2, len(parts[1]))
}

func TestAdmissionRespectsSizeBound(t *testing.T) {
	shared := urlSeq("s", 20)
	var queries []Query
	for i := 1; i <= 5; i++ {
		queries = append(queries, Query{Keyword: fmt.Sprintf("q%d", i), URLs: shared})
	}

	_, res := runEngine(t, &Options{MaxClusterSize: 3, Workers: 1}, queries)

	// growth stops at the bound and the remainder pairs up on its own
	require.Equal(t, 0, res.Stats.Splits)
	require.Len(t, res.Clusters, 2)
	require.Equal(t, 3, res.Clusters[0].Size())
	require.Equal(t, 2, res.Clusters[1].Size())
	for _, c := range res.Clusters {
		require.LessOrEqual(t, c.Size(), 3)
	}
}

func TestNoCrossClusterMerge(t *testing.T) {
	s := urlSeq("s", 10)
	u := urlSeq("u", 10)
	bridge := urlSeq("t", 8)
	_, res := runEngine(t, &Options{Workers: 1}, []Query{
		{Keyword: "a1", URLs: s},
		{Keyword: "a2", URLs: mergeURLs(s, bridge)},
		{Keyword: "b1", URLs: mergeURLs(bridge, u)},
		{Keyword: "b2", URLs: u},
	})

	// a2 and b1 share 8 URLs, but both settled before that bond is visited
	require.Len(t, res.Clusters, 2)
	require.ElementsMatch(t, []string{"a1", "a2"}, keywords(clusterWith(t, res, "a1")))
	require.ElementsMatch(t, []string{"b1", "b2"}, keywords(clusterWith(t, res, "b1")))
}

func TestTightPairRejectsLooseCandidate(t *testing.T) {
	core := urlSeq("c", 10)
	_, res := runEngine(t, &Options{MinThreshold: 3, MaxThreshold: 5, Workers: 1}, []Query{
		{Keyword: "m1", URLs: core},
		{Keyword: "m2", URLs: core},
		{Keyword: "x", URLs: mergeURLs(core[:5], urlSeq("x", 15))},
	})

	// all three bonds clear threshold 5 in the first iteration, but the
	// m1/m2 overlap of 10 doubles the bar and x only brings 5
	require.ElementsMatch(t, []string{"m1", "m2"}, keywords(clusterWith(t, res, "m1")))
	require.Equal(t, 1, clusterWith(t, res, "x").Size())
}

func TestSettledClusterStopsRecruiting(t *testing.T) {
	common := urlSeq("c", 7)
	ab := urlSeq("ab", 3)
	ac := urlSeq("ac", 2)
	_, res := runEngine(t, &Options{Workers: 1}, []Query{
		{Keyword: "a", URLs: mergeURLs(common, ab, ac)},
		{Keyword: "b", URLs: mergeURLs(common, ab, urlSeq("b", 2))},
		{Keyword: "c", URLs: mergeURLs(common, ac, urlSeq("x", 2))},
	})

	// a·b=10 bonds at the top threshold; c scores 9 against a but only 7
	// against b, and a query settled at a strict level must not pull c in
	// once the threshold decays below 9
	require.Len(t, res.Clusters, 2)
	require.ElementsMatch(t, []string{"a", "b"}, keywords(clusterWith(t, res, "a")))
	require.Equal(t, 1, clusterWith(t, res, "c").Size())
}

func TestStepLandsOnMinThreshold(t *testing.T) {
	shared := urlSeq("s", 3)
	opts := &Options{MinThreshold: 3, MaxThreshold: 10, Step: 2, Workers: 1}
	_, res := runEngine(t, opts, []Query{
		{Keyword: "a", URLs: mergeURLs(shared, urlSeq("a", 7))},
		{Keyword: "b", URLs: mergeURLs(shared, urlSeq("b", 7))},
	})

	// 10→3 in steps of 2 passes 4; the last iteration still runs at 3
	require.Len(t, res.Clusters, 1)
	require.Equal(t, 2, res.Clusters[0].Size())
}

func reattachCorpus() []Query {
	common := urlSeq("c", 10)
	return []Query{
		{Keyword: "m1", Frequency: 500, URLs: mergeURLs(common, urlSeq("p", 10))},
		{Keyword: "m2", Frequency: 300, URLs: mergeURLs(common, urlSeq("q", 10))},
		{Keyword: "s", Frequency: 10, URLs: mergeURLs(urlSeq("p", 7), common[:2])},
	}
}

func TestSingletonReattach(t *testing.T) {
	opts := &Options{MinThreshold: 7, MaxThreshold: 10, Workers: 1, EnableReattach: true}
	_, res := runEngine(t, opts, reattachCorpus())

	// s overlaps m1 by 9 but never bonds during the main pass; the reattach
	// pass places it by its best single-member bond
	require.Len(t, res.Clusters, 1)
	require.ElementsMatch(t, []string{"m1", "m2", "s"}, keywords(res.Clusters[0]))
	require.Equal(t, 1, res.Stats.Reattached)
	require.Equal(t, 0, res.Stats.Singletons)
}

func TestReattachDisabled(t *testing.T) {
	opts := &Options{MinThreshold: 7, MaxThreshold: 10, Workers: 1}
	_, res := runEngine(t, opts, reattachCorpus())

	require.Len(t, res.Clusters, 2)
	require.ElementsMatch(t, []string{"m1", "m2"}, keywords(clusterWith(t, res, "m1")))
	require.Equal(t, 1, clusterWith(t, res, "s").Size())
	require.Equal(t, 0, res.Stats.Reattached)
	require.Equal(t, 1, res.Stats.Singletons)
}

func TestReattachRespectsGeography(t *testing.T) {
	common := urlSeq("c", 10)
	opts := &Options{
		Workers:        1,
		EnableReattach: true,
		Gazetteer:      map[string][]string{"центр": {"москва", "тверь"}},
	}
	_, res := runEngine(t, opts, []Query{
		{Keyword: "грузоперевозки москва", Frequency: 900, URLs: common},
		{Keyword: "грузоперевозки по москве", Frequency: 400, URLs: common},
		{Keyword: "грузоперевозки тверь", Frequency: 50, URLs: common[:6]},
	})

	require.Equal(t, 0, res.Stats.Reattached)
	require.Equal(t, 1, clusterWith(t, res, "грузоперевозки тверь").Size())
}

func TestParallelRunMatchesSerial(t *testing.T) {
	var queries []Query
	for i := 0; i < 60; i++ {
		block := i / 6
		queries = append(queries, Query{
			Keyword: fmt.Sprintf("query %d", i),
			URLs: mergeURLs(
				urlSeq(fmt.Sprintf("blk%d-", block), 8),
				urlSeq(fmt.Sprintf("own%d-", i), 4),
			),
		})
	}

	_, serial := runEngine(t, &Options{Workers: 1}, queries)
	_, parallel := runEngine(t, &Options{Workers: 8}, queries)

	require.Equal(t, serial.Clusters, parallel.Clusters)
}

func TestClusterOverlaps(t *testing.T) {
	shared := urlSeq("s", 10)
	e, res := runEngine(t, &Options{Workers: 1}, []Query{
		{Keyword: "купить окна", URLs: shared},
		{Keyword: "окна цена", URLs: mergeURLs(shared, urlSeq("extra", 3))},
	})

	overlaps := e.ClusterOverlaps(res.Clusters[0])
	require.Len(t, overlaps, 1)
	require.Equal(t, 10, overlaps[0].Shared)
}

func TestClusterLabels(t *testing.T) {
	shared := urlSeq("s", 10)
	_, res := runEngine(t, &Options{Workers: 1, LabelFormat: "{{name}} x{{size}}"}, []Query{
		{Keyword: "купить окна", Frequency: 100, URLs: shared},
		{Keyword: "окна цена", Frequency: 900, URLs: shared},
	})
	require.Equal(t, "окна цена x2", res.Clusters[0].Label)

	_, res = runEngine(t, &Options{Workers: 1}, []Query{
		{Keyword: "купить окна", Frequency: 100, URLs: shared},
		{Keyword: "окна цена", Frequency: 900, URLs: shared},
	})
	require.Equal(t, "[1] окна цена (2 queries)", res.Clusters[0].Label)
}

func TestDuplicateKeywordsDropFirstWins(t *testing.T) {
	_, res := runEngine(t, &Options{Workers: 1}, []Query{
		{Keyword: "окна", URLs: urlSeq("a", 5)},
		{Keyword: "окна", URLs: urlSeq("b", 5)},
		{Keyword: "двери", URLs: urlSeq("c", 5)},
	})
	require.Equal(t, 2, res.Stats.Queries)
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		opts *Options
		want error
	}{
		{&Options{MinThreshold: 5, MaxThreshold: 3}, ErrInvalidThresholds},
		{&Options{Depth: 5}, ErrInvalidDepth},
		{&Options{Step: -1}, ErrInvalidStep},
		{&Options{MaxClusterSize: 1}, ErrInvalidClusterSize},
	}
	for _, tc := range cases {
		_, err := New(tc.opts)
		require.ErrorIs(t, err, tc.want)
	}
}

func TestRunEmptyCorpus(t *testing.T) {
	e, err := New(&Options{Workers: 1})
	require.NoError(t, err)
	_, err = e.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoQueries)
}

func TestNewAppliesDefaults(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultMinThreshold, e.Options.MinThreshold)
	require.Equal(t, DefaultMaxThreshold, e.Options.MaxThreshold)
	require.Equal(t, DefaultDepth, e.Options.Depth)
	require.Equal(t, DefaultMaxClusterSize, e.Options.MaxClusterSize)
	require.Equal(t, DefaultReattachMaxCompare, e.Options.ReattachMaxCompare)
	require.Positive(t, e.Options.Workers)
}
