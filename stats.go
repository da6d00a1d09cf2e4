package serpcluster

// Cluster is one group of the final partition. Singleton queries come out
// as single-member clusters so every input query appears exactly once in
// the result.
type Cluster struct {
	ID        int     `yaml:"id"`
	Label     string  `yaml:"label"`
	Geography string  `yaml:"geography,omitempty"`
	Queries   []Query `yaml:"queries"`
}

// Size returns the number of member queries.
func (c Cluster) Size() int {
	return len(c.Queries)
}

// Stats summarizes a clustering run.
type Stats struct {
	Queries       int         `yaml:"queries"`
	MalformedURLs int         `yaml:"malformed_urls"`
	Clusters      int         `yaml:"clusters"`
	Singletons    int         `yaml:"singletons"`
	Unclusterable int         `yaml:"unclusterable"`
	SizeHistogram map[int]int `yaml:"size_histogram"`
	Splits        int         `yaml:"splits"`
	ForcedChunks  int         `yaml:"forced_chunks"`
	Reattached    int         `yaml:"reattached"`
	ScoredPairs   int         `yaml:"scored_pairs"`
	RootDomains   int         `yaml:"root_domains"`
	GeoForms      int         `yaml:"geo_forms"`
	DegradedGeo   bool        `yaml:"degraded_geo"`
}

// Result is the complete output of Engine.Run. Assignments maps every input
// keyword to its cluster id, -1 for unclusterable queries (no usable URLs);
// such queries appear in no cluster.
type Result struct {
	Assignments map[string]int `yaml:"assignments"`
	Clusters    []Cluster      `yaml:"clusters"`
	Stats       Stats          `yaml:"stats"`
}

// Overlap reports the shared-URL count between two member queries.
type Overlap struct {
	A      string `yaml:"a"`
	B      string `yaml:"b"`
	Shared int    `yaml:"shared"`
}

// ClusterOverlaps returns the pairwise overlaps inside a cluster, in member
// order. Valid after Run; useful for inspecting why a cluster formed.
func (e *Engine) ClusterOverlaps(c Cluster) []Overlap {
	var out []Overlap
	for i := 0; i < len(c.Queries); i++ {
		a, aok := e.keywordIdx[c.Queries[i].Keyword]
		if !aok {
			continue
		}
		for j := i + 1; j < len(c.Queries); j++ {
			b, bok := e.keywordIdx[c.Queries[j].Keyword]
			if !bok {
				continue
			}
			out = append(out, Overlap{
				A:      c.Queries[i].Keyword,
				B:      c.Queries[j].Keyword,
				Shared: e.scorer.Score(a, b),
			})
		}
	}
	return out
}
