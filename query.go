package serpcluster

// Query is a single search query with its ranked result URLs. URLs are
// expected in rank order, best first; only the top Depth of them take part
// in clustering.
type Query struct {
	Keyword   string   `yaml:"keyword"`
	Frequency int      `yaml:"frequency,omitempty"`
	URLs      []string `yaml:"urls"`
}
