package serpcluster

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk YAML form of engine options.
type Config struct {
	MinThreshold       int                 `yaml:"min_threshold"`
	MaxThreshold       int                 `yaml:"max_threshold"`
	Step               int                 `yaml:"step,omitempty"`
	Depth              int                 `yaml:"depth"`
	MaxClusterSize     int                 `yaml:"max_cluster_size"`
	ReattachMaxCompare int                 `yaml:"reattach_max_compare,omitempty"`
	EnableReattach     bool                `yaml:"enable_reattach"`
	Workers            int                 `yaml:"workers,omitempty"`
	Gazetteer          map[string][]string `yaml:"gazetteer,omitempty"`
	Aliases            map[string]string   `yaml:"aliases,omitempty"`
	LabelFormat        string              `yaml:"label_format,omitempty"`
}

// NewConfig reads config from file
func NewConfig(filePath string) (*Config, error) {
	bin, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err = yaml.Unmarshal(bin, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Options converts the file form to engine options. Zero fields fall back
// to the engine defaults in New.
func (c *Config) Options() *Options {
	return &Options{
		MinThreshold:       c.MinThreshold,
		MaxThreshold:       c.MaxThreshold,
		Step:               c.Step,
		Depth:              c.Depth,
		MaxClusterSize:     c.MaxClusterSize,
		ReattachMaxCompare: c.ReattachMaxCompare,
		EnableReattach:     c.EnableReattach,
		Workers:            c.Workers,
		Gazetteer:          c.Gazetteer,
		Aliases:            c.Aliases,
		LabelFormat:        c.LabelFormat,
	}
}

// GenerateSample creates a sample yaml config file with default values
func GenerateSample(filePath string) error {
	cfg := Config{
		MinThreshold:   DefaultMinThreshold,
		MaxThreshold:   DefaultMaxThreshold,
		Depth:          DefaultDepth,
		MaxClusterSize: DefaultMaxClusterSize,
		EnableReattach: true,
		Gazetteer: map[string][]string{
			"example": {"москва", "санкт-петербург"},
		},
		Aliases: map[string]string{
			"спб": "санкт-петербург",
			"мск": "москва",
		},
	}
	bin, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, bin, 0644)
}

type corpus struct {
	Queries []Query `yaml:"queries"`
}

// ParseQueries decodes a query corpus from r.
func ParseQueries(r io.Reader) ([]Query, error) {
	var c corpus
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, err
	}
	return c.Queries, nil
}

// LoadQueries reads a query corpus from a YAML file.
func LoadQueries(path string) ([]Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseQueries(f)
}
