package serpcluster

import (
	_ "embed"

	"github.com/goccy/go-yaml"

	"github.com/serpkit/serpcluster/geo"
)

//go:embed gazetteer_default.yaml
var DefaultGazetteerBin []byte

// DefaultGazetteer is the built-in place list used when no gazetteer file
// is supplied. The runner materializes it under the config directory on
// first start so users can extend it.
var DefaultGazetteer geo.File

func init() {
	if err := yaml.Unmarshal(DefaultGazetteerBin, &DefaultGazetteer); err != nil {
		panic("invalid embedded gazetteer: " + err.Error())
	}
}
