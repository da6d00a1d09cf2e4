package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/projectdiscovery/gologger"
	fileutil "github.com/projectdiscovery/utils/file"

	"github.com/serpkit/serpcluster"
	"github.com/serpkit/serpcluster/geo"
)

func getUserHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	return homeDir
}

func init() {
	defaultGazetteer := filepath.Join(getUserHomeDir(), fmt.Sprintf(".config/serpcluster/gazetteer_%v.yaml", version))
	// create default gazetteer yaml if it does not exist
	if fileutil.FileExists(defaultGazetteer) {
		// if it exists use that data as default
		if f, err := geo.LoadFile(defaultGazetteer); err == nil {
			serpcluster.DefaultGazetteer = *f
			return
		}
	}
	_ = fileutil.CreateFolders(filepath.Dir(defaultGazetteer))
	if err := os.WriteFile(defaultGazetteer, serpcluster.DefaultGazetteerBin, 0600); err != nil {
		gologger.Error().Msgf("failed to save default gazetteer to %v got: %v", defaultGazetteer, err)
	}
}
