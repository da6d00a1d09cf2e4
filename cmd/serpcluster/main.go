package main

import (
	"context"
	"io"
	"os"

	"github.com/projectdiscovery/gologger"
	fileutil "github.com/projectdiscovery/utils/file"
	"gopkg.in/yaml.v3"

	"github.com/serpkit/serpcluster"
	"github.com/serpkit/serpcluster/geo"
	"github.com/serpkit/serpcluster/internal/runner"
)

func main() {
	cliOpts := runner.ParseFlags()

	engineOpts := &serpcluster.Options{}
	if cliOpts.ClusterConfig != "" {
		config, err := serpcluster.NewConfig(cliOpts.ClusterConfig)
		if err != nil {
			gologger.Fatal().Msgf("failed to read %v file got: %v", cliOpts.ClusterConfig, err)
		}
		engineOpts = config.Options()
	}
	applyOverrides(engineOpts, cliOpts)

	if !cliOpts.NoGeo && len(engineOpts.Gazetteer) == 0 {
		gaz := &serpcluster.DefaultGazetteer
		if cliOpts.GazetteerFile != "" {
			loaded, err := geo.LoadFile(cliOpts.GazetteerFile)
			if err != nil {
				gologger.Fatal().Msgf("failed to read gazetteer %v got: %v", cliOpts.GazetteerFile, err)
			}
			gaz = loaded
		}
		engineOpts.Gazetteer = gaz.Places
		engineOpts.Aliases = gaz.Aliases
	}
	if cliOpts.NoGeo {
		engineOpts.Gazetteer = nil
		engineOpts.Aliases = nil
	}

	queries, err := readQueries(cliOpts.Input)
	if err != nil {
		gologger.Fatal().Msgf("failed to read queries got: %v", err)
	}

	engine, err := serpcluster.New(engineOpts)
	if err != nil {
		gologger.Fatal().Msgf("failed to create clustering engine got: %v", err)
	}

	result, err := engine.Run(context.Background(), queries)
	if err != nil {
		gologger.Fatal().Msgf("clustering failed: %v", err)
	}

	for _, c := range result.Clusters {
		gologger.Verbose().Msgf("%s", c.Label)
	}
	gologger.Info().Msgf("%d queries -> %d clusters (%d singletons, %d reattached, %d splits)",
		result.Stats.Queries, result.Stats.Clusters, result.Stats.Singletons,
		result.Stats.Reattached, result.Stats.Splits)

	output := getOutputWriter(cliOpts.Output)
	defer closeOutput(output, cliOpts.Output)
	if err := yaml.NewEncoder(output).Encode(result); err != nil {
		gologger.Error().Msgf("failed to write output got %v", err)
	}
}

// applyOverrides layers non-zero cli flags over the config file values.
func applyOverrides(opts *serpcluster.Options, cli *runner.Options) {
	if cli.MinThreshold > 0 {
		opts.MinThreshold = cli.MinThreshold
	}
	if cli.MaxThreshold > 0 {
		opts.MaxThreshold = cli.MaxThreshold
	}
	if cli.Depth > 0 {
		opts.Depth = cli.Depth
	}
	if cli.MaxClusterSize > 0 {
		opts.MaxClusterSize = cli.MaxClusterSize
	}
	if cli.Workers > 0 {
		opts.Workers = cli.Workers
	}
	if cli.LabelFormat != "" {
		opts.LabelFormat = cli.LabelFormat
	}
	opts.EnableReattach = !cli.NoReattach
}

func readQueries(input string) ([]serpcluster.Query, error) {
	if input != "" {
		return serpcluster.LoadQueries(input)
	}
	if fileutil.HasStdin() {
		return serpcluster.ParseQueries(os.Stdin)
	}
	return nil, serpcluster.ErrNoQueries
}

// getOutputWriter returns the appropriate output writer
func getOutputWriter(outputPath string) io.Writer {
	if outputPath != "" {
		fs, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			gologger.Fatal().Msgf("failed to open output file %v got %v", outputPath, err)
		}
		return fs
	}
	return os.Stdout
}

// closeOutput closes the output writer if it's a file
func closeOutput(output io.Writer, outputPath string) {
	if outputPath != "" {
		if closer, ok := output.(io.Closer); ok {
			closer.Close()
		}
	}
}
