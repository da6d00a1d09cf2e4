package runner

import (
	"os"

	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"
	fileutil "github.com/projectdiscovery/utils/file"
	updateutils "github.com/projectdiscovery/utils/update"
)

type Options struct {
	Input              string // queries yaml file (or stdin)
	Output             string
	Config             string // cli flag config file
	ClusterConfig      string // engine config file
	GazetteerFile      string
	MinThreshold       int
	MaxThreshold       int
	Depth              int
	MaxClusterSize     int
	Workers            int
	NoReattach         bool
	NoGeo              bool
	LabelFormat        string
	DisableUpdateCheck bool
	Verbose            bool
	Silent             bool
}

func ParseFlags() *Options {
	opts := &Options{}
	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`Group search queries into intent clusters by SERP result overlap.`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&opts.Input, "list", "l", "", "queries file in yaml format (keyword, frequency, urls)"),
		flagSet.StringVarP(&opts.GazetteerFile, "gazetteer", "gz", "", "gazetteer yaml file with place names and aliases"),
	)

	flagSet.CreateGroup("clustering", "Clustering",
		flagSet.IntVarP(&opts.MinThreshold, "min-threshold", "mt", 0, "loosest shared-url count still treated as a bond"),
		flagSet.IntVarP(&opts.MaxThreshold, "max-threshold", "xt", 0, "shared-url count the first iteration demands"),
		flagSet.IntVarP(&opts.Depth, "depth", "d", 0, "number of top-ranked urls per query to compare"),
		flagSet.IntVarP(&opts.MaxClusterSize, "max-cluster-size", "mcs", 0, "split clusters larger than this"),
		flagSet.IntVarP(&opts.Workers, "workers", "w", 0, "pair scoring workers (default number of cpus)"),
		flagSet.BoolVarP(&opts.NoReattach, "no-reattach", "nr", false, "skip the singleton reattachment pass"),
		flagSet.BoolVarP(&opts.NoGeo, "no-geo", "ng", false, "disable the geography compatibility gate"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&opts.Output, "output", "o", "", "output file to write the clustered result (yaml)"),
		flagSet.StringVarP(&opts.LabelFormat, "label-format", "lf", "", "cluster title template ({{id}}, {{name}}, {{size}}, {{geo}})"),
		flagSet.BoolVarP(&opts.Verbose, "verbose", "v", false, "display verbose output"),
		flagSet.BoolVar(&opts.Silent, "silent", false, "display results only"),
		flagSet.CallbackVar(printVersion, "version", "display serpcluster version"),
	)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&opts.Config, "config", "", `serpcluster cli config file (default '$HOME/.config/serpcluster/config.yaml')`),
		flagSet.StringVar(&opts.ClusterConfig, "cc", "", "clustering config file with thresholds and gazetteer"),
	)

	flagSet.CreateGroup("update", "Update",
		flagSet.CallbackVarP(GetUpdateCallback(), "update", "up", "update serpcluster to latest version"),
		flagSet.BoolVarP(&opts.DisableUpdateCheck, "disable-update-check", "duc", false, "disable automatic serpcluster update check"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("Could not read flags: %s\n", err)
	}

	if opts.Config != "" {
		if err := flagSet.MergeConfigFile(opts.Config); err != nil {
			gologger.Error().Msgf("failed to read config file got %v", err)
		}
	}

	if opts.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	} else if opts.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	showBanner()

	if !opts.DisableUpdateCheck {
		latestVersion, err := updateutils.GetVersionCheckCallback("serpcluster")()
		if err != nil {
			if opts.Verbose {
				gologger.Error().Msgf("serpcluster version check failed: %v", err.Error())
			}
		} else {
			gologger.Info().Msgf("Current serpcluster version %v %v", version, updateutils.GetVersionDescription(version, latestVersion))
		}
	}

	if opts.Input == "" && !fileutil.HasStdin() {
		gologger.Fatal().Msgf("serpcluster: no input found")
	}
	if opts.Input != "" && !fileutil.FileExists(opts.Input) {
		gologger.Fatal().Msgf("serpcluster: input file %v does not exist", opts.Input)
	}

	return opts
}

func printVersion() {
	gologger.Info().Msgf("Current version: %s", version)
	os.Exit(0)
}
