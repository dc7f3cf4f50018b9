package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lichee/lineage/internal/codec"
	"lichee/lineage/internal/config"
	"lichee/lineage/internal/db"
	"lichee/lineage/internal/lineage"
	"lichee/lineage/internal/metrics"
)

var (
	configPath string
	dbPath     string
	verbose    bool

	// Engine overrides
	marginFlag     float64
	maxTreesFlag   int
	maxCallsFlag   int
	noClusterStats bool
	maxRepairsFlag int

	appConfig *config.Config
	logger    *zap.Logger
	collector *metrics.Collector
)

var rootCmd = &cobra.Command{
	Use:   "lineage",
	Short: "Reconstruct tumor lineage trees from multi-sample mutation frequencies",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyEngineFlags(cmd, cfg)
		if err := cfg.Engine.Validate(); err != nil {
			return err
		}
		appConfig = cfg

		logger, err = newLogger(verbose)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		collector = metrics.NewCollector("lineage")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to lineage.yaml config file")
	pf.StringVar(&dbPath, "db", "", "Path to the run store database")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Verbose (development) logging")
	pf.Float64Var(&marginFlag, "margin", 0, "Fixed AAF error margin")
	pf.IntVar(&maxTreesFlag, "max-trees", 0, "Maximum number of spanning trees to enumerate (0 = unbounded)")
	pf.IntVar(&maxCallsFlag, "max-calls", 0, "Maximum number of search steps (0 = unbounded)")
	pf.IntVar(&maxRepairsFlag, "max-repairs", 0, "Maximum number of network repair rounds (0 = until exhausted)")
	pf.BoolVar(&noClusterStats, "no-cluster-stats", false, "Use only the fixed margin, ignoring cluster standard deviations")
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, _, err := config.LoadFromPath(configPath)
		return cfg, err
	}
	cfg, _, err := config.Load()
	return cfg, err
}

func applyEngineFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("margin") {
		cfg.Engine.AAFErrorMargin = marginFlag
	}
	if flags.Changed("max-trees") {
		cfg.Engine.MaxTrees = maxTreesFlag
	}
	if flags.Changed("max-calls") {
		cfg.Engine.MaxSearchCalls = maxCallsFlag
	}
	if flags.Changed("max-repairs") {
		cfg.Engine.MaxRepairIterations = maxRepairsFlag
	}
	if noClusterStats {
		cfg.Engine.UseClusterStats = false
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return zc.Build()
}

// DiscoverDB finds the database path using priority: flag > env > config file
func DiscoverDB() string {
	if dbPath != "" {
		return dbPath
	}
	if envPath := os.Getenv("LINEAGE_DB"); envPath != "" {
		return envPath
	}
	return filepath.Clean(appConfig.Database.Path)
}

// OpenDatabase opens (creating if needed) the run store
func OpenDatabase() (*db.DB, error) {
	return db.OpenDB(DiscoverDB())
}

// loadInput parses a dataset file and converts it into engine groups
func loadInput(path string) (*codec.Dataset, []*lineage.SNVGroup, int, error) {
	if path == "" {
		return nil, nil, 0, fmt.Errorf("an input dataset is required (-i)")
	}
	ds, err := codec.ParseFile(path)
	if err != nil {
		return nil, nil, 0, err
	}
	groups, err := ds.SNVGroups()
	if err != nil {
		return nil, nil, 0, err
	}
	numSamples, err := ds.NumSamples()
	if err != nil {
		return nil, nil, 0, err
	}
	return ds, groups, numSamples, nil
}

// newPipeline creates a pipeline labelled with the dataset's sample names
func newPipeline(ds *codec.Dataset) *lineage.Pipeline {
	p := lineage.NewPipeline(appConfig.Engine, logger, collector)
	if len(ds.Samples) > 0 {
		p = p.WithSampleNames(ds.Samples)
	}
	return p
}

// runPipeline loads a dataset and runs the full search
func runPipeline(path string) (*lineage.Result, error) {
	ds, groups, numSamples, err := loadInput(path)
	if err != nil {
		return nil, err
	}
	res, err := newPipeline(ds).Run(groups, numSamples)
	if err != nil {
		return nil, fmt.Errorf("running pipeline: %w", err)
	}
	return res, nil
}

// pickTree returns the tree at 1-based rank
func pickTree(res *lineage.Result, rank int) (*lineage.Tree, error) {
	if len(res.Trees) == 0 {
		return nil, lineage.ErrNoLineage
	}
	if rank < 1 || rank > len(res.Trees) {
		return nil, fmt.Errorf("rank %d out of range (1-%d)", rank, len(res.Trees))
	}
	return res.Trees[rank-1], nil
}
