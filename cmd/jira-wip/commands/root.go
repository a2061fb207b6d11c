package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jira-wip/internal/analysis"
	"jira-wip/internal/config"
	"jira-wip/internal/eventlog"
	"jira-wip/internal/jira"
	"jira-wip/internal/logging"
	"jira-wip/internal/report"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose  bool
	cfgFile  string
	sourceID string
	offline  bool
	refresh  bool

	cfg *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "jira-wip",
	Short: "Stage durations and WIP-limit violations from Jira workflow history",
	Long: `jira-wip reconstructs how long every work item spent in each workflow status and
detects the periods in which a status held more items than its WIP limit allows.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("jira-wip starting")
		return nil
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is jira-wip.yaml in DATA_PATH)")
	rootCmd.PersistentFlags().StringVar(&sourceID, "source", "", "cache partition to use (default is PROJECT_KEY)")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "never contact Jira, analyze the cached event log only")
	rootCmd.PersistentFlags().BoolVar(&refresh, "refresh", false, "re-fetch the history from Jira even if a cache exists")

	rootCmd.AddCommand(fetchCmd, stagesCmd, violationsCmd, monthlyCmd, timelineCmd, cacheCmd, serveCmd, versionCmd)
}

func activeSource() string {
	if sourceID != "" {
		return sourceID
	}
	return cfg.SourceID()
}

// newProvider builds the event log provider; offline mode runs without a Jira client.
func newProvider() (*eventlog.LogProvider, error) {
	var client jira.Client
	if !offline {
		if err := cfg.Jira.Validate(); err != nil {
			return nil, fmt.Errorf("%w (use --offline to analyze cached data)", err)
		}
		client = jira.NewClient(cfg.Jira)
	}

	provider := eventlog.NewLogProvider(client, eventlog.NewEventStore(), cfg.CacheDir)
	provider.PageSize = cfg.Jira.PageSize
	provider.CacheMaxAge = cfg.CacheMaxAge
	if offline {
		provider.CacheMaxAge = 0
	}
	return provider, nil
}

// hydrate loads the event log of the active source, fetching it when needed.
func hydrate(ctx context.Context, forceRefresh bool) (*eventlog.LogProvider, error) {
	provider, err := newProvider()
	if err != nil {
		return nil, err
	}

	jql := ""
	if !offline {
		if jql, err = cfg.SearchJQL(); err != nil {
			return nil, err
		}
	}

	if err := provider.Hydrate(ctx, activeSource(), jql, forceRefresh && !offline); err != nil {
		return nil, err
	}
	return provider, nil
}

func analysisOptions() (analysis.Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return analysis.Options{}, err
	}
	return analysis.Options{Limits: cfg.WIPLimits(), Now: time.Now(), Location: loc}, nil
}

// runAnalysis analyzes either an interval CSV or the event log of the active source.
func runAnalysis(ctx context.Context, input string) (*analysis.Result, error) {
	opts, err := analysisOptions()
	if err != nil {
		return nil, err
	}

	if input != "" {
		file, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer func() { _ = file.Close() }()

		intervals, err := report.ReadIntervalsCSV(file, opts.Now)
		if err != nil {
			return nil, err
		}
		log.Info().Str("input", input).Int("intervals", len(intervals)).Msg("Loaded intervals")
		return analysis.FromIntervals(intervals, opts)
	}

	provider, err := hydrate(ctx, refresh)
	if err != nil {
		return nil, err
	}
	histories := provider.Histories(activeSource())
	log.Info().Str("source", activeSource()).Int("items", len(histories)).Msg("Analyzing event log")
	return analysis.Run(ctx, histories, opts)
}
