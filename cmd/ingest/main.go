// Command ingest pulls rugby data from TheSportsDB into the store and
// rebuilds the derived tables.
//
// Usage:
//
//	ingest leagues --league 4446
//	ingest matches --league 4446 --start-season 2024-2025 --seasons-back 2
//	ingest stats --workers 8
//	ingest schedule --cron "0 */6 * * *"
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/rugby-analytics/internal/app"
	"github.com/riskibarqy/rugby-analytics/internal/config"
	"github.com/riskibarqy/rugby-analytics/internal/observability"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
	"github.com/riskibarqy/rugby-analytics/internal/usecase"
)

type globalFlags struct {
	leagues []string
	asJSON  bool
}

func main() {
	_ = godotenv.Load(".env")

	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "ingest",
		Short:         "Rugby data ingestion CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&flags.leagues, "league", nil, "TheSportsDB league id (repeatable); defaults to INGEST_LEAGUES or every stored league")
	root.PersistentFlags().BoolVar(&flags.asJSON, "json", false, "Print the run report as JSON")

	root.AddCommand(
		leaguesCmd(flags),
		seasonsCmd(flags),
		teamsCmd(flags),
		playersCmd(flags),
		positionsCmd(flags),
		matchesCmd(flags),
		statsCmd(flags),
		scheduleCmd(flags),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ingest:", err)
		os.Exit(1)
	}
}

func leaguesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "leagues",
		Short: "Upsert league catalog entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(flags, func(ctx context.Context, a *app.App, leagues []string) (usecase.RunReport, error) {
				if len(leagues) == 0 {
					return usecase.RunReport{}, fmt.Errorf("%w: at least one --league is required", usecase.ErrInvalidInput)
				}
				return a.Ingestion.IngestLeagues(ctx, leagues)
			})
		},
	}
}

func seasonsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seasons",
		Short: "Upsert the season catalog of each league",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(flags, func(ctx context.Context, a *app.App, leagues []string) (usecase.RunReport, error) {
				return a.Ingestion.IngestSeasons(ctx, leagues)
			})
		},
	}
}

func teamsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "Upsert the teams of each league",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(flags, func(ctx context.Context, a *app.App, leagues []string) (usecase.RunReport, error) {
				return a.Ingestion.IngestTeams(ctx, leagues)
			})
		},
	}
}

func playersCmd(flags *globalFlags) *cobra.Command {
	var seasonLabel string
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Upsert team rosters, one unit per team",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(flags, func(ctx context.Context, a *app.App, leagues []string) (usecase.RunReport, error) {
				return a.Ingestion.IngestPlayers(ctx, leagues, seasonLabel)
			})
		},
	}
	cmd.Flags().StringVar(&seasonLabel, "season", "", "Season label to link rosters to; defaults to the provider's current season")
	return cmd
}

func positionsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "Build the position catalog from stored player positions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(flags, func(ctx context.Context, a *app.App, _ []string) (usecase.RunReport, error) {
				return a.Ingestion.IngestPositions(ctx)
			})
		},
	}
}

func matchesCmd(flags *globalFlags) *cobra.Command {
	var (
		startSeason string
		seasonsBack int
	)
	cmd := &cobra.Command{
		Use:   "matches",
		Short: "Upsert season events, newest season first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(flags, func(ctx context.Context, a *app.App, leagues []string) (usecase.RunReport, error) {
				return a.Ingestion.IngestMatches(ctx, usecase.MatchRunRequest{
					LeagueExternalIDs: leagues,
					StartLabel:        startSeason,
					SeasonsBack:       seasonsBack,
				})
			})
		},
	}
	cmd.Flags().StringVar(&startSeason, "start-season", "", "Season label to start from; defaults to the provider's current season")
	cmd.Flags().IntVar(&seasonsBack, "seasons-back", 0, "Seasons to walk per league; defaults to INGEST_SEASONS_BACK")
	return cmd
}

func statsCmd(flags *globalFlags) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Recompute standings for every league and season with matches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, cfg config.Config, a *app.App, logger *logging.Logger) error {
				if workers <= 0 {
					workers = cfg.Aggregation.Workers
				}
				return recomputeStandings(ctx, a, workers, logger)
			})
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent scopes; defaults to AGGREGATION_WORKERS")
	return cmd
}

func recomputeStandings(ctx context.Context, a *app.App, workers int, logger *logging.Logger) error {
	started := time.Now()
	result, err := a.Standings.RecomputeAll(ctx, workers)
	logger.InfoContext(ctx, "standings recompute finished",
		"scopes", result.Scopes,
		"rows", result.Rows,
		"failed", result.Failed,
		"duration", time.Since(started).Round(time.Millisecond).String(),
	)
	return err
}

type ingestFunc func(ctx context.Context, a *app.App, leagues []string) (usecase.RunReport, error)

// runIngest runs one orchestrator pass and prints its report. A partial
// report is still printed when a unit rolled back.
func runIngest(flags *globalFlags, fn ingestFunc) error {
	return withApp(func(ctx context.Context, cfg config.Config, a *app.App, logger *logging.Logger) error {
		leagues := flags.leagues
		if len(leagues) == 0 {
			leagues = cfg.Ingest.Leagues
		}

		report, err := fn(ctx, a, leagues)
		if printErr := printReport(report, flags.asJSON, logger); printErr != nil {
			logger.Warn("print report failed", "error", printErr)
		}
		return err
	})
}

func printReport(report usecase.RunReport, asJSON bool, logger *logging.Logger) error {
	if report.RunID == "" {
		return nil
	}
	if asJSON {
		out, err := sonic.ConfigStd.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(os.Stdout, string(out))
		return err
	}

	logger.Info("ingest run finished",
		"run_id", report.RunID,
		"kind", string(report.Kind),
		"units", len(report.Units),
		"inserted", report.Inserted,
		"updated", report.Updated,
		"matched_by_fallback", report.MatchedByFallback,
		"skipped", report.Skipped,
		"backfilled", report.Backfilled,
		"duration", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond).String(),
	)
	return nil
}

// withApp owns config loading, logging, tracing and signal handling for
// every subcommand.
func withApp(fn func(ctx context.Context, cfg config.Config, a *app.App, logger *logging.Logger) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Operators run these by hand in dev; deployed jobs ship JSON.
	logger := logging.NewJSON(cfg.LogLevel)
	if cfg.AppEnv == config.EnvDev {
		logger = logging.NewConsole(cfg.LogLevel)
	}
	logger = logger.Named("ingest")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, "ingest", logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app failed", "error", err)
		}
	}()

	return fn(ctx, cfg, a, logger)
}
