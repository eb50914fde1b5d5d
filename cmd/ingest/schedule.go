package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/rugby-analytics/internal/app"
	"github.com/riskibarqy/rugby-analytics/internal/config"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
	"github.com/riskibarqy/rugby-analytics/internal/usecase"
)

const scheduledRunTimeout = 2 * time.Hour

func scheduleCmd(flags *globalFlags) *cobra.Command {
	var (
		spec string
		once bool
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the full ingest pipeline on a cron schedule",
		Long: "Runs seasons, teams, matches and a standings recompute for each configured league. " +
			"A tick that fires while the previous run is still going is skipped.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(ctx context.Context, cfg config.Config, a *app.App, logger *logging.Logger) error {
				leagues := flags.leagues
				if len(leagues) == 0 {
					leagues = cfg.Ingest.Leagues
				}
				if spec == "" {
					spec = cfg.Ingest.Schedule
				}

				job := func() {
					runCtx, cancel := context.WithTimeout(ctx, scheduledRunTimeout)
					defer cancel()
					if err := runPipeline(runCtx, a, leagues, cfg.Aggregation.Workers, logger); err != nil {
						logger.ErrorContext(runCtx, "scheduled ingest failed", "error", err)
					}
				}
				if once {
					job()
					return nil
				}

				c := cron.New(
					cron.WithLocation(time.UTC),
					cron.WithLogger(cronLogger{logger: logger.Named("cron")}),
					cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: logger.Named("cron")})),
				)
				if _, err := c.AddFunc(spec, job); err != nil {
					return fmt.Errorf("%w: invalid schedule %q: %v", usecase.ErrInvalidInput, spec, err)
				}

				logger.Info("ingest scheduler starting", "schedule", spec, "leagues", leagues)
				c.Start()
				<-ctx.Done()

				logger.Info("ingest scheduler stopping")
				<-c.Stop().Done()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "", "Five-field cron expression in UTC; defaults to INGEST_SCHEDULE")
	cmd.Flags().BoolVar(&once, "once", false, "Run the pipeline once and exit")
	return cmd
}

type pipelineStage struct {
	name string
	run  func(ctx context.Context) (usecase.RunReport, error)
}

// runPipeline walks the ingest stages in dependency order. A stage failure
// stops the pipeline; earlier committed units stay.
func runPipeline(ctx context.Context, a *app.App, leagues []string, workers int, logger *logging.Logger) error {
	var stages []pipelineStage
	if len(leagues) > 0 {
		stages = append(stages, pipelineStage{"leagues", func(ctx context.Context) (usecase.RunReport, error) {
			return a.Ingestion.IngestLeagues(ctx, leagues)
		}})
	}
	stages = append(stages,
		pipelineStage{"seasons", func(ctx context.Context) (usecase.RunReport, error) {
			return a.Ingestion.IngestSeasons(ctx, leagues)
		}},
		pipelineStage{"teams", func(ctx context.Context) (usecase.RunReport, error) {
			return a.Ingestion.IngestTeams(ctx, leagues)
		}},
		pipelineStage{"matches", func(ctx context.Context) (usecase.RunReport, error) {
			return a.Ingestion.IngestMatches(ctx, usecase.MatchRunRequest{LeagueExternalIDs: leagues})
		}},
	)

	for _, stage := range stages {
		report, err := stage.run(ctx)
		if printErr := printReport(report, false, logger); printErr != nil {
			logger.Warn("print report failed", "error", printErr)
		}
		if err != nil {
			return fmt.Errorf("%s stage: %w", stage.name, err)
		}
	}

	if err := recomputeStandings(ctx, a, workers, logger); err != nil {
		return fmt.Errorf("stats stage: %w", err)
	}
	return nil
}

// cronLogger routes robfig/cron logs through the service logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
