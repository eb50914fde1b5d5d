package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/rugby-analytics/internal/app"
	"github.com/riskibarqy/rugby-analytics/internal/config"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
)

func main() {
	_ = godotenv.Load(".env")

	var dir string
	root := &cobra.Command{
		Use:           "migration",
		Short:         "Apply rugby-analytics schema migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dir, "dir", "", "migrations directory (defaults to MIGRATIONS_DIR or ./db/migrations)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(dir, func(m *migrate.Migrate, logger *logging.Logger) error {
					if err := ignoreNoChange(m.Up(), logger); err != nil {
						return err
					}
					logger.Info("migrations applied")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back the given number of migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps, err := parseSteps(args)
				if err != nil {
					return err
				}
				return withMigrator(dir, func(m *migrate.Migrate, logger *logging.Logger) error {
					if err := ignoreNoChange(m.Steps(-steps), logger); err != nil {
						return err
					}
					logger.Info("migrations rolled back", "steps", steps)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(dir, func(m *migrate.Migrate, _ *logging.Logger) error {
					version, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						fmt.Fprintln(cmd.OutOrStdout(), "version: none")
						fmt.Fprintln(cmd.OutOrStdout(), "dirty: false")
						return nil
					}
					if err != nil {
						return fmt.Errorf("read version: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version: %d\ndirty: %t\n", version, dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Mark the schema as the given version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := parseVersion(args[0])
				if err != nil {
					return err
				}
				return withMigrator(dir, func(m *migrate.Migrate, logger *logging.Logger) error {
					if err := m.Force(version); err != nil {
						return fmt.Errorf("force version %d: %w", version, err)
					}
					logger.Info("schema version forced", "version", version)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "goto <version>",
			Aliases: []string{"migrate"},
			Short:   "Migrate up or down to the given version",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				target, err := parseTarget(args[0])
				if err != nil {
					return err
				}
				return withMigrator(dir, func(m *migrate.Migrate, logger *logging.Logger) error {
					if err := ignoreNoChange(m.Migrate(target), logger); err != nil {
						return err
					}
					logger.Info("migrated", "version", target)
					return nil
				})
			},
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migration:", err)
		os.Exit(1)
	}
}

func withMigrator(dir string, fn func(m *migrate.Migrate, logger *logging.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DBURL == "" {
		return errors.New("DB_URL is required")
	}

	logger := logging.NewJSON(cfg.LogLevel)
	if cfg.AppEnv == config.EnvDev {
		logger = logging.NewConsole(cfg.LogLevel)
	}
	logger = logger.Named("migration")
	defer func() { _ = logger.Sync() }()

	migrationsDir, err := resolveMigrationsDir(dir)
	if err != nil {
		return err
	}

	sourceURL := "file://" + filepath.ToSlash(migrationsDir)
	m, err := migrate.New(sourceURL, app.DatabaseURL(cfg))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("close migration source", "error", srcErr)
		}
		if dbErr != nil {
			logger.Warn("close migration db", "error", dbErr)
		}
	}()

	logger.Debug("migrator ready", "source", sourceURL)
	return fn(m, logger)
}

func ignoreNoChange(err error, logger *logging.Logger) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, errors.New("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, errors.New("version must be >= 0")
	}
	return value, nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

// resolveMigrationsDir prefers the flag, then MIGRATIONS_DIR, then the
// repository and container layouts.
func resolveMigrationsDir(flag string) (string, error) {
	candidates := []string{
		strings.TrimSpace(flag),
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", errors.New("migration directory not found (checked --dir, MIGRATIONS_DIR, ./db/migrations, /app/db/migrations)")
}
