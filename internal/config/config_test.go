package config

import (
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Provider.APIKey != "3" {
		t.Fatalf("expected public test key, got %q", cfg.Provider.APIKey)
	}
	if cfg.Provider.MaxAttempts != 4 || cfg.Provider.BaseDelay != 800*time.Millisecond || cfg.Provider.BackoffMultiplier != 1.8 {
		t.Fatalf("unexpected backoff defaults: %+v", cfg.Provider)
	}
	if cfg.Ingest.UnitPause != 1500*time.Millisecond {
		t.Fatalf("unexpected unit pause: %s", cfg.Ingest.UnitPause)
	}
	if cfg.Ingest.AutoCreateTeams {
		t.Fatalf("auto-create teams must default to off")
	}
	if cfg.Ingest.SportPrefix != "rugby" || cfg.Ingest.SeasonsBack != 1 {
		t.Fatalf("unexpected ingest defaults: %+v", cfg.Ingest)
	}
	if cfg.Aggregation.Workers != 4 {
		t.Fatalf("unexpected workers: %d", cfg.Aggregation.Workers)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
	if cfg.PyroscopeAppName != "rugby-analytics" {
		t.Fatalf("pyroscope app name must follow the service name, got %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_ProviderOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvStage)
	t.Setenv("THESPORTSDB_API_KEY", "premium-key-123")
	t.Setenv("PROVIDER_MAX_ATTEMPTS", "6")
	t.Setenv("PROVIDER_BASE_DELAY", "250ms")
	t.Setenv("PROVIDER_BACKOFF_MULTIPLIER", "2")
	t.Setenv("PROVIDER_CIRCUIT_ENABLED", "true")
	t.Setenv("INGEST_LEAGUES", "4446, 4714,,")
	t.Setenv("INGEST_AUTO_CREATE_TEAMS", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Provider.APIKey != "premium-key-123" || cfg.Provider.MaxAttempts != 6 {
		t.Fatalf("unexpected provider config: %+v", cfg.Provider)
	}
	if cfg.Provider.BaseDelay != 250*time.Millisecond || cfg.Provider.BackoffMultiplier != 2 {
		t.Fatalf("unexpected backoff: %+v", cfg.Provider)
	}
	if !cfg.Provider.CircuitEnabled {
		t.Fatalf("expected circuit enabled")
	}
	if len(cfg.Ingest.Leagues) != 2 || cfg.Ingest.Leagues[0] != "4446" || cfg.Ingest.Leagues[1] != "4714" {
		t.Fatalf("unexpected leagues: %#v", cfg.Ingest.Leagues)
	}
	if !cfg.Ingest.AutoCreateTeams {
		t.Fatalf("expected auto-create teams")
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
}

func TestLoad_ErrorsNameTheVariable(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad duration", key: "PROVIDER_TIMEOUT", value: "soon"},
		{name: "zero attempts", key: "PROVIDER_MAX_ATTEMPTS", value: "0"},
		{name: "multiplier below one", key: "PROVIDER_BACKOFF_MULTIPLIER", value: "0.5"},
		{name: "bad bool", key: "INGEST_AUTO_CREATE_TEAMS", value: "maybe"},
		{name: "relative base url", key: "THESPORTSDB_BASE_URL", value: "thesportsdb"},
		{name: "too many workers", key: "AGGREGATION_WORKERS", value: "500"},
		{name: "unknown log level", key: "LOG_LEVEL", value: "verbose"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.key) {
				t.Fatalf("error must name %s, got %v", tc.key, err)
			}
		})
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "UPTRACE_DSN") {
		t.Fatalf("expected UPTRACE_DSN error, got %v", err)
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-other=1, uptrace-dsn='https://token@api.uptrace.dev/1'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
		t.Fatalf("unexpected dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PyroscopeRequiresServerAddress(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "PYROSCOPE_SERVER_ADDRESS") {
		t.Fatalf("expected PYROSCOPE_SERVER_ADDRESS error, got %v", err)
	}
}
