package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
)

// Config stores runtime configuration shared by the api and ingest binaries.
type Config struct {
	AppEnv                  string        `env:"APP_ENV"`
	ServiceName             string        `env:"SERVICE_NAME" validate:"required"`
	ServiceVersion          string        `env:"SERVICE_VERSION"`
	HTTPAddr                string        `env:"HTTP_ADDR" validate:"required"`
	DBURL                   string        `env:"DB_URL"`
	DBDisablePreparedBinary bool          `env:"DB_DISABLE_PREPARED_BINARY"`
	ReadTimeout             time.Duration `env:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout            time.Duration `env:"WRITE_TIMEOUT" validate:"gt=0"`
	CORSAllowedOrigins      []string      `env:"CORS_ALLOWED_ORIGINS"`
	PprofEnabled            bool          `env:"PPROF_ENABLED"`
	PprofAddr               string        `env:"PPROF_ADDR" validate:"required_if=PprofEnabled true"`
	LogLevel                logging.Level `env:"LOG_LEVEL"`

	Provider    ProviderConfig
	Ingest      IngestConfig
	Aggregation AggregationConfig

	AliasGroupsFile string `env:"ALIAS_GROUPS_FILE"`

	UptraceEnabled bool   `env:"UPTRACE_ENABLED"`
	UptraceDSN     string `env:"UPTRACE_DSN" validate:"required_if=UptraceEnabled true"`

	PyroscopeEnabled           bool          `env:"PYROSCOPE_ENABLED"`
	PyroscopeServerAddress     string        `env:"PYROSCOPE_SERVER_ADDRESS" validate:"required_if=PyroscopeEnabled true"`
	PyroscopeAppName           string        `env:"PYROSCOPE_APP_NAME"`
	PyroscopeAuthToken         string        `env:"PYROSCOPE_AUTH_TOKEN"`
	PyroscopeBasicAuthUser     string        `env:"PYROSCOPE_BASIC_AUTH_USER"`
	PyroscopeBasicAuthPassword string        `env:"PYROSCOPE_BASIC_AUTH_PASSWORD"`
	PyroscopeUploadRate        time.Duration `env:"PYROSCOPE_UPLOAD_RATE" validate:"gt=0"`
}

// ProviderConfig drives the TheSportsDB client.
type ProviderConfig struct {
	BaseURL           string        `env:"THESPORTSDB_BASE_URL" validate:"required,url"`
	APIKey            string        `env:"THESPORTSDB_API_KEY" validate:"required"`
	Timeout           time.Duration `env:"PROVIDER_TIMEOUT" validate:"gt=0"`
	MaxAttempts       int           `env:"PROVIDER_MAX_ATTEMPTS" validate:"gte=1,lte=10"`
	BaseDelay         time.Duration `env:"PROVIDER_BASE_DELAY" validate:"gte=0"`
	BackoffMultiplier float64       `env:"PROVIDER_BACKOFF_MULTIPLIER" validate:"gte=1"`

	CircuitEnabled        bool          `env:"PROVIDER_CIRCUIT_ENABLED"`
	CircuitFailureCount   int           `env:"PROVIDER_CIRCUIT_FAILURE_COUNT" validate:"gte=1"`
	CircuitOpenTimeout    time.Duration `env:"PROVIDER_CIRCUIT_OPEN_TIMEOUT" validate:"gt=0"`
	CircuitHalfOpenMaxReq int           `env:"PROVIDER_CIRCUIT_HALF_OPEN_MAX_REQ" validate:"gte=1"`
}

type IngestConfig struct {
	UnitPause       time.Duration `env:"INGEST_UNIT_PAUSE" validate:"gte=0"`
	SeasonsBack     int           `env:"INGEST_SEASONS_BACK" validate:"gte=1"`
	SportPrefix     string        `env:"INGEST_SPORT_PREFIX"`
	AutoCreateTeams bool          `env:"INGEST_AUTO_CREATE_TEAMS"`
	EnrichPlayers   bool          `env:"INGEST_ENRICH_PLAYERS"`
	// Schedule is a standard five-field cron expression.
	Schedule string   `env:"INGEST_SCHEDULE" validate:"required"`
	Leagues  []string `env:"INGEST_LEAGUES"`
}

type AggregationConfig struct {
	Workers int `env:"AGGREGATION_WORKERS" validate:"gte=1,lte=64"`
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logLevel, err := logging.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                strings.TrimSpace(getEnv("SERVICE_NAME", "rugby-analytics")),
		ServiceVersion:             strings.TrimSpace(getEnv("SERVICE_VERSION", "dev")),
		HTTPAddr:                   strings.TrimSpace(getEnv("HTTP_ADDR", ":8080")),
		DBURL:                      strings.TrimSpace(getEnv("DB_URL", "")),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		PprofAddr:                  strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		LogLevel:                   logLevel,
		AliasGroupsFile:            strings.TrimSpace(getEnv("ALIAS_GROUPS_FILE", "")),
		UptraceDSN:                 strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAppName:           strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		Provider: ProviderConfig{
			BaseURL: strings.TrimSpace(getEnv("THESPORTSDB_BASE_URL", "https://www.thesportsdb.com/api/v1/json")),
			APIKey:  strings.TrimSpace(getEnv("THESPORTSDB_API_KEY", "3")),
		},
		Ingest: IngestConfig{
			SportPrefix: strings.ToLower(strings.TrimSpace(getEnv("INGEST_SPORT_PREFIX", "rugby"))),
			Schedule:    strings.TrimSpace(getEnv("INGEST_SCHEDULE", "0 */6 * * *")),
			Leagues:     splitCSV(getEnv("INGEST_LEAGUES", "")),
		},
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.PyroscopeAppName == "" {
		cfg.PyroscopeAppName = cfg.ServiceName
	}

	bools := []struct {
		key      string
		fallback bool
		dst      *bool
	}{
		{"DB_DISABLE_PREPARED_BINARY", false, &cfg.DBDisablePreparedBinary},
		{"PPROF_ENABLED", false, &cfg.PprofEnabled},
		{"UPTRACE_ENABLED", false, &cfg.UptraceEnabled},
		{"PYROSCOPE_ENABLED", false, &cfg.PyroscopeEnabled},
		{"PROVIDER_CIRCUIT_ENABLED", false, &cfg.Provider.CircuitEnabled},
		{"INGEST_AUTO_CREATE_TEAMS", false, &cfg.Ingest.AutoCreateTeams},
		{"INGEST_ENRICH_PLAYERS", false, &cfg.Ingest.EnrichPlayers},
	}
	for _, item := range bools {
		if *item.dst, err = getEnvAsBool(item.key, item.fallback); err != nil {
			return Config{}, err
		}
	}

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"READ_TIMEOUT", 10 * time.Second, &cfg.ReadTimeout},
		{"WRITE_TIMEOUT", 15 * time.Second, &cfg.WriteTimeout},
		{"PYROSCOPE_UPLOAD_RATE", 15 * time.Second, &cfg.PyroscopeUploadRate},
		{"PROVIDER_TIMEOUT", 45 * time.Second, &cfg.Provider.Timeout},
		{"PROVIDER_BASE_DELAY", 800 * time.Millisecond, &cfg.Provider.BaseDelay},
		{"PROVIDER_CIRCUIT_OPEN_TIMEOUT", 30 * time.Second, &cfg.Provider.CircuitOpenTimeout},
		{"INGEST_UNIT_PAUSE", 1500 * time.Millisecond, &cfg.Ingest.UnitPause},
	}
	for _, item := range durations {
		if *item.dst, err = getEnvAsDuration(item.key, item.fallback); err != nil {
			return Config{}, err
		}
	}

	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"PROVIDER_MAX_ATTEMPTS", 4, &cfg.Provider.MaxAttempts},
		{"PROVIDER_CIRCUIT_FAILURE_COUNT", 5, &cfg.Provider.CircuitFailureCount},
		{"PROVIDER_CIRCUIT_HALF_OPEN_MAX_REQ", 1, &cfg.Provider.CircuitHalfOpenMaxReq},
		{"INGEST_SEASONS_BACK", 1, &cfg.Ingest.SeasonsBack},
		{"AGGREGATION_WORKERS", 4, &cfg.Aggregation.Workers},
	}
	for _, item := range ints {
		if *item.dst, err = getEnvAsInt(item.key, item.fallback); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
	}

	multiplier, err := strconv.ParseFloat(getEnv("PROVIDER_BACKOFF_MULTIPLIER", "1.8"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse PROVIDER_BACKOFF_MULTIPLIER: %w", err)
	}
	cfg.Provider.BackoffMultiplier = multiplier

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var configValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("env"); name != "" {
			return name
		}
		return field.Name
	})
	return v
}

// validate reports the first failing rule by its environment variable.
func validate(cfg Config) error {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate config: %w", err)
	}
	first := fieldErrs[0]
	switch first.Tag() {
	case "required", "required_if":
		return fmt.Errorf("%s is required", first.Field())
	case "url":
		return fmt.Errorf("%s must be an absolute url", first.Field())
	default:
		return fmt.Errorf("%s must satisfy %s=%s", first.Field(), first.Tag(), first.Param())
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
