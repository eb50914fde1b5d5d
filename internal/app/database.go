package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/rugby-analytics/internal/config"
)

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dbURL := DatabaseURL(cfg)

	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping postgres: %w", err), db.Close())
	}
	return db, nil
}

func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}

// DatabaseURL returns the connection string both the api and the migration
// binary hand to the postgres driver.
func DatabaseURL(cfg config.Config) string {
	return normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
}

const maxTracedQueryRunes = 512

// formatDBQueryForTrace puts a statement on one line for span attributes.
// Record writer INSERTs can carry long column lists, so the result is cut
// on a rune boundary.
func formatDBQueryForTrace(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if utf8.RuneCountInString(normalized) <= maxTracedQueryRunes {
		return normalized
	}

	runes := []rune(normalized)
	return string(runes[:maxTracedQueryRunes]) + "..."
}
