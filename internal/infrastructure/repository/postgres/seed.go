package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/rugby-analytics/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the sample league into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, store *Store) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := memory.Seed(ctx, store); err != nil {
		return fmt.Errorf("bootstrap seed: %w", err)
	}
	return nil
}
