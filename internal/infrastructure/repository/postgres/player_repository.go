package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	qb "github.com/riskibarqy/rugby-analytics/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) ListPositionTexts(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("DISTINCT position_text").From("players").
		Where(
			qb.IsNotNull("position_text"),
			qb.Expr("TRIM(position_text) <> ''"),
		).
		OrderBy("position_text").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select position texts query: %w", err)
	}

	var out []string
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("select position texts: %w", err)
	}
	return out, nil
}
