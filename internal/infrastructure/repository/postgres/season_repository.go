package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/rugby-analytics/internal/domain/season"
	qb "github.com/riskibarqy/rugby-analytics/internal/platform/querybuilder"
)

const seasonColumns = "id, league_id, year, label, external_season_key"

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

// ListByLeague returns the newest season first.
func (r *SeasonRepository) ListByLeague(ctx context.Context, leagueID int64) ([]season.Season, error) {
	return r.list(ctx, qb.Eq("league_id", leagueID))
}

func (r *SeasonRepository) ListAll(ctx context.Context) ([]season.Season, error) {
	return r.list(ctx)
}

func (r *SeasonRepository) list(ctx context.Context, where ...qb.Condition) ([]season.Season, error) {
	query, args, err := qb.Select(seasonColumns).From("seasons").
		Where(where...).
		OrderBy("league_id", "year DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select seasons query: %w", err)
	}

	var rows []seasonTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select seasons: %w", err)
	}

	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, seasonFromRow(row))
	}
	return out, nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID int64) (season.Season, bool, error) {
	query, args, err := qb.Select(seasonColumns).From("seasons").
		Where(qb.Eq("id", seasonID)).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season: %w", err)
	}
	return seasonFromRow(row), true, nil
}

func seasonFromRow(row seasonTableModel) season.Season {
	return season.Season{
		ID:          row.ID,
		LeagueID:    row.LeagueID,
		Year:        row.Year,
		Label:       row.Label,
		ExternalKey: nullStringToString(row.ExternalKey),
	}
}
