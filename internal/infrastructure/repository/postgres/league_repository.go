package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/rugby-analytics/internal/domain/league"
	qb "github.com/riskibarqy/rugby-analytics/internal/platform/querybuilder"
)

const leagueColumns = "id, external_id, name, short_name, slug, country, sport"

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select(leagueColumns).From("leagues").
		OrderBy("LOWER(name)", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueFromRow(row))
	}
	return out, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID int64) (league.League, bool, error) {
	return r.getOne(ctx, qb.Eq("id", leagueID))
}

func (r *LeagueRepository) GetByExternalID(ctx context.Context, externalID string) (league.League, bool, error) {
	return r.getOne(ctx, qb.Eq("external_id", strings.TrimSpace(externalID)))
}

func (r *LeagueRepository) getOne(ctx context.Context, where qb.Condition) (league.League, bool, error) {
	query, args, err := qb.Select(leagueColumns).From("leagues").
		Where(where).
		Limit(1).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league: %w", err)
	}
	return leagueFromRow(row), true, nil
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:         row.ID,
		ExternalID: nullStringToString(row.ExternalID),
		Name:       row.Name,
		ShortName:  nullStringToString(row.ShortName),
		Slug:       nullStringToString(row.Slug),
		Country:    nullStringToString(row.Country),
		Sport:      nullStringToString(row.Sport),
	}
}
