package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/rugby-analytics/internal/domain/team"
	qb "github.com/riskibarqy/rugby-analytics/internal/platform/querybuilder"
)

const teamColumns = "id, name, short_name, abbreviation, country, external_id"

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	return r.list(ctx)
}

func (r *TeamRepository) ListByIDs(ctx context.Context, teamIDs []int64) ([]team.Team, error) {
	if len(teamIDs) == 0 {
		return []team.Team{}, nil
	}
	return r.list(ctx, qb.In("id", int64SliceToAny(teamIDs)))
}

// ListByLeague returns teams that have played or are scheduled in the league.
func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID int64) ([]team.Team, error) {
	return r.list(ctx, qb.Expr(
		"id IN (SELECT home_team_id FROM matches WHERE league_id = ? UNION SELECT away_team_id FROM matches WHERE league_id = ?)",
		leagueID, leagueID,
	))
}

func (r *TeamRepository) list(ctx context.Context, where ...qb.Condition) ([]team.Team, error) {
	query, args, err := qb.Select(teamColumns).From("teams").
		Where(where...).
		OrderBy("LOWER(name)", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Team{
			ID:           row.ID,
			Name:         row.Name,
			ShortName:    nullStringToString(row.ShortName),
			Abbreviation: nullStringToString(row.Abbreviation),
			Country:      nullStringToString(row.Country),
			ExternalID:   nullStringToString(row.ExternalID),
		})
	}
	return out, nil
}
