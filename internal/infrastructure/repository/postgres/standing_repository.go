package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/rugby-analytics/internal/domain/standing"
	qb "github.com/riskibarqy/rugby-analytics/internal/platform/querybuilder"
)

type StandingRepository struct {
	db *sqlx.DB
}

func NewStandingRepository(db *sqlx.DB) *StandingRepository {
	return &StandingRepository{db: db}
}

func (r *StandingRepository) ListBySeason(ctx context.Context, leagueID, seasonID int64) ([]standing.Row, error) {
	query, args, err := qb.Select(
		"s.league_id", "s.season_id", "s.team_id", "t.name AS team_name",
		"s.games_played", "s.wins", "s.draws", "s.losses",
		"s.points_for", "s.points_against", "s.points_diff", "s.competition_points",
		"s.losing_bonus_points", "s.try_bonus_points",
	).From("team_season_stats s").
		Join("JOIN teams t ON t.id = s.team_id").
		Where(
			qb.Eq("s.league_id", leagueID),
			qb.Eq("s.season_id", seasonID),
		).
		OrderBy("s.team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team season stats query: %w", err)
	}

	var rows []teamSeasonStatModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select team season stats: %w", err)
	}

	out := make([]standing.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, standing.Row{
			LeagueID:          row.LeagueID,
			SeasonID:          row.SeasonID,
			TeamID:            row.TeamID,
			TeamName:          row.TeamName,
			GamesPlayed:       row.GamesPlayed,
			Wins:              row.Wins,
			Draws:             row.Draws,
			Losses:            row.Losses,
			PointsFor:         row.PointsFor,
			PointsAgainst:     row.PointsAgainst,
			PointsDiff:        row.PointsDiff,
			CompetitionPoints: row.CompetitionPoints,
			LosingBonusPoints: row.LosingBonusPoints,
			TryBonusPoints:    row.TryBonusPoints,
		})
	}
	return out, nil
}
