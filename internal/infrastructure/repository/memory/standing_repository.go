package memory

import (
	"context"

	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
	"github.com/riskibarqy/rugby-analytics/internal/domain/standing"
)

type StandingRepository struct {
	store *Store
}

func NewStandingRepository(store *Store) *StandingRepository {
	return &StandingRepository{store: store}
}

func (r *StandingRepository) ListBySeason(_ context.Context, leagueID, seasonID int64) ([]standing.Row, error) {
	names := make(map[int64]string)
	for _, row := range r.store.Rows(record.EntityTeam) {
		names[int64Value(row["id"])] = stringValue(row["name"])
	}

	out := make([]standing.Row, 0)
	for _, row := range r.store.Rows(record.EntityTeamSeasonStat) {
		if int64Value(row["league_id"]) != leagueID || int64Value(row["season_id"]) != seasonID {
			continue
		}
		teamID := int64Value(row["team_id"])
		out = append(out, standing.Row{
			LeagueID:          leagueID,
			SeasonID:          seasonID,
			TeamID:            teamID,
			TeamName:          names[teamID],
			GamesPlayed:       intValue(row["games_played"]),
			Wins:              intValue(row["wins"]),
			Draws:             intValue(row["draws"]),
			Losses:            intValue(row["losses"]),
			PointsFor:         intValue(row["points_for"]),
			PointsAgainst:     intValue(row["points_against"]),
			PointsDiff:        intValue(row["points_diff"]),
			CompetitionPoints: intValue(row["competition_points"]),
			LosingBonusPoints: intValue(row["losing_bonus_points"]),
			TryBonusPoints:    intValue(row["try_bonus_points"]),
		})
	}
	return out, nil
}
