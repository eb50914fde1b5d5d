package standing

import "context"

// Repository reads materialized team_season_stats joined with team names.
// Rows come back unranked.
type Repository interface {
	ListBySeason(ctx context.Context, leagueID, seasonID int64) ([]Row, error)
}
