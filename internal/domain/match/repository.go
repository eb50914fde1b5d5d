package match

import "context"

// BetweenFilter selects matches with one side in TeamAIDs and the other in
// TeamBIDs. LeagueID zero means every league.
type BetweenFilter struct {
	TeamAIDs []int64
	TeamBIDs []int64
	LeagueID int64
}

type Repository interface {
	ListBySeason(ctx context.Context, leagueID, seasonID int64) ([]Match, error)
	ListBetween(ctx context.Context, filter BetweenFilter) ([]Summary, error)
	ListScopes(ctx context.Context) ([]Scope, error)
}

// Scope is a (league, season) pair with at least one match.
type Scope struct {
	LeagueID int64
	SeasonID int64
}
