package team

import "context"

// Repository describes team reads. List orders by lower(name), id.
type Repository interface {
	List(ctx context.Context) ([]Team, error)
	ListByIDs(ctx context.Context, teamIDs []int64) ([]Team, error)
	ListByLeague(ctx context.Context, leagueID int64) ([]Team, error)
}
