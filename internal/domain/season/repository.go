package season

import "context"

type Repository interface {
	ListByLeague(ctx context.Context, leagueID int64) ([]Season, error)
	GetByID(ctx context.Context, seasonID int64) (Season, bool, error)
	ListAll(ctx context.Context) ([]Season, error)
}
