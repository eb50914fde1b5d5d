package league

import "context"

// Repository describes league reads used by the query layer and the
// ingestion walk.
type Repository interface {
	List(ctx context.Context) ([]League, error)
	GetByID(ctx context.Context, leagueID int64) (League, bool, error)
	GetByExternalID(ctx context.Context, externalID string) (League, bool, error)
}
