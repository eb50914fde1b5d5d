package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
	"github.com/riskibarqy/rugby-analytics/internal/domain/season"
)

type SeasonRepository struct {
	store *Store
}

func NewSeasonRepository(store *Store) *SeasonRepository {
	return &SeasonRepository{store: store}
}

// ListByLeague returns the newest season first.
func (r *SeasonRepository) ListByLeague(ctx context.Context, leagueID int64) ([]season.Season, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]season.Season, 0, len(all))
	for _, s := range all {
		if s.LeagueID == leagueID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *SeasonRepository) GetByID(_ context.Context, seasonID int64) (season.Season, bool, error) {
	for _, row := range r.store.Rows(record.EntitySeason) {
		if int64Value(row["id"]) == seasonID {
			return seasonFromRow(row), true, nil
		}
	}
	return season.Season{}, false, nil
}

func (r *SeasonRepository) ListAll(_ context.Context) ([]season.Season, error) {
	rows := r.store.Rows(record.EntitySeason)
	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, seasonFromRow(row))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LeagueID != out[j].LeagueID {
			return out[i].LeagueID < out[j].LeagueID
		}
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func seasonFromRow(row record.Fields) season.Season {
	return season.Season{
		ID:          int64Value(row["id"]),
		LeagueID:    int64Value(row["league_id"]),
		Year:        intValue(row["year"]),
		Label:       stringValue(row["label"]),
		ExternalKey: stringValue(row["external_season_key"]),
	}
}
