package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/riskibarqy/rugby-analytics/internal/domain/league"
	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
)

type LeagueRepository struct {
	store *Store
}

func NewLeagueRepository(store *Store) *LeagueRepository {
	return &LeagueRepository{store: store}
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	rows := r.store.Rows(record.EntityLeague)
	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueFromRow(row))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID int64) (league.League, bool, error) {
	for _, row := range r.store.Rows(record.EntityLeague) {
		if int64Value(row["id"]) == leagueID {
			return leagueFromRow(row), true, nil
		}
	}
	return league.League{}, false, nil
}

func (r *LeagueRepository) GetByExternalID(_ context.Context, externalID string) (league.League, bool, error) {
	externalID = strings.TrimSpace(externalID)
	for _, row := range r.store.Rows(record.EntityLeague) {
		if stringValue(row["external_id"]) == externalID {
			return leagueFromRow(row), true, nil
		}
	}
	return league.League{}, false, nil
}

func leagueFromRow(row record.Fields) league.League {
	return league.League{
		ID:         int64Value(row["id"]),
		ExternalID: stringValue(row["external_id"]),
		Name:       stringValue(row["name"]),
		ShortName:  stringValue(row["short_name"]),
		Slug:       stringValue(row["slug"]),
		Country:    stringValue(row["country"]),
		Sport:      stringValue(row["sport"]),
	}
}
