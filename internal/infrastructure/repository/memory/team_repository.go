package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
	"github.com/riskibarqy/rugby-analytics/internal/domain/team"
)

type TeamRepository struct {
	store *Store
}

func NewTeamRepository(store *Store) *TeamRepository {
	return &TeamRepository{store: store}
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	return r.filter(func(team.Team) bool { return true }), nil
}

func (r *TeamRepository) ListByIDs(_ context.Context, teamIDs []int64) ([]team.Team, error) {
	wanted := make(map[int64]struct{}, len(teamIDs))
	for _, id := range teamIDs {
		wanted[id] = struct{}{}
	}
	return r.filter(func(t team.Team) bool {
		_, ok := wanted[t.ID]
		return ok
	}), nil
}

// ListByLeague returns teams that have played or are scheduled in the league.
func (r *TeamRepository) ListByLeague(_ context.Context, leagueID int64) ([]team.Team, error) {
	inLeague := make(map[int64]struct{})
	for _, row := range r.store.Rows(record.EntityMatch) {
		if int64Value(row["league_id"]) != leagueID {
			continue
		}
		inLeague[int64Value(row["home_team_id"])] = struct{}{}
		inLeague[int64Value(row["away_team_id"])] = struct{}{}
	}
	return r.filter(func(t team.Team) bool {
		_, ok := inLeague[t.ID]
		return ok
	}), nil
}

func (r *TeamRepository) filter(keep func(team.Team) bool) []team.Team {
	rows := r.store.Rows(record.EntityTeam)
	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		t := teamFromRow(row)
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func teamFromRow(row record.Fields) team.Team {
	return team.Team{
		ID:           int64Value(row["id"]),
		Name:         stringValue(row["name"]),
		ShortName:    stringValue(row["short_name"]),
		Abbreviation: stringValue(row["abbreviation"]),
		Country:      stringValue(row["country"]),
		ExternalID:   stringValue(row["external_id"]),
	}
}
