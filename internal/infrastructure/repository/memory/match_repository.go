package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/rugby-analytics/internal/domain/match"
	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
)

type MatchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

// ListBySeason orders by kickoff, unknown kickoffs last, then id.
func (r *MatchRepository) ListBySeason(_ context.Context, leagueID, seasonID int64) ([]match.Match, error) {
	out := make([]match.Match, 0)
	for _, row := range r.store.Rows(record.EntityMatch) {
		if int64Value(row["league_id"]) != leagueID || int64Value(row["season_id"]) != seasonID {
			continue
		}
		out = append(out, matchFromRow(row))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].KickoffTime, out[j].KickoffTime
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.Before(*b)
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out, nil
}

// ListBetween returns meetings newest first with display names joined.
func (r *MatchRepository) ListBetween(_ context.Context, filter match.BetweenFilter) ([]match.Summary, error) {
	setA := make(map[int64]struct{}, len(filter.TeamAIDs))
	for _, id := range filter.TeamAIDs {
		setA[id] = struct{}{}
	}
	setB := make(map[int64]struct{}, len(filter.TeamBIDs))
	for _, id := range filter.TeamBIDs {
		setB[id] = struct{}{}
	}

	teams := names(r.store.Rows(record.EntityTeam), "name")
	venues := names(r.store.Rows(record.EntityVenue), "name")
	leagues := names(r.store.Rows(record.EntityLeague), "name")
	seasons := names(r.store.Rows(record.EntitySeason), "label")

	out := make([]match.Summary, 0)
	for _, row := range r.store.Rows(record.EntityMatch) {
		m := matchFromRow(row)
		if filter.LeagueID != 0 && m.LeagueID != filter.LeagueID {
			continue
		}
		if !m.Involves(setA, setB) {
			continue
		}
		summary := match.Summary{
			Match:    m,
			HomeTeam: teams[m.HomeTeamID],
			AwayTeam: teams[m.AwayTeamID],
			League:   leagues[m.LeagueID],
			Season:   seasons[m.SeasonID],
		}
		if m.VenueID != nil {
			summary.Venue = venues[*m.VenueID]
		}
		out = append(out, summary)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].KickoffTime, out[j].KickoffTime
		switch {
		case a == nil && b == nil:
			return out[i].ID > out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		default:
			return out[i].ID > out[j].ID
		}
	})
	return out, nil
}

func (r *MatchRepository) ListScopes(_ context.Context) ([]match.Scope, error) {
	seen := make(map[match.Scope]struct{})
	out := make([]match.Scope, 0)
	for _, row := range r.store.Rows(record.EntityMatch) {
		scope := match.Scope{LeagueID: int64Value(row["league_id"]), SeasonID: int64Value(row["season_id"])}
		if _, ok := seen[scope]; ok {
			continue
		}
		seen[scope] = struct{}{}
		out = append(out, scope)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LeagueID != out[j].LeagueID {
			return out[i].LeagueID < out[j].LeagueID
		}
		return out[i].SeasonID < out[j].SeasonID
	})
	return out, nil
}

func matchFromRow(row record.Fields) match.Match {
	return match.Match{
		ID:              int64Value(row["id"]),
		LeagueID:        int64Value(row["league_id"]),
		SeasonID:        int64Value(row["season_id"]),
		VenueID:         optionalInt64(row["venue_id"]),
		HomeTeamID:      int64Value(row["home_team_id"]),
		AwayTeamID:      int64Value(row["away_team_id"]),
		Status:          match.Status(stringValue(row["status"])),
		KickoffTime:     optionalTime(row["kickoff_time"]),
		HomeScore:       optionalInt(row["home_score"]),
		AwayScore:       optionalInt(row["away_score"]),
		Attendance:      optionalInt(row["attendance"]),
		Round:           stringValue(row["round"]),
		ExternalEventID: stringValue(row["external_event_id"]),
	}
}

func names(rows []record.Fields, column string) map[int64]string {
	out := make(map[int64]string, len(rows))
	for _, row := range rows {
		out[int64Value(row["id"])] = stringValue(row[column])
	}
	return out
}
