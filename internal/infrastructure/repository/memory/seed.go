package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
)

const (
	SeedLeagueExternalID = "4446"
	SeedSeasonLabel      = "2024-2025"
)

type seedMatch struct {
	home, away string
	kickoff    time.Time
	homeScore  *int
	awayScore  *int
	eventID    string
}

func score(v int) *int { return &v }

// Seed loads a small United Rugby Championship sample so the API has data
// to serve. Any record.Store works; the postgres bootstrap reuses it.
func Seed(ctx context.Context, store record.Store) error {
	return store.WithinUnit(ctx, "seed", func(ctx context.Context, s record.Session) error {
		leagueID, err := s.Insert(ctx, record.EntityLeague, record.Fields{
			"external_id": SeedLeagueExternalID,
			"name":        "United Rugby Championship",
			"short_name":  "URC",
			"slug":        "united-rugby-championship",
			"country":     "Multiple",
			"sport":       "Rugby",
		})
		if err != nil {
			return fmt.Errorf("seed league: %w", err)
		}
		seasonID, err := s.Insert(ctx, record.EntitySeason, record.Fields{
			"league_id":           leagueID,
			"year":                2024,
			"label":               SeedSeasonLabel,
			"external_season_key": SeedSeasonLabel,
		})
		if err != nil {
			return fmt.Errorf("seed season: %w", err)
		}

		teams := map[string]int64{}
		for _, t := range []struct{ name, externalID string }{
			{"DHL Stormers", "135803"},
			{"Vodacom Bulls", "135802"},
			{"Hollywoodbets Sharks", "135804"},
			{"Emirates Lions", "135805"},
			{"Leinster", "135796"},
		} {
			id, err := s.Insert(ctx, record.EntityTeam, record.Fields{"name": t.name, "external_id": t.externalID})
			if err != nil {
				return fmt.Errorf("seed team %s: %w", t.name, err)
			}
			teams[t.name] = id
		}

		venueID, err := s.Insert(ctx, record.EntityVenue, record.Fields{
			"name":    "DHL Stadium",
			"city":    "Cape Town",
			"country": "South Africa",
		})
		if err != nil {
			return fmt.Errorf("seed venue: %w", err)
		}

		day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 15, 0, 0, 0, time.UTC) }
		fixtures := []seedMatch{
			{"DHL Stormers", "Vodacom Bulls", day(time.October, 5), score(24), score(20), "2052101"},
			{"Hollywoodbets Sharks", "Emirates Lions", day(time.October, 5), score(18), score(18), "2052102"},
			{"Vodacom Bulls", "Leinster", day(time.October, 12), score(31), score(27), "2052103"},
			{"Leinster", "DHL Stormers", day(time.October, 19), score(35), score(10), "2052104"},
			{"Emirates Lions", "Vodacom Bulls", day(time.October, 26), score(13), score(26), "2052105"},
			{"Vodacom Bulls", "DHL Stormers", time.Date(2099, time.March, 1, 15, 0, 0, 0, time.UTC), nil, nil, "2052106"},
		}
		for _, f := range fixtures {
			fields := record.Fields{
				"league_id":         leagueID,
				"season_id":         seasonID,
				"home_team_id":      teams[f.home],
				"away_team_id":      teams[f.away],
				"kickoff_time":      f.kickoff,
				"home_score":        f.homeScore,
				"away_score":        f.awayScore,
				"status":            "final",
				"external_event_id": f.eventID,
				"source":            "seed",
			}
			if f.homeScore == nil {
				fields["status"] = "scheduled"
			}
			if f.home == "DHL Stormers" {
				fields["venue_id"] = venueID
			}
			if _, err := s.Insert(ctx, record.EntityMatch, fields); err != nil {
				return fmt.Errorf("seed match %s: %w", f.eventID, err)
			}
		}
		return nil
	})
}
