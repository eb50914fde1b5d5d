package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
)

func TestStore_WithinUnitRollsBackOnError(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinUnit(ctx, "teams", func(ctx context.Context, s record.Session) error {
		if _, err := s.Insert(ctx, record.EntityTeam, record.Fields{"name": "Bulls"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped unit error, got %v", err)
	}
	if store.Count(record.EntityTeam) != 0 {
		t.Fatalf("expected rollback to remove inserted team")
	}
	if store.CommittedUnits() != 0 {
		t.Fatalf("failed unit must not count as committed")
	}
}

func TestStore_WithinUnitRollsBackOnPanic(t *testing.T) {
	t.Parallel()

	store := NewStore()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic to propagate")
		}
		if store.Count(record.EntityTeam) != 0 {
			t.Fatalf("expected rollback after panic")
		}
	}()

	_ = store.WithinUnit(context.Background(), "teams", func(ctx context.Context, s record.Session) error {
		_, _ = s.Insert(ctx, record.EntityTeam, record.Fields{"name": "Bulls"})
		panic("boom")
	})
}

func TestSession_UniqueKeysIgnoreNulls(t *testing.T) {
	t.Parallel()

	store := NewStore()
	kickoff := time.Date(2024, 10, 5, 15, 0, 0, 0, time.FixedZone("SAST", 2*3600))

	err := store.WithinUnit(context.Background(), "matches", func(ctx context.Context, s record.Session) error {
		base := record.Fields{"league_id": 1, "season_id": 1, "home_team_id": 1, "away_team_id": 2, "status": "final"}
		if _, err := s.Insert(ctx, record.EntityMatch, base.Merge(record.Fields{"kickoff_time": nil})); err != nil {
			return err
		}
		if _, err := s.Insert(ctx, record.EntityMatch, base.Merge(record.Fields{"kickoff_time": nil})); err != nil {
			t.Fatalf("null kickoff must not conflict: %v", err)
		}
		if _, err := s.Insert(ctx, record.EntityMatch, base.Merge(record.Fields{"kickoff_time": kickoff})); err != nil {
			return err
		}
		_, err := s.Insert(ctx, record.EntityMatch, base.Merge(record.Fields{"kickoff_time": kickoff.UTC()}))
		if !errors.Is(err, record.ErrDuplicateKey) {
			t.Fatalf("expected duplicate natural key, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unit error: %v", err)
	}
}

func TestSession_FindOrdersByNameThenID(t *testing.T) {
	t.Parallel()

	store := NewStore()
	err := store.WithinUnit(context.Background(), "teams", func(ctx context.Context, s record.Session) error {
		for _, name := range []string{"Stormers", "blue bulls", "Bulls", "bulls"} {
			if _, err := s.Insert(ctx, record.EntityTeam, record.Fields{"name": name}); err != nil {
				return err
			}
		}

		got, err := s.Find(ctx, record.EntityTeam, record.Criteria{Contains: map[string]string{"name": "BULLS"}})
		if err != nil {
			return err
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 candidates, got %+v", got)
		}
		if got[0].Name != "blue bulls" || got[1].ID != 3 || got[2].ID != 4 {
			t.Fatalf("unexpected order: %+v", got)
		}

		exact, err := s.Find(ctx, record.EntityTeam, record.Criteria{EqualFold: map[string]string{"name": "BULLS"}})
		if err != nil {
			return err
		}
		if len(exact) != 2 || exact[0].ID != 3 {
			t.Fatalf("expected lowest id to win tie, got %+v", exact)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unit error: %v", err)
	}
}

func TestStore_WithColumnsRejectsUnknownColumns(t *testing.T) {
	t.Parallel()

	store := NewStore(WithColumns(record.EntityMatch,
		"id", "league_id", "season_id", "home_team_id", "away_team_id", "status", "kickoff_time", "home_score", "away_score"))

	err := store.WithinUnit(context.Background(), "matches", func(ctx context.Context, s record.Session) error {
		cols, err := s.Columns(ctx, record.EntityMatch)
		if err != nil {
			return err
		}
		if cols.Has("attendance") {
			t.Fatalf("attendance must be absent")
		}
		_, err = s.Insert(ctx, record.EntityMatch, record.Fields{"attendance": 100})
		return err
	})
	if !errors.Is(err, record.ErrUndefinedColumn) {
		t.Fatalf("expected undefined column error, got %v", err)
	}
}

func TestSeed_ServesReadRepositories(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	if err := Seed(ctx, store); err != nil {
		t.Fatalf("seed: %v", err)
	}

	lg, ok, err := NewLeagueRepository(store).GetByExternalID(ctx, SeedLeagueExternalID)
	if err != nil || !ok {
		t.Fatalf("expected seeded league, ok=%v err=%v", ok, err)
	}
	teams, err := NewTeamRepository(store).ListByLeague(ctx, lg.ID)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(teams) != 5 || teams[0].Name != "DHL Stormers" {
		t.Fatalf("unexpected league teams: %+v", teams)
	}

	scopes, err := NewMatchRepository(store).ListScopes(ctx)
	if err != nil || len(scopes) != 1 {
		t.Fatalf("expected one scope, got %+v err=%v", scopes, err)
	}
}
