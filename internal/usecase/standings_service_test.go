package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
	"github.com/riskibarqy/rugby-analytics/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
)

func newSeededStandings(t *testing.T) (*StandingsService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	if err := memory.Seed(context.Background(), store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewStandingsService(
		memory.NewLeagueRepository(store),
		memory.NewSeasonRepository(store),
		memory.NewTeamRepository(store),
		memory.NewMatchRepository(store),
		memory.NewStandingRepository(store),
		store,
		logging.NewNop(),
	)
	return svc, store
}

func TestStandingsService_TableLiveThenStored(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store := newSeededStandings(t)

	live, err := svc.Table(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, StandingsSourceLive, live.Source)
	require.Equal(t, "United Rugby Championship", live.League.Name)
	require.Len(t, live.Rows, 5)

	top := live.Rows[0]
	require.Equal(t, "Vodacom Bulls", top.TeamName)
	require.Equal(t, 3, top.GamesPlayed)
	require.Equal(t, 9, top.CompetitionPoints, "two wins and a losing bonus")
	require.Equal(t, 1, top.LosingBonusPoints)
	require.Equal(t, 13, top.PointsDiff)

	order := make([]string, 0, len(live.Rows))
	for _, r := range live.Rows {
		order = append(order, r.TeamName)
	}
	require.Equal(t, []string{"Vodacom Bulls", "Leinster", "DHL Stormers", "Hollywoodbets Sharks", "Emirates Lions"}, order)

	written, err := svc.Recompute(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 5, written)
	require.Equal(t, 5, store.Count(record.EntityTeamSeasonStat))

	stored, err := svc.Table(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, StandingsSourceStored, stored.Source)
	require.Equal(t, live.Rows, stored.Rows)

	again, err := svc.Recompute(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 5, again)
	require.Equal(t, 5, store.Count(record.EntityTeamSeasonStat), "recompute overwrites in place")
}

func TestStandingsService_RecomputeRemovesTeamsLeavingScope(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store := newSeededStandings(t)

	_, err := svc.Recompute(ctx, 1, 1)
	require.NoError(t, err)

	var emptySeasonID int64
	inUnit(t, store, func(ctx context.Context, s record.Session) error {
		griffonsID, err := s.Insert(ctx, record.EntityTeam, record.Fields{"name": "Griffons"})
		require.NoError(t, err)
		_, err = s.Insert(ctx, record.EntityTeamSeasonStat, record.Fields{
			"league_id": int64(1), "season_id": int64(1), "team_id": griffonsID, "competition_points": 30,
		})
		require.NoError(t, err)

		emptySeasonID, err = s.Insert(ctx, record.EntitySeason, record.Fields{"league_id": int64(1), "year": 2019, "label": "2019-2020"})
		require.NoError(t, err)
		_, err = s.Insert(ctx, record.EntityTeamSeasonStat, record.Fields{
			"league_id": int64(1), "season_id": emptySeasonID, "team_id": griffonsID, "competition_points": 12,
		})
		require.NoError(t, err)
		return nil
	})
	require.Equal(t, 7, store.Count(record.EntityTeamSeasonStat))

	written, err := svc.Recompute(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 5, written)

	stored, err := svc.Table(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, StandingsSourceStored, stored.Source)
	require.Len(t, stored.Rows, 5)
	for _, row := range stored.Rows {
		require.NotEqual(t, "Griffons", row.TeamName)
	}

	written, err = svc.Recompute(ctx, 1, emptySeasonID)
	require.NoError(t, err)
	require.Zero(t, written)
	require.Equal(t, 5, store.Count(record.EntityTeamSeasonStat), "a scope without matches keeps no stored rows")
}

func TestStandingsService_TableValidatesScope(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store := newSeededStandings(t)

	_, err := svc.Table(ctx, 0, 1)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Table(ctx, 42, 1)
	require.ErrorIs(t, err, ErrNotFound)

	inUnit(t, store, func(ctx context.Context, s record.Session) error {
		leagueID, err := s.Insert(ctx, record.EntityLeague, record.Fields{"name": "Currie Cup", "sport": "Rugby"})
		require.NoError(t, err)
		require.Equal(t, int64(2), leagueID)
		return nil
	})
	_, err = svc.Table(ctx, 2, 1)
	require.ErrorIs(t, err, ErrNotFound, "season belongs to another league")
}

func TestStandingsService_TableCallersDoNotShareRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newSeededStandings(t)

	first, err := svc.Table(ctx, 1, 1)
	require.NoError(t, err)
	first.Rows[0].TeamName = "mutated"

	second, err := svc.Table(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, "Vodacom Bulls", second.Rows[0].TeamName)
}

func TestStandingsService_RecomputeAllReleasesWorkers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	svc, store := newSeededStandings(t)

	inUnit(t, store, func(ctx context.Context, s record.Session) error {
		seasonID, err := s.Insert(ctx, record.EntitySeason, record.Fields{"league_id": int64(1), "year": 2023, "label": "2023-2024"})
		require.NoError(t, err)
		home, away, score := int64(1), int64(2), 12
		_, err = s.Insert(ctx, record.EntityMatch, record.Fields{
			"league_id": int64(1), "season_id": seasonID,
			"home_team_id": home, "away_team_id": away,
			"status": "final", "kickoff_time": nil,
			"home_score": score, "away_score": score,
		})
		require.NoError(t, err)
		return nil
	})

	result, err := svc.RecomputeAll(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, RecomputeResult{Scopes: 2, Rows: 7}, result)
	require.Equal(t, 7, store.Count(record.EntityTeamSeasonStat))
}

func TestStandingsService_RecomputeAllCollectsFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore(memory.WithColumns(record.EntityTeamSeasonStat, "id", "league_id", "season_id"))
	if err := memory.Seed(ctx, store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewStandingsService(
		memory.NewLeagueRepository(store),
		memory.NewSeasonRepository(store),
		memory.NewTeamRepository(store),
		memory.NewMatchRepository(store),
		memory.NewStandingRepository(store),
		store,
		logging.NewNop(),
	)

	result, err := svc.RecomputeAll(ctx, 0)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
	require.Equal(t, 1, result.Failed)
	require.Equal(t, 0, store.Count(record.EntityTeamSeasonStat))
}
