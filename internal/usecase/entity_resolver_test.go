package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
	"github.com/riskibarqy/rugby-analytics/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
)

func newTestResolver(policy CreatePolicy) *EntityResolver {
	logger := logging.NewNop()
	return NewEntityResolver(NewIdempotentWriter(logger), NewResolutionCache(), policy, logger)
}

func TestEntityResolver_TeamTiers(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	resolver := newTestResolver(CreatePolicy{})

	inUnit(t, store, func(ctx context.Context, s record.Session) error {
		stormersID, err := s.Insert(ctx, record.EntityTeam, record.Fields{"name": "DHL Stormers", "external_id": "135803"})
		require.NoError(t, err)
		bullsID, err := s.Insert(ctx, record.EntityTeam, record.Fields{"name": "Vodacom Bulls"})
		require.NoError(t, err)
		sharksID, err := s.Insert(ctx, record.EntityTeam, record.Fields{"name": "Hollywoodbets Sharks"})
		require.NoError(t, err)

		res, err := resolver.ResolveTeam(ctx, s, TeamRef{ExternalID: "135803", Name: "anything"})
		require.NoError(t, err)
		require.Equal(t, Resolution{ID: stormersID, Tier: TierExternalID}, res)

		res, err = resolver.ResolveTeam(ctx, s, TeamRef{ExternalID: "135802", Name: "vodacom bulls"})
		require.NoError(t, err)
		require.Equal(t, bullsID, res.ID)
		require.Equal(t, TierExactName, res.Tier)
		require.True(t, res.Backfilled)

		res, err = resolver.ResolveTeam(ctx, s, TeamRef{ExternalID: "135804", Name: "Sharks"})
		require.NoError(t, err)
		require.Equal(t, sharksID, res.ID)
		require.Equal(t, TierFuzzyName, res.Tier)
		require.False(t, res.Backfilled, "substring matches never attach provider ids")
		return nil
	})

	rows := store.Rows(record.EntityTeam)
	require.Equal(t, "135802", rows[1]["external_id"])
	require.Nil(t, rows[2]["external_id"])
}

func TestEntityResolver_CachedHitsReportNoSideEffects(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	resolver := newTestResolver(DefaultCreatePolicy())

	inUnit(t, store, func(ctx context.Context, s record.Session) error {
		first, err := resolver.ResolveVenue(ctx, s, VenueRef{ExternalID: "17", Name: "Loftus Versfeld", City: "Pretoria"})
		require.NoError(t, err)
		require.True(t, first.Created)

		second, err := resolver.ResolveVenue(ctx, s, VenueRef{ExternalID: "17", Name: "Loftus Versfeld"})
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
		require.False(t, second.Created)
		return nil
	})
	require.Equal(t, 1, store.Count(record.EntityVenue))
}

func TestEntityResolver_ShortNamesSkipFuzzyTier(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	resolver := newTestResolver(CreatePolicy{})

	inUnit(t, store, func(ctx context.Context, s record.Session) error {
		_, err := s.Insert(ctx, record.EntityTeam, record.Fields{"name": "Bulls"})
		require.NoError(t, err)

		_, err = resolver.ResolveTeam(ctx, s, TeamRef{Name: "Bu"})
		if !errors.Is(err, ErrMissingDependency) || !IsSkippable(err) {
			t.Fatalf("expected skippable missing dependency, got %v", err)
		}
		return nil
	})
}

func TestEntityResolver_LeaguesAreNeverCreated(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	resolver := newTestResolver(DefaultCreatePolicy())

	inUnit(t, store, func(ctx context.Context, s record.Session) error {
		_, err := resolver.ResolveLeague(ctx, s, LeagueRef{ExternalID: "4446", Name: "United Rugby Championship"})
		require.ErrorIs(t, err, ErrMissingDependency)
		return nil
	})
	require.Equal(t, 0, store.Count(record.EntityLeague))
}

func TestEntityResolver_SeasonByLabelThenYear(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	resolver := newTestResolver(DefaultCreatePolicy())

	inUnit(t, store, func(ctx context.Context, s record.Session) error {
		existing, err := s.Insert(ctx, record.EntitySeason, record.Fields{"league_id": int64(1), "year": 2024, "label": "2024/25"})
		require.NoError(t, err)

		res, err := resolver.ResolveSeason(ctx, s, SeasonRef{LeagueID: 1, Label: "2024-2025", ExternalKey: "2024-2025"})
		require.NoError(t, err)
		require.Equal(t, existing, res.ID)
		require.True(t, res.Backfilled)

		created, err := resolver.ResolveSeason(ctx, s, SeasonRef{LeagueID: 2, Label: "2024-2025"})
		require.NoError(t, err)
		require.True(t, created.Created)
		require.NotEqual(t, existing, created.ID)

		_, err = resolver.ResolveSeason(ctx, s, SeasonRef{LeagueID: 1, Label: "next year"})
		require.ErrorIs(t, err, ErrInvalidInput)
		return nil
	})

	rows := store.Rows(record.EntitySeason)
	require.Equal(t, "2024-2025", rows[0]["external_season_key"])
}

func TestEntityResolver_PlayerNameAndBirthTier(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	resolver := newTestResolver(DefaultCreatePolicy())
	dob := time.Date(1994, 3, 11, 0, 0, 0, 0, time.UTC)

	inUnit(t, store, func(ctx context.Context, s record.Session) error {
		_, err := s.Insert(ctx, record.EntityPlayer, record.Fields{"full_name": "Handre Pollard", "date_of_birth": dob.AddDate(-5, 0, 0)})
		require.NoError(t, err)
		twin, err := s.Insert(ctx, record.EntityPlayer, record.Fields{"full_name": "Handre Pollard", "date_of_birth": dob})
		require.NoError(t, err)

		res, err := resolver.ResolvePlayer(ctx, s, PlayerRef{ExternalID: "34145", FullName: "handre pollard", DateOfBirth: &dob})
		require.NoError(t, err)
		require.Equal(t, twin, res.ID)
		require.Equal(t, TierNameAndBirth, res.Tier)

		created, err := resolver.ResolvePlayer(ctx, s, PlayerRef{ExternalID: "34146", FullName: "Pieter-Steph du Toit"})
		require.NoError(t, err)
		require.True(t, created.Created)
		return nil
	})

	rows := store.Rows(record.EntityPlayer)
	require.Len(t, rows, 3)
	require.Equal(t, "Pieter-Steph", rows[2]["first_name"])
	require.Equal(t, "du Toit", rows[2]["last_name"])
}

func TestEntityResolver_NameTiersSkipRowsOwnedByOtherProviderIDs(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	resolver := newTestResolver(DefaultCreatePolicy())

	inUnit(t, store, func(ctx context.Context, s record.Session) error {
		first, err := resolver.ResolvePlayer(ctx, s, PlayerRef{ExternalID: "1", FullName: "Sam Smith"})
		require.NoError(t, err)
		require.True(t, first.Created)

		namesake, err := resolver.ResolvePlayer(ctx, s, PlayerRef{ExternalID: "2", FullName: "Sam Smith"})
		require.NoError(t, err)
		require.True(t, namesake.Created)
		require.NotEqual(t, first.ID, namesake.ID)

		sharksID, err := s.Insert(ctx, record.EntityTeam, record.Fields{"name": "Hollywoodbets Sharks", "external_id": "135804"})
		require.NoError(t, err)
		res, err := resolver.ResolveTeam(ctx, s, TeamRef{ExternalID: "7001", Name: "Sharks"})
		require.NoError(t, err)
		require.True(t, res.Created, "substring tier must not pick a row bound to another provider id")
		require.NotEqual(t, sharksID, res.ID)
		return nil
	})

	players := store.Rows(record.EntityPlayer)
	require.Len(t, players, 2)
	require.Equal(t, "1", players[0]["external_id"])
	require.Equal(t, "2", players[1]["external_id"])
}

func TestEntityResolver_PositionFromCatalog(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	resolver := newTestResolver(DefaultCreatePolicy())

	inUnit(t, store, func(ctx context.Context, s record.Session) error {
		first, err := resolver.ResolvePosition(ctx, s, "Fly-half")
		require.NoError(t, err)
		require.True(t, first.Created)

		_, err = resolver.ResolvePosition(ctx, s, "  ")
		require.True(t, IsSkippable(err))
		return nil
	})
	require.Equal(t, 1, store.Count(record.EntityPosition))
}
