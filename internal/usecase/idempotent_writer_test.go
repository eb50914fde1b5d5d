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

func inUnit(t *testing.T, store *memory.Store, fn func(ctx context.Context, s record.Session) error) {
	t.Helper()
	if err := store.WithinUnit(context.Background(), t.Name(), fn); err != nil {
		t.Fatalf("unit error: %v", err)
	}
}

func TestIdempotentWriter_Outcomes(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	writer := NewIdempotentWriter(logging.NewNop())

	inUnit(t, store, func(ctx context.Context, s record.Session) error {
		legacyID, err := s.Insert(ctx, record.EntityTeam, record.Fields{"name": "Vodacom Bulls", "country": "South Africa"})
		require.NoError(t, err)

		req := record.Upsert{
			Entity: record.EntityTeam,
			Key:    record.Fields{"external_id": "135802"},
			Fallback: &record.Criteria{
				EqualFold: map[string]string{"name": "vodacom bulls"},
				IsNull:    []string{"external_id"},
			},
			Fields: record.Fields{"name": "Vodacom Bulls", "abbreviation": "BUL"},
		}

		id, outcome, err := writer.Upsert(ctx, s, req)
		require.NoError(t, err)
		require.Equal(t, legacyID, id)
		require.Equal(t, record.OutcomeMatchedByFallback, outcome)

		id, outcome, err = writer.Upsert(ctx, s, req)
		require.NoError(t, err)
		require.Equal(t, legacyID, id)
		require.Equal(t, record.OutcomeUpdatedByID, outcome)

		req.Key = record.Fields{"external_id": "135803"}
		req.Fallback = nil
		req.Fields = record.Fields{"name": "DHL Stormers"}
		newID, outcome, err := writer.Upsert(ctx, s, req)
		require.NoError(t, err)
		require.Equal(t, record.OutcomeInserted, outcome)
		require.NotEqual(t, legacyID, newID)
		return nil
	})

	rows := store.Rows(record.EntityTeam)
	require.Len(t, rows, 2)
	require.Equal(t, "135802", rows[0]["external_id"])
	require.Equal(t, "BUL", rows[0]["abbreviation"])
	require.Equal(t, "South Africa", rows[0]["country"], "fields absent from the call stay untouched")
}

func TestIdempotentWriter_DropsUnsupportedOptionalColumns(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.WithColumns(record.EntityMatch,
		"id", "league_id", "season_id", "home_team_id", "away_team_id", "status", "kickoff_time",
		"home_score", "away_score", "external_event_id"))
	writer := NewIdempotentWriter(logging.NewNop())
	kickoff := time.Date(2024, 10, 5, 15, 0, 0, 0, time.UTC)

	inUnit(t, store, func(ctx context.Context, s record.Session) error {
		_, outcome, err := writer.Upsert(ctx, s, record.Upsert{
			Entity: record.EntityMatch,
			Key: record.Fields{
				"league_id": int64(1), "season_id": int64(1),
				"home_team_id": int64(1), "away_team_id": int64(2),
				"kickoff_time": kickoff,
			},
			Fields: record.Fields{
				"status":     "final",
				"home_score": int64(24),
				"away_score": int64(20),
				"attendance": int64(31000),
				"round":      "3",
				"source":     "thesportsdb",
			},
		})
		require.NoError(t, err)
		require.Equal(t, record.OutcomeInserted, outcome)

		ok, err := writer.Supports(ctx, s, record.EntityMatch, "attendance")
		require.NoError(t, err)
		require.False(t, ok)
		return nil
	})

	rows := store.Rows(record.EntityMatch)
	require.Len(t, rows, 1)
	_, hasAttendance := rows[0]["attendance"]
	require.False(t, hasAttendance)
	require.Equal(t, int64(24), rows[0]["home_score"])
}

func TestIdempotentWriter_MissingRequiredColumn(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.WithColumns(record.EntitySeason, "id", "league_id", "label"))
	writer := NewIdempotentWriter(logging.NewNop())

	err := store.WithinUnit(context.Background(), "seasons", func(ctx context.Context, s record.Session) error {
		_, _, err := writer.Upsert(ctx, s, record.Upsert{
			Entity: record.EntitySeason,
			Key:    record.Fields{"league_id": int64(1), "year": 2024},
			Fields: record.Fields{"label": "2024-2025"},
		})
		return err
	})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestIdempotentWriter_NullKickoffKeyMatchesNullRow(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	writer := NewIdempotentWriter(logging.NewNop())
	var kickoff *time.Time

	inUnit(t, store, func(ctx context.Context, s record.Session) error {
		req := record.Upsert{
			Entity: record.EntityMatch,
			Key: record.Fields{
				"league_id": int64(1), "season_id": int64(1),
				"home_team_id": int64(1), "away_team_id": int64(2),
				"kickoff_time": kickoff,
			},
			Fallback: &record.Criteria{Equal: record.Fields{"external_event_id": "99"}},
			Fields:   record.Fields{"status": "scheduled", "external_event_id": "99"},
		}
		_, first, err := writer.Upsert(ctx, s, req)
		require.NoError(t, err)
		_, second, err := writer.Upsert(ctx, s, req)
		require.NoError(t, err)
		require.Equal(t, record.OutcomeInserted, first)
		require.Equal(t, record.OutcomeUpdatedByID, second)
		return nil
	})
	require.Equal(t, 1, store.Count(record.EntityMatch))
}
