package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/riskibarqy/rugby-analytics/internal/domain/player"
	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
)

type PlayerRepository struct {
	store *Store
}

func NewPlayerRepository(store *Store) *PlayerRepository {
	return &PlayerRepository{store: store}
}

func (r *PlayerRepository) ListPositionTexts(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, row := range r.store.Rows(record.EntityPlayer) {
		text := stringValue(row["position_text"])
		if strings.TrimSpace(text) == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	sort.Strings(out)
	return out, nil
}

// List returns stored players ordered by id.
func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	rows := r.store.Rows(record.EntityPlayer)
	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			ID:                  int64Value(row["id"]),
			FullName:            stringValue(row["full_name"]),
			FirstName:           stringValue(row["first_name"]),
			LastName:            stringValue(row["last_name"]),
			Nationality:         stringValue(row["nationality"]),
			DateOfBirth:         optionalTime(row["date_of_birth"]),
			PreferredPositionID: optionalInt64(row["preferred_position_id"]),
			PositionText:        stringValue(row["position_text"]),
			ExternalID:          stringValue(row["external_id"]),
		})
	}
	return out, nil
}
