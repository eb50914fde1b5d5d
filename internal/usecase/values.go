package usecase

import (
	"strings"
	"time"

	"github.com/riskibarqy/rugby-analytics/internal/domain/player"
)

// nullString maps blank text to SQL NULL.
func nullString(value string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return value
}

func nullTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC()
}

func nullDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return dateOnly(*value)
}

func nullInt(value *int) any {
	if value == nil {
		return nil
	}
	return int64(*value)
}

func nullInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func splitPlayerName(full string) (string, string) {
	return player.SplitName(full)
}
