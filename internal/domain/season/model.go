package season

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidLabel = errors.New("invalid season label")

// Season belongs to one league and is unique per (league, year).
type Season struct {
	ID          int64
	LeagueID    int64
	Year        int
	Label       string
	ExternalKey string
}

// YearFromLabel returns the starting year of "2024" or "2024-2025".
func YearFromLabel(label string) (int, error) {
	start, _, err := parseLabel(label)
	if err != nil {
		return 0, err
	}
	return start, nil
}

// PreviousLabel returns the label one season earlier, keeping the label's
// shape: "2013" -> "2012", "2025-2026" -> "2024-2025".
func PreviousLabel(label string) (string, error) {
	start, end, err := parseLabel(label)
	if err != nil {
		return "", err
	}
	if start <= 1 {
		return "", fmt.Errorf("%w: %q has no predecessor", ErrInvalidLabel, label)
	}
	if end == 0 {
		return strconv.Itoa(start - 1), nil
	}
	return fmt.Sprintf("%d-%d", start-1, end-1), nil
}

func parseLabel(label string) (int, int, error) {
	label = strings.TrimSpace(label)
	parts := strings.Split(label, "-")
	if len(parts) > 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	start, err := parseYear(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	if len(parts) == 1 {
		return start, 0, nil
	}

	end, err := parseYear(parts[1])
	if err != nil || end < start {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return start, end, nil
}

func parseYear(raw string) (int, error) {
	if len(raw) != 4 {
		return 0, fmt.Errorf("year must have four digits")
	}
	return strconv.Atoi(raw)
}
