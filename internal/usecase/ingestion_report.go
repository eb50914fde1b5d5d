package usecase

import (
	"fmt"
	"time"

	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
)

// UnitKind names the batch a unit of ingestion commits atomically.
type UnitKind string

const (
	UnitLeague    UnitKind = "league"
	UnitSeasons   UnitKind = "seasons"
	UnitTeams     UnitKind = "teams"
	UnitMatches   UnitKind = "matches"
	UnitRoster    UnitKind = "roster"
	UnitPositions UnitKind = "positions"
)

// UnitReport counts what one committed unit did.
type UnitReport struct {
	Kind              UnitKind `json:"kind"`
	League            string   `json:"league"`
	Season            string   `json:"season,omitempty"`
	Team              string   `json:"team,omitempty"`
	Records           int      `json:"records"`
	Inserted          int      `json:"inserted"`
	Updated           int      `json:"updated"`
	MatchedByFallback int      `json:"matched_by_fallback"`
	Skipped           int      `json:"skipped"`
	Backfilled        int      `json:"backfilled"`
	Empty             bool     `json:"empty,omitempty"`
}

func (u *UnitReport) count(outcome record.Outcome) {
	switch outcome {
	case record.OutcomeInserted:
		u.Inserted++
	case record.OutcomeUpdatedByID:
		u.Updated++
	case record.OutcomeMatchedByFallback:
		u.MatchedByFallback++
	}
}

func (u *UnitReport) noteResolution(res Resolution) {
	if res.Backfilled {
		u.Backfilled++
	}
}

// RunReport aggregates every committed unit of one run.
type RunReport struct {
	RunID             string       `json:"run_id"`
	Kind              UnitKind     `json:"kind"`
	StartedAt         time.Time    `json:"started_at"`
	FinishedAt        time.Time    `json:"finished_at"`
	Units             []UnitReport `json:"units"`
	Inserted          int          `json:"inserted"`
	Updated           int          `json:"updated"`
	MatchedByFallback int          `json:"matched_by_fallback"`
	Skipped           int          `json:"skipped"`
	Backfilled        int          `json:"backfilled"`
}

func (r *RunReport) add(u UnitReport) {
	r.Units = append(r.Units, u)
	r.Inserted += u.Inserted
	r.Updated += u.Updated
	r.MatchedByFallback += u.MatchedByFallback
	r.Skipped += u.Skipped
	r.Backfilled += u.Backfilled
}

// UnitError is returned when a unit rolled back. Units committed earlier in
// the run stay committed, and rerunning the named unit is safe.
type UnitError struct {
	Kind   UnitKind
	League string
	Season string
	Team   string
	Err    error
}

func (e *UnitError) Error() string {
	scope := "league=" + e.League
	if e.Season != "" {
		scope += " season=" + e.Season
	}
	if e.Team != "" {
		scope += " team=" + e.Team
	}
	return fmt.Sprintf("%s unit rolled back (%s): %v", e.Kind, scope, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}
