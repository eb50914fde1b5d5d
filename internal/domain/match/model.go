package match

import (
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusFinal      Status = "final"
	StatusPostponed  Status = "postponed"
	StatusCancelled  Status = "cancelled"
)

var liveMarkers = []string{"1H", "HT", "2H", "ET", "BT", "PT", "LIVE", "INPLAY"}

// NormalizeStatus maps a provider status code to a canonical status.
// Unknown or empty codes are treated as scheduled.
func NormalizeStatus(code string) Status {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch code {
	case "", "NS", "TBD", "PST", "NOT STARTED":
		return StatusScheduled
	case "FT", "AET", "AW", "FINISHED", "COMPLETE", "COMPLETED", "MATCH FINISHED":
		return StatusFinal
	case "POST", "PPD", "POSTPONED":
		return StatusPostponed
	case "CANC", "ABD", "INTR", "SUSP", "CANCELLED", "ABANDONED":
		return StatusCancelled
	}
	for _, marker := range liveMarkers {
		if strings.Contains(code, marker) {
			return StatusInProgress
		}
	}
	return StatusScheduled
}

// Match is one fixture. Scores stay nil until played.
type Match struct {
	ID              int64
	LeagueID        int64
	SeasonID        int64
	VenueID         *int64
	HomeTeamID      int64
	AwayTeamID      int64
	Status          Status
	KickoffTime     *time.Time
	HomeScore       *int
	AwayScore       *int
	Attendance      *int
	Round           string
	ExternalEventID string
}

// IsCompleted reports whether both scores are present. Aggregation only
// counts completed matches regardless of status.
func (m Match) IsCompleted() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// IsUpcoming reports an unscored match kicking off after now.
func (m Match) IsUpcoming(now time.Time) bool {
	if m.KickoffTime == nil || m.IsCompleted() {
		return false
	}
	return m.KickoffTime.After(now)
}

// Involves reports whether one side is in a and the other in b.
func (m Match) Involves(a, b map[int64]struct{}) bool {
	_, homeA := a[m.HomeTeamID]
	_, awayA := a[m.AwayTeamID]
	_, homeB := b[m.HomeTeamID]
	_, awayB := b[m.AwayTeamID]
	return (homeA && awayB) || (homeB && awayA)
}

// Summary is a match joined with display names for the query layer.
type Summary struct {
	Match
	HomeTeam string
	AwayTeam string
	Venue    string
	League   string
	Season   string
}
