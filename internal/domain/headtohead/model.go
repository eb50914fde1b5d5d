package headtohead

import "github.com/riskibarqy/rugby-analytics/internal/domain/match"

type Side string

const (
	SideA    Side = "A"
	SideB    Side = "B"
	SideDraw Side = "Draw"
)

// Streak is the run of consecutive results seeded by the most recent
// completed meeting. A draw seeds a streak of length 1 that stops there.
type Streak struct {
	Side   Side
	Label  string
	Length int
}

// Record compares two team identities, each possibly several team ids.
type Record struct {
	TeamAIDs  []int64
	TeamBIDs  []int64
	TeamAName string
	TeamBName string
	Total     int
	WinsA     int
	WinsB     int
	Draws     int
	WinRateA  float64
	WinRateB  float64
	DrawRate  float64
	Streak    *Streak
	Recent    []match.Summary
	Upcoming  []match.Summary
}
