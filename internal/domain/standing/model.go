package standing

// Competition points per result.
const (
	PointsWin         = 4
	PointsDraw        = 2
	PointsLosingBonus = 1
	LosingBonusMargin = 7
)

// Row is one team's line in a season table and doubles as the stored
// team_season_stats shape.
type Row struct {
	Position          int
	LeagueID          int64
	SeasonID          int64
	TeamID            int64
	TeamName          string
	GamesPlayed       int
	Wins              int
	Draws             int
	Losses            int
	PointsFor         int
	PointsAgainst     int
	PointsDiff        int
	CompetitionPoints int
	LosingBonusPoints int
	TryBonusPoints    int
}

// Less reports whether a ranks above b: competition points, points
// difference, points for, then name and id.
func Less(a, b Row) bool {
	if a.CompetitionPoints != b.CompetitionPoints {
		return a.CompetitionPoints > b.CompetitionPoints
	}
	if a.PointsDiff != b.PointsDiff {
		return a.PointsDiff > b.PointsDiff
	}
	if a.PointsFor != b.PointsFor {
		return a.PointsFor > b.PointsFor
	}
	if a.TeamName != b.TeamName {
		return a.TeamName < b.TeamName
	}
	return a.TeamID < b.TeamID
}
