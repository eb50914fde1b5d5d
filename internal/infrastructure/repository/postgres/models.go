package postgres

import (
	"database/sql"
)

type leagueTableModel struct {
	ID         int64          `db:"id"`
	ExternalID sql.NullString `db:"external_id"`
	Name       string         `db:"name"`
	ShortName  sql.NullString `db:"short_name"`
	Slug       sql.NullString `db:"slug"`
	Country    sql.NullString `db:"country"`
	Sport      sql.NullString `db:"sport"`
}

type seasonTableModel struct {
	ID          int64          `db:"id"`
	LeagueID    int64          `db:"league_id"`
	Year        int            `db:"year"`
	Label       string         `db:"label"`
	ExternalKey sql.NullString `db:"external_season_key"`
}

type teamTableModel struct {
	ID           int64          `db:"id"`
	Name         string         `db:"name"`
	ShortName    sql.NullString `db:"short_name"`
	Abbreviation sql.NullString `db:"abbreviation"`
	Country      sql.NullString `db:"country"`
	ExternalID   sql.NullString `db:"external_id"`
}

type matchTableModel struct {
	ID              int64          `db:"id"`
	LeagueID        int64          `db:"league_id"`
	SeasonID        int64          `db:"season_id"`
	VenueID         sql.NullInt64  `db:"venue_id"`
	HomeTeamID      int64          `db:"home_team_id"`
	AwayTeamID      int64          `db:"away_team_id"`
	Status          string         `db:"status"`
	KickoffTime     sql.NullTime   `db:"kickoff_time"`
	HomeScore       sql.NullInt64  `db:"home_score"`
	AwayScore       sql.NullInt64  `db:"away_score"`
	Attendance      sql.NullInt64  `db:"attendance"`
	Round           sql.NullString `db:"round"`
	ExternalEventID sql.NullString `db:"external_event_id"`
}

// matchSummaryModel is a match joined with display names.
type matchSummaryModel struct {
	matchTableModel
	HomeTeam string         `db:"home_team"`
	AwayTeam string         `db:"away_team"`
	Venue    sql.NullString `db:"venue"`
	League   string         `db:"league"`
	Season   string         `db:"season"`
}

type teamSeasonStatModel struct {
	LeagueID          int64  `db:"league_id"`
	SeasonID          int64  `db:"season_id"`
	TeamID            int64  `db:"team_id"`
	TeamName          string `db:"team_name"`
	GamesPlayed       int    `db:"games_played"`
	Wins              int    `db:"wins"`
	Draws             int    `db:"draws"`
	Losses            int    `db:"losses"`
	PointsFor         int    `db:"points_for"`
	PointsAgainst     int    `db:"points_against"`
	PointsDiff        int    `db:"points_diff"`
	CompetitionPoints int    `db:"competition_points"`
	LosingBonusPoints int    `db:"losing_bonus_points"`
	TryBonusPoints    int    `db:"try_bonus_points"`
}
