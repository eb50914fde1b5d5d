package httpapi

import (
	"time"

	"github.com/riskibarqy/rugby-analytics/internal/domain/league"
	"github.com/riskibarqy/rugby-analytics/internal/domain/match"
	"github.com/riskibarqy/rugby-analytics/internal/domain/season"
	"github.com/riskibarqy/rugby-analytics/internal/domain/standing"
	"github.com/riskibarqy/rugby-analytics/internal/domain/team"
	"github.com/riskibarqy/rugby-analytics/internal/usecase"
)

type leagueDTO struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id,omitempty"`
	Name       string `json:"name"`
	ShortName  string `json:"short_name,omitempty"`
	Slug       string `json:"slug,omitempty"`
	Country    string `json:"country,omitempty"`
	Sport      string `json:"sport,omitempty"`
}

type seasonDTO struct {
	ID       int64  `json:"id"`
	LeagueID int64  `json:"league_id"`
	Year     int    `json:"year"`
	Label    string `json:"label"`
}

type teamDTO struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ShortName    string `json:"short_name,omitempty"`
	Abbreviation string `json:"abbreviation,omitempty"`
	Country      string `json:"country,omitempty"`
	ExternalID   string `json:"external_id,omitempty"`
}

type standingRowDTO struct {
	Position          int    `json:"position"`
	TeamID            int64  `json:"team_id"`
	TeamName          string `json:"team_name"`
	GamesPlayed       int    `json:"games_played"`
	Wins              int    `json:"wins"`
	Draws             int    `json:"draws"`
	Losses            int    `json:"losses"`
	PointsFor         int    `json:"points_for"`
	PointsAgainst     int    `json:"points_against"`
	PointsDiff        int    `json:"points_diff"`
	LosingBonusPoints int    `json:"losing_bonus_points"`
	TryBonusPoints    int    `json:"try_bonus_points"`
	CompetitionPoints int    `json:"competition_points"`
}

type standingsTableDTO struct {
	League leagueDTO        `json:"league"`
	Season seasonDTO        `json:"season"`
	Source string           `json:"source"`
	Rows   []standingRowDTO `json:"rows"`
}

type matchSummaryDTO struct {
	ID          int64      `json:"id"`
	League      string     `json:"league"`
	Season      string     `json:"season"`
	Round       string     `json:"round,omitempty"`
	KickoffTime *time.Time `json:"kickoff_time,omitempty"`
	Status      string     `json:"status"`
	HomeTeamID  int64      `json:"home_team_id"`
	HomeTeam    string     `json:"home_team"`
	AwayTeamID  int64      `json:"away_team_id"`
	AwayTeam    string     `json:"away_team"`
	HomeScore   *int       `json:"home_score,omitempty"`
	AwayScore   *int       `json:"away_score,omitempty"`
	Venue       string     `json:"venue,omitempty"`
}

type streakDTO struct {
	Side   string `json:"side"`
	Label  string `json:"label"`
	Length int    `json:"length"`
}

type headToHeadTeamDTO struct {
	Name string  `json:"name"`
	IDs  []int64 `json:"ids"`
}

type headToHeadDTO struct {
	League   *leagueDTO        `json:"league,omitempty"`
	TeamA    headToHeadTeamDTO `json:"team_a"`
	TeamB    headToHeadTeamDTO `json:"team_b"`
	Total    int               `json:"total"`
	WinsA    int               `json:"wins_a"`
	WinsB    int               `json:"wins_b"`
	Draws    int               `json:"draws"`
	WinRateA float64           `json:"win_rate_a"`
	WinRateB float64           `json:"win_rate_b"`
	DrawRate float64           `json:"draw_rate"`
	Streak   *streakDTO        `json:"streak"`
	Recent   []matchSummaryDTO `json:"recent"`
	Upcoming []matchSummaryDTO `json:"upcoming"`
}

func leagueToDTO(l league.League) leagueDTO {
	return leagueDTO{
		ID:         l.ID,
		ExternalID: l.ExternalID,
		Name:       l.Name,
		ShortName:  l.ShortName,
		Slug:       l.Slug,
		Country:    l.Country,
		Sport:      l.Sport,
	}
}

func seasonToDTO(s season.Season) seasonDTO {
	return seasonDTO{ID: s.ID, LeagueID: s.LeagueID, Year: s.Year, Label: s.Label}
}

func teamToDTO(t team.Team) teamDTO {
	return teamDTO{
		ID:           t.ID,
		Name:         t.Name,
		ShortName:    t.ShortName,
		Abbreviation: t.Abbreviation,
		Country:      t.Country,
		ExternalID:   t.ExternalID,
	}
}

func standingRowToDTO(row standing.Row) standingRowDTO {
	return standingRowDTO{
		Position:          row.Position,
		TeamID:            row.TeamID,
		TeamName:          row.TeamName,
		GamesPlayed:       row.GamesPlayed,
		Wins:              row.Wins,
		Draws:             row.Draws,
		Losses:            row.Losses,
		PointsFor:         row.PointsFor,
		PointsAgainst:     row.PointsAgainst,
		PointsDiff:        row.PointsDiff,
		LosingBonusPoints: row.LosingBonusPoints,
		TryBonusPoints:    row.TryBonusPoints,
		CompetitionPoints: row.CompetitionPoints,
	}
}

func standingsTableToDTO(table usecase.StandingsTable) standingsTableDTO {
	rows := make([]standingRowDTO, 0, len(table.Rows))
	for _, row := range table.Rows {
		rows = append(rows, standingRowToDTO(row))
	}
	return standingsTableDTO{
		League: leagueToDTO(table.League),
		Season: seasonToDTO(table.Season),
		Source: table.Source,
		Rows:   rows,
	}
}

func matchSummaryToDTO(m match.Summary) matchSummaryDTO {
	return matchSummaryDTO{
		ID:          m.ID,
		League:      m.League,
		Season:      m.Season,
		Round:       m.Round,
		KickoffTime: m.KickoffTime,
		Status:      string(m.Status),
		HomeTeamID:  m.HomeTeamID,
		HomeTeam:    m.HomeTeam,
		AwayTeamID:  m.AwayTeamID,
		AwayTeam:    m.AwayTeam,
		HomeScore:   m.HomeScore,
		AwayScore:   m.AwayScore,
		Venue:       m.Venue,
	}
}

func matchSummariesToDTO(items []match.Summary) []matchSummaryDTO {
	out := make([]matchSummaryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchSummaryToDTO(item))
	}
	return out
}

func headToHeadToDTO(h usecase.HeadToHead) headToHeadDTO {
	out := headToHeadDTO{
		TeamA:    headToHeadTeamDTO{Name: h.TeamAName, IDs: append([]int64{}, h.TeamAIDs...)},
		TeamB:    headToHeadTeamDTO{Name: h.TeamBName, IDs: append([]int64{}, h.TeamBIDs...)},
		Total:    h.Total,
		WinsA:    h.WinsA,
		WinsB:    h.WinsB,
		Draws:    h.Draws,
		WinRateA: h.WinRateA,
		WinRateB: h.WinRateB,
		DrawRate: h.DrawRate,
		Recent:   matchSummariesToDTO(h.Recent),
		Upcoming: matchSummariesToDTO(h.Upcoming),
	}
	if h.League != nil {
		lg := leagueToDTO(*h.League)
		out.League = &lg
	}
	if h.Streak != nil {
		out.Streak = &streakDTO{Side: string(h.Streak.Side), Label: h.Streak.Label, Length: h.Streak.Length}
	}
	return out
}
