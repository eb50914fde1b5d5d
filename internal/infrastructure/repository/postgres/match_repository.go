package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/rugby-analytics/internal/domain/match"
	qb "github.com/riskibarqy/rugby-analytics/internal/platform/querybuilder"
)

const matchColumns = "m.id, m.league_id, m.season_id, m.venue_id, m.home_team_id, m.away_team_id, m.status, " +
	"m.kickoff_time, m.home_score, m.away_score, m.attendance, m.round, m.external_event_id"

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// ListBySeason orders by kickoff, unknown kickoffs last, then id.
func (r *MatchRepository) ListBySeason(ctx context.Context, leagueID, seasonID int64) ([]match.Match, error) {
	query, args, err := qb.Select(matchColumns).From("matches m").
		Where(
			qb.Eq("m.league_id", leagueID),
			qb.Eq("m.season_id", seasonID),
		).
		OrderBy("m.kickoff_time ASC NULLS LAST", "m.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select season matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select season matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

// ListBetween returns meetings newest first with display names joined.
func (r *MatchRepository) ListBetween(ctx context.Context, filter match.BetweenFilter) ([]match.Summary, error) {
	if len(filter.TeamAIDs) == 0 || len(filter.TeamBIDs) == 0 {
		return []match.Summary{}, nil
	}
	a, b := int64SliceToAny(filter.TeamAIDs), int64SliceToAny(filter.TeamBIDs)

	where := []qb.Condition{
		qb.Or(
			qb.And(qb.In("m.home_team_id", a), qb.In("m.away_team_id", b)),
			qb.And(qb.In("m.home_team_id", b), qb.In("m.away_team_id", a)),
		),
	}
	if filter.LeagueID != 0 {
		where = append(where, qb.Eq("m.league_id", filter.LeagueID))
	}

	query, args, err := qb.Select(
		matchColumns,
		"ht.name AS home_team",
		"at.name AS away_team",
		"v.name AS venue",
		"l.name AS league",
		"s.label AS season",
	).From("matches m").
		Join("JOIN teams ht ON ht.id = m.home_team_id").
		Join("JOIN teams at ON at.id = m.away_team_id").
		Join("JOIN leagues l ON l.id = m.league_id").
		Join("JOIN seasons s ON s.id = m.season_id").
		Join("LEFT JOIN venues v ON v.id = m.venue_id").
		Where(where...).
		OrderBy("m.kickoff_time DESC NULLS LAST", "m.id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select head-to-head matches query: %w", err)
	}

	var rows []matchSummaryModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select head-to-head matches: %w", err)
	}

	out := make([]match.Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.Summary{
			Match:    matchFromRow(row.matchTableModel),
			HomeTeam: row.HomeTeam,
			AwayTeam: row.AwayTeam,
			Venue:    nullStringToString(row.Venue),
			League:   row.League,
			Season:   row.Season,
		})
	}
	return out, nil
}

func (r *MatchRepository) ListScopes(ctx context.Context) ([]match.Scope, error) {
	query, args, err := qb.Select("DISTINCT league_id", "season_id").From("matches").
		OrderBy("league_id", "season_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select match scopes query: %w", err)
	}

	var rows []struct {
		LeagueID int64 `db:"league_id"`
		SeasonID int64 `db:"season_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select match scopes: %w", err)
	}

	out := make([]match.Scope, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.Scope{LeagueID: row.LeagueID, SeasonID: row.SeasonID})
	}
	return out, nil
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:              row.ID,
		LeagueID:        row.LeagueID,
		SeasonID:        row.SeasonID,
		VenueID:         nullInt64Ptr(row.VenueID),
		HomeTeamID:      row.HomeTeamID,
		AwayTeamID:      row.AwayTeamID,
		Status:          match.Status(row.Status),
		KickoffTime:     nullTimePtr(row.KickoffTime),
		HomeScore:       nullIntPtr(row.HomeScore),
		AwayScore:       nullIntPtr(row.AwayScore),
		Attendance:      nullIntPtr(row.Attendance),
		Round:           nullStringToString(row.Round),
		ExternalEventID: nullStringToString(row.ExternalEventID),
	}
}
