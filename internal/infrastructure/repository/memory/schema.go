package memory

import "github.com/riskibarqy/rugby-analytics/internal/domain/record"

// defaultColumns mirrors db/migrations/000001_core_schema.up.sql.
var defaultColumns = map[record.Entity][]string{
	record.EntityLeague:   {"id", "external_id", "name", "short_name", "slug", "country", "sport"},
	record.EntitySeason:   {"id", "league_id", "year", "label", "external_season_key"},
	record.EntityTeam:     {"id", "name", "short_name", "abbreviation", "country", "external_id"},
	record.EntityVenue:    {"id", "name", "city", "country", "latitude", "longitude", "external_id"},
	record.EntityPosition: {"id", "code", "name", "category", "shirt_number_min", "shirt_number_max"},
	record.EntityMatch: {
		"id", "league_id", "season_id", "venue_id", "home_team_id", "away_team_id", "status",
		"kickoff_time", "home_score", "away_score", "attendance", "round", "external_event_id", "source",
	},
	record.EntityPlayer: {
		"id", "full_name", "first_name", "last_name", "nationality", "date_of_birth",
		"preferred_position_id", "position_text", "external_id",
	},
	record.EntityPlayerTeam: {"id", "player_id", "team_id", "season_id"},
	record.EntityTeamSeasonStat: {
		"id", "league_id", "season_id", "team_id", "games_played", "wins", "draws", "losses",
		"points_for", "points_against", "points_diff", "competition_points",
		"losing_bonus_points", "try_bonus_points",
	},
}

// uniqueKeys are enforced like postgres unique indexes: a key with any null
// column never conflicts.
var uniqueKeys = map[record.Entity][][]string{
	record.EntityLeague:   {{"external_id"}},
	record.EntitySeason:   {{"league_id", "year"}},
	record.EntityTeam:     {{"external_id"}},
	record.EntityVenue:    {{"external_id"}},
	record.EntityPosition: {{"code"}},
	record.EntityMatch: {
		{"external_event_id"},
		{"league_id", "season_id", "home_team_id", "away_team_id", "kickoff_time"},
	},
	record.EntityPlayer:         {{"external_id"}},
	record.EntityPlayerTeam:     {{"player_id", "team_id", "season_id"}},
	record.EntityTeamSeasonStat: {{"league_id", "season_id", "team_id"}},
}
