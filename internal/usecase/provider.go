package usecase

import (
	"context"
	"time"
)

// SportsDataProvider is the read surface of the external statistics API.
// Ids are the provider's opaque ids. Lookups return false when the provider
// has no such record.
type SportsDataProvider interface {
	LookupLeague(ctx context.Context, leagueID string) (ExternalLeague, bool, error)
	CurrentSeasonLabel(ctx context.Context, leagueID string) (string, error)
	ListSeasons(ctx context.Context, leagueID string) ([]string, error)
	EventsForSeason(ctx context.Context, leagueID, seasonLabel string) ([]ExternalEvent, error)
	LookupAllTeams(ctx context.Context, leagueID string) ([]ExternalTeam, error)
	LookupTeam(ctx context.Context, teamID string) (ExternalTeam, bool, error)
	TeamPlayers(ctx context.Context, teamID string) ([]ExternalPlayer, error)
	LookupPlayer(ctx context.Context, playerID string) (ExternalPlayer, bool, error)
	LookupVenue(ctx context.Context, venueID string) (ExternalVenue, bool, error)
}

type ExternalLeague struct {
	ID            string
	Name          string
	ShortName     string
	Sport         string
	Country       string
	CurrentSeason string
}

// ExternalEvent is one provider fixture. Unparseable scores, dates and
// attendance arrive as nil.
type ExternalEvent struct {
	ID         string
	LeagueID   string
	Season     string
	Sport      string
	Round      string
	Status     string
	HomeTeamID string
	HomeTeam   string
	AwayTeamID string
	AwayTeam   string
	VenueID    string
	Venue      string
	City       string
	Country    string
	Kickoff    *time.Time
	HomeScore  *int
	AwayScore  *int
	Attendance *int
}

type ExternalTeam struct {
	ID              string
	Name            string
	ShortName       string
	Abbreviation    string
	Country         string
	Sport           string
	VenueID         string
	Stadium         string
	StadiumLocation string
}

type ExternalPlayer struct {
	ID          string
	TeamID      string
	Name        string
	Nationality string
	Position    string
	Sport       string
	DateOfBirth *time.Time
}

type ExternalVenue struct {
	ID        string
	Name      string
	City      string
	Country   string
	Latitude  *float64
	Longitude *float64
}
