package thesportsdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/rugby-analytics/internal/usecase"
)

var _ usecase.SportsDataProvider = (*Client)(nil)

func (c *Client) getJSON(ctx context.Context, endpoint string, params map[string]string, target any) error {
	raw, err := c.Fetch(ctx, endpoint, params)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode %s payload: %w", endpoint, err)
	}
	return nil
}

func (c *Client) LookupLeague(ctx context.Context, leagueID string) (usecase.ExternalLeague, bool, error) {
	var envelope leaguesEnvelope
	if err := c.getJSON(ctx, "lookupleague.php", map[string]string{"id": leagueID}, &envelope); err != nil {
		return usecase.ExternalLeague{}, false, err
	}
	if len(envelope.Leagues) == 0 {
		return usecase.ExternalLeague{}, false, nil
	}
	item := envelope.Leagues[0]
	return usecase.ExternalLeague{
		ID:            item.ID.String(),
		Name:          item.Name.String(),
		ShortName:     firstAlternate(item.Alternate.String()),
		Sport:         item.Sport.String(),
		Country:       item.Country.String(),
		CurrentSeason: item.CurrentSeason.String(),
	}, true, nil
}

// CurrentSeasonLabel returns "" when the league is unknown or has no
// current season.
func (c *Client) CurrentSeasonLabel(ctx context.Context, leagueID string) (string, error) {
	lg, found, err := c.LookupLeague(ctx, leagueID)
	if err != nil || !found {
		return "", err
	}
	return lg.CurrentSeason, nil
}

func (c *Client) ListSeasons(ctx context.Context, leagueID string) ([]string, error) {
	var envelope seasonsEnvelope
	if err := c.getJSON(ctx, "search_all_seasons.php", map[string]string{"id": leagueID}, &envelope); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(envelope.Seasons))
	for _, item := range envelope.Seasons {
		if label := item.Season.String(); label != "" {
			out = append(out, label)
		}
	}
	return out, nil
}

// EventsForSeason returns every event of the season unfiltered; sport
// filtering is the caller's concern.
func (c *Client) EventsForSeason(ctx context.Context, leagueID, seasonLabel string) ([]usecase.ExternalEvent, error) {
	var envelope eventsEnvelope
	if err := c.getJSON(ctx, "eventsseason.php", map[string]string{"id": leagueID, "s": seasonLabel}, &envelope); err != nil {
		return nil, err
	}
	out := make([]usecase.ExternalEvent, 0, len(envelope.Events))
	for _, item := range envelope.Events {
		out = append(out, mapEvent(item))
	}
	return out, nil
}

func (c *Client) LookupAllTeams(ctx context.Context, leagueID string) ([]usecase.ExternalTeam, error) {
	var envelope teamsEnvelope
	if err := c.getJSON(ctx, "lookup_all_teams.php", map[string]string{"id": leagueID}, &envelope); err != nil {
		return nil, err
	}
	items := envelope.Teams
	if len(items) == 0 {
		items = envelope.Team
	}
	out := make([]usecase.ExternalTeam, 0, len(items))
	for _, item := range items {
		out = append(out, mapTeam(item))
	}
	return out, nil
}

func (c *Client) LookupTeam(ctx context.Context, teamID string) (usecase.ExternalTeam, bool, error) {
	var envelope teamsEnvelope
	if err := c.getJSON(ctx, "lookupteam.php", map[string]string{"id": teamID}, &envelope); err != nil {
		return usecase.ExternalTeam{}, false, err
	}
	items := envelope.Teams
	if len(items) == 0 {
		items = envelope.Team
	}
	if len(items) == 0 {
		return usecase.ExternalTeam{}, false, nil
	}
	return mapTeam(items[0]), true, nil
}

func (c *Client) TeamPlayers(ctx context.Context, teamID string) ([]usecase.ExternalPlayer, error) {
	var envelope playersEnvelope
	if err := c.getJSON(ctx, "lookup_all_players.php", map[string]string{"id": teamID}, &envelope); err != nil {
		return nil, err
	}
	items := envelope.Player
	if len(items) == 0 {
		items = envelope.Players
	}
	out := make([]usecase.ExternalPlayer, 0, len(items))
	for _, item := range items {
		p := mapPlayer(item)
		if p.TeamID == "" {
			p.TeamID = teamID
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Client) LookupPlayer(ctx context.Context, playerID string) (usecase.ExternalPlayer, bool, error) {
	var envelope playersEnvelope
	if err := c.getJSON(ctx, "lookupplayer.php", map[string]string{"id": playerID}, &envelope); err != nil {
		return usecase.ExternalPlayer{}, false, err
	}
	items := envelope.Players
	if len(items) == 0 {
		items = envelope.Player
	}
	if len(items) == 0 {
		return usecase.ExternalPlayer{}, false, nil
	}
	return mapPlayer(items[0]), true, nil
}

func (c *Client) LookupVenue(ctx context.Context, venueID string) (usecase.ExternalVenue, bool, error) {
	var envelope venuesEnvelope
	if err := c.getJSON(ctx, "lookupvenue.php", map[string]string{"id": venueID}, &envelope); err != nil {
		return usecase.ExternalVenue{}, false, err
	}
	if len(envelope.Venues) == 0 {
		return usecase.ExternalVenue{}, false, nil
	}
	item := envelope.Venues[0]
	lat, lng := item.Latitude.Float(), item.Longitude.Float()
	if lat == nil || lng == nil {
		lat, lng = parseMapCoordinates(item.Map.String())
	}
	return usecase.ExternalVenue{
		ID:        item.ID.String(),
		Name:      item.Name.String(),
		City:      item.Location.String(),
		Country:   item.Country.String(),
		Latitude:  lat,
		Longitude: lng,
	}, true, nil
}

func mapEvent(item eventDTO) usecase.ExternalEvent {
	status := item.Status.String()
	if status == "" {
		status = item.Progress.String()
	}
	return usecase.ExternalEvent{
		ID:         item.ID.String(),
		LeagueID:   item.LeagueID.String(),
		Season:     item.Season.String(),
		Sport:      item.Sport.String(),
		Round:      item.Round.String(),
		Status:     status,
		HomeTeamID: item.HomeTeamID.String(),
		HomeTeam:   item.HomeTeam.String(),
		AwayTeamID: item.AwayTeamID.String(),
		AwayTeam:   item.AwayTeam.String(),
		VenueID:    item.VenueID.String(),
		Venue:      item.Venue.String(),
		City:       item.City.String(),
		Country:    item.Country.String(),
		Kickoff:    parseKickoff(item.Timestamp.String(), item.DateEvent.String(), item.Time.String()),
		HomeScore:  item.HomeScore.Int(),
		AwayScore:  item.AwayScore.Int(),
		Attendance: item.Spectators.Int(),
	}
}

func mapTeam(item teamDTO) usecase.ExternalTeam {
	short := item.ShortName.String()
	abbreviation := ""
	if n := len([]rune(short)); n > 0 && n <= 4 {
		abbreviation = strings.ToUpper(short)
	}
	return usecase.ExternalTeam{
		ID:              item.ID.String(),
		Name:            item.Name.String(),
		ShortName:       firstNonEmpty(short, firstAlternate(item.Alternate.String())),
		Abbreviation:    abbreviation,
		Country:         item.Country.String(),
		Sport:           item.Sport.String(),
		VenueID:         item.VenueID.String(),
		Stadium:         item.Stadium.String(),
		StadiumLocation: item.StadiumLocation.String(),
	}
}

func mapPlayer(item playerDTO) usecase.ExternalPlayer {
	return usecase.ExternalPlayer{
		ID:          item.ID.String(),
		TeamID:      item.TeamID.String(),
		Name:        item.Name.String(),
		Nationality: item.Nationality.String(),
		Position:    item.Position.String(),
		Sport:       item.Sport.String(),
		DateOfBirth: parseDate(item.DateBorn.String()),
	}
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseKickoff prefers strTimestamp and falls back to dateEvent + strTime.
// Zone-less values are UTC.
func parseKickoff(timestamp, date, clock string) *time.Time {
	if timestamp != "" {
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, timestamp); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}

	if date == "" {
		return nil
	}
	if clock == "" {
		clock = "00:00:00"
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", date+" "+clock, time.UTC); err == nil {
		return &t
	}
	if len(clock) >= 5 {
		if t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock[:5], time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

func parseDate(value string) *time.Time {
	if value == "" || strings.HasPrefix(value, "0000") {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

// parseMapCoordinates reads "lat,lng" map strings.
func parseMapCoordinates(value string) (*float64, *float64) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return nil, nil
	}
	lat := flexString(strings.TrimSpace(parts[0])).Float()
	lng := flexString(strings.TrimSpace(parts[1])).Float()
	if lat == nil || lng == nil {
		return nil, nil
	}
	return lat, lng
}

// firstAlternate takes the first of a comma separated alternate-name list.
func firstAlternate(value string) string {
	first, _, _ := strings.Cut(value, ",")
	return strings.TrimSpace(first)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
