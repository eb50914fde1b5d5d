package thesportsdb

import (
	"bytes"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

// flexString accepts a JSON string, number, bool or null. The provider
// sends ids and scores as either.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*s = ""
	case b[0] == '"':
		var text string
		if err := sonic.Unmarshal(b, &text); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(text))
	default:
		*s = flexString(string(b))
	}
	return nil
}

func (s flexString) String() string {
	v := strings.TrimSpace(string(s))
	if strings.EqualFold(v, "null") {
		return ""
	}
	return v
}

// Int returns nil for blank or non-numeric text.
func (s flexString) Int() *int {
	v := s.String()
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return nil
		}
		n = int(f)
	}
	return &n
}

func (s flexString) Float() *float64 {
	v := s.String()
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

// flexList decodes an array and treats anything else (null, "no data") as
// empty.
type flexList[T any] []T

func (l *flexList[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		*l = nil
		return nil
	}
	var items []T
	if err := sonic.Unmarshal(b, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

type leagueDTO struct {
	ID            flexString `json:"idLeague"`
	Name          flexString `json:"strLeague"`
	Alternate     flexString `json:"strLeagueAlternate"`
	Sport         flexString `json:"strSport"`
	Country       flexString `json:"strCountry"`
	CurrentSeason flexString `json:"strCurrentSeason"`
}

type leaguesEnvelope struct {
	Leagues flexList[leagueDTO] `json:"leagues"`
}

type seasonDTO struct {
	Season flexString `json:"strSeason"`
}

type seasonsEnvelope struct {
	Seasons flexList[seasonDTO] `json:"seasons"`
}

type eventDTO struct {
	ID         flexString `json:"idEvent"`
	LeagueID   flexString `json:"idLeague"`
	Season     flexString `json:"strSeason"`
	Sport      flexString `json:"strSport"`
	Round      flexString `json:"intRound"`
	Status     flexString `json:"strStatus"`
	Progress   flexString `json:"strProgress"`
	HomeTeamID flexString `json:"idHomeTeam"`
	HomeTeam   flexString `json:"strHomeTeam"`
	AwayTeamID flexString `json:"idAwayTeam"`
	AwayTeam   flexString `json:"strAwayTeam"`
	HomeScore  flexString `json:"intHomeScore"`
	AwayScore  flexString `json:"intAwayScore"`
	Spectators flexString `json:"intSpectators"`
	VenueID    flexString `json:"idVenue"`
	Venue      flexString `json:"strVenue"`
	City       flexString `json:"strCity"`
	Country    flexString `json:"strCountry"`
	Timestamp  flexString `json:"strTimestamp"`
	DateEvent  flexString `json:"dateEvent"`
	Time       flexString `json:"strTime"`
}

type eventsEnvelope struct {
	Events flexList[eventDTO] `json:"events"`
}

type teamDTO struct {
	ID              flexString `json:"idTeam"`
	Name            flexString `json:"strTeam"`
	ShortName       flexString `json:"strTeamShort"`
	Alternate       flexString `json:"strAlternate"`
	Country         flexString `json:"strCountry"`
	Sport           flexString `json:"strSport"`
	VenueID         flexString `json:"idVenue"`
	Stadium         flexString `json:"strStadium"`
	StadiumLocation flexString `json:"strLocation"`
}

type teamsEnvelope struct {
	Teams flexList[teamDTO] `json:"teams"`
	Team  flexList[teamDTO] `json:"team"`
}

type playerDTO struct {
	ID          flexString `json:"idPlayer"`
	TeamID      flexString `json:"idTeam"`
	Name        flexString `json:"strPlayer"`
	Nationality flexString `json:"strNationality"`
	Position    flexString `json:"strPosition"`
	Sport       flexString `json:"strSport"`
	DateBorn    flexString `json:"dateBorn"`
}

type playersEnvelope struct {
	Player  flexList[playerDTO] `json:"player"`
	Players flexList[playerDTO] `json:"players"`
}

type venueDTO struct {
	ID        flexString `json:"idVenue"`
	Name      flexString `json:"strVenue"`
	Location  flexString `json:"strLocation"`
	Country   flexString `json:"strCountry"`
	Latitude  flexString `json:"strLatitude"`
	Longitude flexString `json:"strLongitude"`
	Map       flexString `json:"strMap"`
}

type venuesEnvelope struct {
	Venues flexList[venueDTO] `json:"venues"`
}
