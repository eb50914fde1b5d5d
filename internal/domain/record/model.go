// Package record describes the row-oriented contract the ingestion core
// writes through. Implementations live in infrastructure/repository.
package record

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// Entity names a destination table.
type Entity string

const (
	EntityLeague         Entity = "leagues"
	EntitySeason         Entity = "seasons"
	EntityTeam           Entity = "teams"
	EntityVenue          Entity = "venues"
	EntityMatch          Entity = "matches"
	EntityPlayer         Entity = "players"
	EntityPosition       Entity = "positions"
	EntityPlayerTeam     Entity = "player_teams"
	EntityTeamSeasonStat Entity = "team_season_stats"
)

var (
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrDuplicateKey is returned by Session.Insert when a unique
	// constraint rejects the row.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrUndefinedColumn is returned when a write names a column the
	// destination table does not have.
	ErrUndefinedColumn = errors.New("undefined column")
)

// Outcome reports which path an upsert took.
type Outcome string

const (
	OutcomeInserted          Outcome = "inserted"
	OutcomeUpdatedByID       Outcome = "updated_by_id"
	OutcomeMatchedByFallback Outcome = "matched_by_fallback"
)

// Fields maps column name to value. A nil value writes NULL.
type Fields map[string]any

// Columns returns the keys in a stable order.
func (f Fields) Columns() []string {
	out := make([]string, 0, len(f))
	for col := range f {
		out = append(out, col)
	}
	sort.Strings(out)
	return out
}

// Merge returns a copy of f overlaid with other.
func (f Fields) Merge(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Empty reports whether every value is null, i.e. the key cannot identify a row.
func (f Fields) Empty() bool {
	for _, v := range f {
		if !IsNull(v) {
			return false
		}
	}
	return true
}

// IsNull reports a nil interface or a typed nil pointer such as a missing
// *time.Time kickoff.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// ColumnSet is the set of columns a destination table actually has.
type ColumnSet map[string]struct{}

func NewColumnSet(columns ...string) ColumnSet {
	out := make(ColumnSet, len(columns))
	for _, col := range columns {
		out[col] = struct{}{}
	}
	return out
}

func (c ColumnSet) Has(column string) bool {
	_, ok := c[column]
	return ok
}

// Criteria selects rows. All parts are ANDed. Equal treats nil as IS NULL.
type Criteria struct {
	Equal     Fields
	EqualFold map[string]string
	Contains  map[string]string
	IsNull    []string
}

func (c Criteria) IsZero() bool {
	return len(c.Equal) == 0 && len(c.EqualFold) == 0 && len(c.Contains) == 0 && len(c.IsNull) == 0
}

// Candidate is a matched row. Name is the entity's display column and
// ExternalID is empty when the row carries none.
type Candidate struct {
	ID         int64
	Name       string
	ExternalID string
}

// Descriptor holds the static facts the core knows about a table.
type Descriptor struct {
	Table          Entity
	NameColumn     string
	ExternalColumn string
	Required       []string
}

var descriptors = map[Entity]Descriptor{
	EntityLeague:         {Table: EntityLeague, NameColumn: "name", ExternalColumn: "external_id", Required: []string{"id", "name"}},
	EntitySeason:         {Table: EntitySeason, NameColumn: "label", ExternalColumn: "external_season_key", Required: []string{"id", "league_id", "year", "label"}},
	EntityTeam:           {Table: EntityTeam, NameColumn: "name", ExternalColumn: "external_id", Required: []string{"id", "name"}},
	EntityVenue:          {Table: EntityVenue, NameColumn: "name", ExternalColumn: "external_id", Required: []string{"id", "name"}},
	EntityMatch:          {Table: EntityMatch, ExternalColumn: "external_event_id", Required: []string{"id", "league_id", "season_id", "home_team_id", "away_team_id", "status", "kickoff_time"}},
	EntityPlayer:         {Table: EntityPlayer, NameColumn: "full_name", ExternalColumn: "external_id", Required: []string{"id", "full_name"}},
	EntityPosition:       {Table: EntityPosition, NameColumn: "name", Required: []string{"id", "code", "name", "category"}},
	EntityPlayerTeam:     {Table: EntityPlayerTeam, Required: []string{"id", "player_id", "team_id"}},
	EntityTeamSeasonStat: {Table: EntityTeamSeasonStat, Required: []string{"id", "league_id", "season_id", "team_id"}},
}

func Describe(entity Entity) (Descriptor, error) {
	d, ok := descriptors[entity]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownEntity, entity)
	}
	return d, nil
}

// Upsert is one idempotent write. Key identifies the row by its natural
// key; Fallback, when set, is tried only if Key finds nothing.
type Upsert struct {
	Entity   Entity
	Key      Fields
	Fallback *Criteria
	Fields   Fields
}
