package position

import (
	"strings"

	"github.com/gosimple/slug"

	"github.com/riskibarqy/rugby-analytics/internal/platform/naming"
)

type Category string

const (
	CategoryForward Category = "forward"
	CategoryBack    Category = "back"
	CategoryOther   Category = "other"
)

// Position is a catalog row. Shirt numbers are nil for generic roles.
type Position struct {
	ID       int64
	Code     string
	Name     string
	Category Category
	ShirtMin *int
	ShirtMax *int
}

type definition struct {
	code     string
	name     string
	category Category
	min, max int
}

var catalog = map[string]definition{
	"prop":           {"PROP", "Prop", CategoryForward, 1, 3},
	"loosehead prop": {"LHP", "Loosehead Prop", CategoryForward, 1, 1},
	"tighthead prop": {"THP", "Tighthead Prop", CategoryForward, 3, 3},
	"hooker":         {"HK", "Hooker", CategoryForward, 2, 2},

	"lock":       {"LOCK", "Lock", CategoryForward, 4, 5},
	"second row": {"LOCK", "Lock", CategoryForward, 4, 5},

	"back row":          {"BACK_ROW", "Back Row", CategoryForward, 6, 8},
	"flanker":           {"FLANKER", "Flanker", CategoryForward, 6, 7},
	"openside flanker":  {"OSF", "Openside Flanker", CategoryForward, 7, 7},
	"blindside flanker": {"BSF", "Blindside Flanker", CategoryForward, 6, 6},
	"number 8":          {"NO8", "Number 8", CategoryForward, 8, 8},

	"scrum-half":   {"SCRUM_HALF", "Scrum-half", CategoryBack, 9, 9},
	"scrum half":   {"SCRUM_HALF", "Scrum-half", CategoryBack, 9, 9},
	"half back":    {"SCRUM_HALF", "Scrum-half", CategoryBack, 9, 9},
	"fly-half":     {"FLY_HALF", "Fly-half", CategoryBack, 10, 10},
	"fly half":     {"FLY_HALF", "Fly-half", CategoryBack, 10, 10},
	"outside half": {"FLY_HALF", "Fly-half", CategoryBack, 10, 10},

	"centre":         {"CENTRE", "Centre", CategoryBack, 12, 13},
	"center":         {"CENTRE", "Centre", CategoryBack, 12, 13},
	"inside centre":  {"IC", "Inside Centre", CategoryBack, 12, 12},
	"inside center":  {"IC", "Inside Centre", CategoryBack, 12, 12},
	"outside centre": {"OC", "Outside Centre", CategoryBack, 13, 13},
	"outside center": {"OC", "Outside Centre", CategoryBack, 13, 13},

	"wing":       {"WING", "Wing", CategoryBack, 11, 14},
	"winger":     {"WING", "Wing", CategoryBack, 11, 14},
	"left wing":  {"LW", "Left Wing", CategoryBack, 11, 11},
	"right wing": {"RW", "Right Wing", CategoryBack, 14, 14},

	"fullback":  {"FULLBACK", "Fullback", CategoryBack, 15, 15},
	"full-back": {"FULLBACK", "Fullback", CategoryBack, 15, 15},

	"utility back": {"UTILITY_BACK", "Utility Back", CategoryBack, 0, 0},
	"back":         {"BACK", "Back", CategoryBack, 0, 0},
	"forward":      {"FORWARD", "Forward", CategoryForward, 0, 0},

	"hooker / prop": {"FRONT_ROW", "Front Row", CategoryForward, 1, 3},
	"prop / hooker": {"FRONT_ROW", "Front Row", CategoryForward, 1, 3},
}

var (
	forwardHints = []string{"prop", "hooker", "lock", "flanker", "back row", "number 8", "forward"}
	backHints    = []string{"wing", "fullback", "centre", "center", "half", "scrum"}
)

// FromText maps provider position text to a catalog position. Known texts
// map to fixed codes; anything else gets a slug code and a keyword-based
// category. The second return reports whether the text was known.
func FromText(text string) (Position, bool) {
	key := naming.NormalizePosition(text)
	if def, ok := catalog[key]; ok {
		p := Position{Code: def.code, Name: def.name, Category: def.category}
		if def.min > 0 {
			p.ShirtMin, p.ShirtMax = intPtr(def.min), intPtr(def.max)
		}
		return p, true
	}

	name := strings.TrimSpace(text)
	if name == "" {
		name = "Unknown"
	}
	return Position{Code: Code(text), Name: name, Category: classify(key)}, false
}

// Code turns free text into an upper snake case code, "POSITION" if empty.
func Code(text string) string {
	code := strings.ToUpper(strings.ReplaceAll(slug.Make(text), "-", "_"))
	if code == "" {
		return "POSITION"
	}
	return code
}

func classify(key string) Category {
	for _, hint := range forwardHints {
		if strings.Contains(key, hint) {
			return CategoryForward
		}
	}
	for _, hint := range backHints {
		if strings.Contains(key, hint) {
			return CategoryBack
		}
	}
	return CategoryOther
}

func intPtr(v int) *int {
	return &v
}
