package alias

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/rugby-analytics/internal/platform/naming"
)

var ErrOverlappingGroups = errors.New("alias groups overlap")

// Group is one club's normalized name variants, in declaration order.
type Group struct {
	Index   int
	Members []string
	keys    map[string]struct{}
}

// Contains reports whether the normalized form of name is a member.
func (g Group) Contains(name string) bool {
	_, ok := g.keys[naming.Normalize(name)]
	return ok
}

// Groups is a validated partition of normalized team names.
type Groups struct {
	groups []Group
	byKey  map[string]int
}

// NewGroups normalizes every member and rejects a partition where two
// groups claim the same normalized name.
func NewGroups(raw [][]string) (*Groups, error) {
	out := &Groups{byKey: make(map[string]int)}
	for i, members := range raw {
		g := Group{Index: i, keys: make(map[string]struct{}, len(members))}
		for _, member := range members {
			key := naming.Normalize(member)
			if key == "" {
				continue
			}
			if owner, ok := out.byKey[key]; ok && owner != i {
				return nil, fmt.Errorf("%w: %q is claimed by group %d %v and group %d %v",
					ErrOverlappingGroups, key, owner, out.groups[owner].Members, i, members)
			}
			if _, dup := g.keys[key]; dup {
				continue
			}
			g.keys[key] = struct{}{}
			g.Members = append(g.Members, key)
			out.byKey[key] = i
		}
		out.groups = append(out.groups, g)
	}
	return out, nil
}

// FindGroup matches by exact normalized equality only.
func (g *Groups) FindGroup(name string) (Group, bool) {
	if g == nil {
		return Group{}, false
	}
	idx, ok := g.byKey[naming.Normalize(name)]
	if !ok {
		return Group{}, false
	}
	return g.groups[idx], true
}

func (g *Groups) Len() int {
	if g == nil {
		return 0
	}
	return len(g.groups)
}

func (g Group) String() string {
	return "[" + strings.Join(g.Members, ", ") + "]"
}
