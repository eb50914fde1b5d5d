package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/rugby-analytics/internal/domain/alias"
	"github.com/riskibarqy/rugby-analytics/internal/domain/team"
)

// AliasService maps a club name to every stored team id that represents it.
type AliasService struct {
	groups   *alias.Groups
	teamRepo team.Repository
}

func NewAliasService(groups *alias.Groups, teamRepo team.Repository) *AliasService {
	return &AliasService{groups: groups, teamRepo: teamRepo}
}

// ResolveIDsForName returns the ids of every team whose normalized name is
// in the input's alias group, with the first such team's name for display.
// Without a group, or when no stored team is in it, a single global lookup
// is used. An empty id list means nothing matched.
func (s *AliasService) ResolveIDsForName(ctx context.Context, name string) ([]int64, string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AliasService.ResolveIDsForName")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("list teams: %w", err)
	}

	if group, ok := s.groups.FindGroup(name); ok {
		var (
			ids     []int64
			display string
		)
		for _, t := range teams {
			if !group.Contains(t.Name) {
				continue
			}
			if display == "" {
				display = t.Name
			}
			ids = append(ids, t.ID)
		}
		if len(ids) > 0 {
			return ids, display, nil
		}
	}

	t, ok := pickTeam(teams, name)
	if !ok {
		return nil, name, nil
	}
	return []int64{t.ID}, t.Name, nil
}

// ResolveInLeague picks one team of the league by exact then substring name.
func (s *AliasService) ResolveInLeague(ctx context.Context, leagueID int64, name string) (team.Team, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AliasService.ResolveInLeague")
	defer span.End()

	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("list teams by league: %w", err)
	}
	t, ok := pickTeam(teams, name)
	return t, ok, nil
}

// pickTeam expects teams ordered by lower(name), id so the first hit is the
// tie-break winner.
func pickTeam(teams []team.Team, name string) (team.Team, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return team.Team{}, false
	}
	for _, t := range teams {
		if strings.ToLower(t.Name) == needle {
			return t, true
		}
	}
	for _, t := range teams {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			return t, true
		}
	}
	return team.Team{}, false
}
