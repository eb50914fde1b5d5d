package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/rugby-analytics/internal/domain/headtohead"
	"github.com/riskibarqy/rugby-analytics/internal/domain/league"
	"github.com/riskibarqy/rugby-analytics/internal/domain/match"
)

const (
	defaultHeadToHeadLimit = 10
	maxHeadToHeadLimit     = 100
)

// HeadToHeadQuery compares two club names. LeagueID zero compares across
// every league with alias groups; otherwise one team per side is resolved
// inside that league.
type HeadToHeadQuery struct {
	TeamA    string
	TeamB    string
	LeagueID int64
	Limit    int
}

type HeadToHead struct {
	League *league.League
	headtohead.Record
}

type HeadToHeadService struct {
	leagueRepo league.Repository
	matchRepo  match.Repository
	aliases    *AliasService
	now        func() time.Time
}

func NewHeadToHeadService(leagueRepo league.Repository, matchRepo match.Repository, aliases *AliasService) *HeadToHeadService {
	return &HeadToHeadService{
		leagueRepo: leagueRepo,
		matchRepo:  matchRepo,
		aliases:    aliases,
		now:        time.Now,
	}
}

type resolvedSide struct {
	ids  []int64
	name string
}

func (s *HeadToHeadService) Compare(ctx context.Context, q HeadToHeadQuery) (HeadToHead, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HeadToHeadService.Compare")
	defer span.End()

	q.TeamA = strings.TrimSpace(q.TeamA)
	q.TeamB = strings.TrimSpace(q.TeamB)
	if q.TeamA == "" || q.TeamB == "" {
		return HeadToHead{}, fmt.Errorf("%w: team_a and team_b are required", ErrInvalidInput)
	}
	if q.Limit == 0 {
		q.Limit = defaultHeadToHeadLimit
	}
	if q.Limit < 1 || q.Limit > maxHeadToHeadLimit {
		return HeadToHead{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, maxHeadToHeadLimit)
	}
	if q.LeagueID < 0 {
		return HeadToHead{}, fmt.Errorf("%w: league id must not be negative", ErrInvalidInput)
	}

	out := HeadToHead{}
	if q.LeagueID > 0 {
		lg, exists, err := s.leagueRepo.GetByID(ctx, q.LeagueID)
		if err != nil {
			return HeadToHead{}, fmt.Errorf("get league: %w", err)
		}
		if !exists {
			return HeadToHead{}, fmt.Errorf("%w: league=%d", ErrNotFound, q.LeagueID)
		}
		out.League = &lg
	}

	var sideA, sideB resolvedSide
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		sideA, err = s.resolveSide(ctx, q.LeagueID, q.TeamA)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		sideB, err = s.resolveSide(ctx, q.LeagueID, q.TeamB)
		return err
	})
	if err := p.Wait(); err != nil {
		return HeadToHead{}, err
	}
	if shared, ok := sharedTeam(sideA.ids, sideB.ids); ok {
		return HeadToHead{}, fmt.Errorf("%w: %q and %q both resolve to team=%d", ErrInvalidInput, q.TeamA, q.TeamB, shared)
	}

	matches, err := s.matchRepo.ListBetween(ctx, match.BetweenFilter{
		TeamAIDs: sideA.ids,
		TeamBIDs: sideB.ids,
		LeagueID: q.LeagueID,
	})
	if err != nil {
		return HeadToHead{}, fmt.Errorf("list head-to-head matches: %w", err)
	}

	out.Record = ComputeHeadToHead(matches, sideA.ids, sideB.ids, sideA.name, sideB.name, s.now(), q.Limit)
	return out, nil
}

func (s *HeadToHeadService) resolveSide(ctx context.Context, leagueID int64, name string) (resolvedSide, error) {
	if leagueID == 0 {
		ids, display, err := s.aliases.ResolveIDsForName(ctx, name)
		if err != nil {
			return resolvedSide{}, err
		}
		if len(ids) == 0 {
			return resolvedSide{}, fmt.Errorf("%w: team %q", ErrNotFound, name)
		}
		return resolvedSide{ids: ids, name: display}, nil
	}

	t, ok, err := s.aliases.ResolveInLeague(ctx, leagueID, name)
	if err != nil {
		return resolvedSide{}, err
	}
	if !ok {
		return resolvedSide{}, fmt.Errorf("%w: team %q in league=%d", ErrNotFound, name, leagueID)
	}
	return resolvedSide{ids: []int64{t.ID}, name: t.Name}, nil
}

// sharedTeam reports a team id claimed by both sides. Such a comparison has
// no meaningful winner.
func sharedTeam(a, b []int64) (int64, bool) {
	seen := make(map[int64]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := seen[id]; ok {
			return id, true
		}
	}
	return 0, false
}
