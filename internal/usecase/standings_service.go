package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/rugby-analytics/internal/domain/league"
	"github.com/riskibarqy/rugby-analytics/internal/domain/match"
	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
	"github.com/riskibarqy/rugby-analytics/internal/domain/season"
	"github.com/riskibarqy/rugby-analytics/internal/domain/standing"
	"github.com/riskibarqy/rugby-analytics/internal/domain/team"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
	"github.com/riskibarqy/rugby-analytics/internal/platform/resilience"
)

const (
	StandingsSourceStored = "stored"
	StandingsSourceLive   = "live"
)

const defaultAggregationWorkers = 4

type StandingsTable struct {
	League league.League
	Season season.Season
	Rows   []standing.Row
	Source string
}

// RecomputeResult lists the scopes a RecomputeAll pass rewrote.
type RecomputeResult struct {
	Scopes int
	Rows   int
	Failed int
}

type StandingsService struct {
	leagueRepo   league.Repository
	seasonRepo   season.Repository
	teamRepo     team.Repository
	matchRepo    match.Repository
	standingRepo standing.Repository
	store        record.Store
	logger       *logging.Logger
	flight       resilience.SingleFlight
}

func NewStandingsService(
	leagueRepo league.Repository,
	seasonRepo season.Repository,
	teamRepo team.Repository,
	matchRepo match.Repository,
	standingRepo standing.Repository,
	store record.Store,
	logger *logging.Logger,
) *StandingsService {
	return &StandingsService{
		leagueRepo:   leagueRepo,
		seasonRepo:   seasonRepo,
		teamRepo:     teamRepo,
		matchRepo:    matchRepo,
		standingRepo: standingRepo,
		store:        store,
		logger:       logging.OrDefault(logger).Named("standings"),
	}
}

// Compute derives the ranked table for one scope from stored matches.
func (s *StandingsService) Compute(ctx context.Context, leagueID, seasonID int64) ([]standing.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Compute", scopeAttrs(leagueID, seasonID)...)
	defer span.End()

	matches, err := s.matchRepo.ListBySeason(ctx, leagueID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list matches by season: %w", err)
	}

	teamIDs := make([]int64, 0, len(matches)*2)
	seen := make(map[int64]struct{}, len(matches)*2)
	for _, m := range matches {
		for _, teamID := range []int64{m.HomeTeamID, m.AwayTeamID} {
			if _, ok := seen[teamID]; ok {
				continue
			}
			seen[teamID] = struct{}{}
			teamIDs = append(teamIDs, teamID)
		}
	}

	names := make(map[int64]string, len(teamIDs))
	if len(teamIDs) > 0 {
		teams, err := s.teamRepo.ListByIDs(ctx, teamIDs)
		if err != nil {
			return nil, fmt.Errorf("list teams by ids: %w", err)
		}
		for _, t := range teams {
			names[t.ID] = t.Name
		}
	}

	return ComputeStandings(leagueID, seasonID, matches, names), nil
}

// Recompute replaces the stored team_season_stats rows of one scope in a
// single unit. Rows of teams that no longer appear in the scope's matches
// are removed.
func (s *StandingsService) Recompute(ctx context.Context, leagueID, seasonID int64) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Recompute", scopeAttrs(leagueID, seasonID)...)
	defer span.End()

	rows, err := s.Compute(ctx, leagueID, seasonID)
	if err != nil {
		return 0, err
	}

	writer := NewIdempotentWriter(s.logger)
	unit := fmt.Sprintf("stats:%d:%d", leagueID, seasonID)
	removed := 0
	err = s.store.WithinUnit(ctx, unit, func(ctx context.Context, session record.Session) error {
		existing, err := session.Find(ctx, record.EntityTeamSeasonStat, record.Criteria{
			Equal: record.Fields{"league_id": leagueID, "season_id": seasonID},
		})
		if err != nil {
			return fmt.Errorf("list stored rows: %w", err)
		}

		written := make(map[int64]struct{}, len(rows))
		for _, row := range rows {
			id, _, err := writer.Upsert(ctx, session, record.Upsert{
				Entity: record.EntityTeamSeasonStat,
				Key: record.Fields{
					"league_id": row.LeagueID,
					"season_id": row.SeasonID,
					"team_id":   row.TeamID,
				},
				Fields: statFields(row),
			})
			if err != nil {
				return fmt.Errorf("team %d: %w", row.TeamID, err)
			}
			written[id] = struct{}{}
		}

		for _, c := range existing {
			if _, ok := written[c.ID]; ok {
				continue
			}
			if err := session.Delete(ctx, record.EntityTeamSeasonStat, c.ID); err != nil {
				return fmt.Errorf("remove stale row %d: %w", c.ID, err)
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("recompute %s: %w", unit, err)
	}

	s.flight.Forget(tableKey(leagueID, seasonID))
	s.logger.InfoContext(ctx, "standings recomputed",
		"league_id", leagueID, "season_id", seasonID, "rows", len(rows), "removed", removed)
	return len(rows), nil
}

// RecomputeAll rewrites every scope that has matches. Scopes run on a
// bounded pool since each owns its own transaction; failures are collected
// and do not stop other scopes.
func (s *StandingsService) RecomputeAll(ctx context.Context, workers int) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.RecomputeAll")
	defer span.End()

	scopes, err := s.matchRepo.ListScopes(ctx)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("list match scopes: %w", err)
	}
	result := RecomputeResult{Scopes: len(scopes)}
	if len(scopes) == 0 {
		return result, nil
	}
	if workers <= 0 {
		workers = defaultAggregationWorkers
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	for _, scope := range scopes {
		scope := scope
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			rows, err := s.Recompute(ctx, scope.LeagueID, scope.SeasonID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				errs = append(errs, err)
				return
			}
			result.Rows += rows
		}); err != nil {
			wg.Done()
			mu.Lock()
			result.Failed++
			errs = append(errs, fmt.Errorf("submit scope %d/%d: %w", scope.LeagueID, scope.SeasonID, err))
			mu.Unlock()
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
		return result, errors.Join(errs...)
	}
	return result, nil
}

// Table returns the ranked table of a scope. Materialized rows win when a
// recompute has stored them; otherwise the table is computed live.
func (s *StandingsService) Table(ctx context.Context, leagueID, seasonID int64) (StandingsTable, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Table", scopeAttrs(leagueID, seasonID)...)
	defer span.End()

	if leagueID <= 0 || seasonID <= 0 {
		return StandingsTable{}, fmt.Errorf("%w: league id and season id are required", ErrInvalidInput)
	}

	lg, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return StandingsTable{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return StandingsTable{}, fmt.Errorf("%w: league=%d", ErrNotFound, leagueID)
	}
	ss, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return StandingsTable{}, fmt.Errorf("get season: %w", err)
	}
	if !exists || ss.LeagueID != leagueID {
		return StandingsTable{}, fmt.Errorf("%w: season=%d league=%d", ErrNotFound, seasonID, leagueID)
	}

	value, err, _ := s.flight.Do(tableKey(leagueID, seasonID), func() (any, error) {
		stored, err := s.standingRepo.ListBySeason(ctx, leagueID, seasonID)
		if err != nil {
			return nil, fmt.Errorf("list stored standings: %w", err)
		}
		if len(stored) > 0 {
			return StandingsTable{Rows: RankStandings(stored), Source: StandingsSourceStored}, nil
		}
		rows, err := s.Compute(ctx, leagueID, seasonID)
		if err != nil {
			return nil, err
		}
		return StandingsTable{Rows: rows, Source: StandingsSourceLive}, nil
	})
	if err != nil {
		return StandingsTable{}, err
	}

	table := value.(StandingsTable)
	table.League = lg
	table.Season = ss
	// callers share the flight result
	table.Rows = append([]standing.Row(nil), table.Rows...)
	return table, nil
}

func statFields(row standing.Row) record.Fields {
	return record.Fields{
		"games_played":        row.GamesPlayed,
		"wins":                row.Wins,
		"draws":               row.Draws,
		"losses":              row.Losses,
		"points_for":          row.PointsFor,
		"points_against":      row.PointsAgainst,
		"points_diff":         row.PointsDiff,
		"competition_points":  row.CompetitionPoints,
		"losing_bonus_points": row.LosingBonusPoints,
		"try_bonus_points":    row.TryBonusPoints,
	}
}

func tableKey(leagueID, seasonID int64) string {
	return fmt.Sprintf("%d:%d", leagueID, seasonID)
}
