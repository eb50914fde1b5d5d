package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/rugby-analytics/internal/domain/league"
	"github.com/riskibarqy/rugby-analytics/internal/domain/season"
	"github.com/riskibarqy/rugby-analytics/internal/domain/team"
)

type LeagueService struct {
	leagueRepo league.Repository
	seasonRepo season.Repository
	teamRepo   team.Repository
}

func NewLeagueService(leagueRepo league.Repository, seasonRepo season.Repository, teamRepo team.Repository) *LeagueService {
	return &LeagueService{
		leagueRepo: leagueRepo,
		seasonRepo: seasonRepo,
		teamRepo:   teamRepo,
	}
}

func (s *LeagueService) ListLeagues(ctx context.Context) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListLeagues")
	defer span.End()

	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	return leagues, nil
}

func (s *LeagueService) ListSeasons(ctx context.Context, leagueID int64) ([]season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListSeasons")
	defer span.End()

	if err := s.ensureLeague(ctx, leagueID); err != nil {
		return nil, err
	}

	seasons, err := s.seasonRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list seasons by league: %w", err)
	}

	return seasons, nil
}

func (s *LeagueService) ListTeamsByLeague(ctx context.Context, leagueID int64) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListTeamsByLeague")
	defer span.End()

	if err := s.ensureLeague(ctx, leagueID); err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list teams by league: %w", err)
	}

	return teams, nil
}

func (s *LeagueService) ensureLeague(ctx context.Context, leagueID int64) error {
	if leagueID <= 0 {
		return fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	_, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: league=%d", ErrNotFound, leagueID)
	}
	return nil
}
