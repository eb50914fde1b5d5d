package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/rugby-analytics/external/thesportsdb"
	"github.com/riskibarqy/rugby-analytics/internal/config"
	"github.com/riskibarqy/rugby-analytics/internal/domain/alias"
	"github.com/riskibarqy/rugby-analytics/internal/domain/league"
	"github.com/riskibarqy/rugby-analytics/internal/domain/match"
	"github.com/riskibarqy/rugby-analytics/internal/domain/player"
	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
	"github.com/riskibarqy/rugby-analytics/internal/domain/season"
	"github.com/riskibarqy/rugby-analytics/internal/domain/standing"
	"github.com/riskibarqy/rugby-analytics/internal/domain/team"
	"github.com/riskibarqy/rugby-analytics/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/rugby-analytics/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/rugby-analytics/internal/interfaces/httpapi"
	"github.com/riskibarqy/rugby-analytics/internal/platform/id"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
	"github.com/riskibarqy/rugby-analytics/internal/platform/resilience"
	"github.com/riskibarqy/rugby-analytics/internal/usecase"
)

// App holds the wired services shared by the api and ingest binaries.
type App struct {
	cfg    config.Config
	logger *logging.Logger
	store  storage

	Leagues    *usecase.LeagueService
	Standings  *usecase.StandingsService
	HeadToHead *usecase.HeadToHeadService
	Ingestion  *usecase.IngestionOrchestrator
}

type storage struct {
	store     record.Store
	leagues   league.Repository
	seasons   season.Repository
	teams     team.Repository
	matches   match.Repository
	standings standing.Repository
	players   player.Repository
	close     func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	logger = logging.OrDefault(logger)

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	groups, err := alias.LoadFile(cfg.AliasGroupsFile)
	if err != nil {
		_ = st.close()
		return nil, fmt.Errorf("load alias groups: %w", err)
	}

	aliases := usecase.NewAliasService(groups, st.teams)
	provider := thesportsdb.NewClient(thesportsdb.ClientConfig{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Timeout: cfg.Provider.Timeout,
		Backoff: resilience.Backoff{
			MaxAttempts: cfg.Provider.MaxAttempts,
			BaseDelay:   cfg.Provider.BaseDelay,
			Multiplier:  cfg.Provider.BackoffMultiplier,
		},
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.Provider.CircuitEnabled,
			FailureThreshold: cfg.Provider.CircuitFailureCount,
			OpenTimeout:      cfg.Provider.CircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.Provider.CircuitHalfOpenMaxReq,
		},
		Logger: logger,
	})

	ingestCfg := usecase.DefaultIngestionConfig()
	ingestCfg.SeasonsBack = cfg.Ingest.SeasonsBack
	ingestCfg.UnitPause = cfg.Ingest.UnitPause
	ingestCfg.SportPrefix = cfg.Ingest.SportPrefix
	ingestCfg.AutoCreateTeams = cfg.Ingest.AutoCreateTeams
	ingestCfg.EnrichPlayers = cfg.Ingest.EnrichPlayers

	return &App{
		cfg:        cfg,
		logger:     logger,
		store:      st,
		Leagues:    usecase.NewLeagueService(st.leagues, st.seasons, st.teams),
		Standings:  usecase.NewStandingsService(st.leagues, st.seasons, st.teams, st.matches, st.standings, st.store, logger),
		HeadToHead: usecase.NewHeadToHeadService(st.leagues, st.matches, aliases),
		Ingestion:  usecase.NewIngestionOrchestrator(provider, st.store, st.leagues, st.players, id.NewULIDGenerator(), ingestCfg, logger),
	}, nil
}

func (a *App) Close() error {
	if a == nil || a.store.close == nil {
		return nil
	}
	return a.store.close()
}

func (a *App) NewHTTPServer() (*http.Server, error) {
	if a.cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(a.Leagues, a.Standings, a.HeadToHead, a.logger)
	return &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, a.logger, a.cfg.CORSAllowedOrigins),
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
	}, nil
}

// openStorage picks postgres when DB_URL is set and the seeded in-memory
// store otherwise.
func openStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (storage, error) {
	if cfg.DBURL == "" {
		logger.Warn("DB_URL empty, using seeded in-memory store")
		store := memory.NewStore()
		if err := memory.Seed(ctx, store); err != nil {
			return storage{}, fmt.Errorf("seed memory store: %w", err)
		}
		return storage{
			store:     store,
			leagues:   memory.NewLeagueRepository(store),
			seasons:   memory.NewSeasonRepository(store),
			teams:     memory.NewTeamRepository(store),
			matches:   memory.NewMatchRepository(store),
			standings: memory.NewStandingRepository(store),
			players:   memory.NewPlayerRepository(store),
			close:     func() error { return nil },
		}, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return storage{}, err
	}

	store := postgres.NewStore(db, logger)
	if cfg.AppEnv == config.EnvDev {
		if err := postgres.BootstrapSeed(ctx, db, store); err != nil {
			return storage{}, errors.Join(fmt.Errorf("bootstrap seed: %w", err), db.Close())
		}
	}

	return storage{
		store:     store,
		leagues:   postgres.NewLeagueRepository(db),
		seasons:   postgres.NewSeasonRepository(db),
		teams:     postgres.NewTeamRepository(db),
		matches:   postgres.NewMatchRepository(db),
		standings: postgres.NewStandingRepository(db),
		players:   postgres.NewPlayerRepository(db),
		close:     db.Close,
	}, nil
}
