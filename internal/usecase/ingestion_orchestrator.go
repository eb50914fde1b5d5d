package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/riskibarqy/rugby-analytics/internal/domain/league"
	"github.com/riskibarqy/rugby-analytics/internal/domain/match"
	"github.com/riskibarqy/rugby-analytics/internal/domain/player"
	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
	"github.com/riskibarqy/rugby-analytics/internal/domain/season"
	"github.com/riskibarqy/rugby-analytics/internal/platform/id"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
)

const defaultSource = "thesportsdb"

type IngestionConfig struct {
	// SeasonsBack is how many seasons the match walk processes per league,
	// newest first.
	SeasonsBack int
	// StopOnEmpty ends a league's walk at the first season without events.
	StopOnEmpty bool
	// UnitPause is the courtesy delay between units, independent of retry
	// backoff inside the provider client.
	UnitPause   time.Duration
	SportPrefix string
	// AutoCreateTeams lets match ingestion create teams it cannot resolve.
	// Off by default so unknown teams skip the event.
	AutoCreateTeams bool
	// EnrichPlayers looks up each roster player missing a birth date.
	EnrichPlayers bool
	Source        string
}

func DefaultIngestionConfig() IngestionConfig {
	return IngestionConfig{
		SeasonsBack: 1,
		StopOnEmpty: true,
		UnitPause:   1500 * time.Millisecond,
		SportPrefix: "rugby",
		Source:      defaultSource,
	}
}

// MatchRunRequest selects what the match walk covers. Empty
// LeagueExternalIDs means every stored league with a provider id and a
// matching sport.
type MatchRunRequest struct {
	LeagueExternalIDs []string
	StartLabel        string
	SeasonsBack       int
}

// IngestionOrchestrator drives provider fetches through the resolver and
// writer one unit at a time. Runs are synchronous; units are never
// processed concurrently.
type IngestionOrchestrator struct {
	provider SportsDataProvider
	store    record.Store
	leagues  league.Repository
	players  player.Repository
	ids      id.Generator
	limiter  *rate.Limiter
	cfg      IngestionConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewIngestionOrchestrator(
	provider SportsDataProvider,
	store record.Store,
	leagues league.Repository,
	players player.Repository,
	ids id.Generator,
	cfg IngestionConfig,
	logger *logging.Logger,
) *IngestionOrchestrator {
	if cfg.SeasonsBack < 1 {
		cfg.SeasonsBack = 1
	}
	if strings.TrimSpace(cfg.Source) == "" {
		cfg.Source = defaultSource
	}
	if ids == nil {
		ids = id.NewULIDGenerator()
	}

	limit := rate.Inf
	if cfg.UnitPause > 0 {
		limit = rate.Every(cfg.UnitPause)
	}

	return &IngestionOrchestrator{
		provider: provider,
		store:    store,
		leagues:  leagues,
		players:  players,
		ids:      ids,
		limiter:  rate.NewLimiter(limit, 1),
		cfg:      cfg,
		logger:   logging.OrDefault(logger).Named("ingest"),
		now:      time.Now,
	}
}

// run owns the caches of one invocation.
type run struct {
	report   RunReport
	writer   *IdempotentWriter
	cache    *ResolutionCache
	resolver *EntityResolver
	logger   *logging.Logger
	venues   map[string]ExternalVenue
}

func (o *IngestionOrchestrator) newRun(kind UnitKind, policy CreatePolicy) (*run, error) {
	runID, err := o.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	logger := o.logger.With("run_id", runID, "kind", string(kind))
	writer := NewIdempotentWriter(logger)
	resolutionCache := NewResolutionCache()
	return &run{
		report: RunReport{
			RunID:     runID,
			Kind:      kind,
			StartedAt: o.now().UTC(),
		},
		writer:   writer,
		cache:    resolutionCache,
		resolver: NewEntityResolver(writer, resolutionCache, policy, logger),
		logger:   logger,
		venues:   make(map[string]ExternalVenue),
	}, nil
}

func (o *IngestionOrchestrator) finish(ctx context.Context, r *run, err error) (RunReport, error) {
	r.report.FinishedAt = o.now().UTC()
	args := []any{
		"units", len(r.report.Units),
		"inserted", r.report.Inserted,
		"updated", r.report.Updated,
		"matched_by_fallback", r.report.MatchedByFallback,
		"skipped", r.report.Skipped,
		"backfilled", r.report.Backfilled,
		"duration", r.report.FinishedAt.Sub(r.report.StartedAt),
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "ingestion run aborted", append(args, "error", err)...)
		return r.report, err
	}
	r.logger.InfoContext(ctx, "ingestion run finished", args...)
	return r.report, nil
}

// pace blocks until the next unit may start.
func (o *IngestionOrchestrator) pace(ctx context.Context) error {
	return o.limiter.Wait(ctx)
}

// commit runs fn as one unit. On failure the run's resolution cache is
// dropped and the error is wrapped in a *UnitError.
func (o *IngestionOrchestrator) commit(ctx context.Context, r *run, unit *UnitReport, fn func(ctx context.Context, session record.Session) error) error {
	name := string(unit.Kind) + ":" + unit.League
	if unit.Season != "" {
		name += ":" + unit.Season
	}
	if unit.Team != "" {
		name += ":" + unit.Team
	}

	err := o.store.WithinUnit(ctx, name, fn)
	if err != nil {
		r.cache.Clear()
		return &UnitError{Kind: unit.Kind, League: unit.League, Season: unit.Season, Team: unit.Team, Err: err}
	}
	r.logger.InfoContext(ctx, "unit committed",
		"unit", name,
		"records", unit.Records,
		"inserted", unit.Inserted,
		"updated", unit.Updated,
		"matched_by_fallback", unit.MatchedByFallback,
		"skipped", unit.Skipped,
	)
	return nil
}

// IngestMatches walks each league's seasons backwards from the start label
// and upserts every event. The first failing unit aborts the run.
func (o *IngestionOrchestrator) IngestMatches(ctx context.Context, req MatchRunRequest) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionOrchestrator.IngestMatches",
		attribute.StringSlice("rugby.leagues", req.LeagueExternalIDs),
		attribute.Int("rugby.seasons_back", req.SeasonsBack),
	)
	defer span.End()

	r, err := o.newRun(UnitMatches, CreatePolicy{Teams: o.cfg.AutoCreateTeams, Venues: true, Seasons: true})
	if err != nil {
		return RunReport{}, err
	}

	leagues, err := o.targetLeagues(ctx, req.LeagueExternalIDs)
	if err != nil {
		return o.finish(ctx, r, err)
	}

	seasonsBack := req.SeasonsBack
	if seasonsBack < 1 {
		seasonsBack = o.cfg.SeasonsBack
	}

	for _, lg := range leagues {
		label := strings.TrimSpace(req.StartLabel)
		if label == "" {
			label, err = o.provider.CurrentSeasonLabel(ctx, lg.ExternalID)
			if err != nil {
				return o.finish(ctx, r, &UnitError{Kind: UnitMatches, League: lg.ExternalID, Err: fmt.Errorf("current season: %w", err)})
			}
			if label == "" {
				r.logger.WarnContext(ctx, "provider has no current season", "league", lg.ExternalID)
				continue
			}
		}

		for processed := 0; processed < seasonsBack; processed++ {
			if err := o.pace(ctx); err != nil {
				return o.finish(ctx, r, err)
			}

			unit, err := o.ingestSeason(ctx, r, lg, label)
			if err != nil {
				return o.finish(ctx, r, err)
			}
			r.report.add(unit)
			if unit.Empty && o.cfg.StopOnEmpty {
				r.logger.InfoContext(ctx, "season has no events, stopping walk", "league", lg.ExternalID, "season", label)
				break
			}

			prev, err := season.PreviousLabel(label)
			if err != nil {
				r.logger.WarnContext(ctx, "cannot walk past season", "league", lg.ExternalID, "season", label, "error", err)
				break
			}
			label = prev
		}
	}

	return o.finish(ctx, r, nil)
}

func (o *IngestionOrchestrator) ingestSeason(ctx context.Context, r *run, lg league.League, label string) (UnitReport, error) {
	unit := UnitReport{Kind: UnitMatches, League: lg.ExternalID, Season: label}

	events, err := o.provider.EventsForSeason(ctx, lg.ExternalID, label)
	if err != nil {
		return unit, &UnitError{Kind: UnitMatches, League: lg.ExternalID, Season: label, Err: fmt.Errorf("fetch events: %w", err)}
	}
	events = o.filterEvents(events)
	unit.Records = len(events)
	if len(events) == 0 {
		unit.Empty = true
		return unit, nil
	}
	o.lookupVenues(ctx, r, events)

	err = o.commit(ctx, r, &unit, func(ctx context.Context, session record.Session) error {
		seasonRes, err := r.resolver.ResolveSeason(ctx, session, SeasonRef{LeagueID: lg.ID, Label: label, ExternalKey: label})
		if err != nil {
			return fmt.Errorf("resolve season: %w", err)
		}

		for _, ev := range events {
			outcome, err := o.writeEvent(ctx, session, r, lg, seasonRes.ID, ev, &unit)
			if IsSkippable(err) {
				unit.Skipped++
				r.logger.DebugContext(ctx, "event skipped", "event_id", ev.ID, "reason", err)
				continue
			}
			if err != nil {
				return fmt.Errorf("event %s: %w", ev.ID, err)
			}
			unit.count(outcome)
		}
		return nil
	})
	return unit, err
}

func (o *IngestionOrchestrator) writeEvent(
	ctx context.Context,
	session record.Session,
	r *run,
	lg league.League,
	seasonID int64,
	ev ExternalEvent,
	unit *UnitReport,
) (record.Outcome, error) {
	eventID := strings.TrimSpace(ev.ID)
	if eventID == "" {
		return "", fmt.Errorf("%w: event without provider id", ErrMissingDependency)
	}

	home, err := r.resolver.ResolveTeam(ctx, session, TeamRef{ExternalID: ev.HomeTeamID, Name: ev.HomeTeam})
	if err != nil {
		return "", fmt.Errorf("home team: %w", err)
	}
	unit.noteResolution(home)

	away, err := r.resolver.ResolveTeam(ctx, session, TeamRef{ExternalID: ev.AwayTeamID, Name: ev.AwayTeam})
	if err != nil {
		return "", fmt.Errorf("away team: %w", err)
	}
	unit.noteResolution(away)

	if home.ID == away.ID {
		return "", fmt.Errorf("%w: home and away resolved to team id=%d", ErrMissingDependency, home.ID)
	}

	fields := record.Fields{
		"status":            string(match.NormalizeStatus(ev.Status)),
		"kickoff_time":      nullTime(ev.Kickoff),
		"home_score":        nullInt(ev.HomeScore),
		"away_score":        nullInt(ev.AwayScore),
		"attendance":        nullInt(ev.Attendance),
		"round":             nullString(ev.Round),
		"external_event_id": eventID,
		"source":            o.cfg.Source,
	}

	venueID := strings.TrimSpace(ev.VenueID)
	if venueID != "" || strings.TrimSpace(ev.Venue) != "" {
		ref := VenueRef{
			ExternalID: venueID,
			Name:       ev.Venue,
			City:       ev.City,
			Country:    ev.Country,
		}
		if detail, ok := r.venues[venueID]; ok {
			ref.Name = firstNonEmpty(ev.Venue, detail.Name)
			ref.City = firstNonEmpty(ev.City, detail.City)
			ref.Country = firstNonEmpty(ev.Country, detail.Country)
			ref.Latitude = detail.Latitude
			ref.Longitude = detail.Longitude
		}
		venueRes, err := r.resolver.ResolveVenue(ctx, session, ref)
		switch {
		case err == nil:
			unit.noteResolution(venueRes)
			fields["venue_id"] = venueRes.ID
		case IsSkippable(err):
			r.logger.DebugContext(ctx, "venue unresolved", "event_id", eventID, "venue", ev.Venue)
		default:
			return "", fmt.Errorf("venue: %w", err)
		}
	}

	_, outcome, err := r.writer.Upsert(ctx, session, record.Upsert{
		Entity: record.EntityMatch,
		Key: record.Fields{
			"league_id":    lg.ID,
			"season_id":    seasonID,
			"home_team_id": home.ID,
			"away_team_id": away.ID,
			"kickoff_time": nullTime(ev.Kickoff),
		},
		Fallback: &record.Criteria{Equal: record.Fields{"external_event_id": eventID}},
		Fields:   fields,
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// lookupVenues fetches venues that events reference by id without a name.
// Lookups happen outside the unit and are kept for the rest of the run; a
// failed lookup only costs the venue its name.
func (o *IngestionOrchestrator) lookupVenues(ctx context.Context, r *run, events []ExternalEvent) {
	for _, ev := range events {
		venueID := strings.TrimSpace(ev.VenueID)
		if venueID == "" || strings.TrimSpace(ev.Venue) != "" {
			continue
		}
		if _, ok := r.venues[venueID]; ok {
			continue
		}
		detail, found, err := o.provider.LookupVenue(ctx, venueID)
		if err != nil {
			r.logger.WarnContext(ctx, "venue lookup failed", "venue_id", venueID, "error", err)
			continue
		}
		if !found {
			detail = ExternalVenue{ID: venueID}
		}
		r.venues[venueID] = detail
	}
}

func (o *IngestionOrchestrator) filterEvents(events []ExternalEvent) []ExternalEvent {
	out := events[:0:0]
	for _, ev := range events {
		if ev.Sport != "" && !league.HasSportPrefix(ev.Sport, o.cfg.SportPrefix) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// targetLeagues resolves explicit provider ids against stored leagues, or
// lists every stored league eligible for ingestion.
func (o *IngestionOrchestrator) targetLeagues(ctx context.Context, externalIDs []string) ([]league.League, error) {
	if len(externalIDs) == 0 {
		all, err := o.leagues.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list leagues: %w", err)
		}
		out := make([]league.League, 0, len(all))
		for _, lg := range all {
			if lg.ExternalID == "" || !league.HasSportPrefix(lg.Sport, o.cfg.SportPrefix) {
				continue
			}
			out = append(out, lg)
		}
		return out, nil
	}

	out := make([]league.League, 0, len(externalIDs))
	for _, externalID := range externalIDs {
		externalID = strings.TrimSpace(externalID)
		if externalID == "" {
			continue
		}
		lg, ok, err := o.leagues.GetByExternalID(ctx, externalID)
		if err != nil {
			return nil, fmt.Errorf("get league %s: %w", externalID, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: league with provider id %s is not stored, ingest leagues first", ErrNotFound, externalID)
		}
		out = append(out, lg)
	}
	return out, nil
}

// IngestLeagues upserts the provider's league records. Leagues whose sport
// does not carry the configured prefix are skipped.
func (o *IngestionOrchestrator) IngestLeagues(ctx context.Context, externalIDs []string) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionOrchestrator.IngestLeagues")
	defer span.End()

	r, err := o.newRun(UnitLeague, CreatePolicy{})
	if err != nil {
		return RunReport{}, err
	}
	if len(externalIDs) == 0 {
		return o.finish(ctx, r, fmt.Errorf("%w: at least one league id is required", ErrInvalidInput))
	}

	for _, externalID := range externalIDs {
		externalID = strings.TrimSpace(externalID)
		if externalID == "" {
			continue
		}
		if err := o.pace(ctx); err != nil {
			return o.finish(ctx, r, err)
		}

		unit := UnitReport{Kind: UnitLeague, League: externalID, Records: 1}
		ext, found, err := o.provider.LookupLeague(ctx, externalID)
		if err != nil {
			return o.finish(ctx, r, &UnitError{Kind: UnitLeague, League: externalID, Err: fmt.Errorf("lookup league: %w", err)})
		}
		if !found || !league.HasSportPrefix(ext.Sport, o.cfg.SportPrefix) {
			unit.Skipped++
			r.logger.WarnContext(ctx, "league skipped", "league", externalID, "found", found, "sport", ext.Sport)
			r.report.add(unit)
			continue
		}

		err = o.commit(ctx, r, &unit, func(ctx context.Context, session record.Session) error {
			name := strings.TrimSpace(ext.Name)
			_, outcome, err := r.writer.Upsert(ctx, session, record.Upsert{
				Entity: record.EntityLeague,
				Key:    record.Fields{"external_id": externalID},
				Fallback: &record.Criteria{
					EqualFold: map[string]string{"name": name},
					IsNull:    []string{"external_id"},
				},
				Fields: record.Fields{
					"name":       name,
					"short_name": nullString(ext.ShortName),
					"slug":       slug.Make(name),
					"country":    nullString(ext.Country),
					"sport":      nullString(ext.Sport),
				},
			})
			if err != nil {
				return err
			}
			unit.count(outcome)
			return nil
		})
		if err != nil {
			return o.finish(ctx, r, err)
		}
		r.report.add(unit)
	}

	return o.finish(ctx, r, nil)
}

// IngestSeasons stores the provider's season list for each league, one
// unit per league.
func (o *IngestionOrchestrator) IngestSeasons(ctx context.Context, externalIDs []string) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionOrchestrator.IngestSeasons")
	defer span.End()

	r, err := o.newRun(UnitSeasons, CreatePolicy{})
	if err != nil {
		return RunReport{}, err
	}
	leagues, err := o.targetLeagues(ctx, externalIDs)
	if err != nil {
		return o.finish(ctx, r, err)
	}

	for _, lg := range leagues {
		if err := o.pace(ctx); err != nil {
			return o.finish(ctx, r, err)
		}

		labels, err := o.provider.ListSeasons(ctx, lg.ExternalID)
		if err != nil {
			return o.finish(ctx, r, &UnitError{Kind: UnitSeasons, League: lg.ExternalID, Err: fmt.Errorf("list seasons: %w", err)})
		}

		unit := UnitReport{Kind: UnitSeasons, League: lg.ExternalID, Records: len(labels)}
		err = o.commit(ctx, r, &unit, func(ctx context.Context, session record.Session) error {
			for _, label := range labels {
				label = strings.TrimSpace(label)
				year, err := season.YearFromLabel(label)
				if err != nil {
					unit.Skipped++
					r.logger.DebugContext(ctx, "season label skipped", "league", lg.ExternalID, "label", label)
					continue
				}
				_, outcome, err := r.writer.Upsert(ctx, session, record.Upsert{
					Entity: record.EntitySeason,
					Key:    record.Fields{"league_id": lg.ID, "year": year},
					Fields: record.Fields{"label": label, "external_season_key": label},
				})
				if err != nil {
					return fmt.Errorf("season %s: %w", label, err)
				}
				unit.count(outcome)
			}
			return nil
		})
		if err != nil {
			return o.finish(ctx, r, err)
		}
		r.report.add(unit)
	}

	return o.finish(ctx, r, nil)
}
