package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/rugby-analytics/internal/domain/league"
	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
)

// IngestTeams stores every team the provider lists for each league, plus
// teams that only appear in the current season's fixtures. Home stadiums
// are resolved as venues on the way.
func (o *IngestionOrchestrator) IngestTeams(ctx context.Context, externalIDs []string) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionOrchestrator.IngestTeams")
	defer span.End()

	r, err := o.newRun(UnitTeams, CreatePolicy{Teams: true, Venues: true})
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

		teams, err := o.leagueTeams(ctx, lg)
		if err != nil {
			return o.finish(ctx, r, &UnitError{Kind: UnitTeams, League: lg.ExternalID, Err: err})
		}

		unit := UnitReport{Kind: UnitTeams, League: lg.ExternalID, Records: len(teams)}
		err = o.commit(ctx, r, &unit, func(ctx context.Context, session record.Session) error {
			for _, t := range teams {
				outcome, err := o.writeTeam(ctx, session, r, t, &unit)
				if IsSkippable(err) {
					unit.Skipped++
					r.logger.DebugContext(ctx, "team skipped", "team", t.Name, "reason", err)
					continue
				}
				if err != nil {
					return fmt.Errorf("team %s: %w", t.ID, err)
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

// leagueTeams merges the provider's team list with teams referenced by the
// current season's events. Order follows first appearance.
func (o *IngestionOrchestrator) leagueTeams(ctx context.Context, lg league.League) ([]ExternalTeam, error) {
	listed, err := o.provider.LookupAllTeams(ctx, lg.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("lookup teams: %w", err)
	}

	seen := make(map[string]struct{}, len(listed))
	out := make([]ExternalTeam, 0, len(listed))
	for _, t := range listed {
		if t.Sport != "" && !league.HasSportPrefix(t.Sport, o.cfg.SportPrefix) {
			continue
		}
		key := strings.TrimSpace(t.ID)
		if key == "" {
			key = "name:" + strings.ToLower(strings.TrimSpace(t.Name))
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}

	label, err := o.provider.CurrentSeasonLabel(ctx, lg.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("current season: %w", err)
	}
	if label == "" {
		return out, nil
	}
	events, err := o.provider.EventsForSeason(ctx, lg.ExternalID, label)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	for _, ev := range o.filterEvents(events) {
		for _, side := range [][2]string{{ev.HomeTeamID, ev.HomeTeam}, {ev.AwayTeamID, ev.AwayTeam}} {
			teamID := strings.TrimSpace(side[0])
			if teamID == "" {
				continue
			}
			if _, ok := seen[teamID]; ok {
				continue
			}
			seen[teamID] = struct{}{}
			out = append(out, o.teamDetail(ctx, teamID, side[1]))
		}
	}
	return out, nil
}

// teamDetail looks up a team known only from a fixture. The fixture's name
// is kept when the lookup fails or comes back empty.
func (o *IngestionOrchestrator) teamDetail(ctx context.Context, teamID, name string) ExternalTeam {
	fallback := ExternalTeam{ID: teamID, Name: name}
	detail, found, err := o.provider.LookupTeam(ctx, teamID)
	if err != nil {
		o.logger.WarnContext(ctx, "team lookup failed", "team_id", teamID, "error", err)
		return fallback
	}
	if !found {
		return fallback
	}
	detail.ID = teamID
	detail.Name = firstNonEmpty(detail.Name, name)
	return detail
}

func (o *IngestionOrchestrator) writeTeam(ctx context.Context, session record.Session, r *run, t ExternalTeam, unit *UnitReport) (record.Outcome, error) {
	teamID := strings.TrimSpace(t.ID)
	if teamID == "" {
		return "", fmt.Errorf("%w: team %q without provider id", ErrMissingDependency, t.Name)
	}

	res, err := r.resolver.ResolveTeam(ctx, session, TeamRef{
		ExternalID:   teamID,
		Name:         t.Name,
		ShortName:    t.ShortName,
		Abbreviation: t.Abbreviation,
		Country:      t.Country,
	})
	if err != nil {
		return "", err
	}
	unit.noteResolution(res)

	if strings.TrimSpace(t.Stadium) != "" {
		venueRes, err := r.resolver.ResolveVenue(ctx, session, VenueRef{
			ExternalID: t.VenueID,
			Name:       t.Stadium,
			City:       t.StadiumLocation,
			Country:    t.Country,
		})
		switch {
		case err == nil:
			unit.noteResolution(venueRes)
		case IsSkippable(err):
		default:
			return "", fmt.Errorf("stadium: %w", err)
		}
	}

	if res.Created {
		return record.OutcomeInserted, nil
	}

	fields := record.Fields{
		"short_name":   nullString(t.ShortName),
		"abbreviation": nullString(t.Abbreviation),
		"country":      nullString(t.Country),
	}
	if name := strings.TrimSpace(t.Name); name != "" {
		fields["name"] = name
	}
	_, outcome, err := r.writer.Upsert(ctx, session, record.Upsert{
		Entity: record.EntityTeam,
		Key:    record.Fields{"external_id": teamID},
		Fields: nonNullFields(fields),
	})
	return outcome, err
}

// IngestPlayers stores each team's roster as its own unit and links players
// to their team for the season.
func (o *IngestionOrchestrator) IngestPlayers(ctx context.Context, externalIDs []string, seasonLabel string) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionOrchestrator.IngestPlayers")
	defer span.End()

	r, err := o.newRun(UnitRoster, DefaultCreatePolicy())
	if err != nil {
		return RunReport{}, err
	}
	leagues, err := o.targetLeagues(ctx, externalIDs)
	if err != nil {
		return o.finish(ctx, r, err)
	}

	for _, lg := range leagues {
		label := strings.TrimSpace(seasonLabel)
		if label == "" {
			label, err = o.provider.CurrentSeasonLabel(ctx, lg.ExternalID)
			if err != nil {
				return o.finish(ctx, r, &UnitError{Kind: UnitRoster, League: lg.ExternalID, Err: fmt.Errorf("current season: %w", err)})
			}
			if label == "" {
				r.logger.WarnContext(ctx, "provider has no current season", "league", lg.ExternalID)
				continue
			}
		}

		teams, err := o.provider.LookupAllTeams(ctx, lg.ExternalID)
		if err != nil {
			return o.finish(ctx, r, &UnitError{Kind: UnitRoster, League: lg.ExternalID, Season: label, Err: fmt.Errorf("lookup teams: %w", err)})
		}

		for _, t := range teams {
			if strings.TrimSpace(t.ID) == "" {
				continue
			}
			if t.Sport != "" && !league.HasSportPrefix(t.Sport, o.cfg.SportPrefix) {
				continue
			}
			if err := o.pace(ctx); err != nil {
				return o.finish(ctx, r, err)
			}

			unit, err := o.ingestRoster(ctx, r, lg, label, t)
			if err != nil {
				return o.finish(ctx, r, err)
			}
			r.report.add(unit)
		}
	}

	return o.finish(ctx, r, nil)
}

func (o *IngestionOrchestrator) ingestRoster(ctx context.Context, r *run, lg league.League, label string, t ExternalTeam) (UnitReport, error) {
	unit := UnitReport{Kind: UnitRoster, League: lg.ExternalID, Season: label, Team: t.ID}

	players, err := o.provider.TeamPlayers(ctx, t.ID)
	if err != nil {
		return unit, &UnitError{Kind: UnitRoster, League: lg.ExternalID, Season: label, Team: t.ID, Err: fmt.Errorf("fetch roster: %w", err)}
	}
	players = o.filterPlayers(players)
	if o.cfg.EnrichPlayers {
		players = o.enrichPlayers(ctx, r, players)
	}
	unit.Records = len(players)
	if len(players) == 0 {
		unit.Empty = true
		return unit, nil
	}

	err = o.commit(ctx, r, &unit, func(ctx context.Context, session record.Session) error {
		teamRes, err := r.resolver.ResolveTeam(ctx, session, TeamRef{ExternalID: t.ID, Name: t.Name, Country: t.Country})
		if err != nil {
			return fmt.Errorf("resolve team: %w", err)
		}
		unit.noteResolution(teamRes)

		seasonRes, err := r.resolver.ResolveSeason(ctx, session, SeasonRef{LeagueID: lg.ID, Label: label, ExternalKey: label})
		if err != nil {
			return fmt.Errorf("resolve season: %w", err)
		}

		linkKey, err := o.rosterLinkKey(ctx, session, r, teamRes.ID, seasonRes.ID)
		if err != nil {
			return err
		}

		for _, p := range players {
			outcome, err := o.writePlayer(ctx, session, r, p, linkKey, &unit)
			if IsSkippable(err) {
				unit.Skipped++
				r.logger.DebugContext(ctx, "player skipped", "player", p.Name, "reason", err)
				continue
			}
			if err != nil {
				return fmt.Errorf("player %s: %w", p.ID, err)
			}
			unit.count(outcome)
		}
		return nil
	})
	return unit, err
}

// rosterLinkKey builds the player_teams key template. Destinations without a
// season column link players to teams only.
func (o *IngestionOrchestrator) rosterLinkKey(ctx context.Context, session record.Session, r *run, teamID, seasonID int64) (record.Fields, error) {
	key := record.Fields{"team_id": teamID}
	hasSeason, err := r.writer.Supports(ctx, session, record.EntityPlayerTeam, "season_id")
	if err != nil {
		return nil, err
	}
	if hasSeason {
		key["season_id"] = seasonID
	}
	return key, nil
}

func (o *IngestionOrchestrator) writePlayer(
	ctx context.Context,
	session record.Session,
	r *run,
	p ExternalPlayer,
	linkKey record.Fields,
	unit *UnitReport,
) (record.Outcome, error) {
	playerID := strings.TrimSpace(p.ID)
	name := strings.TrimSpace(p.Name)
	if playerID == "" || name == "" {
		return "", fmt.Errorf("%w: player without provider id or name", ErrMissingDependency)
	}

	res, err := r.resolver.ResolvePlayer(ctx, session, PlayerRef{
		ExternalID:   playerID,
		FullName:     name,
		Nationality:  p.Nationality,
		PositionText: p.Position,
		DateOfBirth:  p.DateOfBirth,
	})
	if err != nil {
		return "", err
	}
	unit.noteResolution(res)

	first, last := splitPlayerName(name)
	fields := record.Fields{
		"full_name":     name,
		"first_name":    nullString(first),
		"last_name":     nullString(last),
		"nationality":   nullString(p.Nationality),
		"date_of_birth": nullDate(p.DateOfBirth),
		"position_text": nullString(p.Position),
	}
	if strings.TrimSpace(p.Position) != "" {
		posRes, err := r.resolver.ResolvePosition(ctx, session, p.Position)
		if err != nil && !IsSkippable(err) {
			return "", fmt.Errorf("position: %w", err)
		}
		if err == nil {
			fields["preferred_position_id"] = posRes.ID
		}
	}

	rowID := res.ID
	outcome := record.OutcomeInserted
	if !res.Created || fields["preferred_position_id"] != nil {
		rowID, outcome, err = r.writer.Upsert(ctx, session, record.Upsert{
			Entity: record.EntityPlayer,
			Key:    record.Fields{"external_id": playerID},
			Fields: nonNullFields(fields),
		})
		if err != nil {
			return "", err
		}
		if res.Created {
			outcome = record.OutcomeInserted
		}
	}

	// the row keyed by this provider id owns the roster link
	link := record.Fields{"player_id": rowID}.Merge(linkKey)
	if _, _, err := r.writer.Upsert(ctx, session, record.Upsert{
		Entity: record.EntityPlayerTeam,
		Key:    link,
	}); err != nil {
		return "", fmt.Errorf("link roster: %w", err)
	}
	return outcome, nil
}

func (o *IngestionOrchestrator) filterPlayers(players []ExternalPlayer) []ExternalPlayer {
	out := players[:0:0]
	for _, p := range players {
		// a blank sport tag is common on roster rows and is kept
		if p.Sport != "" && !league.HasSportPrefix(p.Sport, o.cfg.SportPrefix) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// enrichPlayers fills missing birth dates from the player lookup. Lookup
// failures leave the roster row as it was.
func (o *IngestionOrchestrator) enrichPlayers(ctx context.Context, r *run, players []ExternalPlayer) []ExternalPlayer {
	out := make([]ExternalPlayer, len(players))
	copy(out, players)
	for i, p := range out {
		if p.DateOfBirth != nil || strings.TrimSpace(p.ID) == "" {
			continue
		}
		detail, found, err := o.provider.LookupPlayer(ctx, p.ID)
		if err != nil {
			r.logger.WarnContext(ctx, "player lookup failed", "player_id", p.ID, "error", err)
			continue
		}
		if !found {
			continue
		}
		out[i].DateOfBirth = detail.DateOfBirth
		out[i].Nationality = firstNonEmpty(p.Nationality, detail.Nationality)
		out[i].Position = firstNonEmpty(p.Position, detail.Position)
	}
	return out
}

// IngestPositions builds the position catalog from the distinct texts
// stored on players and links players that have no catalog position yet.
func (o *IngestionOrchestrator) IngestPositions(ctx context.Context) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionOrchestrator.IngestPositions")
	defer span.End()

	r, err := o.newRun(UnitPositions, CreatePolicy{Positions: true})
	if err != nil {
		return RunReport{}, err
	}

	texts, err := o.players.ListPositionTexts(ctx)
	if err != nil {
		return o.finish(ctx, r, fmt.Errorf("list position texts: %w", err))
	}

	unit := UnitReport{Kind: UnitPositions, League: "*", Records: len(texts)}
	linked := int64(0)
	err = o.commit(ctx, r, &unit, func(ctx context.Context, session record.Session) error {
		canLink, err := r.writer.Supports(ctx, session, record.EntityPlayer, "preferred_position_id")
		if err != nil {
			return err
		}

		for _, text := range texts {
			res, err := r.resolver.ResolvePosition(ctx, session, text)
			if IsSkippable(err) {
				unit.Skipped++
				continue
			}
			if err != nil {
				return fmt.Errorf("position %q: %w", text, err)
			}
			if res.Created {
				unit.Inserted++
			} else {
				unit.Updated++
			}
			if !canLink {
				continue
			}

			n, err := session.UpdateWhere(ctx, record.EntityPlayer, record.Criteria{
				Equal:  record.Fields{"position_text": text},
				IsNull: []string{"preferred_position_id"},
			}, record.Fields{"preferred_position_id": res.ID})
			if err != nil {
				return fmt.Errorf("link players to %q: %w", text, err)
			}
			linked += n
		}
		return nil
	})
	if err != nil {
		return o.finish(ctx, r, err)
	}
	r.report.add(unit)
	r.logger.InfoContext(ctx, "players linked to positions", "players", linked)

	return o.finish(ctx, r, nil)
}
