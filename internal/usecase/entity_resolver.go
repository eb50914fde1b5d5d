package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/rugby-analytics/internal/domain/position"
	"github.com/riskibarqy/rugby-analytics/internal/domain/record"
	"github.com/riskibarqy/rugby-analytics/internal/domain/season"
	"github.com/riskibarqy/rugby-analytics/internal/platform/cache"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
	"github.com/riskibarqy/rugby-analytics/internal/platform/naming"
)

type ResolutionTier string

const (
	TierExternalID   ResolutionTier = "external_id"
	TierExactName    ResolutionTier = "exact_name"
	TierNameAndBirth ResolutionTier = "name_and_birth"
	TierFuzzyName    ResolutionTier = "fuzzy_name"
	TierCreated      ResolutionTier = "created"
)

// minFuzzyLength keeps one or two letter inputs from substring matching
// half the table.
const minFuzzyLength = 3

// Resolution is the outcome of mapping a provider record to a local row.
// Backfilled is set when the provider id was attached to an existing row.
type Resolution struct {
	ID         int64
	Tier       ResolutionTier
	Backfilled bool
	Created    bool
}

// ResolutionCache memoizes resolved ids for one ingestion run. It must be
// cleared when a unit rolls back because ids created inside the unit are
// gone.
type ResolutionCache struct {
	store *cache.Store
}

func NewResolutionCache() *ResolutionCache {
	return &ResolutionCache{store: cache.NewStore()}
}

func (c *ResolutionCache) Clear() {
	if c == nil {
		return
	}
	c.store.Clear()
}

func (c *ResolutionCache) Len() int {
	if c == nil {
		return 0
	}
	return c.store.Len()
}

// CreatePolicy lists which entity types may be auto-created. Leagues never
// are.
type CreatePolicy struct {
	Teams     bool
	Venues    bool
	Seasons   bool
	Players   bool
	Positions bool
}

func DefaultCreatePolicy() CreatePolicy {
	return CreatePolicy{Teams: true, Venues: true, Seasons: true, Players: true, Positions: true}
}

type LeagueRef struct {
	ExternalID string
	Name       string
}

type SeasonRef struct {
	LeagueID    int64
	Label       string
	ExternalKey string
}

type TeamRef struct {
	ExternalID   string
	Name         string
	ShortName    string
	Abbreviation string
	Country      string
}

type VenueRef struct {
	ExternalID string
	Name       string
	City       string
	Country    string
	Latitude   *float64
	Longitude  *float64
}

type PlayerRef struct {
	ExternalID   string
	FullName     string
	Nationality  string
	PositionText string
	DateOfBirth  *time.Time
}

// EntityResolver maps provider records to local ids with a tiered match:
// external id, exact name (attaching the provider id when the row has
// none), substring name for teams and venues, then creation.
type EntityResolver struct {
	writer *IdempotentWriter
	cache  *ResolutionCache
	policy CreatePolicy
	logger *logging.Logger
}

func NewEntityResolver(writer *IdempotentWriter, resolutionCache *ResolutionCache, policy CreatePolicy, logger *logging.Logger) *EntityResolver {
	if resolutionCache == nil {
		resolutionCache = NewResolutionCache()
	}
	return &EntityResolver{
		writer: writer,
		cache:  resolutionCache,
		policy: policy,
		logger: logging.OrDefault(logger),
	}
}

type probe struct {
	tier     ResolutionTier
	criteria record.Criteria
}

type resolvePlan struct {
	entity     record.Entity
	label      string
	externalID string
	probes     []probe
	fuzzyName  string
	create     *record.Upsert
}

func (r *EntityResolver) ResolveLeague(ctx context.Context, session record.Session, ref LeagueRef) (Resolution, error) {
	return r.resolve(ctx, session, resolvePlan{
		entity:     record.EntityLeague,
		label:      firstNonEmpty(ref.Name, ref.ExternalID),
		externalID: strings.TrimSpace(ref.ExternalID),
		probes:     nameProbes("name", ref.Name),
	})
}

func (r *EntityResolver) ResolveSeason(ctx context.Context, session record.Session, ref SeasonRef) (Resolution, error) {
	label := strings.TrimSpace(ref.Label)
	year, err := season.YearFromLabel(label)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	externalKey := strings.TrimSpace(ref.ExternalKey)
	probes := []probe{
		{tier: TierExactName, criteria: record.Criteria{
			Equal:     record.Fields{"league_id": ref.LeagueID},
			EqualFold: map[string]string{"label": label},
		}},
		{tier: TierExactName, criteria: record.Criteria{
			Equal: record.Fields{"league_id": ref.LeagueID, "year": year},
		}},
	}

	plan := resolvePlan{
		entity: record.EntitySeason,
		label:  fmt.Sprintf("%d/%s", ref.LeagueID, label),
		probes: probes,
	}
	if externalKey != "" {
		// season keys are only unique inside a league
		plan.probes = append([]probe{{tier: TierExternalID, criteria: record.Criteria{
			Equal: record.Fields{"league_id": ref.LeagueID, "external_season_key": externalKey},
		}}}, probes...)
		plan.externalID = externalKey
	}
	if r.policy.Seasons {
		plan.create = &record.Upsert{
			Entity: record.EntitySeason,
			Key:    record.Fields{"league_id": ref.LeagueID, "year": year},
			Fields: record.Fields{"label": label, "external_season_key": nullString(externalKey)},
		}
	}
	return r.resolve(ctx, session, plan)
}

func (r *EntityResolver) ResolveTeam(ctx context.Context, session record.Session, ref TeamRef) (Resolution, error) {
	name := strings.TrimSpace(ref.Name)
	plan := resolvePlan{
		entity:     record.EntityTeam,
		label:      name,
		externalID: strings.TrimSpace(ref.ExternalID),
		probes:     nameProbes("name", name),
		fuzzyName:  name,
	}
	if r.policy.Teams && name != "" {
		plan.create = &record.Upsert{
			Entity: record.EntityTeam,
			Key:    record.Fields{"external_id": nullString(plan.externalID)},
			Fields: record.Fields{
				"name":         name,
				"short_name":   nullString(ref.ShortName),
				"abbreviation": nullString(ref.Abbreviation),
				"country":      nullString(ref.Country),
			},
		}
	}
	return r.resolve(ctx, session, plan)
}

func (r *EntityResolver) ResolveVenue(ctx context.Context, session record.Session, ref VenueRef) (Resolution, error) {
	name := strings.TrimSpace(ref.Name)
	plan := resolvePlan{
		entity:     record.EntityVenue,
		label:      name,
		externalID: strings.TrimSpace(ref.ExternalID),
		fuzzyName:  name,
	}
	if name != "" {
		if city := strings.TrimSpace(ref.City); city != "" {
			plan.probes = append(plan.probes, probe{tier: TierExactName, criteria: record.Criteria{
				EqualFold: map[string]string{"name": name, "city": city},
			}})
		}
		plan.probes = append(plan.probes, nameProbes("name", name)...)
	}
	if r.policy.Venues && name != "" {
		plan.create = &record.Upsert{
			Entity: record.EntityVenue,
			Key:    record.Fields{"external_id": nullString(plan.externalID)},
			Fields: record.Fields{
				"name":      name,
				"city":      nullString(ref.City),
				"country":   nullString(ref.Country),
				"latitude":  nullFloat(ref.Latitude),
				"longitude": nullFloat(ref.Longitude),
			},
		}
	}
	return r.resolve(ctx, session, plan)
}

func (r *EntityResolver) ResolvePlayer(ctx context.Context, session record.Session, ref PlayerRef) (Resolution, error) {
	name := strings.TrimSpace(ref.FullName)
	plan := resolvePlan{
		entity:     record.EntityPlayer,
		label:      name,
		externalID: strings.TrimSpace(ref.ExternalID),
	}
	if name != "" {
		if ref.DateOfBirth != nil {
			plan.probes = append(plan.probes, probe{tier: TierNameAndBirth, criteria: record.Criteria{
				EqualFold: map[string]string{"full_name": name},
				Equal:     record.Fields{"date_of_birth": dateOnly(*ref.DateOfBirth)},
			}})
		}
		plan.probes = append(plan.probes, nameProbes("full_name", name)...)
	}
	if r.policy.Players && name != "" {
		first, last := splitPlayerName(name)
		plan.create = &record.Upsert{
			Entity: record.EntityPlayer,
			Key:    record.Fields{"external_id": nullString(plan.externalID)},
			Fields: record.Fields{
				"full_name":     name,
				"first_name":    nullString(first),
				"last_name":     nullString(last),
				"nationality":   nullString(ref.Nationality),
				"date_of_birth": nullDate(ref.DateOfBirth),
				"position_text": nullString(ref.PositionText),
			},
		}
	}
	return r.resolve(ctx, session, plan)
}

// ResolvePosition maps free position text to a catalog row, creating it
// from the static mapping when allowed.
func (r *EntityResolver) ResolvePosition(ctx context.Context, session record.Session, text string) (Resolution, error) {
	if strings.TrimSpace(text) == "" {
		return Resolution{}, fmt.Errorf("%w: empty position text", ErrMissingDependency)
	}
	mapped, _ := position.FromText(text)

	plan := resolvePlan{
		entity: record.EntityPosition,
		label:  mapped.Code,
		probes: []probe{
			{tier: TierExactName, criteria: record.Criteria{Equal: record.Fields{"code": mapped.Code}}},
			{tier: TierExactName, criteria: record.Criteria{EqualFold: map[string]string{"name": mapped.Name}}},
		},
	}
	if r.policy.Positions {
		plan.create = &record.Upsert{
			Entity: record.EntityPosition,
			Key:    record.Fields{"code": mapped.Code},
			Fields: positionFields(mapped),
		}
	}
	return r.resolve(ctx, session, plan)
}

func (r *EntityResolver) resolve(ctx context.Context, session record.Session, plan resolvePlan) (Resolution, error) {
	key := r.cacheKey(plan)
	if key == "" {
		return r.lookup(ctx, session, plan)
	}

	loaded := false
	value, err := r.cache.store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		loaded = true
		return r.lookup(ctx, session, plan)
	})
	if err != nil {
		return Resolution{}, err
	}
	res, ok := value.(Resolution)
	if !ok {
		return Resolution{}, fmt.Errorf("unexpected cached resolution %T", value)
	}
	if !loaded {
		// side effects happened on the first lookup only
		res.Backfilled = false
		res.Created = false
	}
	return res, nil
}

// cacheKey prefers the provider id. Without one, the normalized name is
// used so later rows in the run reuse the first decision.
func (r *EntityResolver) cacheKey(plan resolvePlan) string {
	if plan.externalID != "" && plan.entity != record.EntitySeason {
		return string(plan.entity) + ":ext:" + plan.externalID
	}
	if plan.label == "" {
		return ""
	}
	return string(plan.entity) + ":name:" + strings.ToLower(plan.label)
}

func (r *EntityResolver) lookup(ctx context.Context, session record.Session, plan resolvePlan) (Resolution, error) {
	desc, err := record.Describe(plan.entity)
	if err != nil {
		return Resolution{}, err
	}

	if plan.externalID != "" && plan.entity != record.EntitySeason && desc.ExternalColumn != "" {
		candidates, err := session.Find(ctx, plan.entity, record.Criteria{
			Equal: record.Fields{desc.ExternalColumn: plan.externalID},
		})
		if err != nil {
			return Resolution{}, fmt.Errorf("find %s by external id: %w", plan.entity, err)
		}
		if len(candidates) > 0 {
			return Resolution{ID: candidates[0].ID, Tier: TierExternalID}, nil
		}
	}

	for _, p := range plan.probes {
		candidates, err := session.Find(ctx, plan.entity, p.criteria)
		if err != nil {
			return Resolution{}, fmt.Errorf("find %s by %s: %w", plan.entity, p.tier, err)
		}
		if p.tier != TierExternalID {
			candidates = withoutOtherProviderIDs(plan, candidates)
		}
		if len(candidates) == 0 {
			continue
		}
		r.logAmbiguous(ctx, plan, p.tier, candidates)

		picked := candidates[0]
		res := Resolution{ID: picked.ID, Tier: p.tier}
		if p.tier == TierExternalID {
			return res, nil
		}
		if plan.externalID != "" && picked.ExternalID == "" && desc.ExternalColumn != "" {
			if err := session.Update(ctx, plan.entity, picked.ID, record.Fields{desc.ExternalColumn: plan.externalID}); err != nil {
				return Resolution{}, fmt.Errorf("backfill %s id=%d: %w", plan.entity, picked.ID, err)
			}
			res.Backfilled = true
			r.logger.InfoContext(ctx, "attached provider id to existing row",
				"entity", string(plan.entity), "id", picked.ID, "external_id", plan.externalID, "tier", string(p.tier))
		}
		return res, nil
	}

	if plan.fuzzyName != "" && len([]rune(naming.Normalize(plan.fuzzyName))) >= minFuzzyLength {
		candidates, err := session.Find(ctx, plan.entity, record.Criteria{
			Contains: map[string]string{desc.NameColumn: plan.fuzzyName},
		})
		if err != nil {
			return Resolution{}, fmt.Errorf("find %s by substring: %w", plan.entity, err)
		}
		candidates = withoutOtherProviderIDs(plan, candidates)
		if len(candidates) > 0 {
			r.logAmbiguous(ctx, plan, TierFuzzyName, candidates)
			return Resolution{ID: candidates[0].ID, Tier: TierFuzzyName}, nil
		}
	}

	if plan.create == nil {
		return Resolution{}, fmt.Errorf("%w: %s %q", ErrMissingDependency, plan.entity, plan.label)
	}

	id, _, err := r.writer.Upsert(ctx, session, *plan.create)
	if err != nil {
		return Resolution{}, fmt.Errorf("create %s %q: %w", plan.entity, plan.label, err)
	}
	return Resolution{ID: id, Tier: TierCreated, Created: true}, nil
}

func (r *EntityResolver) logAmbiguous(ctx context.Context, plan resolvePlan, tier ResolutionTier, candidates []record.Candidate) {
	if len(candidates) < 2 {
		return
	}
	r.logger.DebugContext(ctx, "ambiguous identity resolved by tie-break",
		"entity", string(plan.entity),
		"input", plan.label,
		"tier", string(tier),
		"picked_id", candidates[0].ID,
		"picked_name", candidates[0].Name,
		"candidates", len(candidates),
	)
}

// withoutOtherProviderIDs drops rows already bound to a different provider
// id. Provider ids are unique, so such a row is another entity that merely
// shares the name. Seasons are keyed by (league, year) and keep every row.
func withoutOtherProviderIDs(plan resolvePlan, candidates []record.Candidate) []record.Candidate {
	if plan.externalID == "" || plan.entity == record.EntitySeason {
		return candidates
	}
	kept := make([]record.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ExternalID != "" && c.ExternalID != plan.externalID {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// IsSkippable reports errors that skip one record rather than fail a unit.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrMissingDependency)
}

func nameProbes(column, name string) []probe {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return []probe{{tier: TierExactName, criteria: record.Criteria{
		EqualFold: map[string]string{column: name},
	}}}
}

func positionFields(p position.Position) record.Fields {
	return record.Fields{
		"name":             p.Name,
		"category":         string(p.Category),
		"shirt_number_min": p.ShirtMin,
		"shirt_number_max": p.ShirtMax,
	}
}
