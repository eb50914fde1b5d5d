package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
	"github.com/riskibarqy/rugby-analytics/internal/usecase"
)

type Handler struct {
	leagueService     *usecase.LeagueService
	standingsService  *usecase.StandingsService
	headToHeadService *usecase.HeadToHeadService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	leagueService *usecase.LeagueService,
	standingsService *usecase.StandingsService,
	headToHeadService *usecase.HeadToHeadService,
	logger *logging.Logger,
) *Handler {
	return &Handler{
		leagueService:     leagueService,
		standingsService:  standingsService,
		headToHeadService: headToHeadService,
		logger:            logging.OrDefault(logger).Named("httpapi"),
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListLeagues")
	defer span.End()

	leagues, err := h.leagueService.ListLeagues(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(l))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListSeasonsByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListSeasonsByLeague")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	seasons, err := h.leagueService.ListSeasons(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list seasons failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]seasonDTO, 0, len(seasons))
	for _, s := range seasons {
		items = append(items, seasonToDTO(s))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTeamsByLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListTeamsByLeague")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	teams, err := h.leagueService.ListTeamsByLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(t))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetStandings")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	seasonID, err := pathID(r, "seasonID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	table, err := h.standingsService.Table(ctx, leagueID, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "get standings failed", "league_id", leagueID, "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsTableToDTO(table))
}

type headToHeadRequest struct {
	TeamA    string `validate:"required,max=120"`
	TeamB    string `validate:"required,max=120"`
	LeagueID int64  `validate:"gte=0"`
	Limit    int    `validate:"gte=0,lte=100"`
}

func (h *Handler) GetHeadToHead(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetHeadToHead")
	defer span.End()

	query := r.URL.Query()
	req := headToHeadRequest{
		TeamA: strings.TrimSpace(query.Get("team_a")),
		TeamB: strings.TrimSpace(query.Get("team_b")),
	}
	var err error
	if req.LeagueID, err = queryInt64(query.Get("league_id"), "league_id"); err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryInt64(query.Get("limit"), "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	req.Limit = int(limit)

	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.headToHeadService.Compare(ctx, usecase.HeadToHeadQuery{
		TeamA:    req.TeamA,
		TeamB:    req.TeamB,
		LeagueID: req.LeagueID,
		Limit:    req.Limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "head to head failed", "team_a", req.TeamA, "team_b", req.TeamB, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, headToHeadToDTO(result))
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return id, nil
}

func queryInt64(raw, name string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}
