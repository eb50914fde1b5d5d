package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/rugby-analytics/internal/domain/alias"
	"github.com/riskibarqy/rugby-analytics/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/rugby-analytics/internal/platform/logging"
	"github.com/riskibarqy/rugby-analytics/internal/usecase"
)

type envelope[T any] struct {
	APIVersion string           `json:"apiVersion"`
	Data       T                `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := memory.NewStore()
	if err := memory.Seed(context.Background(), store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	groups, err := alias.NewGroups(alias.DefaultGroups())
	if err != nil {
		t.Fatalf("alias groups: %v", err)
	}

	leagueRepo := memory.NewLeagueRepository(store)
	seasonRepo := memory.NewSeasonRepository(store)
	teamRepo := memory.NewTeamRepository(store)
	matchRepo := memory.NewMatchRepository(store)
	logger := logging.NewNop()

	handler := NewHandler(
		usecase.NewLeagueService(leagueRepo, seasonRepo, teamRepo),
		usecase.NewStandingsService(leagueRepo, seasonRepo, teamRepo, matchRepo, memory.NewStandingRepository(store), store, logger),
		usecase.NewHeadToHeadService(leagueRepo, matchRepo, usecase.NewAliasService(groups, teamRepo)),
		logger,
	)
	return NewRouter(handler, logger, []string{"*"})
}

func get[T any](t *testing.T, router http.Handler, target string) (int, envelope[T]) {
	t.Helper()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body envelope[T]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal %s: %v (%s)", target, err, rec.Body.String())
	}
	return rec.Code, body
}

func TestHandler_ListLeagues(t *testing.T) {
	t.Parallel()

	code, body := get[[]leagueDTO](t, newTestRouter(t), "/v1/leagues")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(body.Data) != 1 || body.Data[0].ExternalID != "4446" || body.Data[0].ShortName != "URC" {
		t.Fatalf("unexpected leagues: %+v", body.Data)
	}
}

func TestHandler_GetStandings(t *testing.T) {
	t.Parallel()

	code, body := get[standingsTableDTO](t, newTestRouter(t), "/v1/leagues/1/seasons/1/standings")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Data.Source != usecase.StandingsSourceLive {
		t.Fatalf("expected live table, got %q", body.Data.Source)
	}

	want := []struct {
		name   string
		points int
	}{
		{"Vodacom Bulls", 9},
		{"Leinster", 5},
		{"DHL Stormers", 4},
	}
	if len(body.Data.Rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(body.Data.Rows))
	}
	for i, w := range want {
		row := body.Data.Rows[i]
		if row.Position != i+1 || row.TeamName != w.name || row.CompetitionPoints != w.points {
			t.Fatalf("row %d: got %+v, want %s with %d points", i, row, w.name, w.points)
		}
	}
}

func TestHandler_GetStandingsErrors(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	cases := []struct {
		target string
		code   int
		status string
	}{
		{"/v1/leagues/abc/seasons/1/standings", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"/v1/leagues/1/seasons/0/standings", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"/v1/leagues/9/seasons/1/standings", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		code, body := get[any](t, router, tc.target)
		if code != tc.code || body.Error == nil || body.Error.Status != tc.status {
			t.Fatalf("%s: got %d %+v", tc.target, code, body.Error)
		}
	}
}

func TestHandler_GetHeadToHead(t *testing.T) {
	t.Parallel()

	code, body := get[headToHeadDTO](t, newTestRouter(t), "/v1/head-to-head?team_a=Stormers&team_b=Bulls&league_id=1")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	got := body.Data
	if got.League == nil || got.League.ID != 1 {
		t.Fatalf("expected league scope, got %+v", got.League)
	}
	if got.TeamA.Name != "DHL Stormers" || got.TeamB.Name != "Vodacom Bulls" {
		t.Fatalf("unexpected sides: %+v / %+v", got.TeamA, got.TeamB)
	}
	if got.Total != 1 || got.WinsA != 1 || got.WinRateA != 100 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.Streak == nil || got.Streak.Side != "A" || got.Streak.Length != 1 {
		t.Fatalf("unexpected streak: %+v", got.Streak)
	}
	if len(got.Recent) != 1 || got.Recent[0].Venue != "DHL Stadium" {
		t.Fatalf("unexpected recent: %+v", got.Recent)
	}
	if len(got.Upcoming) != 1 {
		t.Fatalf("expected one upcoming fixture, got %d", len(got.Upcoming))
	}
}

func TestHandler_GetHeadToHeadValidation(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	targets := []string{
		"/v1/head-to-head?team_a=Stormers",
		"/v1/head-to-head?team_a=Stormers&team_b=Bulls&limit=500",
		"/v1/head-to-head?team_a=Stormers&team_b=Bulls&league_id=x",
		"/v1/head-to-head?team_a=Stormers&team_b=Bulls&league_id=-2",
	}
	for _, target := range targets {
		code, body := get[any](t, router, target)
		if code != http.StatusBadRequest || body.Error == nil || body.Error.Status != "INVALID_ARGUMENT" {
			t.Fatalf("%s: expected 400, got %d %+v", target, code, body.Error)
		}
	}
}

func TestHandler_Healthz(t *testing.T) {
	t.Parallel()

	code, body := get[map[string]string](t, newTestRouter(t), "/healthz")
	if code != http.StatusOK || body.Data["status"] != "ok" {
		t.Fatalf("unexpected health response: %d %+v", code, body.Data)
	}
}
