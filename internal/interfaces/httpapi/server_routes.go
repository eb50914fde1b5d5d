package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerCatalogRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/seasons", handler.ListSeasonsByLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/teams", handler.ListTeamsByLeague)
}

func registerAnalyticsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}/seasons/{seasonID}/standings", handler.GetStandings)
	mux.HandleFunc("GET /v1/head-to-head", handler.GetHeadToHead)
}
