package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerFixtureRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/fixtures", handler.ListFixtures)
	mux.HandleFunc("POST /v1/fixtures", handler.CreateFixture)
	mux.HandleFunc("GET /v1/fixtures/{fixtureID}", handler.GetFixture)
	mux.HandleFunc("POST /v1/fixtures/{fixtureID}/proposals", handler.ProposeKickoff)
	mux.HandleFunc("POST /v1/fixtures/{fixtureID}/votes", handler.VoteKickoff)
	mux.HandleFunc("POST /v1/fixtures/{fixtureID}/unlock", handler.UnlockFixture)
	mux.HandleFunc("PUT /v1/fixtures/{fixtureID}/lineup", handler.SetLineup)
	mux.HandleFunc("POST /v1/fixtures/{fixtureID}/result", handler.SubmitResult)
	mux.HandleFunc("POST /v1/fixtures/{fixtureID}/result/text", handler.SubmitFreeTextResult)
}

func registerSeasonRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/seasons/{season}/standings", handler.ListStandings)
	mux.HandleFunc("POST /v1/seasons/{season}/standings/recompute", handler.RecomputeStandings)
	mux.HandleFunc("GET /v1/seasons/{season}/player-stats", handler.ListPlayerStats)
	mux.HandleFunc("GET /v1/seasons/{season}/player-stats/{playerID}", handler.GetPlayerStat)
	mux.HandleFunc("POST /v1/seasons/{season}/player-stats/recompute", handler.RecomputePlayerStats)
	mux.HandleFunc("GET /v1/seasons/{season}/rankings", handler.ListRankings)
	mux.HandleFunc("PUT /v1/seasons/{season}/rankings", handler.UpsertRankings)
	mux.HandleFunc("POST /v1/seasons/{season}/rankings/recompute", handler.RecomputeRankings)
	mux.HandleFunc("POST /v1/seasons/{season}/cup-bonuses", handler.ApplyCupBonuses)
	mux.HandleFunc("POST /v1/seasons/{season}/sync", handler.SyncRecentMatches)
}

func registerClubRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/clubs/{clubID}/wallet", handler.GetWallet)
	mux.HandleFunc("GET /v1/clubs/{clubID}/wallet/preview", handler.PreviewCollect)
	mux.HandleFunc("POST /v1/clubs/{clubID}/wallet/collect", handler.CollectWallet)
	mux.HandleFunc("POST /v1/clubs/{clubID}/wallet/cup-bonus", handler.ApplyCupBonus)
	mux.HandleFunc("POST /v1/clubs/{clubID}/wallet/adjust", handler.AdjustWallet)
	mux.HandleFunc("POST /v1/players", handler.RegisterPlayer)
}
