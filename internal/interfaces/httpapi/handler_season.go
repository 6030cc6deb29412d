package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/domain/standing"
	"github.com/riskibarqy/club-league/internal/usecase"
)

type rankingUpdateRequest struct {
	ClubID   string `json:"clubId" validate:"required"`
	Position int    `json:"position" validate:"min=1"`
	CupStage string `json:"cupStage"`
}

type upsertRankingsRequest struct {
	Rankings []rankingUpdateRequest `json:"rankings" validate:"required,min=1,dive"`
}

func standingScope(r *http.Request) standing.Scope {
	query := r.URL.Query()
	return standing.Scope{
		Season:      strings.TrimSpace(r.PathValue("season")),
		Competition: fixture.Competition(strings.TrimSpace(query.Get("competition"))),
		Group:       strings.TrimSpace(query.Get("group")),
	}
}

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	scope := standingScope(r)
	rows, err := h.standingsService.List(ctx, scope)
	if err != nil {
		h.fail(ctx, w, "list standings failed", err, "season", scope.Season)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(rows))
}

func (h *Handler) RecomputeStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeStandings")
	defer span.End()

	scope := standingScope(r)
	rows, err := h.standingsService.Recompute(ctx, callerFromContext(ctx), scope)
	if err != nil {
		h.fail(ctx, w, "recompute standings failed", err, "season", scope.Season)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(rows))
}

func (h *Handler) ListPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerStats")
	defer span.End()

	season := r.PathValue("season")
	items, err := h.statsService.ListPlayerStats(ctx, season)
	if err != nil {
		h.fail(ctx, w, "list player stats failed", err, "season", season)
		return
	}

	out := make([]playerStatDTO, 0, len(items))
	for _, item := range items {
		out = append(out, playerStatToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetPlayerStat(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerStat")
	defer span.End()

	season := r.PathValue("season")
	playerID := r.PathValue("playerID")
	item, err := h.statsService.GetPlayerStat(ctx, season, playerID)
	if err != nil {
		h.fail(ctx, w, "get player stat failed", err, "season", season, "player_id", playerID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerStatToDTO(item))
}

func (h *Handler) RecomputePlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputePlayerStats")
	defer span.End()

	season := r.PathValue("season")
	result, err := h.statsService.RecomputeSeason(ctx, callerFromContext(ctx), season)
	if err != nil {
		h.fail(ctx, w, "recompute player stats failed", err, "season", season)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ListRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRankings")
	defer span.End()

	season := r.PathValue("season")
	items, err := h.rankingService.List(ctx, season)
	if err != nil {
		h.fail(ctx, w, "list rankings failed", err, "season", season)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rankingsToDTO(items))
}

func (h *Handler) UpsertRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertRankings")
	defer span.End()

	season := r.PathValue("season")
	var req upsertRankingsRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updates := make([]usecase.RankingUpdate, 0, len(req.Rankings))
	for _, item := range req.Rankings {
		updates = append(updates, usecase.RankingUpdate{ClubID: item.ClubID, Position: item.Position, CupStage: item.CupStage})
	}

	items, err := h.rankingService.Upsert(ctx, callerFromContext(ctx), season, updates)
	if err != nil {
		h.fail(ctx, w, "upsert rankings failed", err, "season", season)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rankingsToDTO(items))
}

func (h *Handler) RecomputeRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeRankings")
	defer span.End()

	season := r.PathValue("season")
	items, err := h.rankingService.Recompute(ctx, callerFromContext(ctx), season)
	if err != nil {
		h.fail(ctx, w, "recompute rankings failed", err, "season", season)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rankingsToDTO(items))
}

func (h *Handler) ApplyCupBonuses(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApplyCupBonuses")
	defer span.End()

	season := r.PathValue("season")
	dryRun, err := queryBool(r, "dry_run")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	outcomes, err := h.walletService.ApplyCupBonuses(ctx, callerFromContext(ctx), season, dryRun)
	if err != nil {
		h.fail(ctx, w, "apply cup bonuses failed", err, "season", season, "dry_run", dryRun)
		return
	}

	out := make([]bonusDTO, 0, len(outcomes))
	for _, outcome := range outcomes {
		out = append(out, bonusToDTO(outcome))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) SyncRecentMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncRecentMatches")
	defer span.End()

	season := r.PathValue("season")
	result, err := h.syncService.SyncRecentMatches(ctx, callerFromContext(ctx), season)
	if err != nil {
		h.fail(ctx, w, "sync recent matches failed", err, "season", season)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
