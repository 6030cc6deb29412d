package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/usecase"
)

type createFixtureRequest struct {
	Season          string `json:"season" validate:"omitempty,max=32"`
	Competition     string `json:"competition" validate:"omitempty,oneof=league cup"`
	Group           string `json:"group" validate:"max=64"`
	Round           string `json:"round" validate:"max=64"`
	HomeClubID      string `json:"homeClubId" validate:"required"`
	AwayClubID      string `json:"awayClubId" validate:"required,nefield=HomeClubID"`
	ExternalMatchID string `json:"externalMatchId" validate:"max=128"`
}

type proposeRequest struct {
	At Timestamp `json:"at"`
}

type voteRequest struct {
	At    Timestamp `json:"at"`
	Agree *bool     `json:"agree" validate:"required"`
	ActAs string    `json:"actAs"`
}

type lineupRequest struct {
	Formation   string            `json:"formation" validate:"required,max=32"`
	Assignments map[string]string `json:"assignments" validate:"dive,keys,required,endkeys"`
}

type statLineRequest struct {
	PlayerID    string     `json:"playerId"`
	DisplayName string     `json:"displayName"`
	Goals       LooseInt   `json:"goals"`
	Assists     LooseInt   `json:"assists"`
	Rating      LooseFloat `json:"rating"`
}

type submitResultRequest struct {
	HomeScore       ScoreInt          `json:"homeScore"`
	AwayScore       ScoreInt          `json:"awayScore"`
	Summary         string            `json:"summary" validate:"max=2000"`
	HomeMOTM        string            `json:"homeMotm"`
	AwayMOTM        string            `json:"awayMotm"`
	Home            []statLineRequest `json:"home"`
	Away            []statLineRequest `json:"away"`
	ExternalMatchID string            `json:"externalMatchId"`
}

type freeTextRequest struct {
	Text string `json:"text" validate:"required,max=20000"`
}

func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtures")
	defer span.End()

	query := r.URL.Query()
	items, err := h.fixtureService.List(ctx, callerFromContext(ctx), fixture.Filter{
		Season:      strings.TrimSpace(query.Get("season")),
		Competition: fixture.Competition(strings.TrimSpace(query.Get("competition"))),
		Group:       strings.TrimSpace(query.Get("group")),
		ClubID:      strings.TrimSpace(query.Get("club")),
		Status:      fixture.Status(strings.TrimSpace(query.Get("status"))),
	})
	if err != nil {
		h.fail(ctx, w, "list fixtures failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixturesToDTO(items))
}

func (h *Handler) GetFixture(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFixture")
	defer span.End()

	fixtureID := r.PathValue("fixtureID")
	item, err := h.fixtureService.Get(ctx, callerFromContext(ctx), fixtureID)
	if err != nil {
		h.fail(ctx, w, "get fixture failed", err, "fixture_id", fixtureID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureToDTO(item))
}

func (h *Handler) CreateFixture(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateFixture")
	defer span.End()

	var req createFixtureRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.fixtureService.Create(ctx, callerFromContext(ctx), usecase.CreateFixtureInput{
		Season:          req.Season,
		Competition:     req.Competition,
		Group:           req.Group,
		Round:           req.Round,
		HomeClubID:      req.HomeClubID,
		AwayClubID:      req.AwayClubID,
		ExternalMatchID: req.ExternalMatchID,
	})
	if err != nil {
		h.fail(ctx, w, "create fixture failed", err, "home_club_id", req.HomeClubID, "away_club_id", req.AwayClubID)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, fixtureToDTO(item))
}

func (h *Handler) ProposeKickoff(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ProposeKickoff")
	defer span.End()

	fixtureID := r.PathValue("fixtureID")
	var req proposeRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.fixtureService.Propose(ctx, callerFromContext(ctx), fixtureID, req.At.Time)
	if err != nil {
		h.fail(ctx, w, "propose kickoff failed", err, "fixture_id", fixtureID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureToDTO(item))
}

func (h *Handler) VoteKickoff(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.VoteKickoff")
	defer span.End()

	fixtureID := r.PathValue("fixtureID")
	var req voteRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	outcome, err := h.fixtureService.Vote(ctx, callerFromContext(ctx), fixtureID, usecase.VoteInput{
		At:    req.At.Time,
		Agree: *req.Agree,
		ActAs: req.ActAs,
	})
	if err != nil {
		h.fail(ctx, w, "vote kickoff failed", err, "fixture_id", fixtureID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, voteDTO{Fixture: fixtureToDTO(outcome.Fixture), Locked: outcome.Locked})
}

func (h *Handler) UnlockFixture(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnlockFixture")
	defer span.End()

	fixtureID := r.PathValue("fixtureID")
	item, err := h.fixtureService.Unlock(ctx, callerFromContext(ctx), fixtureID)
	if err != nil {
		h.fail(ctx, w, "unlock fixture failed", err, "fixture_id", fixtureID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureToDTO(item))
}

func (h *Handler) SetLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetLineup")
	defer span.End()

	fixtureID := r.PathValue("fixtureID")
	var req lineupRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.fixtureService.SetLineup(ctx, callerFromContext(ctx), fixtureID, usecase.SetLineupInput{
		Formation:   req.Formation,
		Assignments: req.Assignments,
	})
	if err != nil {
		h.fail(ctx, w, "set lineup failed", err, "fixture_id", fixtureID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureToDTO(item))
}

func (h *Handler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitResult")
	defer span.End()

	fixtureID := r.PathValue("fixtureID")
	var req submitResultRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.resultService.SubmitResult(ctx, callerFromContext(ctx), fixtureID, usecase.SubmitResultInput{
		HomeScore:       req.HomeScore.Value,
		AwayScore:       req.AwayScore.Value,
		Summary:         req.Summary,
		HomeMOTM:        req.HomeMOTM,
		AwayMOTM:        req.AwayMOTM,
		Home:            statLinesFromRequest(req.Home),
		Away:            statLinesFromRequest(req.Away),
		ExternalMatchID: req.ExternalMatchID,
	})
	if err != nil {
		h.fail(ctx, w, "submit result failed", err, "fixture_id", fixtureID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureToDTO(item))
}

func (h *Handler) SubmitFreeTextResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitFreeTextResult")
	defer span.End()

	fixtureID := r.PathValue("fixtureID")
	var req freeTextRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	outcome, err := h.resultService.SubmitFreeText(ctx, callerFromContext(ctx), fixtureID, req.Text)
	if err != nil {
		h.fail(ctx, w, "submit free text result failed", err, "fixture_id", fixtureID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, freeTextDTO{
		Fixture: fixtureToDTO(outcome.Fixture),
		Empty:   outcome.Empty,
		Applied: outcome.Applied,
	})
}

func statLinesFromRequest(lines []statLineRequest) []usecase.StatLine {
	out := make([]usecase.StatLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, usecase.StatLine{
			PlayerID:    line.PlayerID,
			DisplayName: line.DisplayName,
			Goals:       line.Goals.Ptr(),
			Assists:     line.Assists.Ptr(),
			Rating:      line.Rating.Ptr(),
		})
	}
	return out
}
