package httpapi

import (
	"net/http"

	"github.com/riskibarqy/club-league/internal/usecase"
)

type registerPlayerRequest struct {
	ID          string   `json:"id" validate:"max=64"`
	Name        string   `json:"name" validate:"required,max=120"`
	Aliases     []string `json:"aliases" validate:"max=20,dive,required,max=120"`
	ClubID      string   `json:"clubId"`
	ExternalRef string   `json:"externalRef" validate:"max=128"`
}

func (h *Handler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterPlayer")
	defer span.End()

	var req registerPlayerRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.playerService.Register(ctx, callerFromContext(ctx), usecase.RegisterPlayerInput{
		ID:          req.ID,
		Name:        req.Name,
		Aliases:     req.Aliases,
		ClubID:      req.ClubID,
		ExternalRef: req.ExternalRef,
	})
	if err != nil {
		h.fail(ctx, w, "register player failed", err, "name", req.Name)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(item))
}
