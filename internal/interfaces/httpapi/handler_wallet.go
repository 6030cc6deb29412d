package httpapi

import (
	"net/http"

	"github.com/riskibarqy/club-league/internal/usecase"
)

type cupBonusRequest struct {
	Season string `json:"season"`
	Amount int64  `json:"amount" validate:"min=0"`
}

type adjustWalletRequest struct {
	Delta  int64  `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,max=200"`
}

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWallet")
	defer span.End()

	clubID := r.PathValue("clubID")
	item, err := h.walletService.Get(ctx, callerFromContext(ctx), clubID)
	if err != nil {
		h.fail(ctx, w, "get wallet failed", err, "club_id", clubID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, walletToDTO(item))
}

func (h *Handler) PreviewCollect(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PreviewCollect")
	defer span.End()

	clubID := r.PathValue("clubID")
	preview, err := h.walletService.Preview(ctx, callerFromContext(ctx), clubID)
	if err != nil {
		h.fail(ctx, w, "preview collect failed", err, "club_id", clubID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, collectDTO{
		Wallet:  walletToDTO(preview.Wallet),
		Accrual: accrualToDTO(preview.Accrual),
	})
}

func (h *Handler) CollectWallet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CollectWallet")
	defer span.End()

	clubID := r.PathValue("clubID")
	outcome, err := h.walletService.Collect(ctx, callerFromContext(ctx), clubID)
	if err != nil {
		h.fail(ctx, w, "collect wallet failed", err, "club_id", clubID)
		return
	}

	applied := outcome.Applied
	writeSuccess(ctx, w, http.StatusOK, collectDTO{
		Wallet:  walletToDTO(outcome.Wallet),
		Accrual: accrualToDTO(outcome.Accrual),
		Applied: &applied,
		Reason:  outcome.Reason,
	})
}

func (h *Handler) ApplyCupBonus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApplyCupBonus")
	defer span.End()

	clubID := r.PathValue("clubID")
	dryRun, err := queryBool(r, "dry_run")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req cupBonusRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	outcome, err := h.walletService.ApplyCupBonus(ctx, callerFromContext(ctx), usecase.ApplyCupBonusInput{
		ClubID: clubID,
		Season: req.Season,
		Amount: req.Amount,
		DryRun: dryRun,
	})
	if err != nil {
		h.fail(ctx, w, "apply cup bonus failed", err, "club_id", clubID, "dry_run", dryRun)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, bonusToDTO(outcome))
}

func (h *Handler) AdjustWallet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdjustWallet")
	defer span.End()

	clubID := r.PathValue("clubID")
	var req adjustWalletRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.walletService.Adjust(ctx, callerFromContext(ctx), clubID, req.Delta, req.Reason)
	if err != nil {
		h.fail(ctx, w, "adjust wallet failed", err, "club_id", clubID, "delta", req.Delta)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, walletToDTO(item))
}
