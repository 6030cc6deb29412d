package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/club-league/internal/platform/logging"
	"github.com/riskibarqy/club-league/internal/usecase"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	fixtureService   *usecase.FixtureService
	resultService    *usecase.ResultService
	standingsService *usecase.StandingsService
	statsService     *usecase.StatsService
	rankingService   *usecase.RankingService
	walletService    *usecase.WalletService
	syncService      *usecase.MatchSyncService
	playerService    *usecase.PlayerService
	logger           *logging.Logger
	validator        *validator.Validate
}

type Services struct {
	Fixtures  *usecase.FixtureService
	Results   *usecase.ResultService
	Standings *usecase.StandingsService
	Stats     *usecase.StatsService
	Rankings  *usecase.RankingService
	Wallets   *usecase.WalletService
	Sync      *usecase.MatchSyncService
	Players   *usecase.PlayerService
}

func NewHandler(services Services, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		fixtureService:   services.Fixtures,
		resultService:    services.Results,
		standingsService: services.Standings,
		statsService:     services.Stats,
		rankingService:   services.Rankings,
		walletService:    services.Wallets,
		syncService:      services.Sync,
		playerService:    services.Players,
		logger:           logger.Named("httpapi"),
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody reads a JSON request body. An empty body leaves dst untouched.
func (h *Handler) decodeBody(r *http.Request, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", usecase.ErrInvalidInput, err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil
	}
	if err := sonic.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) decodeAndValidate(ctx context.Context, r *http.Request, dst any) error {
	if err := h.decodeBody(r, dst); err != nil {
		return err
	}
	return h.validateRequest(ctx, dst)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// fail logs a rejected mutating request and renders the error envelope.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, kv ...any) {
	if mapError(ctx, err).HTTPStatus >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, append(kv, "error", err)...)
	} else {
		h.logger.WarnContext(ctx, msg, append(kv, "error", err)...)
	}
	writeError(ctx, w, err)
}

func queryBool(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", usecase.ErrInvalidInput, key)
	}
	return v, nil
}
