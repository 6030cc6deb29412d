package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/club-league/internal/domain/award"
	"github.com/riskibarqy/club-league/internal/domain/club"
	"github.com/riskibarqy/club-league/internal/domain/identity"
	"github.com/riskibarqy/club-league/internal/domain/ranking"
	"github.com/riskibarqy/club-league/internal/domain/wallet"
	"github.com/riskibarqy/club-league/internal/platform/logging"
)

type WalletConfig struct {
	Season      string
	SeedBalance int64
	Rates       wallet.Rates
	Bonuses     award.BonusTable
}

type CollectPreview struct {
	Wallet  wallet.Wallet
	Accrual wallet.Accrual
}

// CollectOutcome is returned for every collection. Applied is false when nothing had accrued.
type CollectOutcome struct {
	Wallet  wallet.Wallet
	Accrual wallet.Accrual
	Applied bool
	Reason  string
}

// BonusOutcome describes one cup bonus decision. Already paid and dry-run outcomes never touch balances.
type BonusOutcome struct {
	Season      string
	ClubID      string
	CupStage    ranking.CupStage
	Amount      int64
	Applied     bool
	AlreadyPaid bool
	DryRun      bool
	Wallet      wallet.Wallet
}

type ApplyCupBonusInput struct {
	ClubID string
	Season string
	// Amount overrides the stage table when positive.
	Amount int64
	DryRun bool
}

type WalletService struct {
	walletRepo wallet.Repository
	awardRepo  award.Repository
	clubRepo   club.Repository
	rankings   *RankingService
	cfg        WalletConfig
	clock      clockwork.Clock
	logger     *logging.Logger
}

func NewWalletService(
	walletRepo wallet.Repository,
	awardRepo award.Repository,
	clubRepo club.Repository,
	rankings *RankingService,
	cfg WalletConfig,
	clock clockwork.Clock,
	logger *logging.Logger,
) *WalletService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Bonuses == nil {
		cfg.Bonuses = award.DefaultBonusTable()
	}
	return &WalletService{
		walletRepo: walletRepo,
		awardRepo:  awardRepo,
		clubRepo:   clubRepo,
		rankings:   rankings,
		cfg:        cfg,
		clock:      clock,
		logger:     logger,
	}
}

// Get returns the club's wallet, creating it with a one-day backlog on first access.
func (s *WalletService) Get(ctx context.Context, caller identity.Caller, clubID string) (wallet.Wallet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WalletService.Get")
	defer span.End()

	clubID, err := s.authorize(ctx, caller, clubID)
	if err != nil {
		return wallet.Wallet{}, err
	}
	item, err := s.walletRepo.Ensure(ctx, s.seed(clubID))
	if err != nil {
		return wallet.Wallet{}, fmt.Errorf("ensure wallet: %w", err)
	}
	return item, nil
}

func (s *WalletService) Preview(ctx context.Context, caller identity.Caller, clubID string) (CollectPreview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WalletService.Preview")
	defer span.End()

	item, err := s.Get(ctx, caller, clubID)
	if err != nil {
		return CollectPreview{}, err
	}
	tier, _, err := s.rankings.TierOf(ctx, s.cfg.Season, item.ClubID)
	if err != nil {
		return CollectPreview{}, err
	}
	return CollectPreview{
		Wallet:  item,
		Accrual: wallet.Preview(item, tier, s.cfg.Rates, s.clock.Now()),
	}, nil
}

// Collect credits whole accrued days. The read-modify-write runs under the club's wallet lock,
// so concurrent calls pay each day at most once.
func (s *WalletService) Collect(ctx context.Context, caller identity.Caller, clubID string) (CollectOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WalletService.Collect")
	defer span.End()

	clubID, err := s.authorize(ctx, caller, clubID)
	if err != nil {
		return CollectOutcome{}, err
	}
	tier, _, err := s.rankings.TierOf(ctx, s.cfg.Season, clubID)
	if err != nil {
		return CollectOutcome{}, err
	}

	var accrual wallet.Accrual
	item, err := s.walletRepo.Update(ctx, s.seed(clubID), func(current *wallet.Wallet) (bool, error) {
		now := s.clock.Now()
		accrual = wallet.Preview(*current, tier, s.cfg.Rates, now)
		return current.Collect(accrual, now), nil
	})
	if err != nil {
		return CollectOutcome{}, fmt.Errorf("collect wallet: %w", err)
	}

	outcome := CollectOutcome{Wallet: item, Accrual: accrual, Applied: accrual.Collectible()}
	if !outcome.Applied {
		outcome.Reason = "nothing to collect yet"
		return outcome, nil
	}
	s.logger.InfoContext(ctx, "wallet collected",
		"club_id", clubID,
		"days", accrual.Days,
		"amount", accrual.Amount,
		"tier", string(accrual.Tier),
	)
	return outcome, nil
}

// ApplyCupBonus pays the season cup bonus for one club at most once.
func (s *WalletService) ApplyCupBonus(ctx context.Context, caller identity.Caller, input ApplyCupBonusInput) (BonusOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WalletService.ApplyCupBonus")
	defer span.End()

	if err := requireAdmin(caller); err != nil {
		return BonusOutcome{}, err
	}
	season := firstNonEmpty(input.Season, s.cfg.Season)
	if season == "" {
		return BonusOutcome{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if input.Amount < 0 {
		return BonusOutcome{}, fmt.Errorf("%w: bonus amount must not be negative", ErrInvalidInput)
	}
	clubID, err := s.requireClubExists(ctx, input.ClubID)
	if err != nil {
		return BonusOutcome{}, err
	}

	_, stage, err := s.rankings.TierOf(ctx, season, clubID)
	if err != nil {
		return BonusOutcome{}, err
	}
	amount := input.Amount
	if amount == 0 {
		amount = s.cfg.Bonuses.For(stage)
	}
	return s.payBonus(ctx, season, clubID, stage, amount, input.DryRun)
}

// ApplyCupBonuses pays every ranked club of the season the bonus for its cup stage.
func (s *WalletService) ApplyCupBonuses(ctx context.Context, caller identity.Caller, season string, dryRun bool) ([]BonusOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WalletService.ApplyCupBonuses")
	defer span.End()

	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	season = firstNonEmpty(season, s.cfg.Season)
	if season == "" {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	items, err := s.rankings.List(ctx, season)
	if err != nil {
		return nil, err
	}

	out := make([]BonusOutcome, 0, len(items))
	for _, item := range items {
		amount := s.cfg.Bonuses.For(item.CupStage)
		if amount <= 0 {
			continue
		}
		outcome, err := s.payBonus(ctx, season, item.ClubID, item.CupStage, amount, dryRun)
		if err != nil {
			return nil, err
		}
		out = append(out, outcome)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ClubID < out[j].ClubID })
	return out, nil
}

// Adjust is the administrative correction path and the only one that may lower a balance.
func (s *WalletService) Adjust(ctx context.Context, caller identity.Caller, clubID string, delta int64, reason string) (wallet.Wallet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WalletService.Adjust")
	defer span.End()

	if err := requireAdmin(caller); err != nil {
		return wallet.Wallet{}, err
	}
	reason = strings.TrimSpace(reason)
	if delta == 0 {
		return wallet.Wallet{}, fmt.Errorf("%w: delta must not be zero", ErrInvalidInput)
	}
	if reason == "" {
		return wallet.Wallet{}, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	clubID, err := s.requireClubExists(ctx, clubID)
	if err != nil {
		return wallet.Wallet{}, err
	}

	item, err := s.walletRepo.Update(ctx, s.seed(clubID), func(current *wallet.Wallet) (bool, error) {
		if err := current.Adjust(delta, s.clock.Now()); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		if errors.Is(err, wallet.ErrNegativeBalance) {
			return wallet.Wallet{}, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return wallet.Wallet{}, fmt.Errorf("adjust wallet: %w", err)
	}
	s.logger.InfoContext(ctx, "wallet adjusted", "club_id", clubID, "delta", delta, "reason", reason, "actor", caller.Subject)
	return item, nil
}

func (s *WalletService) payBonus(
	ctx context.Context,
	season, clubID string,
	stage ranking.CupStage,
	amount int64,
	dryRun bool,
) (BonusOutcome, error) {
	outcome := BonusOutcome{
		Season:   season,
		ClubID:   clubID,
		CupStage: stage,
		Amount:   amount,
		DryRun:   dryRun,
	}

	paid, alreadyPaid, err := s.awardRepo.Get(ctx, season, clubID)
	if err != nil {
		return BonusOutcome{}, fmt.Errorf("get award: %w", err)
	}
	if alreadyPaid {
		outcome.AlreadyPaid = true
		outcome.Amount = paid.Amount
	}

	if dryRun || alreadyPaid {
		current, exists, err := s.walletRepo.Get(ctx, clubID)
		if err != nil {
			return BonusOutcome{}, fmt.Errorf("get wallet: %w", err)
		}
		if !exists {
			current = s.seed(clubID)
		}
		outcome.Wallet = current
		return outcome, nil
	}
	if amount <= 0 {
		return BonusOutcome{}, fmt.Errorf("%w: no cup bonus for stage %s", ErrInvalidInput, stage)
	}

	item, applied, err := s.walletRepo.ApplyAward(ctx, s.seed(clubID), award.Entry{
		Season:   season,
		ClubID:   clubID,
		Amount:   amount,
		CupStage: string(stage),
		PaidAt:   s.clock.Now().UTC(),
	})
	if err != nil {
		return BonusOutcome{}, fmt.Errorf("apply cup bonus: %w", err)
	}
	outcome.Wallet = item
	outcome.Applied = applied
	outcome.AlreadyPaid = !applied
	if applied {
		s.logger.InfoContext(ctx, "cup bonus paid", "club_id", clubID, "season", season, "amount", amount)
	}
	return outcome, nil
}

func (s *WalletService) authorize(ctx context.Context, caller identity.Caller, clubID string) (string, error) {
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return "", fmt.Errorf("%w: club id is required", ErrInvalidInput)
	}
	if err := requireClub(caller, clubID); err != nil {
		return "", err
	}
	return s.requireClubExists(ctx, clubID)
}

func (s *WalletService) requireClubExists(ctx context.Context, clubID string) (string, error) {
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return "", fmt.Errorf("%w: club id is required", ErrInvalidInput)
	}
	_, exists, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		return "", fmt.Errorf("get club: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("%w: club=%s", ErrNotFound, clubID)
	}
	return clubID, nil
}

func (s *WalletService) seed(clubID string) wallet.Wallet {
	return wallet.Seed(clubID, s.cfg.SeedBalance, s.clock.Now())
}
