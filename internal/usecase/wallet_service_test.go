package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/club-league/internal/domain/ranking"
	"github.com/riskibarqy/club-league/internal/domain/wallet"
	"github.com/riskibarqy/club-league/internal/infrastructure/repository/memory"
)

func TestWalletService_Get_SeedsWalletOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)

	first, err := env.wallets.Get(ctx, testHome, memory.ClubIDNorthHarbour)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if first.Balance != 500 || !first.LastCollectedAt.Equal(env.clock.Now().Add(-wallet.Day)) {
		t.Fatalf("unexpected seeded wallet: %+v", first)
	}

	env.clock.Advance(3 * time.Hour)
	second, err := env.wallets.Get(ctx, testAdmin, memory.ClubIDNorthHarbour)
	if err != nil {
		t.Fatalf("get wallet again: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) || !second.LastCollectedAt.Equal(first.LastCollectedAt) {
		t.Fatalf("existing wallet must not be reseeded: first=%+v second=%+v", first, second)
	}
}

func TestWalletService_Collect_PaysWholeDaysAndKeepsRemainder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)
	created, err := env.wallets.Get(ctx, testHome, memory.ClubIDNorthHarbour)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}

	env.clock.Advance(2*24*time.Hour + 5*time.Hour)
	out, err := env.wallets.Collect(ctx, testHome, memory.ClubIDNorthHarbour)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if !out.Applied || out.Accrual.Days != 3 || out.Accrual.Amount != 300 || out.Accrual.Tier != ranking.TierBottom {
		t.Fatalf("unexpected accrual: %+v", out.Accrual)
	}
	if out.Wallet.Balance != 800 {
		t.Fatalf("unexpected balance: %d", out.Wallet.Balance)
	}
	wantLast := created.LastCollectedAt.Add(3 * wallet.Day)
	if !out.Wallet.LastCollectedAt.Equal(wantLast) {
		t.Fatalf("last collected should advance by whole days: got=%s want=%s", out.Wallet.LastCollectedAt, wantLast)
	}

	again, err := env.wallets.Collect(ctx, testHome, memory.ClubIDNorthHarbour)
	if err != nil {
		t.Fatalf("second collect: %v", err)
	}
	if again.Applied || again.Accrual.Amount != 0 || again.Wallet.Balance != 800 || again.Reason == "" {
		t.Fatalf("second collect should pay nothing: %+v", again)
	}

	env.clock.Advance(19 * time.Hour)
	preview, err := env.wallets.Preview(ctx, testHome, memory.ClubIDNorthHarbour)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.Accrual.Days != 1 || preview.Accrual.Amount != 100 {
		t.Fatalf("the partial day should count once it completes: %+v", preview.Accrual)
	}
}

func TestWalletService_Collect_UsesTierRate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)
	if _, err := env.rankings.Upsert(ctx, testAdmin, testSeason, []RankingUpdate{
		{ClubID: memory.ClubIDNorthHarbour, Position: 1},
		{ClubID: memory.ClubIDRedLions, Position: 2},
	}); err != nil {
		t.Fatalf("upsert rankings: %v", err)
	}

	elite, err := env.wallets.Collect(ctx, testHome, memory.ClubIDNorthHarbour)
	if err != nil {
		t.Fatalf("collect elite: %v", err)
	}
	mid, err := env.wallets.Collect(ctx, testAway, memory.ClubIDRedLions)
	if err != nil {
		t.Fatalf("collect mid: %v", err)
	}
	if elite.Accrual.Amount != 300 || elite.Wallet.Balance != 800 {
		t.Fatalf("unexpected elite collection: %+v", elite)
	}
	if mid.Accrual.Amount != 200 || mid.Wallet.Balance != 700 {
		t.Fatalf("unexpected mid collection: %+v", mid)
	}
}

func TestWalletService_Collect_ConcurrentCallsPayOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := env.wallets.Collect(ctx, testAway, memory.ClubIDRedLions)
			if err != nil {
				t.Errorf("collect: %v", err)
				return
			}
			if out.Applied {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if applied != 1 {
		t.Fatalf("expected exactly one paying collection, got %d", applied)
	}
	item, _, _ := env.walletRepo.Get(ctx, memory.ClubIDRedLions)
	if item.Balance != 600 {
		t.Fatalf("unexpected balance after concurrent collections: %d", item.Balance)
	}
}

func TestWalletService_Authorization(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)

	if _, err := env.wallets.Collect(ctx, testHome, memory.ClubIDRedLions); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another club, got %v", err)
	}
	if _, err := env.wallets.Get(ctx, testAnonymous, memory.ClubIDRedLions); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := env.wallets.Get(ctx, testAdmin, "club-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, exists, _ := env.walletRepo.Get(ctx, memory.ClubIDRedLions); exists {
		t.Fatalf("rejected calls must not create a wallet")
	}
}

func TestWalletService_ApplyCupBonus_PaysOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)
	if _, err := env.rankings.Upsert(ctx, testAdmin, testSeason, []RankingUpdate{
		{ClubID: memory.ClubIDRedLions, Position: 2, CupStage: "final"},
	}); err != nil {
		t.Fatalf("upsert rankings: %v", err)
	}

	dry, err := env.wallets.ApplyCupBonus(ctx, testAdmin, ApplyCupBonusInput{ClubID: memory.ClubIDRedLions, DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if dry.Applied || !dry.DryRun || dry.Amount != 1000 || dry.Wallet.Balance != 500 {
		t.Fatalf("unexpected dry run outcome: %+v", dry)
	}
	if _, exists, _ := env.walletRepo.Get(ctx, memory.ClubIDRedLions); exists {
		t.Fatalf("dry run must not create a wallet")
	}

	paid, err := env.wallets.ApplyCupBonus(ctx, testAdmin, ApplyCupBonusInput{ClubID: memory.ClubIDRedLions})
	if err != nil {
		t.Fatalf("apply bonus: %v", err)
	}
	if !paid.Applied || paid.AlreadyPaid || paid.Wallet.Balance != 1500 || paid.CupStage != ranking.CupFinal {
		t.Fatalf("unexpected bonus outcome: %+v", paid)
	}

	again, err := env.wallets.ApplyCupBonus(ctx, testAdmin, ApplyCupBonusInput{ClubID: memory.ClubIDRedLions, Amount: 5000})
	if err != nil {
		t.Fatalf("apply bonus again: %v", err)
	}
	if again.Applied || !again.AlreadyPaid || again.Amount != 1000 || again.Wallet.Balance != 1500 {
		t.Fatalf("bonus must be paid at most once: %+v", again)
	}

	if _, err := env.wallets.ApplyCupBonus(ctx, testAdmin, ApplyCupBonusInput{ClubID: memory.ClubIDBlueSharks}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a club without cup progress, got %v", err)
	}
	if _, err := env.wallets.ApplyCupBonus(ctx, testAway, ApplyCupBonusInput{ClubID: memory.ClubIDRedLions}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestWalletService_ApplyCupBonuses_PaysEveryStage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)
	if _, err := env.rankings.Upsert(ctx, testAdmin, testSeason, []RankingUpdate{
		{ClubID: memory.ClubIDNorthHarbour, Position: 1, CupStage: "winner"},
		{ClubID: memory.ClubIDRedLions, Position: 2, CupStage: "group"},
		{ClubID: memory.ClubIDBlueSharks, Position: 3},
	}); err != nil {
		t.Fatalf("upsert rankings: %v", err)
	}

	preview, err := env.wallets.ApplyCupBonuses(ctx, testAdmin, testSeason, true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if len(preview) != 2 {
		t.Fatalf("clubs without cup progress should be skipped, got %+v", preview)
	}
	awards, _ := env.walletRepo.Awards().ListBySeason(ctx, testSeason)
	if len(awards) != 0 {
		t.Fatalf("dry run must not record awards: %+v", awards)
	}

	out, err := env.wallets.ApplyCupBonuses(ctx, testAdmin, testSeason, false)
	if err != nil {
		t.Fatalf("apply bonuses: %v", err)
	}
	if out[0].ClubID != memory.ClubIDNorthHarbour || out[0].Amount != 1500 || !out[0].Applied {
		t.Fatalf("unexpected winner bonus: %+v", out[0])
	}
	if out[1].ClubID != memory.ClubIDRedLions || out[1].Amount != 100 || !out[1].Applied {
		t.Fatalf("unexpected group bonus: %+v", out[1])
	}

	rerun, err := env.wallets.ApplyCupBonuses(ctx, testAdmin, testSeason, false)
	if err != nil {
		t.Fatalf("rerun bonuses: %v", err)
	}
	for _, item := range rerun {
		if item.Applied || !item.AlreadyPaid {
			t.Fatalf("rerun must not pay again: %+v", item)
		}
	}
}

func TestWalletService_Adjust_NeverGoesNegative(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)

	if _, err := env.wallets.Adjust(ctx, testAdmin, memory.ClubIDGreenValley, -600, "penalty"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	item, err := env.wallets.Adjust(ctx, testAdmin, memory.ClubIDGreenValley, -200, "penalty")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if item.Balance != 300 {
		t.Fatalf("unexpected balance: %d", item.Balance)
	}
	if _, err := env.wallets.Adjust(ctx, testAdmin, memory.ClubIDGreenValley, 0, "noop"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero delta, got %v", err)
	}
	if _, err := env.wallets.Adjust(ctx, testAdmin, memory.ClubIDGreenValley, 10, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing reason, got %v", err)
	}
	if _, err := env.wallets.Adjust(ctx, testHome, memory.ClubIDNorthHarbour, 10, "gift"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
