package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/club-league/internal/domain/award"
	"github.com/riskibarqy/club-league/internal/domain/wallet"
	"github.com/riskibarqy/club-league/internal/platform/resilience"
)

// WalletRepository keeps wallets and the cup award ledger together so a bonus
// and its ledger entry are written in one step.
type WalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]wallet.Wallet
	awards  map[string]award.Entry
	locks   *resilience.KeyedMutex
}

func NewWalletRepository() *WalletRepository {
	return &WalletRepository{
		wallets: make(map[string]wallet.Wallet),
		awards:  make(map[string]award.Entry),
		locks:   resilience.NewKeyedMutex(),
	}
}

func (r *WalletRepository) Get(_ context.Context, clubID string) (wallet.Wallet, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.wallets[clubID]
	return item, ok, nil
}

func (r *WalletRepository) Ensure(_ context.Context, seed wallet.Wallet) (wallet.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item, ok := r.wallets[seed.ClubID]; ok {
		return item, nil
	}
	r.wallets[seed.ClubID] = seed
	return seed, nil
}

// Update serializes writers per club. The wallet is created from seed when missing.
func (r *WalletRepository) Update(ctx context.Context, seed wallet.Wallet, fn wallet.Mutator) (wallet.Wallet, error) {
	unlock := r.locks.Lock(seed.ClubID)
	defer unlock()

	current, err := r.Ensure(ctx, seed)
	if err != nil {
		return wallet.Wallet{}, err
	}
	changed, err := fn(&current)
	if err != nil {
		return wallet.Wallet{}, err
	}
	if !changed {
		return current, nil
	}

	r.mu.Lock()
	r.wallets[current.ClubID] = current
	r.mu.Unlock()
	return current, nil
}

func (r *WalletRepository) ApplyAward(ctx context.Context, seed wallet.Wallet, entry award.Entry) (wallet.Wallet, bool, error) {
	unlock := r.locks.Lock(seed.ClubID)
	defer unlock()

	current, err := r.Ensure(ctx, seed)
	if err != nil {
		return wallet.Wallet{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := award.Key(entry.Season, entry.ClubID)
	if _, paid := r.awards[key]; paid {
		return current, false, nil
	}
	if err := current.Credit(entry.Amount, entry.PaidAt); err != nil {
		return wallet.Wallet{}, false, err
	}
	r.awards[key] = entry
	r.wallets[current.ClubID] = current
	return current, true, nil
}

// Awards exposes the ledger half of the store.
func (r *WalletRepository) Awards() *AwardRepository {
	return &AwardRepository{store: r}
}

type AwardRepository struct {
	store *WalletRepository
}

func (r *AwardRepository) Get(_ context.Context, season, clubID string) (award.Entry, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.awards[award.Key(season, clubID)]
	return item, ok, nil
}

func (r *AwardRepository) ListBySeason(_ context.Context, season string) ([]award.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]award.Entry, 0)
	for _, item := range r.store.awards {
		if item.Season == season {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClubID < out[j].ClubID })
	return out, nil
}
