package wallet

import (
	"context"

	"github.com/riskibarqy/club-league/internal/domain/award"
)

// Mutator changes a wallet under the club's write lock. Returning false skips the write.
type Mutator func(item *Wallet) (bool, error)

// Repository persists wallets. Update and ApplyAward serialize writers per club id.
type Repository interface {
	Get(ctx context.Context, clubID string) (Wallet, bool, error)
	Ensure(ctx context.Context, seed Wallet) (Wallet, error)
	Update(ctx context.Context, seed Wallet, fn Mutator) (Wallet, error)
	// ApplyAward records entry in the award ledger and credits the wallet in one step.
	// It reports false without touching the balance when the (season, club) pair was already paid.
	ApplyAward(ctx context.Context, seed Wallet, entry award.Entry) (Wallet, bool, error)
}
