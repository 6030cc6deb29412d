package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-league/internal/domain/award"
	"github.com/riskibarqy/club-league/internal/domain/wallet"
	qb "github.com/riskibarqy/club-league/internal/platform/querybuilder"
)

type walletTableModel struct {
	ClubPublicID    string    `db:"club_public_id"`
	Balance         int64     `db:"balance"`
	LastCollectedAt time.Time `db:"last_collected_at"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type awardTableModel struct {
	Season       string    `db:"season"`
	ClubPublicID string    `db:"club_public_id"`
	Amount       int64     `db:"amount"`
	CupStage     string    `db:"cup_stage"`
	PaidAt       time.Time `db:"paid_at"`
}

// WalletRepository writes wallets and the cup award ledger in shared transactions.
type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) Get(ctx context.Context, clubID string) (wallet.Wallet, bool, error) {
	return r.getWallet(ctx, r.db, strings.TrimSpace(clubID), false)
}

func (r *WalletRepository) Ensure(ctx context.Context, seed wallet.Wallet) (wallet.Wallet, error) {
	if err := r.insertSeed(ctx, r.db, seed); err != nil {
		return wallet.Wallet{}, err
	}
	item, exists, err := r.getWallet(ctx, r.db, seed.ClubID, false)
	if err != nil {
		return wallet.Wallet{}, err
	}
	if !exists {
		return wallet.Wallet{}, fmt.Errorf("wallet club=%s missing after seed", seed.ClubID)
	}
	return item, nil
}

func (r *WalletRepository) Update(ctx context.Context, seed wallet.Wallet, fn wallet.Mutator) (wallet.Wallet, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wallet.Wallet{}, fmt.Errorf("begin update wallet tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, err := r.lockSeeded(ctx, tx, seed)
	if err != nil {
		return wallet.Wallet{}, err
	}
	changed, err := fn(&current)
	if err != nil {
		return wallet.Wallet{}, err
	}
	if !changed {
		if err := tx.Commit(); err != nil {
			return wallet.Wallet{}, fmt.Errorf("commit update wallet tx: %w", err)
		}
		return current, nil
	}
	if err := r.writeWallet(ctx, tx, current); err != nil {
		return wallet.Wallet{}, err
	}

	if err := tx.Commit(); err != nil {
		return wallet.Wallet{}, fmt.Errorf("commit update wallet tx: %w", err)
	}
	return current, nil
}

func (r *WalletRepository) ApplyAward(ctx context.Context, seed wallet.Wallet, entry award.Entry) (wallet.Wallet, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wallet.Wallet{}, false, fmt.Errorf("begin apply award tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, err := r.lockSeeded(ctx, tx, seed)
	if err != nil {
		return wallet.Wallet{}, false, err
	}

	model := awardTableModel{
		Season:       entry.Season,
		ClubPublicID: entry.ClubID,
		Amount:       entry.Amount,
		CupStage:     entry.CupStage,
		PaidAt:       entry.PaidAt.UTC(),
	}
	query, args, err := qb.InsertModel("cup_awards", model, "ON CONFLICT (season, club_public_id) DO NOTHING RETURNING season")
	if err != nil {
		return wallet.Wallet{}, false, fmt.Errorf("build insert cup award query: %w", err)
	}
	var inserted []string
	if err := tx.SelectContext(ctx, &inserted, query, args...); err != nil {
		return wallet.Wallet{}, false, fmt.Errorf("insert cup award season=%s club=%s: %w", entry.Season, entry.ClubID, err)
	}
	if len(inserted) == 0 {
		return current, false, nil
	}

	if err := current.Credit(entry.Amount, entry.PaidAt); err != nil {
		return wallet.Wallet{}, false, err
	}
	if err := r.writeWallet(ctx, tx, current); err != nil {
		return wallet.Wallet{}, false, err
	}

	if err := tx.Commit(); err != nil {
		return wallet.Wallet{}, false, fmt.Errorf("commit apply award tx: %w", err)
	}
	return current, true, nil
}

// Awards exposes the ledger half of the store.
func (r *WalletRepository) Awards() *AwardRepository {
	return &AwardRepository{db: r.db}
}

func (r *WalletRepository) lockSeeded(ctx context.Context, tx *sqlx.Tx, seed wallet.Wallet) (wallet.Wallet, error) {
	if err := r.insertSeed(ctx, tx, seed); err != nil {
		return wallet.Wallet{}, err
	}
	current, exists, err := r.getWallet(ctx, tx, seed.ClubID, true)
	if err != nil {
		return wallet.Wallet{}, err
	}
	if !exists {
		return wallet.Wallet{}, fmt.Errorf("wallet club=%s missing after seed", seed.ClubID)
	}
	return current, nil
}

func (r *WalletRepository) insertSeed(ctx context.Context, exec sqlx.ExecerContext, seed wallet.Wallet) error {
	query, args, err := qb.InsertModel("wallets", walletToModel(seed), "ON CONFLICT (club_public_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert wallet query: %w", err)
	}
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert wallet club=%s: %w", seed.ClubID, err)
	}
	return nil
}

func (r *WalletRepository) writeWallet(ctx context.Context, tx *sqlx.Tx, item wallet.Wallet) error {
	query, args, err := qb.Update("wallets").
		Set("balance", item.Balance).
		Set("last_collected_at", item.LastCollectedAt.UTC()).
		Set("updated_at", item.UpdatedAt.UTC()).
		Where(qb.Eq("club_public_id", item.ClubID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update wallet query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update wallet club=%s: %w", item.ClubID, err)
	}
	return nil
}

func (r *WalletRepository) getWallet(ctx context.Context, q sqlx.QueryerContext, clubID string, forUpdate bool) (wallet.Wallet, bool, error) {
	builder := qb.Select("*").From("wallets").
		Where(qb.Eq("club_public_id", clubID)).
		Limit(1)
	if forUpdate {
		builder = builder.ForUpdate()
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return wallet.Wallet{}, false, fmt.Errorf("build select wallet query: %w", err)
	}

	var row walletTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return wallet.Wallet{}, false, nil
		}
		return wallet.Wallet{}, false, fmt.Errorf("select wallet club=%s: %w", clubID, err)
	}
	return wallet.Wallet{
		ClubID:          row.ClubPublicID,
		Balance:         row.Balance,
		LastCollectedAt: row.LastCollectedAt.UTC(),
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}, true, nil
}

func walletToModel(item wallet.Wallet) walletTableModel {
	return walletTableModel{
		ClubPublicID:    item.ClubID,
		Balance:         item.Balance,
		LastCollectedAt: item.LastCollectedAt.UTC(),
		CreatedAt:       item.CreatedAt.UTC(),
		UpdatedAt:       item.UpdatedAt.UTC(),
	}
}

type AwardRepository struct {
	db *sqlx.DB
}

func (r *AwardRepository) Get(ctx context.Context, season, clubID string) (award.Entry, bool, error) {
	query, args, err := qb.Select("*").From("cup_awards").
		Where(
			qb.Eq("season", season),
			qb.Eq("club_public_id", clubID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return award.Entry{}, false, fmt.Errorf("build select cup award query: %w", err)
	}

	var row awardTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return award.Entry{}, false, nil
		}
		return award.Entry{}, false, fmt.Errorf("select cup award season=%s club=%s: %w", season, clubID, err)
	}
	return awardFromRow(row), true, nil
}

func (r *AwardRepository) ListBySeason(ctx context.Context, season string) ([]award.Entry, error) {
	query, args, err := qb.Select("*").From("cup_awards").
		Where(qb.Eq("season", season)).
		OrderBy("club_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select cup awards query: %w", err)
	}

	var rows []awardTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select cup awards season=%s: %w", season, err)
	}

	out := make([]award.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, awardFromRow(row))
	}
	return out, nil
}

func awardFromRow(row awardTableModel) award.Entry {
	return award.Entry{
		Season:   row.Season,
		ClubID:   row.ClubPublicID,
		Amount:   row.Amount,
		CupStage: row.CupStage,
		PaidAt:   row.PaidAt.UTC(),
	}
}
