package wallet

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/club-league/internal/domain/ranking"
)

// Day is the accrual period.
const Day = 24 * time.Hour

// DayMillis is Day expressed in milliseconds.
const DayMillis int64 = 86_400_000

var ErrNegativeBalance = errors.New("balance cannot go below zero")

// Wallet is one club's currency account.
type Wallet struct {
	ClubID          string
	Balance         int64
	LastCollectedAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Seed builds a fresh wallet with a one-day backlog so the first collection pays exactly one day.
func Seed(clubID string, balance int64, now time.Time) Wallet {
	now = now.UTC()
	return Wallet{
		ClubID:          strings.TrimSpace(clubID),
		Balance:         balance,
		LastCollectedAt: now.Add(-Day),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Rates is the per-day payout for each tier.
type Rates struct {
	Elite  int64
	Mid    int64
	Bottom int64
}

func (r Rates) PerDay(tier ranking.Tier) int64 {
	switch tier {
	case ranking.TierElite:
		return r.Elite
	case ranking.TierMid:
		return r.Mid
	default:
		return r.Bottom
	}
}

// Accrual is the collectible amount at a point in time.
type Accrual struct {
	Days            int64
	PerDay          int64
	Amount          int64
	Tier            ranking.Tier
	NextCollectedAt time.Time
}

func (a Accrual) Collectible() bool {
	return a.Amount > 0
}

// Preview computes whole elapsed days since the last collection and the resulting payout.
func Preview(w Wallet, tier ranking.Tier, rates Rates, now time.Time) Accrual {
	elapsed := now.UnixMilli() - w.LastCollectedAt.UnixMilli()
	days := elapsed / DayMillis
	if days < 0 {
		days = 0
	}
	perDay := rates.PerDay(tier)
	amount := days * perDay
	if amount < 0 {
		amount = 0
	}
	return Accrual{
		Days:            days,
		PerDay:          perDay,
		Amount:          amount,
		Tier:            tier,
		NextCollectedAt: w.LastCollectedAt.Add(time.Duration(days) * Day),
	}
}

// Collect credits the accrual and advances LastCollectedAt by whole days only.
func (w *Wallet) Collect(a Accrual, now time.Time) bool {
	if !a.Collectible() {
		return false
	}
	w.Balance += a.Amount
	w.LastCollectedAt = a.NextCollectedAt
	w.UpdatedAt = now.UTC()
	return true
}

func (w *Wallet) Credit(amount int64, now time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be greater than zero")
	}
	w.Balance += amount
	w.UpdatedAt = now.UTC()
	return nil
}

// Adjust applies an administrative delta, which is the only path allowed to decrease a balance.
func (w *Wallet) Adjust(delta int64, now time.Time) error {
	if w.Balance+delta < 0 {
		return ErrNegativeBalance
	}
	w.Balance += delta
	w.UpdatedAt = now.UTC()
	return nil
}
