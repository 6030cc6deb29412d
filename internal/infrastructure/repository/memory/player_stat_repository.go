package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/club-league/internal/domain/playerstat"
)

type PlayerStatRepository struct {
	mu sync.RWMutex
	// contributions is season -> fixture id -> rows.
	contributions map[string]map[string][]playerstat.Contribution
	stats         map[string]map[string]playerstat.Stat
}

func NewPlayerStatRepository() *PlayerStatRepository {
	return &PlayerStatRepository{
		contributions: make(map[string]map[string][]playerstat.Contribution),
		stats:         make(map[string]map[string]playerstat.Stat),
	}
}

func (r *PlayerStatRepository) ReplaceFixtureContributions(
	_ context.Context,
	season, fixtureID string,
	rows []playerstat.Contribution,
) ([]playerstat.Contribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bySeason, ok := r.contributions[season]
	if !ok {
		bySeason = make(map[string][]playerstat.Contribution)
		r.contributions[season] = bySeason
	}
	previous := bySeason[fixtureID]
	if len(rows) == 0 {
		delete(bySeason, fixtureID)
	} else {
		bySeason[fixtureID] = append([]playerstat.Contribution(nil), rows...)
	}
	return previous, nil
}

func (r *PlayerStatRepository) ListContributionsByPlayer(_ context.Context, season, playerID string) ([]playerstat.Contribution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playerstat.Contribution, 0)
	for _, rows := range r.contributions[season] {
		for _, row := range rows {
			if row.PlayerID == playerID {
				out = append(out, row)
			}
		}
	}
	playerstat.SortHistory(out)
	return out, nil
}

func (r *PlayerStatRepository) ListContributionsBySeason(_ context.Context, season string) ([]playerstat.Contribution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playerstat.Contribution, 0)
	for _, rows := range r.contributions[season] {
		out = append(out, rows...)
	}
	playerstat.SortHistory(out)
	return out, nil
}

func (r *PlayerStatRepository) UpsertStats(_ context.Context, items []playerstat.Stat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		bySeason, ok := r.stats[item.Season]
		if !ok {
			bySeason = make(map[string]playerstat.Stat)
			r.stats[item.Season] = bySeason
		}
		bySeason[item.PlayerID] = item
	}
	return nil
}

func (r *PlayerStatRepository) GetStat(_ context.Context, season, playerID string) (playerstat.Stat, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.stats[season][playerID]
	return item, ok, nil
}

func (r *PlayerStatRepository) ListStats(_ context.Context, season string) ([]playerstat.Stat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playerstat.Stat, 0, len(r.stats[season]))
	for _, item := range r.stats[season] {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}
