package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/club-league/internal/domain/ranking"
)

type RankingRepository struct {
	mu       sync.RWMutex
	bySeason map[string]map[string]ranking.Ranking
}

func NewRankingRepository(items []ranking.Ranking) *RankingRepository {
	r := &RankingRepository{bySeason: make(map[string]map[string]ranking.Ranking)}
	_ = r.UpsertMany(context.Background(), items)
	return r
}

func (r *RankingRepository) UpsertMany(_ context.Context, items []ranking.Ranking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		season, ok := r.bySeason[item.Season]
		if !ok {
			season = make(map[string]ranking.Ranking)
			r.bySeason[item.Season] = season
		}
		season[item.ClubID] = item
	}
	return nil
}

func (r *RankingRepository) GetByClub(_ context.Context, season, clubID string) (ranking.Ranking, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.bySeason[season][clubID]
	return item, ok, nil
}

func (r *RankingRepository) ListBySeason(_ context.Context, season string) ([]ranking.Ranking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ranking.Ranking, 0, len(r.bySeason[season]))
	for _, item := range r.bySeason[season] {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ClubID < out[j].ClubID
	})
	return out, nil
}
