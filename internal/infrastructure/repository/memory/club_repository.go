package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/club-league/internal/domain/club"
)

type ClubRepository struct {
	mu    sync.RWMutex
	clubs map[string]club.Club
}

func NewClubRepository(clubs []club.Club) *ClubRepository {
	index := make(map[string]club.Club, len(clubs))
	for _, item := range clubs {
		index[item.ID] = item
	}
	return &ClubRepository{clubs: index}
}

func (r *ClubRepository) Upsert(_ context.Context, item club.Club) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clubs[item.ID] = item
	return nil
}

func (r *ClubRepository) GetByID(_ context.Context, id string) (club.Club, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.clubs[id]
	return item, ok, nil
}

func (r *ClubRepository) List(_ context.Context) ([]club.Club, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]club.Club, 0, len(r.clubs))
	for _, item := range r.clubs {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
