package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/club-league/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	index := make(map[string]player.Player, len(players))
	for _, p := range players {
		index[p.ID] = clonePlayer(p)
	}
	return &PlayerRepository{players: index}
}

func (r *PlayerRepository) Upsert(_ context.Context, item player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.players[item.ID] = clonePlayer(item)
	return nil
}

func (r *PlayerRepository) GetByID(_ context.Context, id string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	if !ok {
		return player.Player{}, false, nil
	}
	return clonePlayer(p), true, nil
}

func (r *PlayerRepository) ListByClub(_ context.Context, clubID string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0)
	for _, p := range r.players {
		if p.ClubID == clubID {
			out = append(out, clonePlayer(p))
		}
	}
	sortPlayers(out)
	return out, nil
}

func (r *PlayerRepository) ListAll(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, clonePlayer(p))
	}
	sortPlayers(out)
	return out, nil
}

func clonePlayer(p player.Player) player.Player {
	p.Aliases = append([]string(nil), p.Aliases...)
	return p
}

func sortPlayers(items []player.Player) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}
