package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/club-league/internal/domain/standing"
)

type StandingRepository struct {
	mu      sync.RWMutex
	byScope map[string][]standing.Standing
}

func NewStandingRepository() *StandingRepository {
	return &StandingRepository{byScope: make(map[string][]standing.Standing)}
}

func (r *StandingRepository) ListByScope(_ context.Context, scope standing.Scope) ([]standing.Standing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.byScope[scope.Key()]
	return append([]standing.Standing(nil), rows...), nil
}

func (r *StandingRepository) ReplaceByScope(_ context.Context, scope standing.Scope, rows []standing.Standing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byScope[scope.Key()] = append([]standing.Standing(nil), rows...)
	return nil
}
