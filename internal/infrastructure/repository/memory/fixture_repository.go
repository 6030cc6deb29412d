package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/platform/resilience"
)

type FixtureRepository struct {
	mu         sync.RWMutex
	fixtures   map[string]fixture.Fixture
	byExternal map[string]string
	locks      *resilience.KeyedMutex
}

func NewFixtureRepository(fixtures []fixture.Fixture) *FixtureRepository {
	r := &FixtureRepository{
		fixtures:   make(map[string]fixture.Fixture, len(fixtures)),
		byExternal: make(map[string]string),
		locks:      resilience.NewKeyedMutex(),
	}
	for _, item := range fixtures {
		r.store(item)
	}
	return r
}

func (r *FixtureRepository) Create(_ context.Context, item fixture.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.fixtures[item.ID]; exists {
		return fixture.ErrDuplicate
	}
	if ext := strings.TrimSpace(item.ExternalMatchID); ext != "" {
		if _, exists := r.byExternal[ext]; exists {
			return fixture.ErrDuplicate
		}
	}
	r.store(item)
	return nil
}

func (r *FixtureRepository) GetByID(_ context.Context, id string) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.fixtures[id]
	if !ok {
		return fixture.Fixture{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *FixtureRepository) GetByExternalMatchID(_ context.Context, externalMatchID string) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byExternal[strings.TrimSpace(externalMatchID)]
	if !ok {
		return fixture.Fixture{}, false, nil
	}
	return r.fixtures[id].Clone(), true, nil
}

func (r *FixtureRepository) List(_ context.Context, filter fixture.Filter) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0, len(r.fixtures))
	for _, item := range r.fixtures {
		if filter.Matches(item) {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Update runs fn on a private copy while holding the fixture's lock, then swaps the copy in.
func (r *FixtureRepository) Update(ctx context.Context, id string, fn fixture.Mutator) (fixture.Fixture, bool, error) {
	unlock := r.locks.Lock(id)
	defer unlock()

	current, exists, err := r.GetByID(ctx, id)
	if err != nil || !exists {
		return fixture.Fixture{}, exists, err
	}
	if err := fn(&current); err != nil {
		if errors.Is(err, fixture.ErrUnchanged) {
			stored, _, getErr := r.GetByID(ctx, id)
			return stored, true, getErr
		}
		return fixture.Fixture{}, true, err
	}

	r.mu.Lock()
	if owner, taken := r.byExternal[strings.TrimSpace(current.ExternalMatchID)]; taken && owner != id {
		r.mu.Unlock()
		return fixture.Fixture{}, true, fixture.ErrDuplicate
	}
	if previous, ok := r.fixtures[id]; ok && previous.ExternalMatchID != current.ExternalMatchID {
		delete(r.byExternal, previous.ExternalMatchID)
	}
	r.store(current)
	r.mu.Unlock()

	return current.Clone(), true, nil
}

func (r *FixtureRepository) store(item fixture.Fixture) {
	r.fixtures[item.ID] = item.Clone()
	if ext := strings.TrimSpace(item.ExternalMatchID); ext != "" {
		r.byExternal[ext] = item.ID
	}
}
