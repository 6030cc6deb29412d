package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/club-league/internal/domain/club"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClubRepository struct {
	clubs map[string]club.Club
	lists int
	gets  int
}

func (r *countingClubRepository) Upsert(_ context.Context, item club.Club) error {
	r.clubs[item.ID] = item
	return nil
}

func (r *countingClubRepository) GetByID(_ context.Context, id string) (club.Club, bool, error) {
	r.gets++
	item, ok := r.clubs[id]
	return item, ok, nil
}

func (r *countingClubRepository) List(_ context.Context) ([]club.Club, error) {
	r.lists++
	out := make([]club.Club, 0, len(r.clubs))
	for _, item := range r.clubs {
		out = append(out, item)
	}
	return out, nil
}

func TestClubRepository_CachesReadsUntilUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	next := &countingClubRepository{clubs: map[string]club.Club{
		"club-north-harbour": {ID: "club-north-harbour", Name: "North Harbour", ExternalRef: "pc-1001"},
	}}
	repo := NewClubRepository(next, time.Minute, clock)

	for i := 0; i < 3; i++ {
		item, ok, err := repo.GetByID(ctx, "club-north-harbour")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "North Harbour", item.Name)

		items, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	}
	assert.Equal(t, 1, next.gets)
	assert.Equal(t, 1, next.lists)

	_, ok, err := repo.GetByID(ctx, "club-unknown")
	require.NoError(t, err)
	assert.False(t, ok, "misses are cached as misses")

	require.NoError(t, repo.Upsert(ctx, club.Club{ID: "club-red-lions", Name: "Red Lions"}))
	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, next.lists)

	clock.Advance(2 * time.Minute)
	_, _, err = repo.GetByID(ctx, "club-north-harbour")
	require.NoError(t, err)
	assert.Equal(t, 3, next.gets)
}
