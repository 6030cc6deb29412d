package cache

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/club-league/internal/domain/club"
	basecache "github.com/riskibarqy/club-league/internal/platform/cache"
)

const (
	clubListKey     = "club:list"
	clubByIDPrefix  = "club:id:"
	clubCachePrefix = "club:"
)

type cachedClub struct {
	value  club.Club
	exists bool
}

// ClubRepository serves club reads from a TTL cache in front of next.
// Writes go through and drop every cached club entry.
type ClubRepository struct {
	next club.Repository
	list *basecache.Store[[]club.Club]
	byID *basecache.Store[cachedClub]
}

func NewClubRepository(next club.Repository, ttl time.Duration, clock clockwork.Clock) *ClubRepository {
	return &ClubRepository{
		next: next,
		list: basecache.NewStore[[]club.Club](ttl, clock),
		byID: basecache.NewStore[cachedClub](ttl, clock),
	}
}

func (r *ClubRepository) List(ctx context.Context) ([]club.Club, error) {
	items, err := r.list.GetOrLoad(ctx, clubListKey, func(ctx context.Context) ([]club.Club, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]club.Club(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]club.Club(nil), items...), nil
}

func (r *ClubRepository) GetByID(ctx context.Context, id string) (club.Club, bool, error) {
	cached, err := r.byID.GetOrLoad(ctx, clubByIDPrefix+id, func(ctx context.Context) (cachedClub, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return cachedClub{}, err
		}
		return cachedClub{value: item, exists: exists}, nil
	})
	if err != nil {
		return club.Club{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *ClubRepository) Upsert(ctx context.Context, item club.Club) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	r.list.DeletePrefix(ctx, clubCachePrefix)
	r.byID.DeletePrefix(ctx, clubCachePrefix)
	return nil
}
