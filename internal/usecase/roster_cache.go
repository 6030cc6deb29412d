package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/club-league/internal/domain/player"
	"github.com/riskibarqy/club-league/internal/platform/cache"
)

const (
	rosterCachePrefix = "roster:"
	rosterCacheAllKey = "players:all"
)

// RosterCache serves club rosters and the global player list for name resolution.
// Entries expire after ttl and are dropped by Invalidate whenever a roster changes.
type RosterCache struct {
	playerRepo player.Repository
	store      *cache.Store[[]player.Player]
}

func NewRosterCache(playerRepo player.Repository, ttl time.Duration, clock clockwork.Clock) *RosterCache {
	return &RosterCache{
		playerRepo: playerRepo,
		store:      cache.NewStore[[]player.Player](ttl, clock),
	}
}

func (c *RosterCache) Roster(ctx context.Context, clubID string) ([]player.Player, error) {
	clubID = strings.TrimSpace(clubID)
	if clubID == "" {
		return nil, nil
	}
	items, err := c.store.GetOrLoad(ctx, rosterCachePrefix+clubID, func(ctx context.Context) ([]player.Player, error) {
		items, err := c.playerRepo.ListByClub(ctx, clubID)
		if err != nil {
			return nil, fmt.Errorf("list players by club: %w", err)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *RosterCache) All(ctx context.Context) ([]player.Player, error) {
	return c.store.GetOrLoad(ctx, rosterCacheAllKey, func(ctx context.Context) ([]player.Player, error) {
		items, err := c.playerRepo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list players: %w", err)
		}
		return items, nil
	})
}

// Invalidate drops the named rosters and the global list.
func (c *RosterCache) Invalidate(ctx context.Context, clubIDs ...string) {
	for _, clubID := range clubIDs {
		if clubID = strings.TrimSpace(clubID); clubID != "" {
			c.store.Delete(ctx, rosterCachePrefix+clubID)
		}
	}
	c.store.Delete(ctx, rosterCacheAllKey)
}

// InvalidateAll drops every cached roster.
func (c *RosterCache) InvalidateAll(ctx context.Context) {
	c.store.DeletePrefix(ctx, rosterCachePrefix)
	c.store.Delete(ctx, rosterCacheAllKey)
}
