package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/club-league/internal/domain/club"
	"github.com/riskibarqy/club-league/internal/domain/identity"
	"github.com/riskibarqy/club-league/internal/domain/player"
	"github.com/riskibarqy/club-league/internal/platform/id"
)

type RegisterPlayerInput struct {
	ID          string
	Name        string
	Aliases     []string
	ClubID      string
	ExternalRef string
}

// PlayerService resolves names to player identities and maintains the registry.
type PlayerService struct {
	playerRepo player.Repository
	clubRepo   club.Repository
	rosters    *RosterCache
	ids        id.Generator
}

func NewPlayerService(playerRepo player.Repository, clubRepo club.Repository, rosters *RosterCache, ids id.Generator) *PlayerService {
	if ids == nil {
		ids = id.NewUUIDGenerator("pl")
	}
	return &PlayerService{
		playerRepo: playerRepo,
		clubRepo:   clubRepo,
		rosters:    rosters,
		ids:        ids,
	}
}

// Resolve matches displayName exactly (after normalization) against the club roster first,
// then every registered player. No approximate matching is attempted.
func (s *PlayerService) Resolve(ctx context.Context, clubID, displayName string) (player.Player, bool, error) {
	query := player.NormalizeName(displayName)
	if query == "" {
		return player.Player{}, false, nil
	}

	roster, err := s.rosters.Roster(ctx, clubID)
	if err != nil {
		return player.Player{}, false, err
	}
	if item, ok := firstMatch(roster, query); ok {
		return item, true, nil
	}

	all, err := s.rosters.All(ctx)
	if err != nil {
		return player.Player{}, false, err
	}
	if item, ok := firstMatch(all, query); ok {
		return item, true, nil
	}
	return player.Player{}, false, nil
}

func (s *PlayerService) Register(ctx context.Context, caller identity.Caller, input RegisterPlayerInput) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Register")
	defer span.End()

	if err := requireAdmin(caller); err != nil {
		return player.Player{}, err
	}

	item := player.Player{
		ID:          strings.TrimSpace(input.ID),
		Name:        strings.TrimSpace(input.Name),
		ClubID:      strings.TrimSpace(input.ClubID),
		ExternalRef: strings.TrimSpace(input.ExternalRef),
	}
	for _, alias := range input.Aliases {
		if alias = strings.TrimSpace(alias); alias != "" {
			item.Aliases = append(item.Aliases, alias)
		}
	}
	if item.ID == "" {
		newID, err := s.ids.NewID()
		if err != nil {
			return player.Player{}, fmt.Errorf("generate player id: %w", err)
		}
		item.ID = newID
	}
	if err := item.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if item.ClubID != "" {
		_, exists, err := s.clubRepo.GetByID(ctx, item.ClubID)
		if err != nil {
			return player.Player{}, fmt.Errorf("get club: %w", err)
		}
		if !exists {
			return player.Player{}, fmt.Errorf("%w: club=%s", ErrNotFound, item.ClubID)
		}
	}

	previous, existed, err := s.playerRepo.GetByID(ctx, item.ID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if err := s.playerRepo.Upsert(ctx, item); err != nil {
		return player.Player{}, fmt.Errorf("upsert player: %w", err)
	}

	touched := []string{item.ClubID}
	if existed && previous.ClubID != item.ClubID {
		touched = append(touched, previous.ClubID)
	}
	s.rosters.Invalidate(ctx, touched...)
	return item, nil
}

func firstMatch(items []player.Player, normalizedQuery string) (player.Player, bool) {
	for _, item := range items {
		if item.Matches(normalizedQuery) {
			return item, true
		}
	}
	return player.Player{}, false
}
