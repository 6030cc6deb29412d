package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/club-league/internal/domain/club"
	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/domain/identity"
	"github.com/riskibarqy/club-league/internal/domain/ranking"
	"github.com/riskibarqy/club-league/internal/domain/standing"
	"github.com/sourcegraph/conc/pool"
)

type RankingUpdate struct {
	ClubID   string
	Position int
	CupStage string
}

type RankingService struct {
	rankingRepo ranking.Repository
	clubRepo    club.Repository
	standings   *StandingsService
	clock       clockwork.Clock
}

func NewRankingService(
	rankingRepo ranking.Repository,
	clubRepo club.Repository,
	standings *StandingsService,
	clock clockwork.Clock,
) *RankingService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RankingService{
		rankingRepo: rankingRepo,
		clubRepo:    clubRepo,
		standings:   standings,
		clock:       clock,
	}
}

// Upsert classifies each update and stores it. Points and tier are always derived, never supplied.
func (s *RankingService) Upsert(ctx context.Context, caller identity.Caller, season string, updates []RankingUpdate) ([]ranking.Ranking, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.Upsert")
	defer span.End()

	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	season = strings.TrimSpace(season)
	if season == "" {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: at least one ranking is required", ErrInvalidInput)
	}

	now := s.clock.Now()
	seen := make(map[string]struct{}, len(updates))
	items := make([]ranking.Ranking, 0, len(updates))
	for _, update := range updates {
		clubID := strings.TrimSpace(update.ClubID)
		if clubID == "" {
			return nil, fmt.Errorf("%w: club id is required", ErrInvalidInput)
		}
		if _, dup := seen[clubID]; dup {
			return nil, fmt.Errorf("%w: duplicate club %s", ErrInvalidInput, clubID)
		}
		seen[clubID] = struct{}{}
		if update.Position <= 0 {
			return nil, fmt.Errorf("%w: position must be > 0 for club %s", ErrInvalidInput, clubID)
		}
		stage, err := ranking.ParseCupStage(update.CupStage)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		items = append(items, ranking.New(season, clubID, update.Position, stage, now))
	}

	if err := s.rankingRepo.UpsertMany(ctx, items); err != nil {
		return nil, fmt.Errorf("upsert rankings: %w", err)
	}
	return items, nil
}

// Recompute takes league positions from a fresh standings table and keeps each club's cup stage.
// Clubs without a league fixture yet are placed after the table.
func (s *RankingService) Recompute(ctx context.Context, caller identity.Caller, season string) ([]ranking.Ranking, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.Recompute")
	defer span.End()

	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.recompute(ctx, season)
}

// Refresh is the scheduled variant of Recompute. It runs without a caller.
func (s *RankingService) Refresh(ctx context.Context, season string) ([]ranking.Ranking, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.Refresh")
	defer span.End()

	return s.recompute(ctx, season)
}

func (s *RankingService) recompute(ctx context.Context, season string) ([]ranking.Ranking, error) {
	season = strings.TrimSpace(season)
	if season == "" {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}

	var (
		table    []standing.Standing
		existing []ranking.Ranking
		clubs    []club.Club
	)
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		rows, err := s.standings.refresh(ctx, standing.Scope{Season: season, Competition: fixture.CompetitionLeague})
		table = rows
		return err
	})
	p.Go(func(ctx context.Context) error {
		rows, err := s.rankingRepo.ListBySeason(ctx, season)
		if err != nil {
			return fmt.Errorf("list rankings: %w", err)
		}
		existing = rows
		return nil
	})
	p.Go(func(ctx context.Context) error {
		rows, err := s.clubRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("list clubs: %w", err)
		}
		clubs = rows
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	stages := make(map[string]ranking.CupStage, len(existing))
	for _, item := range existing {
		stages[item.ClubID] = item.CupStage
	}

	now := s.clock.Now()
	placed := make(map[string]struct{}, len(table))
	items := make([]ranking.Ranking, 0, len(clubs))
	for _, row := range table {
		placed[row.ClubID] = struct{}{}
		items = append(items, ranking.New(season, row.ClubID, row.Position, stages[row.ClubID], now))
	}

	unplaced := make([]string, 0, len(clubs))
	for _, item := range clubs {
		if _, ok := placed[item.ID]; !ok {
			unplaced = append(unplaced, item.ID)
		}
	}
	sort.Strings(unplaced)
	for i, clubID := range unplaced {
		items = append(items, ranking.New(season, clubID, len(table)+i+1, stages[clubID], now))
	}

	if len(items) == 0 {
		return items, nil
	}
	if err := s.rankingRepo.UpsertMany(ctx, items); err != nil {
		return nil, fmt.Errorf("upsert rankings: %w", err)
	}
	return items, nil
}

func (s *RankingService) List(ctx context.Context, season string) ([]ranking.Ranking, error) {
	season = strings.TrimSpace(season)
	if season == "" {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	items, err := s.rankingRepo.ListBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("list rankings: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return items[i].ClubID < items[j].ClubID
	})
	return items, nil
}

// TierOf returns the club's current tier, bottom when the club has no ranking yet.
func (s *RankingService) TierOf(ctx context.Context, season, clubID string) (ranking.Tier, ranking.CupStage, error) {
	item, exists, err := s.rankingRepo.GetByClub(ctx, season, clubID)
	if err != nil {
		return "", "", fmt.Errorf("get ranking: %w", err)
	}
	if !exists {
		return ranking.TierBottom, ranking.CupNone, nil
	}
	return item.Tier, item.CupStage, nil
}
