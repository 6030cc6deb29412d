package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/domain/identity"
	"github.com/riskibarqy/club-league/internal/domain/playerstat"
	"github.com/riskibarqy/club-league/internal/platform/logging"
	"github.com/riskibarqy/club-league/internal/platform/resilience"
)

const defaultStatsWorkers = 8

type RecomputeStatsResult struct {
	Season      string `json:"season"`
	Fixtures    int    `json:"fixtures"`
	Players     int    `json:"players"`
	WorkerCount int    `json:"worker_count"`
}

// StatsService keeps cumulative player statistics in line with the contribution ledger.
// Each final fixture owns its ledger rows; a player's record is always rebuilt from the full history.
type StatsService struct {
	fixtureRepo fixture.Repository
	statRepo    playerstat.Repository
	locks       *resilience.KeyedMutex
	clock       clockwork.Clock
	logger      *logging.Logger
	workers     int

	pendingMu sync.Mutex
	pending   map[string]struct{}
}

func NewStatsService(
	fixtureRepo fixture.Repository,
	statRepo playerstat.Repository,
	clock clockwork.Clock,
	logger *logging.Logger,
	workers int,
) *StatsService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultStatsWorkers
	}
	return &StatsService{
		fixtureRepo: fixtureRepo,
		statRepo:    statRepo,
		locks:       resilience.NewKeyedMutex(),
		clock:       clock,
		logger:      logger,
		workers:     workers,
		pending:     make(map[string]struct{}),
	}
}

// ApplyFixture replaces the fixture's ledger rows and rebuilds every player that gained or lost a row.
// Folds of one fixture are serialized and always read the stored fixture, so the last fold wins with the
// latest stored result. Applying the same fixture twice leaves totals unchanged. A failed fold is kept
// pending until RetryPending or a season recompute succeeds.
func (s *StatsService) ApplyFixture(ctx context.Context, item fixture.Fixture) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.ApplyFixture")
	defer span.End()

	if !item.IsFinal() {
		return fmt.Errorf("%w: fixture %s is not final", ErrInvalidInput, item.ID)
	}

	unlock := s.locks.Lock(fixtureLockKey(item.ID))
	defer unlock()

	stored, exists, err := s.fixtureRepo.GetByID(ctx, item.ID)
	if err != nil {
		s.markPending(item.ID)
		return fmt.Errorf("get fixture %s: %w", item.ID, err)
	}
	if !exists {
		s.clearPending(item.ID)
		return fmt.Errorf("%w: fixture=%s", ErrNotFound, item.ID)
	}
	if !stored.IsFinal() {
		s.clearPending(item.ID)
		return fmt.Errorf("%w: fixture %s is not final", ErrInvalidInput, item.ID)
	}

	if err := s.fold(ctx, stored); err != nil {
		s.markPending(stored.ID)
		return err
	}
	s.clearPending(stored.ID)
	return nil
}

// RetryPending refolds every fixture whose last fold failed. It returns how many were repaired.
func (s *StatsService) RetryPending(ctx context.Context) (int, error) {
	repaired := 0
	var firstErr error
	for _, fixtureID := range s.Pending() {
		err := s.ApplyFixture(ctx, fixture.Fixture{ID: fixtureID, Status: fixture.StatusFinal})
		switch {
		case err == nil:
			repaired++
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput):
		default:
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if repaired > 0 {
		s.logger.InfoContext(ctx, "pending statistics folds repaired", "fixtures", repaired)
	}
	return repaired, firstErr
}

// Pending lists the fixtures whose statistics fold is still outstanding.
func (s *StatsService) Pending() []string {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	return sortedKeys(s.pending)
}

func (s *StatsService) fold(ctx context.Context, item fixture.Fixture) error {
	rows := contributionsOf(item)
	previous, err := s.statRepo.ReplaceFixtureContributions(ctx, item.Season, item.ID, rows)
	if err != nil {
		return fmt.Errorf("replace fixture contributions: %w", err)
	}

	touched := make(map[string]struct{}, len(rows)+len(previous))
	for _, row := range previous {
		touched[row.PlayerID] = struct{}{}
	}
	for _, row := range rows {
		touched[row.PlayerID] = struct{}{}
	}

	for _, playerID := range sortedKeys(touched) {
		if _, err := s.rebuildPlayer(ctx, item.Season, playerID); err != nil {
			return err
		}
	}
	return nil
}

func (s *StatsService) markPending(fixtureID string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	s.pending[fixtureID] = struct{}{}
}

func (s *StatsService) clearPending(fixtureID string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	delete(s.pending, fixtureID)
}

func fixtureLockKey(fixtureID string) string {
	return "fixture:" + fixtureID
}

// RecomputeSeason resets the season: the ledger is rebuilt from every final fixture and all players are refolded.
func (s *StatsService) RecomputeSeason(ctx context.Context, caller identity.Caller, season string) (RecomputeStatsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.RecomputeSeason")
	defer span.End()

	if err := requireAdmin(caller); err != nil {
		return RecomputeStatsResult{}, err
	}
	season = strings.TrimSpace(season)
	if season == "" {
		return RecomputeStatsResult{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}

	fixtures, err := s.fixtureRepo.List(ctx, fixture.Filter{Season: season, Status: fixture.StatusFinal})
	if err != nil {
		return RecomputeStatsResult{}, fmt.Errorf("list final fixtures: %w", err)
	}

	players := make(map[string]struct{})
	for _, item := range fixtures {
		if err := s.replaceContributions(ctx, item); err != nil {
			return RecomputeStatsResult{}, err
		}
	}

	ledger, err := s.statRepo.ListContributionsBySeason(ctx, season)
	if err != nil {
		return RecomputeStatsResult{}, fmt.Errorf("list season contributions: %w", err)
	}
	for _, row := range ledger {
		players[row.PlayerID] = struct{}{}
	}
	existing, err := s.statRepo.ListStats(ctx, season)
	if err != nil {
		return RecomputeStatsResult{}, fmt.Errorf("list player stats: %w", err)
	}
	for _, stat := range existing {
		players[stat.PlayerID] = struct{}{}
	}

	workerCount := s.workers
	if len(players) < workerCount {
		workerCount = len(players)
	}
	result := RecomputeStatsResult{Season: season, Fixtures: len(fixtures), WorkerCount: workerCount}
	if len(players) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RecomputeStatsResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		workers  sync.WaitGroup
		rebuilt  atomic.Int32
		errOnce  sync.Once
		firstErr error
	)
	for _, playerID := range sortedKeys(players) {
		playerID := playerID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			if _, err := s.rebuildPlayer(ctx, season, playerID); err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			rebuilt.Add(1)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return RecomputeStatsResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	if firstErr != nil {
		return RecomputeStatsResult{}, firstErr
	}
	result.Players = int(rebuilt.Load())
	s.logger.InfoContext(ctx, "player statistics recomputed", "season", season, "fixtures", result.Fixtures, "players", result.Players)
	return result, nil
}

func (s *StatsService) GetPlayerStat(ctx context.Context, season, playerID string) (playerstat.Stat, error) {
	season = strings.TrimSpace(season)
	playerID = strings.TrimSpace(playerID)
	if season == "" || playerID == "" {
		return playerstat.Stat{}, fmt.Errorf("%w: season and player id are required", ErrInvalidInput)
	}
	stat, exists, err := s.statRepo.GetStat(ctx, season, playerID)
	if err != nil {
		return playerstat.Stat{}, fmt.Errorf("get player stat: %w", err)
	}
	if !exists {
		return playerstat.Stat{}, fmt.Errorf("%w: player stat season=%s player=%s", ErrNotFound, season, playerID)
	}
	return stat, nil
}

// ListPlayerStats returns the season leaders: goals, then assists, then player id.
func (s *StatsService) ListPlayerStats(ctx context.Context, season string) ([]playerstat.Stat, error) {
	season = strings.TrimSpace(season)
	if season == "" {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	items, err := s.statRepo.ListStats(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("list player stats: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Goals != items[j].Goals {
			return items[i].Goals > items[j].Goals
		}
		if items[i].Assists != items[j].Assists {
			return items[i].Assists > items[j].Assists
		}
		return items[i].PlayerID < items[j].PlayerID
	})
	return items, nil
}

func (s *StatsService) replaceContributions(ctx context.Context, item fixture.Fixture) error {
	unlock := s.locks.Lock(fixtureLockKey(item.ID))
	defer unlock()

	stored, exists, err := s.fixtureRepo.GetByID(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("get fixture %s: %w", item.ID, err)
	}
	var rows []playerstat.Contribution
	if exists && stored.IsFinal() {
		rows = contributionsOf(stored)
	}
	if _, err := s.statRepo.ReplaceFixtureContributions(ctx, item.Season, item.ID, rows); err != nil {
		return fmt.Errorf("replace fixture contributions: %w", err)
	}
	s.clearPending(item.ID)
	return nil
}

func (s *StatsService) rebuildPlayer(ctx context.Context, season, playerID string) (playerstat.Stat, error) {
	unlock := s.locks.Lock(season + ":" + playerID)
	defer unlock()

	history, err := s.statRepo.ListContributionsByPlayer(ctx, season, playerID)
	if err != nil {
		return playerstat.Stat{}, fmt.Errorf("list contributions for player %s: %w", playerID, err)
	}
	stat := playerstat.Rebuild(season, playerID, history, s.clock.Now())
	if err := s.statRepo.UpsertStats(ctx, []playerstat.Stat{stat}); err != nil {
		return playerstat.Stat{}, fmt.Errorf("upsert player stat %s: %w", playerID, err)
	}
	return stat, nil
}

// contributionsOf lists the ledger rows of a final fixture. Unresolved rows carry no player id and are skipped.
func contributionsOf(item fixture.Fixture) []playerstat.Contribution {
	if item.Result == nil {
		return nil
	}
	playedAt := item.PlayedAt()
	rows := make([]playerstat.Contribution, 0, len(item.Result.Home)+len(item.Result.Away))
	for _, side := range []fixture.Side{fixture.SideHome, fixture.SideAway} {
		clubID := item.ClubFor(side)
		for _, row := range item.Result.Rows(side) {
			if !row.Resolved() {
				continue
			}
			rows = append(rows, playerstat.Contribution{
				Season:    item.Season,
				FixtureID: item.ID,
				PlayerID:  row.PlayerID,
				ClubID:    clubID,
				Goals:     row.Goals,
				Assists:   row.Assists,
				Rating:    row.Rating,
				PlayedAt:  playedAt,
			})
		}
	}
	return playerstat.Merge(rows)
}
