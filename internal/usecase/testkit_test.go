package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/domain/identity"
	"github.com/riskibarqy/club-league/internal/domain/wallet"
	"github.com/riskibarqy/club-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/club-league/internal/platform/id"
	"github.com/riskibarqy/club-league/internal/platform/logging"
)

const testSeason = "2026"

var (
	testAdmin     = identity.Admin("admin-1")
	testHome      = identity.Manager("mgr-north", memory.ClubIDNorthHarbour)
	testAway      = identity.Manager("mgr-lions", memory.ClubIDRedLions)
	testOutsider  = identity.Manager("mgr-sharks", memory.ClubIDBlueSharks)
	testAnonymous = identity.Caller{}
)

var testRates = wallet.Rates{Elite: 300, Mid: 200, Bottom: 100}

type testEnv struct {
	clock *clockwork.FakeClock

	fixtureRepo  *memory.FixtureRepository
	clubRepo     *memory.ClubRepository
	playerRepo   *memory.PlayerRepository
	statRepo     *memory.PlayerStatRepository
	walletRepo   *memory.WalletRepository
	rankingRepo  *memory.RankingRepository
	standingRepo *memory.StandingRepository

	fixtures  *FixtureService
	players   *PlayerService
	stats     *StatsService
	results   *ResultService
	standings *StandingsService
	rankings  *RankingService
	wallets   *WalletService
}

func newTestEnv(t *testing.T, sink NotificationSink) *testEnv {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := logging.NewNop()

	env := &testEnv{
		clock:        clock,
		fixtureRepo:  memory.NewFixtureRepository(nil),
		clubRepo:     memory.NewClubRepository(memory.SeedClubs()),
		playerRepo:   memory.NewPlayerRepository(memory.SeedPlayers()),
		statRepo:     memory.NewPlayerStatRepository(),
		walletRepo:   memory.NewWalletRepository(),
		rankingRepo:  memory.NewRankingRepository(nil),
		standingRepo: memory.NewStandingRepository(),
	}

	rosters := NewRosterCache(env.playerRepo, time.Minute, clock)
	env.fixtures = NewFixtureService(env.fixtureRepo, env.clubRepo, id.NewUUIDGenerator("fx"), clock, logger, testSeason)
	env.players = NewPlayerService(env.playerRepo, env.clubRepo, rosters, id.NewUUIDGenerator("pl"))
	env.stats = NewStatsService(env.fixtureRepo, env.statRepo, clock, logger, 4)
	env.results = NewResultService(env.fixtureRepo, env.clubRepo, env.players, env.stats, sink, clock, logger)
	env.standings = NewStandingsService(env.fixtureRepo, env.standingRepo)
	env.rankings = NewRankingService(env.rankingRepo, env.clubRepo, env.standings, clock)
	env.wallets = NewWalletService(env.walletRepo, env.walletRepo.Awards(), env.clubRepo, env.rankings, WalletConfig{
		Season:      testSeason,
		SeedBalance: 500,
		Rates:       testRates,
	}, clock, logger)
	return env
}

func (e *testEnv) createFixture(t *testing.T, home, away string) fixture.Fixture {
	t.Helper()

	item, err := e.fixtures.Create(context.Background(), testAdmin, CreateFixtureInput{
		Season:     testSeason,
		HomeClubID: home,
		AwayClubID: away,
	})
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	return item
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// playFixture creates a fixture and reports a final score for it as the administrator.
func (e *testEnv) playFixture(t *testing.T, home, away string, homeScore, awayScore int) fixture.Fixture {
	t.Helper()

	item := e.createFixture(t, home, away)
	final, err := e.results.SubmitResult(context.Background(), testAdmin, item.ID, SubmitResultInput{
		HomeScore: homeScore,
		AwayScore: awayScore,
	})
	if err != nil {
		t.Fatalf("submit result %s vs %s: %v", home, away, err)
	}
	return final
}
