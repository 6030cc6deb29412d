package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/club-league/internal/domain/playerstat"
	"github.com/riskibarqy/club-league/internal/infrastructure/repository/memory"
)

func TestStatsService_StreaksFollowMatchOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)

	lines := []StatLine{
		{PlayerID: "pl-nh-01", Goals: intPtr(1), Rating: floatPtr(7)},
		{PlayerID: "pl-nh-01", Goals: intPtr(2), Rating: floatPtr(8)},
		{PlayerID: "pl-nh-01", Assists: intPtr(1), Rating: floatPtr(6)},
	}
	for _, line := range lines {
		item := env.createFixture(t, memory.ClubIDNorthHarbour, memory.ClubIDRedLions)
		if _, err := env.results.SubmitResult(ctx, testHome, item.ID, SubmitResultInput{
			HomeScore: 1,
			Home:      []StatLine{line},
		}); err != nil {
			t.Fatalf("submit result: %v", err)
		}
		env.clock.Advance(24 * time.Hour)
	}

	stat, err := env.stats.GetPlayerStat(ctx, testSeason, "pl-nh-01")
	if err != nil {
		t.Fatalf("get stat: %v", err)
	}
	if stat.Appearances != 3 || stat.Goals != 3 || stat.Assists != 1 {
		t.Fatalf("unexpected totals: %+v", stat)
	}
	if stat.GoalStreak != 0 || stat.AssistStreak != 1 || stat.ContributionStreak != 3 {
		t.Fatalf("unexpected streaks: goal=%d assist=%d contribution=%d", stat.GoalStreak, stat.AssistStreak, stat.ContributionStreak)
	}
	if stat.AverageRating() != 7 {
		t.Fatalf("unexpected average rating: %v", stat.AverageRating())
	}
}

func TestStatsService_RecomputeSeasonMatchesIncrementalTotals(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)

	reports := []struct {
		home, away string
		input      SubmitResultInput
	}{
		{memory.ClubIDNorthHarbour, memory.ClubIDRedLions, SubmitResultInput{
			HomeScore: 2, AwayScore: 1,
			Home: []StatLine{{PlayerID: "pl-nh-01", Goals: intPtr(2)}, {PlayerID: "pl-nh-02", Assists: intPtr(1)}},
			Away: []StatLine{{PlayerID: "pl-rl-02", Goals: intPtr(1), Rating: floatPtr(7.5)}},
		}},
		{memory.ClubIDBlueSharks, memory.ClubIDNorthHarbour, SubmitResultInput{
			HomeScore: 0, AwayScore: 1,
			Home: []StatLine{{PlayerID: "pl-bs-01", Rating: floatPtr(6)}},
			Away: []StatLine{{PlayerID: "pl-nh-01", Goals: intPtr(1), Assists: intPtr(1)}},
		}},
	}
	for _, report := range reports {
		item := env.createFixture(t, report.home, report.away)
		if _, err := env.results.SubmitResult(ctx, testAdmin, item.ID, report.input); err != nil {
			t.Fatalf("submit result: %v", err)
		}
		env.clock.Advance(time.Hour)
	}

	before, err := env.stats.ListPlayerStats(ctx, testSeason)
	if err != nil {
		t.Fatalf("list stats: %v", err)
	}

	result, err := env.stats.RecomputeSeason(ctx, testAdmin, testSeason)
	if err != nil {
		t.Fatalf("recompute season: %v", err)
	}
	if result.Fixtures != 2 || result.Players != 4 {
		t.Fatalf("unexpected recompute result: %+v", result)
	}

	after, err := env.stats.ListPlayerStats(ctx, testSeason)
	if err != nil {
		t.Fatalf("list stats after recompute: %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("player count changed: before=%d after=%d", len(before), len(after))
	}
	for i := range before {
		if !sameTotals(before[i], after[i]) {
			t.Fatalf("recompute diverged for %s: before=%+v after=%+v", before[i].PlayerID, before[i], after[i])
		}
	}
	if after[0].PlayerID != "pl-nh-01" || after[0].Goals != 3 {
		t.Fatalf("leader should be pl-nh-01 with 3 goals: %+v", after[0])
	}
}

func TestStatsService_RecomputeSeason_RequiresAdmin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	if _, err := env.stats.RecomputeSeason(context.Background(), testHome, testSeason); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := env.stats.GetPlayerStat(context.Background(), testSeason, "pl-unknown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func sameTotals(a, b playerstat.Stat) bool {
	return a.PlayerID == b.PlayerID &&
		a.Appearances == b.Appearances &&
		a.Goals == b.Goals &&
		a.Assists == b.Assists &&
		a.RatingSum == b.RatingSum &&
		a.RatingCount == b.RatingCount &&
		a.GoalStreak == b.GoalStreak &&
		a.AssistStreak == b.AssistStreak &&
		a.ContributionStreak == b.ContributionStreak
}
