package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/club-league/internal/domain/ranking"
	"github.com/riskibarqy/club-league/internal/infrastructure/repository/memory"
)

func TestRankingService_Upsert_DerivesPointsAndTier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)

	items, err := env.rankings.Upsert(ctx, testAdmin, testSeason, []RankingUpdate{
		{ClubID: memory.ClubIDNorthHarbour, Position: 1},
		{ClubID: memory.ClubIDRedLions, Position: 3, CupStage: "semi_final"},
		{ClubID: memory.ClubIDBlueSharks, Position: 9},
	})
	if err != nil {
		t.Fatalf("upsert rankings: %v", err)
	}

	cases := []struct {
		clubID string
		points int
		tier   ranking.Tier
	}{
		{memory.ClubIDNorthHarbour, 100, ranking.TierElite},
		{memory.ClubIDRedLions, 105, ranking.TierElite},
		{memory.ClubIDBlueSharks, 20, ranking.TierBottom},
	}
	for i, tc := range cases {
		if items[i].ClubID != tc.clubID || items[i].Points != tc.points || items[i].Tier != tc.tier {
			t.Fatalf("unexpected ranking for %s: %+v", tc.clubID, items[i])
		}
	}

	tier, stage, err := env.rankings.TierOf(ctx, testSeason, memory.ClubIDRedLions)
	if err != nil {
		t.Fatalf("tier of: %v", err)
	}
	if tier != ranking.TierElite || stage != ranking.CupSemiFinal {
		t.Fatalf("unexpected tier/stage: %s/%s", tier, stage)
	}

	tier, stage, err = env.rankings.TierOf(ctx, testSeason, memory.ClubIDGreenValley)
	if err != nil {
		t.Fatalf("tier of unranked club: %v", err)
	}
	if tier != ranking.TierBottom || stage != ranking.CupNone {
		t.Fatalf("unranked club should default to bottom: %s/%s", tier, stage)
	}
}

func TestRankingService_Upsert_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)

	cases := []struct {
		name    string
		updates []RankingUpdate
	}{
		{"empty", nil},
		{"zero position", []RankingUpdate{{ClubID: memory.ClubIDRedLions, Position: 0}}},
		{"unknown stage", []RankingUpdate{{ClubID: memory.ClubIDRedLions, Position: 2, CupStage: "playoff"}}},
		{"duplicate club", []RankingUpdate{
			{ClubID: memory.ClubIDRedLions, Position: 1},
			{ClubID: memory.ClubIDRedLions, Position: 2},
		}},
	}
	for _, tc := range cases {
		if _, err := env.rankings.Upsert(ctx, testAdmin, testSeason, tc.updates); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
	if _, err := env.rankings.Upsert(ctx, testHome, testSeason, []RankingUpdate{{ClubID: memory.ClubIDRedLions, Position: 1}}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRankingService_Recompute_UsesStandingsAndKeepsCupStage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)

	if _, err := env.rankings.Upsert(ctx, testAdmin, testSeason, []RankingUpdate{
		{ClubID: memory.ClubIDRedLions, Position: 4, CupStage: "winner"},
	}); err != nil {
		t.Fatalf("seed ranking: %v", err)
	}
	env.playFixture(t, memory.ClubIDNorthHarbour, memory.ClubIDRedLions, 3, 0)

	items, err := env.rankings.Recompute(ctx, testAdmin, testSeason)
	if err != nil {
		t.Fatalf("recompute rankings: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("every club should be ranked, got %d", len(items))
	}

	byClub := make(map[string]ranking.Ranking, len(items))
	for _, item := range items {
		byClub[item.ClubID] = item
	}
	if got := byClub[memory.ClubIDNorthHarbour]; got.Position != 1 || got.Tier != ranking.TierElite {
		t.Fatalf("unexpected north harbour ranking: %+v", got)
	}
	if got := byClub[memory.ClubIDRedLions]; got.Position != 2 || got.CupStage != ranking.CupWinner || got.Points != 160 {
		t.Fatalf("cup stage should survive recompute: %+v", got)
	}
	if got := byClub[memory.ClubIDBlueSharks]; got.Position != 3 {
		t.Fatalf("unplaced clubs should follow the table in id order: %+v", got)
	}
	if got := byClub[memory.ClubIDGreenValley]; got.Position != 4 {
		t.Fatalf("unplaced clubs should follow the table in id order: %+v", got)
	}

	listed, err := env.rankings.List(ctx, testSeason)
	if err != nil {
		t.Fatalf("list rankings: %v", err)
	}
	if listed[0].ClubID != memory.ClubIDNorthHarbour || listed[3].ClubID != memory.ClubIDGreenValley {
		t.Fatalf("list should be ordered by position: %+v", listed)
	}
}

func TestRankingService_Refresh_RunsWithoutCaller(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.playFixture(t, memory.ClubIDGreenValley, memory.ClubIDBlueSharks, 2, 1)

	items, err := env.rankings.Refresh(context.Background(), testSeason)
	if err != nil {
		t.Fatalf("refresh rankings: %v", err)
	}
	if items[0].ClubID != memory.ClubIDGreenValley || items[0].Position != 1 {
		t.Fatalf("unexpected leader: %+v", items[0])
	}
	if _, err := env.rankings.Recompute(context.Background(), testAnonymous, testSeason); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
