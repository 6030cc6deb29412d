package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/domain/standing"
	"github.com/riskibarqy/club-league/internal/infrastructure/repository/memory"
)

func TestStandingsService_Recompute_OrdersByPointsThenGoalDifferenceThenGoals(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.playFixture(t, memory.ClubIDNorthHarbour, memory.ClubIDRedLions, 2, 0)
	env.playFixture(t, memory.ClubIDBlueSharks, memory.ClubIDGreenValley, 3, 1)
	env.playFixture(t, memory.ClubIDNorthHarbour, memory.ClubIDBlueSharks, 1, 1)
	env.playFixture(t, memory.ClubIDRedLions, memory.ClubIDGreenValley, 0, 0)
	env.createFixture(t, memory.ClubIDRedLions, memory.ClubIDBlueSharks)

	rows, err := env.standings.Recompute(ctx, testAdmin, standing.Scope{Season: testSeason})
	if err != nil {
		t.Fatalf("recompute standings: %v", err)
	}

	want := []string{memory.ClubIDBlueSharks, memory.ClubIDNorthHarbour, memory.ClubIDGreenValley, memory.ClubIDRedLions}
	if len(rows) != len(want) {
		t.Fatalf("unexpected row count: got=%d want=%d", len(rows), len(want))
	}
	for i, clubID := range want {
		if rows[i].ClubID != clubID || rows[i].Position != i+1 {
			t.Fatalf("row %d: got club=%s position=%d want club=%s", i, rows[i].ClubID, rows[i].Position, clubID)
		}
	}

	north := rows[1]
	if north.Played != 2 || north.Won != 1 || north.Drawn != 1 || north.Points != 4 || north.GoalDifference != 2 {
		t.Fatalf("unexpected north harbour row: %+v", north)
	}

	stored, err := env.standings.List(ctx, standing.Scope{Season: testSeason, Competition: fixture.CompetitionLeague})
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if len(stored) != len(rows) || stored[0].ClubID != memory.ClubIDBlueSharks {
		t.Fatalf("stored table should match the recomputed one: %+v", stored)
	}
}

func TestStandingsService_List_ComputesWhenNothingStored(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.playFixture(t, memory.ClubIDRedLions, memory.ClubIDNorthHarbour, 1, 0)

	rows, err := env.standings.List(context.Background(), standing.Scope{Season: testSeason})
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if len(rows) != 2 || rows[0].ClubID != memory.ClubIDRedLions || rows[0].Points != 3 {
		t.Fatalf("unexpected computed table: %+v", rows)
	}
}

func TestStandingsService_Recompute_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	if _, err := env.standings.Recompute(context.Background(), testHome, standing.Scope{Season: testSeason}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := env.standings.Recompute(context.Background(), testAdmin, standing.Scope{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing season, got %v", err)
	}
	if _, err := env.standings.List(context.Background(), standing.Scope{Season: testSeason, Competition: "friendly"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown competition, got %v", err)
	}
}

func TestComputeStandings_IsDeterministicForTies(t *testing.T) {
	t.Parallel()

	items := []fixture.Fixture{
		{ID: "fx-1", HomeClubID: "club-b", AwayClubID: "club-a", Status: fixture.StatusFinal, Result: &fixture.Result{HomeScore: 1, AwayScore: 1}},
		{ID: "fx-2", HomeClubID: "club-c", AwayClubID: "club-d", Status: fixture.StatusFinal, Result: &fixture.Result{HomeScore: 1, AwayScore: 1}},
		{ID: "fx-3", HomeClubID: "club-a", AwayClubID: "club-c", Status: fixture.StatusScheduled},
	}

	for i := 0; i < 5; i++ {
		rows := ComputeStandings(items)
		got := []string{rows[0].ClubID, rows[1].ClubID, rows[2].ClubID, rows[3].ClubID}
		want := []string{"club-a", "club-b", "club-c", "club-d"}
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("run %d: unexpected order %v", i, got)
			}
		}
	}
}
