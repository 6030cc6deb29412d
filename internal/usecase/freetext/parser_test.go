package freetext

import "testing"

func TestParse_TranscriptWithBothSides(t *testing.T) {
	t.Parallel()

	got := Parse("Home, Player: Alice, 2 goals, 1 assist, Away, Player: Bob, 1 goal, score: 3-1", Options{})

	if got.Empty() {
		t.Fatalf("expected parsed result")
	}
	if got.HomeScore == nil || got.AwayScore == nil || *got.HomeScore != 3 || *got.AwayScore != 1 {
		t.Fatalf("unexpected score: home=%v away=%v", got.HomeScore, got.AwayScore)
	}
	if len(got.Home) != 1 || len(got.Away) != 1 {
		t.Fatalf("unexpected rows: home=%+v away=%+v", got.Home, got.Away)
	}
	if alice := got.Home[0]; alice.Name != "Alice" || alice.Goals != 2 || alice.Assists != 1 {
		t.Fatalf("unexpected home row: %+v", alice)
	}
	if bob := got.Away[0]; bob.Name != "Bob" || bob.Goals != 1 || bob.Assists != 0 {
		t.Fatalf("unexpected away row: %+v", bob)
	}
}

func TestParse_NothingRecognized(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   ", ",,;\n", "12, 4.5"} {
		if got := Parse(text, Options{}); !got.Empty() {
			t.Fatalf("expected empty parse for %q, got %+v", text, got)
		}
	}
}

func TestParse_TrivialScoreIsNotEmpty(t *testing.T) {
	t.Parallel()

	got := Parse("0-0", Options{})
	if got.Empty() {
		t.Fatalf("a 0-0 score must not be reported as empty")
	}
	if *got.HomeScore != 0 || *got.AwayScore != 0 {
		t.Fatalf("unexpected score: %d-%d", *got.HomeScore, *got.AwayScore)
	}
}

func TestParse_SideScoresAndBareNames(t *testing.T) {
	t.Parallel()

	text := "home team\nscore 2\nCarla\n1 goal\nrating: 8.5\naway side\nscore: 4\nDan\n3 goals\nsummary: late comeback"
	got := Parse(text, Options{})

	if *got.HomeScore != 2 || *got.AwayScore != 4 {
		t.Fatalf("unexpected score: %d-%d", *got.HomeScore, *got.AwayScore)
	}
	if len(got.Home) != 1 || got.Home[0].Name != "Carla" || got.Home[0].Rating != 8.5 {
		t.Fatalf("unexpected home rows: %+v", got.Home)
	}
	if len(got.Away) != 1 || got.Away[0].Name != "Dan" || got.Away[0].Goals != 3 {
		t.Fatalf("unexpected away rows: %+v", got.Away)
	}
	if got.Summary != "late comeback" {
		t.Fatalf("unexpected summary: %q", got.Summary)
	}
}

func TestParse_ClubNameSwitchesSide(t *testing.T) {
	t.Parallel()

	got := Parse("Red Lions; Player: Eve; 1 goal; Blue Sharks; Player: Finn; 2 assists", Options{
		HomeClubName: "Red Lions",
		AwayClubName: "Blue Sharks",
	})

	if len(got.Home) != 1 || got.Home[0].Name != "Eve" {
		t.Fatalf("unexpected home rows: %+v", got.Home)
	}
	if len(got.Away) != 1 || got.Away[0].Name != "Finn" || got.Away[0].Assists != 2 {
		t.Fatalf("unexpected away rows: %+v", got.Away)
	}
}

func TestParse_StatsWithoutNameAreDropped(t *testing.T) {
	t.Parallel()

	got := Parse("2 goals, 1 assist, away, Player: Gus", Options{})
	if len(got.Home) != 0 {
		t.Fatalf("nameless record must not be committed: %+v", got.Home)
	}
	if len(got.Away) != 1 || got.Away[0].Name != "Gus" {
		t.Fatalf("unexpected away rows: %+v", got.Away)
	}
}

func TestParse_NameIsNotOverwritten(t *testing.T) {
	t.Parallel()

	got := Parse("Player: Hana, great match, 1 goal", Options{})
	if len(got.Home) != 1 || got.Home[0].Name != "Hana" || got.Home[0].Goals != 1 {
		t.Fatalf("unexpected rows: %+v", got.Home)
	}
}
