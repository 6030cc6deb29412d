package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/club-league/internal/domain/fixture"
)

func TestFixtureRepository_UpdateSerializesWriters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewFixtureRepository([]fixture.Fixture{{
		ID:          "fx-1",
		Season:      "2026",
		Competition: fixture.CompetitionLeague,
		HomeClubID:  ClubIDNorthHarbour,
		AwayClubID:  ClubIDRedLions,
		Status:      fixture.StatusPending,
	}})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := repo.Update(ctx, "fx-1", func(item *fixture.Fixture) error {
				item.Version++
				return nil
			}); err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	item, _, _ := repo.GetByID(ctx, "fx-1")
	if item.Version != 50 {
		t.Fatalf("lost updates: version=%d", item.Version)
	}
}

func TestFixtureRepository_UpdateHonoursUnchangedAndErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewFixtureRepository(nil)
	base := fixture.Fixture{ID: "fx-1", Season: "2026", HomeClubID: "a", AwayClubID: "b", Version: 1}
	if err := repo.Create(ctx, base); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, base); !errors.Is(err, fixture.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	got, exists, err := repo.Update(ctx, "fx-1", func(item *fixture.Fixture) error {
		item.Version = 99
		return fixture.ErrUnchanged
	})
	if err != nil || !exists || got.Version != 1 {
		t.Fatalf("unchanged mutation must return the stored fixture: version=%d exists=%v err=%v", got.Version, exists, err)
	}

	boom := errors.New("boom")
	if _, _, err := repo.Update(ctx, "fx-1", func(item *fixture.Fixture) error {
		item.Group = "A"
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected mutator error, got %v", err)
	}
	stored, _, _ := repo.GetByID(ctx, "fx-1")
	if stored.Group != "" {
		t.Fatalf("failed mutation must not be stored")
	}

	if _, exists, err := repo.Update(ctx, "fx-missing", func(*fixture.Fixture) error { return nil }); exists || err != nil {
		t.Fatalf("missing fixture: exists=%v err=%v", exists, err)
	}
}

func TestFixtureRepository_ExternalMatchIndex(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewFixtureRepository(nil)
	for _, id := range []string{"fx-1", "fx-2"} {
		if err := repo.Create(ctx, fixture.Fixture{ID: id, Season: "2026", HomeClubID: "a", AwayClubID: "b"}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	if _, _, err := repo.Update(ctx, "fx-1", func(item *fixture.Fixture) error {
		item.ExternalMatchID = "m-1"
		return nil
	}); err != nil {
		t.Fatalf("link external id: %v", err)
	}
	if _, _, err := repo.Update(ctx, "fx-2", func(item *fixture.Fixture) error {
		item.ExternalMatchID = "m-1"
		return nil
	}); !errors.Is(err, fixture.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for a reused external id, got %v", err)
	}

	item, exists, err := repo.GetByExternalMatchID(ctx, "m-1")
	if err != nil || !exists || item.ID != "fx-1" {
		t.Fatalf("unexpected lookup: id=%s exists=%v err=%v", item.ID, exists, err)
	}

	later := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if _, _, err := repo.Update(ctx, "fx-1", func(item *fixture.Fixture) error {
		item.ExternalMatchID = "m-2"
		item.UpdatedAt = later
		return nil
	}); err != nil {
		t.Fatalf("relink external id: %v", err)
	}
	if _, exists, _ := repo.GetByExternalMatchID(ctx, "m-1"); exists {
		t.Fatalf("old external id should be released")
	}
}
