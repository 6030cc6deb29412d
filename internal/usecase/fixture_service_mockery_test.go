package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/infrastructure/repository/memory"
	fixturemock "github.com/riskibarqy/club-league/internal/mocks/domain/fixture"
	"github.com/riskibarqy/club-league/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestFixtureService_Get_ProjectsForCallerUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "trace_id", "trace-123")
	fixtureRepo := fixturemock.NewRepository(t)
	service := NewFixtureService(fixtureRepo, memory.NewClubRepository(memory.SeedClubs()), nil, nil, logging.NewNop(), testSeason)

	stored := fixture.Fixture{
		ID:         "fx-001",
		Season:     testSeason,
		HomeClubID: memory.ClubIDNorthHarbour,
		AwayClubID: memory.ClubIDRedLions,
		Status:     fixture.StatusPending,
		Votes:      fixture.VoteLedger{1772395200000: {memory.ClubIDNorthHarbour: true}},
	}
	fixtureRepo.
		On("GetByID", mock.Anything, "fx-001").
		Return(stored, true, nil).
		Twice()

	public, err := service.Get(ctx, testAnonymous, "fx-001")
	if err != nil {
		t.Fatalf("get fixture: %v", err)
	}
	if public.Votes != nil {
		t.Fatalf("anonymous caller must not see votes")
	}

	admin, err := service.Get(ctx, testAdmin, "fx-001")
	if err != nil {
		t.Fatalf("get fixture as admin: %v", err)
	}
	if !admin.Votes[1772395200000][memory.ClubIDNorthHarbour] {
		t.Fatalf("admin should see the vote ledger")
	}
}

func TestFixtureService_Get_NotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	fixtureRepo := fixturemock.NewRepository(t)
	service := NewFixtureService(fixtureRepo, nil, nil, nil, logging.NewNop(), testSeason)

	fixtureRepo.
		On("GetByID", mock.Anything, "fx-missing").
		Return(fixture.Fixture{}, false, nil).
		Once()

	_, err := service.Get(context.Background(), testAdmin, "fx-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFixtureService_Get_RepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	fixtureRepo := fixturemock.NewRepository(t)
	service := NewFixtureService(fixtureRepo, nil, nil, nil, logging.NewNop(), testSeason)
	repoErr := errors.New("connection reset")

	fixtureRepo.
		On("GetByID", mock.Anything, "fx-001").
		Return(fixture.Fixture{}, false, repoErr).
		Once()

	_, err := service.Get(context.Background(), testAdmin, "fx-001")
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected repository error to be wrapped, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("repository failure must not be reported as not found")
	}
}

func TestFixtureService_Create_DuplicateUsingMockery(t *testing.T) {
	t.Parallel()

	fixtureRepo := fixturemock.NewRepository(t)
	service := NewFixtureService(fixtureRepo, memory.NewClubRepository(memory.SeedClubs()), nil, nil, logging.NewNop(), testSeason)

	fixtureRepo.
		On("Create", mock.Anything, mock.MatchedBy(func(item fixture.Fixture) bool {
			return item.ExternalMatchID == "ext-77" && item.Version == 1
		})).
		Return(fixture.ErrDuplicate).
		Once()

	_, err := service.Create(context.Background(), testAdmin, CreateFixtureInput{
		HomeClubID:      memory.ClubIDNorthHarbour,
		AwayClubID:      memory.ClubIDRedLions,
		ExternalMatchID: "ext-77",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
