package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/club-league/internal/domain/club"
	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/domain/identity"
	"github.com/riskibarqy/club-league/internal/platform/id"
	"github.com/riskibarqy/club-league/internal/platform/logging"
)

type CreateFixtureInput struct {
	Season          string
	Competition     string
	Group           string
	Round           string
	HomeClubID      string
	AwayClubID      string
	ExternalMatchID string
}

type VoteInput struct {
	At    time.Time
	Agree bool
	// ActAs lets an administrator vote as one of the participant clubs.
	ActAs string
}

type VoteOutcome struct {
	Fixture fixture.Fixture
	Locked  bool
}

type SetLineupInput struct {
	Formation   string
	Assignments map[string]string
}

type FixtureService struct {
	fixtureRepo   fixture.Repository
	clubRepo      club.Repository
	ids           id.Generator
	clock         clockwork.Clock
	logger        *logging.Logger
	defaultSeason string
}

func NewFixtureService(
	fixtureRepo fixture.Repository,
	clubRepo club.Repository,
	ids id.Generator,
	clock clockwork.Clock,
	logger *logging.Logger,
	defaultSeason string,
) *FixtureService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator("fx")
	}
	return &FixtureService{
		fixtureRepo:   fixtureRepo,
		clubRepo:      clubRepo,
		ids:           ids,
		clock:         clock,
		logger:        logger,
		defaultSeason: strings.TrimSpace(defaultSeason),
	}
}

func (s *FixtureService) Create(ctx context.Context, caller identity.Caller, input CreateFixtureInput) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.Create")
	defer span.End()

	if err := requireAdmin(caller); err != nil {
		return fixture.Fixture{}, err
	}

	competition := fixture.Competition(strings.ToLower(strings.TrimSpace(input.Competition)))
	if competition == "" {
		competition = fixture.CompetitionLeague
	}
	season := firstNonEmpty(input.Season, s.defaultSeason)

	newID, err := s.ids.NewID()
	if err != nil {
		return fixture.Fixture{}, fmt.Errorf("generate fixture id: %w", err)
	}
	now := s.clock.Now().UTC()
	item := fixture.Fixture{
		ID:              newID,
		Season:          season,
		Competition:     competition,
		Group:           strings.TrimSpace(input.Group),
		Round:           strings.TrimSpace(input.Round),
		HomeClubID:      strings.TrimSpace(input.HomeClubID),
		AwayClubID:      strings.TrimSpace(input.AwayClubID),
		ExternalMatchID: strings.TrimSpace(input.ExternalMatchID),
		Status:          fixture.StatusPending,
		Votes:           make(fixture.VoteLedger),
		Lineups:         make(map[string]fixture.Lineup),
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}
	if err := item.Validate(); err != nil {
		return fixture.Fixture{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	for _, clubID := range []string{item.HomeClubID, item.AwayClubID} {
		_, exists, err := s.clubRepo.GetByID(ctx, clubID)
		if err != nil {
			return fixture.Fixture{}, fmt.Errorf("get club: %w", err)
		}
		if !exists {
			return fixture.Fixture{}, fmt.Errorf("%w: club=%s", ErrNotFound, clubID)
		}
	}

	if err := s.fixtureRepo.Create(ctx, item); err != nil {
		if errors.Is(err, fixture.ErrDuplicate) {
			return fixture.Fixture{}, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return fixture.Fixture{}, fmt.Errorf("create fixture: %w", err)
	}
	return item, nil
}

func (s *FixtureService) Get(ctx context.Context, caller identity.Caller, fixtureID string) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.Get")
	defer span.End()

	item, err := s.load(ctx, fixtureID)
	if err != nil {
		return fixture.Fixture{}, err
	}
	return project(caller, item), nil
}

func (s *FixtureService) List(ctx context.Context, caller identity.Caller, filter fixture.Filter) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.List")
	defer span.End()

	filter.Season = strings.TrimSpace(filter.Season)
	filter.ClubID = strings.TrimSpace(filter.ClubID)
	switch filter.Status {
	case "", fixture.StatusPending, fixture.StatusScheduled, fixture.StatusFinal:
	default:
		return nil, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, filter.Status)
	}

	items, err := s.fixtureRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	out := make([]fixture.Fixture, 0, len(items))
	for _, item := range items {
		out = append(out, project(caller, item))
	}
	return out, nil
}

// Propose adds a candidate kickoff. Re-proposing an existing timestamp changes nothing.
func (s *FixtureService) Propose(ctx context.Context, caller identity.Caller, fixtureID string, at time.Time) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.Propose")
	defer span.End()

	if at.IsZero() || at.UnixMilli() <= 0 {
		return fixture.Fixture{}, fmt.Errorf("%w: proposal timestamp must be positive", ErrInvalidInput)
	}

	item, err := s.update(ctx, caller, fixtureID, func(item *fixture.Fixture, owner fixture.Owner) error {
		changed, err := item.Propose(at, owner.Key())
		if err != nil {
			return err
		}
		if !changed {
			return fixture.ErrUnchanged
		}
		return nil
	})
	if err != nil {
		return fixture.Fixture{}, err
	}
	return item, nil
}

// Vote records the caller's agreement and locks the fixture once both clubs agree on one timestamp.
func (s *FixtureService) Vote(ctx context.Context, caller identity.Caller, fixtureID string, input VoteInput) (VoteOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.Vote")
	defer span.End()

	if input.At.IsZero() || input.At.UnixMilli() <= 0 {
		return VoteOutcome{}, fmt.Errorf("%w: vote timestamp must be positive", ErrInvalidInput)
	}
	actAs := strings.TrimSpace(input.ActAs)
	if actAs != "" && !caller.IsAdmin() {
		return VoteOutcome{}, fmt.Errorf("%w: only administrators may vote on behalf of a club", ErrForbidden)
	}

	locked := false
	item, err := s.update(ctx, caller, fixtureID, func(item *fixture.Fixture, owner fixture.Owner) error {
		voter := owner.Key()
		if actAs != "" {
			if _, ok := item.SideOf(actAs); !ok {
				return fmt.Errorf("%w: club %s does not participate in fixture %s", ErrInvalidInput, actAs, item.ID)
			}
			voter = actAs
		}
		var err error
		locked, err = item.Vote(input.At, voter, input.Agree, s.clock.Now())
		return err
	})
	if err != nil {
		return VoteOutcome{}, err
	}
	if locked {
		s.logger.InfoContext(ctx, "fixture locked", "fixture_id", item.ID, "when", item.When)
	}
	return VoteOutcome{Fixture: item, Locked: locked}, nil
}

// Unlock is the administrative override that returns a scheduled fixture to negotiation.
func (s *FixtureService) Unlock(ctx context.Context, caller identity.Caller, fixtureID string) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.Unlock")
	defer span.End()

	if err := requireAdmin(caller); err != nil {
		return fixture.Fixture{}, err
	}
	return s.update(ctx, caller, fixtureID, func(item *fixture.Fixture, _ fixture.Owner) error {
		return item.Unlock()
	})
}

func (s *FixtureService) SetLineup(ctx context.Context, caller identity.Caller, fixtureID string, input SetLineupInput) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.SetLineup")
	defer span.End()

	formation := strings.TrimSpace(input.Formation)
	if formation == "" {
		return fixture.Fixture{}, fmt.Errorf("%w: formation is required", ErrInvalidInput)
	}
	assignments := make(map[string]string, len(input.Assignments))
	for position, playerID := range input.Assignments {
		position = strings.TrimSpace(position)
		if position == "" {
			return fixture.Fixture{}, fmt.Errorf("%w: lineup position is required", ErrInvalidInput)
		}
		assignments[position] = strings.TrimSpace(playerID)
	}

	return s.update(ctx, caller, fixtureID, func(item *fixture.Fixture, owner fixture.Owner) error {
		return item.SetLineup(fixture.Lineup{
			Owner:       owner,
			Formation:   formation,
			Assignments: assignments,
			UpdatedAt:   s.clock.Now().UTC(),
		})
	})
}

func (s *FixtureService) load(ctx context.Context, fixtureID string) (fixture.Fixture, error) {
	fixtureID = strings.TrimSpace(fixtureID)
	if fixtureID == "" {
		return fixture.Fixture{}, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}
	item, exists, err := s.fixtureRepo.GetByID(ctx, fixtureID)
	if err != nil {
		return fixture.Fixture{}, fmt.Errorf("get fixture: %w", err)
	}
	if !exists {
		return fixture.Fixture{}, fmt.Errorf("%w: fixture=%s", ErrNotFound, fixtureID)
	}
	return item, nil
}

// update authorizes the caller against the stored fixture and applies fn under the fixture's write lock.
func (s *FixtureService) update(
	ctx context.Context,
	caller identity.Caller,
	fixtureID string,
	fn func(item *fixture.Fixture, owner fixture.Owner) error,
) (fixture.Fixture, error) {
	fixtureID = strings.TrimSpace(fixtureID)
	if fixtureID == "" {
		return fixture.Fixture{}, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}

	item, exists, err := s.fixtureRepo.Update(ctx, fixtureID, func(item *fixture.Fixture) error {
		owner, err := participantOwner(caller, *item)
		if err != nil {
			return err
		}
		if err := fn(item, owner); err != nil {
			return err
		}
		item.UpdatedAt = s.clock.Now().UTC()
		item.Version++
		return nil
	})
	if err != nil {
		return fixture.Fixture{}, mapFixtureError(err)
	}
	if !exists {
		return fixture.Fixture{}, fmt.Errorf("%w: fixture=%s", ErrNotFound, fixtureID)
	}
	return project(caller, item), nil
}

func project(caller identity.Caller, item fixture.Fixture) fixture.Fixture {
	if canSeeVotes(caller, item) {
		return item
	}
	return item.Public()
}
