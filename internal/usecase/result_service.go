package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/club-league/internal/domain/club"
	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/domain/identity"
	"github.com/riskibarqy/club-league/internal/domain/news"
	"github.com/riskibarqy/club-league/internal/domain/player"
	"github.com/riskibarqy/club-league/internal/platform/logging"
	"github.com/riskibarqy/club-league/internal/usecase/freetext"
)

// StatLine is one reported player line. Missing or negative numbers count as zero.
type StatLine struct {
	PlayerID    string
	DisplayName string
	Goals       *int
	Assists     *int
	Rating      *float64
}

type SubmitResultInput struct {
	HomeScore int
	AwayScore int
	Summary   string
	HomeMOTM  string
	AwayMOTM  string
	Home      []StatLine
	Away      []StatLine
	// ExternalMatchID links the fixture to a provider record; empty keeps the current link.
	ExternalMatchID string
}

// FreeTextOutcome reports what the transcript parser recognized. Empty outcomes leave the fixture untouched.
type FreeTextOutcome struct {
	Fixture fixture.Fixture
	Parsed  freetext.Parsed
	Empty   bool
	Applied bool
}

// PlayerResolver maps a display name to a registered player within a club scope.
type PlayerResolver interface {
	Resolve(ctx context.Context, clubID, displayName string) (player.Player, bool, error)
}

type ResultService struct {
	fixtureRepo fixture.Repository
	clubRepo    club.Repository
	players     PlayerResolver
	stats       *StatsService
	sink        NotificationSink
	clock       clockwork.Clock
	logger      *logging.Logger
}

func NewResultService(
	fixtureRepo fixture.Repository,
	clubRepo club.Repository,
	players PlayerResolver,
	stats *StatsService,
	sink NotificationSink,
	clock clockwork.Clock,
	logger *logging.Logger,
) *ResultService {
	if sink == nil {
		sink = noopNotificationSink{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultService{
		fixtureRepo: fixtureRepo,
		clubRepo:    clubRepo,
		players:     players,
		stats:       stats,
		sink:        sink,
		clock:       clock,
		logger:      logger,
	}
}

// SubmitResult finalizes a fixture from a structured report by an admin or a participant manager.
// Only an admin may overwrite an already final fixture.
func (s *ResultService) SubmitResult(ctx context.Context, caller identity.Caller, fixtureID string, input SubmitResultInput) (fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.SubmitResult")
	defer span.End()

	return s.submit(ctx, caller, fixtureID, input, fixture.SourceStructured)
}

// SubmitFreeText parses a pasted transcript and, when anything was recognized, finalizes the fixture with it.
func (s *ResultService) SubmitFreeText(ctx context.Context, caller identity.Caller, fixtureID, text string) (FreeTextOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.SubmitFreeText")
	defer span.End()

	if err := requireAdmin(caller); err != nil {
		return FreeTextOutcome{}, err
	}
	item, err := s.load(ctx, fixtureID)
	if err != nil {
		return FreeTextOutcome{}, err
	}

	opts := freetext.Options{}
	if home, ok, err := s.clubRepo.GetByID(ctx, item.HomeClubID); err != nil {
		return FreeTextOutcome{}, fmt.Errorf("get home club: %w", err)
	} else if ok {
		opts.HomeClubName = home.Name
	}
	if away, ok, err := s.clubRepo.GetByID(ctx, item.AwayClubID); err != nil {
		return FreeTextOutcome{}, fmt.Errorf("get away club: %w", err)
	} else if ok {
		opts.AwayClubName = away.Name
	}

	parsed := freetext.Parse(text, opts)
	if parsed.Empty() {
		return FreeTextOutcome{Fixture: item, Parsed: parsed, Empty: true}, nil
	}

	input := SubmitResultInput{
		HomeScore: derefInt(parsed.HomeScore),
		AwayScore: derefInt(parsed.AwayScore),
		Summary:   parsed.Summary,
		HomeMOTM:  parsed.HomeMOTM,
		AwayMOTM:  parsed.AwayMOTM,
		Home:      linesFromParsed(parsed.Home),
		Away:      linesFromParsed(parsed.Away),
	}
	updated, err := s.submit(ctx, caller, item.ID, input, fixture.SourceFreeText)
	if err != nil {
		return FreeTextOutcome{}, err
	}
	return FreeTextOutcome{Fixture: updated, Parsed: parsed, Applied: true}, nil
}

func (s *ResultService) submit(
	ctx context.Context,
	caller identity.Caller,
	fixtureID string,
	input SubmitResultInput,
	source fixture.ResultSource,
) (fixture.Fixture, error) {
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return fixture.Fixture{}, fmt.Errorf("%w: scores must not be negative", ErrInvalidInput)
	}
	item, err := s.load(ctx, fixtureID)
	if err != nil {
		return fixture.Fixture{}, err
	}
	if err := authorizeReport(caller, item); err != nil {
		return fixture.Fixture{}, err
	}

	result := fixture.Result{
		HomeScore: input.HomeScore,
		AwayScore: input.AwayScore,
		Summary:   strings.TrimSpace(input.Summary),
		HomeMOTM:  strings.TrimSpace(input.HomeMOTM),
		AwayMOTM:  strings.TrimSpace(input.AwayMOTM),
		Source:    source,
	}
	for _, side := range []fixture.Side{fixture.SideHome, fixture.SideAway} {
		lines := input.Home
		if side == fixture.SideAway {
			lines = input.Away
		}
		rows, unresolved, err := s.resolveLines(ctx, item.ClubFor(side), side, lines)
		if err != nil {
			return fixture.Fixture{}, err
		}
		if side == fixture.SideAway {
			result.Away = rows
		} else {
			result.Home = rows
		}
		result.Unresolved = append(result.Unresolved, unresolved...)
	}

	updated, exists, err := s.fixtureRepo.Update(ctx, item.ID, func(current *fixture.Fixture) error {
		if err := authorizeReport(caller, *current); err != nil {
			return err
		}
		owner, err := participantOwner(caller, *current)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		current.Finalize(result, owner.Key(), now)
		if externalID := strings.TrimSpace(input.ExternalMatchID); externalID != "" {
			current.ExternalMatchID = externalID
		}
		current.UpdatedAt = now.UTC()
		current.Version++
		return nil
	})
	if err != nil {
		return fixture.Fixture{}, mapFixtureError(err)
	}
	if !exists {
		return fixture.Fixture{}, fmt.Errorf("%w: fixture=%s", ErrNotFound, item.ID)
	}

	// The result is committed; a failed fold stays pending and is retried by the refresh job.
	if err := s.stats.ApplyFixture(ctx, updated); err != nil {
		s.logger.WarnContext(ctx, "result stored, player statistics fold deferred",
			"fixture_id", updated.ID,
			"season", updated.Season,
			"error", err,
		)
	}
	s.publish(ctx, updated)

	if len(result.Unresolved) > 0 {
		s.logger.InfoContext(ctx, "result stored with unresolved players",
			"fixture_id", updated.ID,
			"unresolved", len(result.Unresolved),
		)
	}
	return project(caller, updated), nil
}

func (s *ResultService) resolveLines(
	ctx context.Context,
	clubID string,
	side fixture.Side,
	lines []StatLine,
) ([]fixture.DetailRow, []fixture.UnresolvedName, error) {
	rows := make([]fixture.DetailRow, 0, len(lines))
	var unresolved []fixture.UnresolvedName
	for _, line := range lines {
		row := fixture.DetailRow{
			PlayerID:    strings.TrimSpace(line.PlayerID),
			DisplayName: strings.TrimSpace(line.DisplayName),
			Goals:       derefInt(line.Goals),
			Assists:     derefInt(line.Assists),
			Rating:      derefFloat(line.Rating),
		}
		if row.PlayerID == "" && row.DisplayName == "" {
			continue
		}
		if row.PlayerID == "" {
			match, ok, err := s.players.Resolve(ctx, clubID, row.DisplayName)
			if err != nil {
				return nil, nil, fmt.Errorf("resolve player %q: %w", row.DisplayName, err)
			}
			if ok {
				row.PlayerID = match.ID
			} else {
				unresolved = append(unresolved, fixture.UnresolvedName{Side: side, Name: row.DisplayName})
			}
		}
		rows = append(rows, row)
	}
	return rows, unresolved, nil
}

// publish hands feats to the sink. Failures are logged and never fail the report.
func (s *ResultService) publish(ctx context.Context, item fixture.Fixture) {
	for _, event := range news.Detect(item, s.clock.Now()) {
		if err := s.sink.Publish(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "publish news event failed",
				"fixture_id", item.ID,
				"kind", string(event.Kind),
				"dedupe_key", event.DedupeKey(),
				"error", err,
			)
		}
	}
}

func (s *ResultService) load(ctx context.Context, fixtureID string) (fixture.Fixture, error) {
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

func authorizeReport(caller identity.Caller, item fixture.Fixture) error {
	if _, err := participantOwner(caller, item); err != nil {
		return err
	}
	if item.IsFinal() && !caller.IsAdmin() {
		return fmt.Errorf("%w: fixture %s is final; only an administrator may re-report", ErrConflict, item.ID)
	}
	return nil
}

func linesFromParsed(rows []freetext.Row) []StatLine {
	out := make([]StatLine, 0, len(rows))
	for _, row := range rows {
		goals, assists, rating := row.Goals, row.Assists, row.Rating
		out = append(out, StatLine{
			DisplayName: row.Name,
			Goals:       &goals,
			Assists:     &assists,
			Rating:      &rating,
		})
	}
	return out
}
