package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/club-league/internal/domain/club"
	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/domain/identity"
	"github.com/riskibarqy/club-league/internal/platform/logging"
)

const (
	syncStatusApplied = "applied"
	syncStatusSkipped = "skipped"
)

type SyncResult struct {
	Season  string           `json:"season"`
	Fetched int              `json:"fetched"`
	Applied int              `json:"applied"`
	Skipped int              `json:"skipped"`
	Items   []SyncItemResult `json:"items"`
}

type SyncItemResult struct {
	ExternalID string `json:"external_id"`
	FixtureID  string `json:"fixture_id,omitempty"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
}

type syncPlanEntry struct {
	match     ProviderMatch
	fixtureID string
	swapped   bool
}

// MatchSyncService pulls finished matches from the statistics provider and reports them
// through the structured result path.
type MatchSyncService struct {
	provider    StatisticsProvider
	fixtureRepo fixture.Repository
	clubRepo    club.Repository
	rosters     *RosterCache
	results     *ResultService
	logger      *logging.Logger
}

func NewMatchSyncService(
	provider StatisticsProvider,
	fixtureRepo fixture.Repository,
	clubRepo club.Repository,
	rosters *RosterCache,
	results *ResultService,
	logger *logging.Logger,
) *MatchSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchSyncService{
		provider:    provider,
		fixtureRepo: fixtureRepo,
		clubRepo:    clubRepo,
		rosters:     rosters,
		results:     results,
		logger:      logger,
	}
}

// SyncRecentMatches fetches, plans and then applies. A provider failure aborts before any write.
func (s *MatchSyncService) SyncRecentMatches(ctx context.Context, caller identity.Caller, season string) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.SyncRecentMatches")
	defer span.End()

	if err := requireAdmin(caller); err != nil {
		return SyncResult{}, err
	}
	season = strings.TrimSpace(season)
	if season == "" {
		return SyncResult{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if s.provider == nil {
		return SyncResult{}, fmt.Errorf("%w: statistics provider is disabled", ErrDependencyUnavailable)
	}

	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list clubs: %w", err)
	}
	byRef := make(map[string]string, len(clubs))
	refs := make([]string, 0, len(clubs))
	for _, item := range clubs {
		ref := strings.TrimSpace(item.ExternalRef)
		if ref == "" {
			continue
		}
		byRef[ref] = item.ID
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	result := SyncResult{Season: season}
	if len(refs) == 0 {
		return result, nil
	}

	matches, err := s.provider.FetchRecentMatches(ctx, refs)
	if err != nil {
		s.logger.WarnContext(ctx, "fetch recent matches failed", "season", season, "error", err)
		return SyncResult{}, fmt.Errorf("%w: fetch recent matches: %v", ErrDependencyUnavailable, err)
	}
	result.Fetched = len(matches)

	plan, skipped, err := s.plan(ctx, season, matches, byRef)
	if err != nil {
		return SyncResult{}, err
	}
	result.Items = append(result.Items, skipped...)

	for _, entry := range plan {
		input, err := s.inputFor(ctx, entry, byRef)
		if err != nil {
			return result, err
		}
		if _, err := s.results.submit(ctx, caller, entry.fixtureID, input, fixture.SourceProvider); err != nil {
			return result, fmt.Errorf("apply provider match %s to fixture %s: %w", entry.match.ExternalID, entry.fixtureID, err)
		}
		result.Items = append(result.Items, SyncItemResult{
			ExternalID: entry.match.ExternalID,
			FixtureID:  entry.fixtureID,
			Status:     syncStatusApplied,
		})
	}

	for _, item := range result.Items {
		if item.Status == syncStatusApplied {
			result.Applied++
		} else {
			result.Skipped++
		}
	}
	s.logger.InfoContext(ctx, "provider sync finished",
		"season", season,
		"fetched", result.Fetched,
		"applied", result.Applied,
		"skipped", result.Skipped,
	)
	return result, nil
}

// plan matches every provider record to an open fixture between the same two clubs.
// Records already ingested, or with no matching fixture, are skipped.
func (s *MatchSyncService) plan(
	ctx context.Context,
	season string,
	matches []ProviderMatch,
	byRef map[string]string,
) ([]syncPlanEntry, []SyncItemResult, error) {
	open, err := s.fixtureRepo.List(ctx, fixture.Filter{Season: season})
	if err != nil {
		return nil, nil, fmt.Errorf("list fixtures: %w", err)
	}
	fixture.SortByPlayedAt(open)

	claimed := make(map[string]struct{})
	var (
		plan    []syncPlanEntry
		skipped []SyncItemResult
	)
	skip := func(match ProviderMatch, fixtureID, reason string) {
		skipped = append(skipped, SyncItemResult{
			ExternalID: match.ExternalID,
			FixtureID:  fixtureID,
			Status:     syncStatusSkipped,
			Reason:     reason,
		})
	}

	for _, match := range matches {
		externalID := strings.TrimSpace(match.ExternalID)
		if externalID == "" {
			skip(match, "", "missing provider id")
			continue
		}
		existing, exists, err := s.fixtureRepo.GetByExternalMatchID(ctx, externalID)
		if err != nil {
			return nil, nil, fmt.Errorf("get fixture by external id: %w", err)
		}
		if exists && existing.IsFinal() {
			skip(match, existing.ID, "already ingested")
			continue
		}

		home, okHome := byRef[strings.TrimSpace(match.HomeExternalRef)]
		away, okAway := byRef[strings.TrimSpace(match.AwayExternalRef)]
		if !okHome || !okAway {
			skip(match, "", "unknown club")
			continue
		}

		var entry *syncPlanEntry
		for _, item := range open {
			if item.IsFinal() {
				continue
			}
			if _, taken := claimed[item.ID]; taken {
				continue
			}
			switch {
			case item.HomeClubID == home && item.AwayClubID == away:
				entry = &syncPlanEntry{match: match, fixtureID: item.ID}
			case item.HomeClubID == away && item.AwayClubID == home:
				entry = &syncPlanEntry{match: match, fixtureID: item.ID, swapped: true}
			}
			if entry != nil {
				break
			}
		}
		if entry == nil {
			skip(match, "", "no open fixture between these clubs")
			continue
		}
		claimed[entry.fixtureID] = struct{}{}
		plan = append(plan, *entry)
	}
	return plan, skipped, nil
}

func (s *MatchSyncService) inputFor(ctx context.Context, entry syncPlanEntry, byRef map[string]string) (SubmitResultInput, error) {
	match := entry.match
	homeClub := byRef[strings.TrimSpace(match.HomeExternalRef)]
	awayClub := byRef[strings.TrimSpace(match.AwayExternalRef)]

	homeLines, err := s.linesFor(ctx, homeClub, match.Home)
	if err != nil {
		return SubmitResultInput{}, err
	}
	awayLines, err := s.linesFor(ctx, awayClub, match.Away)
	if err != nil {
		return SubmitResultInput{}, err
	}

	input := SubmitResultInput{
		HomeScore:       match.HomeScore,
		AwayScore:       match.AwayScore,
		Home:            homeLines,
		Away:            awayLines,
		ExternalMatchID: strings.TrimSpace(match.ExternalID),
	}
	if entry.swapped {
		input.HomeScore, input.AwayScore = input.AwayScore, input.HomeScore
		input.Home, input.Away = input.Away, input.Home
	}
	return input, nil
}

// linesFor maps provider player references onto the club roster; unknown references fall back to name resolution.
func (s *MatchSyncService) linesFor(ctx context.Context, clubID string, lines []ProviderPlayerLine) ([]StatLine, error) {
	roster, err := s.rosters.Roster(ctx, clubID)
	if err != nil {
		return nil, err
	}
	byRef := make(map[string]string, len(roster))
	for _, item := range roster {
		if ref := strings.TrimSpace(item.ExternalRef); ref != "" {
			byRef[ref] = item.ID
		}
	}

	out := make([]StatLine, 0, len(lines))
	for _, line := range lines {
		goals, assists, rating := line.Goals, line.Assists, line.Rating
		out = append(out, StatLine{
			PlayerID:    byRef[strings.TrimSpace(line.ExternalRef)],
			DisplayName: line.Name,
			Goals:       &goals,
			Assists:     &assists,
			Rating:      &rating,
		})
	}
	return out, nil
}
