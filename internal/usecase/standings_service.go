package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/domain/identity"
	"github.com/riskibarqy/club-league/internal/domain/standing"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

type StandingsService struct {
	fixtureRepo  fixture.Repository
	standingRepo standing.Repository
}

func NewStandingsService(fixtureRepo fixture.Repository, standingRepo standing.Repository) *StandingsService {
	return &StandingsService{
		fixtureRepo:  fixtureRepo,
		standingRepo: standingRepo,
	}
}

// Recompute rebuilds the table for scope from all final fixtures and replaces the stored snapshot.
func (s *StandingsService) Recompute(ctx context.Context, caller identity.Caller, scope standing.Scope) ([]standing.Standing, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.refresh(ctx, scope)
}

// List returns the stored table, computing it when nothing has been stored yet.
func (s *StandingsService) List(ctx context.Context, scope standing.Scope) ([]standing.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.List")
	defer span.End()

	scope, err := normalizeScope(scope)
	if err != nil {
		return nil, err
	}
	rows, err := s.standingRepo.ListByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}
	if len(rows) > 0 {
		return rows, nil
	}
	return s.compute(ctx, scope)
}

func (s *StandingsService) refresh(ctx context.Context, scope standing.Scope) ([]standing.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Recompute")
	defer span.End()

	scope, err := normalizeScope(scope)
	if err != nil {
		return nil, err
	}
	rows, err := s.compute(ctx, scope)
	if err != nil {
		return nil, err
	}
	if err := s.standingRepo.ReplaceByScope(ctx, scope, rows); err != nil {
		return nil, fmt.Errorf("replace standings: %w", err)
	}
	return rows, nil
}

func (s *StandingsService) compute(ctx context.Context, scope standing.Scope) ([]standing.Standing, error) {
	items, err := s.fixtureRepo.List(ctx, fixture.Filter{
		Season:      scope.Season,
		Competition: scope.Competition,
		Group:       scope.Group,
		Status:      fixture.StatusFinal,
	})
	if err != nil {
		return nil, fmt.Errorf("list final fixtures: %w", err)
	}
	return ComputeStandings(items), nil
}

// ComputeStandings builds a table from final fixtures. Order: points, goal difference, goals for, club id.
func ComputeStandings(items []fixture.Fixture) []standing.Standing {
	table := make(map[string]*standing.Standing)
	row := func(clubID string) *standing.Standing {
		if existing, ok := table[clubID]; ok {
			return existing
		}
		created := &standing.Standing{ClubID: clubID}
		table[clubID] = created
		return created
	}

	for _, item := range items {
		if !item.IsFinal() || item.Result == nil {
			continue
		}
		home, away := row(item.HomeClubID), row(item.AwayClubID)
		applyScore(home, item.Result.HomeScore, item.Result.AwayScore)
		applyScore(away, item.Result.AwayScore, item.Result.HomeScore)
	}

	out := make([]standing.Standing, 0, len(table))
	for _, item := range table {
		item.GoalDifference = item.GoalsFor - item.GoalsAgainst
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		left, right := out[i], out[j]
		if left.Points != right.Points {
			return left.Points > right.Points
		}
		if left.GoalDifference != right.GoalDifference {
			return left.GoalDifference > right.GoalDifference
		}
		if left.GoalsFor != right.GoalsFor {
			return left.GoalsFor > right.GoalsFor
		}
		return left.ClubID < right.ClubID
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

func applyScore(item *standing.Standing, scored, conceded int) {
	item.Played++
	item.GoalsFor += scored
	item.GoalsAgainst += conceded
	switch {
	case scored > conceded:
		item.Won++
		item.Points += pointsWin
	case scored == conceded:
		item.Drawn++
		item.Points += pointsDraw
	default:
		item.Lost++
	}
}

func normalizeScope(scope standing.Scope) (standing.Scope, error) {
	scope.Season = strings.TrimSpace(scope.Season)
	scope.Group = strings.TrimSpace(scope.Group)
	if scope.Season == "" {
		return standing.Scope{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	switch scope.Competition {
	case "":
		scope.Competition = fixture.CompetitionLeague
	case fixture.CompetitionLeague, fixture.CompetitionCup:
	default:
		return standing.Scope{}, fmt.Errorf("%w: invalid competition %q", ErrInvalidInput, scope.Competition)
	}
	return scope, nil
}
