package playerstat

import "context"

type Repository interface {
	// ReplaceFixtureContributions swaps the rows stored for fixtureID and returns the rows it replaced.
	ReplaceFixtureContributions(ctx context.Context, season, fixtureID string, rows []Contribution) ([]Contribution, error)
	ListContributionsByPlayer(ctx context.Context, season, playerID string) ([]Contribution, error)
	ListContributionsBySeason(ctx context.Context, season string) ([]Contribution, error)
	UpsertStats(ctx context.Context, items []Stat) error
	GetStat(ctx context.Context, season, playerID string) (Stat, bool, error)
	ListStats(ctx context.Context, season string) ([]Stat, error)
}
