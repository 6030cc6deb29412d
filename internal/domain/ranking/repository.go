package ranking

import "context"

type Repository interface {
	UpsertMany(ctx context.Context, items []Ranking) error
	GetByClub(ctx context.Context, season, clubID string) (Ranking, bool, error)
	ListBySeason(ctx context.Context, season string) ([]Ranking, error)
}
