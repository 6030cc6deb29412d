package award

import "context"

type Repository interface {
	Get(ctx context.Context, season, clubID string) (Entry, bool, error)
	ListBySeason(ctx context.Context, season string) ([]Entry, error)
}
