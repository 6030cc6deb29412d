package club

import "context"

type Repository interface {
	Upsert(ctx context.Context, item Club) error
	GetByID(ctx context.Context, id string) (Club, bool, error)
	List(ctx context.Context) ([]Club, error)
}
