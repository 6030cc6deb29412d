package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, item Player) error
	GetByID(ctx context.Context, id string) (Player, bool, error)
	ListByClub(ctx context.Context, clubID string) ([]Player, error)
	ListAll(ctx context.Context) ([]Player, error)
}
