package standing

import "context"

type Repository interface {
	ListByScope(ctx context.Context, scope Scope) ([]Standing, error)
	ReplaceByScope(ctx context.Context, scope Scope, rows []Standing) error
}
