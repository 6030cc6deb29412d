package httpapi

import (
	"context"

	"github.com/riskibarqy/club-league/internal/domain/identity"
)

type contextKey string

const callerContextKey contextKey = "club_league_caller"

func withCaller(ctx context.Context, caller identity.Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// callerFromContext returns the anonymous caller when no identity was resolved.
func callerFromContext(ctx context.Context) identity.Caller {
	caller, _ := ctx.Value(callerContextKey).(identity.Caller)
	return caller
}
