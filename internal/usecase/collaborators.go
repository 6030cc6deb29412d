package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/club-league/internal/domain/news"
)

// NotificationSink accepts newsworthy events for delivery. Delivery and retries are the sink's concern.
type NotificationSink interface {
	Publish(ctx context.Context, event news.Event) error
}

// ProviderPlayerLine is one player's line in a provider match record.
type ProviderPlayerLine struct {
	ExternalRef string
	Name        string
	Goals       int
	Assists     int
	Rating      float64
}

// ProviderMatch is a raw finished match as reported by the statistics provider.
type ProviderMatch struct {
	ExternalID      string
	HomeExternalRef string
	AwayExternalRef string
	HomeScore       int
	AwayScore       int
	PlayedAt        time.Time
	Home            []ProviderPlayerLine
	Away            []ProviderPlayerLine
}

// StatisticsProvider fetches recent finished matches for the given provider club references.
type StatisticsProvider interface {
	FetchRecentMatches(ctx context.Context, clubExternalRefs []string) ([]ProviderMatch, error)
}

type noopNotificationSink struct{}

func (noopNotificationSink) Publish(context.Context, news.Event) error { return nil }
