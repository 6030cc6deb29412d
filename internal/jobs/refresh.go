package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/club-league/internal/domain/ranking"
	"github.com/riskibarqy/club-league/internal/platform/logging"
	"github.com/robfig/cron/v3"
)

const defaultRunTimeout = 2 * time.Minute

// SeasonRefresher rebuilds the league table and rankings of one season.
type SeasonRefresher interface {
	Refresh(ctx context.Context, season string) ([]ranking.Ranking, error)
}

// StatsRepairer refolds player statistics whose fold failed after the result was stored.
type StatsRepairer interface {
	RetryPending(ctx context.Context) (int, error)
}

type RefreshConfig struct {
	Schedule   string
	Season     string
	RunTimeout time.Duration
	// Repairer is optional; it runs before every refresh.
	Repairer StatsRepairer
}

// RefreshScheduler runs SeasonRefresher on a cron schedule. Overlapping runs are skipped.
type RefreshScheduler struct {
	cron      *cron.Cron
	refresher SeasonRefresher
	repairer  StatsRepairer
	season    string
	timeout   time.Duration
	logger    *logging.Logger
}

func NewRefreshScheduler(cfg RefreshConfig, refresher SeasonRefresher, logger *logging.Logger) (*RefreshScheduler, error) {
	if refresher == nil {
		return nil, fmt.Errorf("refresh scheduler requires a refresher")
	}
	season := strings.TrimSpace(cfg.Season)
	if season == "" {
		return nil, fmt.Errorf("refresh scheduler requires a season")
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("jobs")
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = defaultRunTimeout
	}

	cronLog := cronLogger{logger: logger}
	s := &RefreshScheduler{
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		refresher: refresher,
		repairer:  cfg.Repairer,
		season:    season,
		timeout:   cfg.RunTimeout,
		logger:    logger,
	}
	if _, err := s.cron.AddFunc(cfg.Schedule, s.run); err != nil {
		return nil, fmt.Errorf("parse refresh schedule %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

func (s *RefreshScheduler) Start() {
	s.logger.Info("refresh scheduler started", "season", s.season, "next_run", s.NextRun())
	s.cron.Start()
}

// Stop halts the schedule and waits for an in-flight run, bounded by ctx.
func (s *RefreshScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("refresh scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *RefreshScheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	if !entries[0].Next.IsZero() {
		return entries[0].Next
	}
	return entries[0].Schedule.Next(time.Now())
}

// RunOnce repairs deferred statistics folds and refreshes the configured season immediately.
// A failed repair is logged and does not block the refresh.
func (s *RefreshScheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	if s.repairer != nil {
		repaired, err := s.repairer.RetryPending(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "statistics repair incomplete", "repaired", repaired, "error", err)
		} else if repaired > 0 {
			s.logger.InfoContext(ctx, "statistics repaired", "fixtures", repaired)
		}
	}
	items, err := s.refresher.Refresh(ctx, s.season)
	if err != nil {
		s.logger.ErrorContext(ctx, "season refresh failed", "season", s.season, "error", err)
		return err
	}
	s.logger.InfoContext(ctx, "season refreshed",
		"season", s.season,
		"ranked_clubs", len(items),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

func (s *RefreshScheduler) run() {
	_ = s.RunOnce(context.Background())
}

type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
