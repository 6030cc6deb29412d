package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/club-league/external/statsprovider"
	"github.com/riskibarqy/club-league/internal/config"
	"github.com/riskibarqy/club-league/internal/domain/wallet"
	"github.com/riskibarqy/club-league/internal/infrastructure/account/gate"
	"github.com/riskibarqy/club-league/internal/infrastructure/notify"
	"github.com/riskibarqy/club-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/club-league/internal/jobs"
	"github.com/riskibarqy/club-league/internal/platform/id"
	"github.com/riskibarqy/club-league/internal/platform/logging"
	"github.com/riskibarqy/club-league/internal/usecase"
)

// App is the assembled API process: HTTP server, optional refresh schedule and
// the resources they hold.
type App struct {
	Server    *http.Server
	Scheduler *jobs.RefreshScheduler

	closers []func(context.Context) error
	logger  *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}
	clock := clockwork.NewRealClock()

	repos, err := a.openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var sink usecase.NotificationSink
	if cfg.NotifyEnabled {
		webhook, err := notify.NewWebhookSink(notify.WebhookConfig{
			URL:            cfg.NotifyWebhookURL,
			Timeout:        cfg.NotifyTimeout,
			Retries:        cfg.NotifyRetries,
			Workers:        cfg.NotifyWorkers,
			DedupeTTL:      cfg.NotifyDedupeTTL,
			Logger:         logger.Named("notify"),
			Clock:          clock,
			CircuitBreaker: cfg.NotifyCircuit,
		})
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("build notification sink: %w", err)
		}
		a.closers = append(a.closers, webhook.Close)
		sink = webhook
	}

	var provider usecase.StatisticsProvider
	if cfg.StatsProviderEnabled {
		client, err := statsprovider.NewClient(statsprovider.ClientConfig{
			BaseURL:           cfg.StatsProviderBaseURL,
			Token:             cfg.StatsProviderToken,
			Timeout:           cfg.StatsProviderTimeout,
			MaxRetries:        cfg.StatsProviderMaxRetries,
			RequestsPerMinute: cfg.StatsProviderRequestsPerMinute,
			FanOut:            cfg.StatsProviderFanOut,
			Logger:            logger.Named("statsprovider"),
			Clock:             clock,
			CircuitBreaker:    cfg.StatsProviderCircuit,
		})
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("build statistics provider: %w", err)
		}
		provider = client
	}

	var verifier httpapi.TokenVerifier
	if cfg.IdentityBaseURL != "" {
		verifier = gate.NewClient(gate.ClientConfig{
			BaseURL:        cfg.IdentityBaseURL,
			IntrospectPath: cfg.IdentityIntrospectPath,
			Timeout:        cfg.IdentityTimeout,
			CacheTTL:       cfg.IdentityCacheTTL,
			Logger:         logger.Named("gate"),
			Clock:          clock,
			CircuitBreaker: cfg.IdentityCircuit,
		})
	} else {
		logger.Warn("identity service not configured, bearer tokens will be rejected")
	}

	rosters := usecase.NewRosterCache(repos.players, cfg.CacheTTL, clock)
	players := usecase.NewPlayerService(repos.players, repos.clubs, rosters, id.NewUUIDGenerator("pl"))
	stats := usecase.NewStatsService(repos.fixtures, repos.stats, clock, logger.Named("stats"), cfg.StatsWorkers)
	standings := usecase.NewStandingsService(repos.fixtures, repos.standings)
	rankings := usecase.NewRankingService(repos.rankings, repos.clubs, standings, clock)
	results := usecase.NewResultService(repos.fixtures, repos.clubs, players, stats, sink, clock, logger.Named("results"))
	wallets := usecase.NewWalletService(repos.wallets, repos.awards, repos.clubs, rankings, usecase.WalletConfig{
		Season:      cfg.LeagueSeason,
		SeedBalance: cfg.WalletSeedBalance,
		Rates: wallet.Rates{
			Elite:  cfg.WalletRateElite,
			Mid:    cfg.WalletRateMid,
			Bottom: cfg.WalletRateBottom,
		},
	}, clock, logger.Named("wallets"))

	handler := httpapi.NewHandler(httpapi.Services{
		Fixtures:  usecase.NewFixtureService(repos.fixtures, repos.clubs, id.NewUUIDGenerator("fx"), clock, logger.Named("fixtures"), cfg.LeagueSeason),
		Results:   results,
		Standings: standings,
		Stats:     stats,
		Rankings:  rankings,
		Wallets:   wallets,
		Sync:      usecase.NewMatchSyncService(provider, repos.fixtures, repos.clubs, rosters, results, logger.Named("sync")),
		Players:   players,
	}, logger)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, verifier, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if cfg.RefreshCron != "" {
		scheduler, err := jobs.NewRefreshScheduler(jobs.RefreshConfig{
			Schedule: cfg.RefreshCron,
			Season:   cfg.LeagueSeason,
			Repairer: stats,
		}, rankings, logger)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.Scheduler = scheduler
	}

	logger.Info("app assembled",
		"storage", cfg.StorageDriver,
		"season", cfg.LeagueSeason,
		"stats_provider", cfg.StatsProviderEnabled,
		"notify", cfg.NotifyEnabled,
		"refresh_cron", cfg.RefreshCron,
	)
	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg config.Config) (repositories, error) {
	if cfg.StorageDriver != config.StoragePostgres {
		return newMemoryRepositories(), nil
	}

	db, err := openPostgres(ctx, cfg, a.logger.Named("postgres"))
	if err != nil {
		return repositories{}, err
	}
	a.closers = append(a.closers, func(context.Context) error { return db.Close() })
	return newPostgresRepositories(db, cfg.CacheTTL), nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
