package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-league/internal/config"
	"github.com/riskibarqy/club-league/internal/domain/award"
	"github.com/riskibarqy/club-league/internal/domain/club"
	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/domain/player"
	"github.com/riskibarqy/club-league/internal/domain/playerstat"
	"github.com/riskibarqy/club-league/internal/domain/ranking"
	"github.com/riskibarqy/club-league/internal/domain/standing"
	"github.com/riskibarqy/club-league/internal/domain/wallet"
	repocache "github.com/riskibarqy/club-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/club-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/club-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/club-league/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

type repositories struct {
	fixtures  fixture.Repository
	clubs     club.Repository
	players   player.Repository
	stats     playerstat.Repository
	standings standing.Repository
	rankings  ranking.Repository
	wallets   wallet.Repository
	awards    award.Repository
}

func newMemoryRepositories() repositories {
	wallets := memory.NewWalletRepository()
	return repositories{
		fixtures:  memory.NewFixtureRepository(nil),
		clubs:     memory.NewClubRepository(memory.SeedClubs()),
		players:   memory.NewPlayerRepository(memory.SeedPlayers()),
		stats:     memory.NewPlayerStatRepository(),
		standings: memory.NewStandingRepository(),
		rankings:  memory.NewRankingRepository(nil),
		wallets:   wallets,
		awards:    wallets.Awards(),
	}
}

func newPostgresRepositories(db *sqlx.DB, cacheTTL time.Duration) repositories {
	wallets := postgres.NewWalletRepository(db)
	return repositories{
		fixtures:  postgres.NewFixtureRepository(db),
		clubs:     repocache.NewClubRepository(postgres.NewClubRepository(db), cacheTTL, nil),
		players:   postgres.NewPlayerRepository(db),
		stats:     postgres.NewPlayerStatRepository(db),
		standings: postgres.NewStandingRepository(db),
		rankings:  postgres.NewRankingRepository(db),
		wallets:   wallets,
		awards:    wallets.Awards(),
	}
}

func openPostgres(ctx context.Context, cfg config.Config, logger *logging.Logger) (*sqlx.DB, error) {
	dbName := dbNameFromURL(cfg.DBURL)
	db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbName),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if cfg.DBSeed {
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap seed: %w", err)
		}
		logger.Info("postgres seed checked", "db", dbName)
	}

	logger.Info("postgres connected", "db", dbName, "max_open_conns", cfg.DBMaxOpenConns)
	return db, nil
}
