package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-league/internal/domain/playerstat"
	qb "github.com/riskibarqy/club-league/internal/platform/querybuilder"
)

const (
	contributionsTable = "player_contributions"
	seasonStatsTable   = "player_season_stats"
)

type contributionTableModel struct {
	Season          string    `db:"season"`
	FixturePublicID string    `db:"fixture_public_id"`
	PlayerPublicID  string    `db:"player_public_id"`
	ClubPublicID    string    `db:"club_public_id"`
	Goals           int       `db:"goals"`
	Assists         int       `db:"assists"`
	Rating          float64   `db:"rating"`
	PlayedAt        time.Time `db:"played_at"`
}

type seasonStatTableModel struct {
	Season             string    `db:"season"`
	PlayerPublicID     string    `db:"player_public_id"`
	Appearances        int       `db:"appearances"`
	Goals              int       `db:"goals"`
	Assists            int       `db:"assists"`
	RatingSum          float64   `db:"rating_sum"`
	RatingCount        int       `db:"rating_count"`
	GoalStreak         int       `db:"goal_streak"`
	AssistStreak       int       `db:"assist_streak"`
	ContributionStreak int       `db:"contribution_streak"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type PlayerStatRepository struct {
	db *sqlx.DB
}

func NewPlayerStatRepository(db *sqlx.DB) *PlayerStatRepository {
	return &PlayerStatRepository{db: db}
}

func (r *PlayerStatRepository) ReplaceFixtureContributions(
	ctx context.Context,
	season, fixtureID string,
	rows []playerstat.Contribution,
) ([]playerstat.Contribution, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin replace contributions tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	selectQuery, selectArgs, err := qb.Select("*").From(contributionsTable).
		Where(
			qb.Eq("season", season),
			qb.Eq("fixture_public_id", fixtureID),
		).
		OrderBy("club_public_id", "player_public_id").
		ForUpdate().
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixture contributions query: %w", err)
	}
	var previousRows []contributionTableModel
	if err := tx.SelectContext(ctx, &previousRows, selectQuery, selectArgs...); err != nil {
		return nil, fmt.Errorf("select fixture contributions fixture=%s: %w", fixtureID, err)
	}

	deleteQuery, deleteArgs, err := qb.DeleteFrom(contributionsTable).
		Where(
			qb.Eq("season", season),
			qb.Eq("fixture_public_id", fixtureID),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build delete fixture contributions query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return nil, fmt.Errorf("delete fixture contributions fixture=%s: %w", fixtureID, err)
	}

	for _, row := range rows {
		model := contributionTableModel{
			Season:          season,
			FixturePublicID: fixtureID,
			PlayerPublicID:  row.PlayerID,
			ClubPublicID:    row.ClubID,
			Goals:           row.Goals,
			Assists:         row.Assists,
			Rating:          row.Rating,
			PlayedAt:        row.PlayedAt.UTC(),
		}
		query, args, err := qb.InsertModel(contributionsTable, model, "")
		if err != nil {
			return nil, fmt.Errorf("build insert contribution query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("insert contribution fixture=%s player=%s: %w", fixtureID, row.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit replace contributions tx: %w", err)
	}

	out := make([]playerstat.Contribution, 0, len(previousRows))
	for _, row := range previousRows {
		out = append(out, contributionFromRow(row))
	}
	return out, nil
}

func (r *PlayerStatRepository) ListContributionsByPlayer(ctx context.Context, season, playerID string) ([]playerstat.Contribution, error) {
	return r.listContributions(ctx, qb.Eq("season", season), qb.Eq("player_public_id", playerID))
}

func (r *PlayerStatRepository) ListContributionsBySeason(ctx context.Context, season string) ([]playerstat.Contribution, error) {
	return r.listContributions(ctx, qb.Eq("season", season))
}

func (r *PlayerStatRepository) listContributions(ctx context.Context, conditions ...qb.Condition) ([]playerstat.Contribution, error) {
	query, args, err := qb.Select("*").From(contributionsTable).
		Where(conditions...).
		OrderBy("played_at", "fixture_public_id", "club_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select contributions query: %w", err)
	}

	var rows []contributionTableModel
	err = retryPooled(func() error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("select contributions: %w", err)
	}

	out := make([]playerstat.Contribution, 0, len(rows))
	for _, row := range rows {
		out = append(out, contributionFromRow(row))
	}
	playerstat.SortHistory(out)
	return out, nil
}

func (r *PlayerStatRepository) UpsertStats(ctx context.Context, items []playerstat.Stat) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert player stats tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		model := seasonStatTableModel{
			Season:             item.Season,
			PlayerPublicID:     item.PlayerID,
			Appearances:        item.Appearances,
			Goals:              item.Goals,
			Assists:            item.Assists,
			RatingSum:          item.RatingSum,
			RatingCount:        item.RatingCount,
			GoalStreak:         item.GoalStreak,
			AssistStreak:       item.AssistStreak,
			ContributionStreak: item.ContributionStreak,
			UpdatedAt:          item.UpdatedAt.UTC(),
		}
		query, args, err := qb.InsertModel(seasonStatsTable, model, `ON CONFLICT (season, player_public_id)
DO UPDATE SET
    appearances = EXCLUDED.appearances,
    goals = EXCLUDED.goals,
    assists = EXCLUDED.assists,
    rating_sum = EXCLUDED.rating_sum,
    rating_count = EXCLUDED.rating_count,
    goal_streak = EXCLUDED.goal_streak,
    assist_streak = EXCLUDED.assist_streak,
    contribution_streak = EXCLUDED.contribution_streak,
    updated_at = EXCLUDED.updated_at`)
		if err != nil {
			return fmt.Errorf("build upsert player stat query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert player stat season=%s player=%s: %w", item.Season, item.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert player stats tx: %w", err)
	}
	return nil
}

func (r *PlayerStatRepository) GetStat(ctx context.Context, season, playerID string) (playerstat.Stat, bool, error) {
	query, args, err := qb.Select("*").From(seasonStatsTable).
		Where(
			qb.Eq("season", season),
			qb.Eq("player_public_id", playerID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return playerstat.Stat{}, false, fmt.Errorf("build select player stat query: %w", err)
	}

	var row seasonStatTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return playerstat.Stat{}, false, nil
		}
		return playerstat.Stat{}, false, fmt.Errorf("select player stat season=%s player=%s: %w", season, playerID, err)
	}
	return statFromRow(row), true, nil
}

func (r *PlayerStatRepository) ListStats(ctx context.Context, season string) ([]playerstat.Stat, error) {
	query, args, err := qb.Select("*").From(seasonStatsTable).
		Where(qb.Eq("season", season)).
		OrderBy("player_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player stats query: %w", err)
	}

	var rows []seasonStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player stats season=%s: %w", season, err)
	}

	out := make([]playerstat.Stat, 0, len(rows))
	for _, row := range rows {
		out = append(out, statFromRow(row))
	}
	return out, nil
}

func contributionFromRow(row contributionTableModel) playerstat.Contribution {
	return playerstat.Contribution{
		Season:    row.Season,
		FixtureID: row.FixturePublicID,
		PlayerID:  row.PlayerPublicID,
		ClubID:    row.ClubPublicID,
		Goals:     row.Goals,
		Assists:   row.Assists,
		Rating:    row.Rating,
		PlayedAt:  row.PlayedAt.UTC(),
	}
}

func statFromRow(row seasonStatTableModel) playerstat.Stat {
	return playerstat.Stat{
		Season:             row.Season,
		PlayerID:           row.PlayerPublicID,
		Appearances:        row.Appearances,
		Goals:              row.Goals,
		Assists:            row.Assists,
		RatingSum:          row.RatingSum,
		RatingCount:        row.RatingCount,
		GoalStreak:         row.GoalStreak,
		AssistStreak:       row.AssistStreak,
		ContributionStreak: row.ContributionStreak,
		UpdatedAt:          row.UpdatedAt.UTC(),
	}
}
