package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-league/internal/domain/ranking"
	qb "github.com/riskibarqy/club-league/internal/platform/querybuilder"
)

type rankingTableModel struct {
	Season       string    `db:"season"`
	ClubPublicID string    `db:"club_public_id"`
	Position     int       `db:"position"`
	CupStage     string    `db:"cup_stage"`
	Points       int       `db:"points"`
	Tier         string    `db:"tier"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type RankingRepository struct {
	db *sqlx.DB
}

func NewRankingRepository(db *sqlx.DB) *RankingRepository {
	return &RankingRepository{db: db}
}

func (r *RankingRepository) UpsertMany(ctx context.Context, items []ranking.Ranking) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert rankings tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		model := rankingTableModel{
			Season:       item.Season,
			ClubPublicID: item.ClubID,
			Position:     item.Position,
			CupStage:     string(item.CupStage),
			Points:       item.Points,
			Tier:         string(item.Tier),
			UpdatedAt:    item.UpdatedAt.UTC(),
		}
		query, args, err := qb.InsertModel("club_rankings", model, `ON CONFLICT (season, club_public_id)
DO UPDATE SET
    position = EXCLUDED.position,
    cup_stage = EXCLUDED.cup_stage,
    points = EXCLUDED.points,
    tier = EXCLUDED.tier,
    updated_at = EXCLUDED.updated_at`)
		if err != nil {
			return fmt.Errorf("build upsert ranking query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert ranking season=%s club=%s: %w", item.Season, item.ClubID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert rankings tx: %w", err)
	}
	return nil
}

func (r *RankingRepository) GetByClub(ctx context.Context, season, clubID string) (ranking.Ranking, bool, error) {
	query, args, err := qb.Select("*").From("club_rankings").
		Where(
			qb.Eq("season", season),
			qb.Eq("club_public_id", clubID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return ranking.Ranking{}, false, fmt.Errorf("build select ranking query: %w", err)
	}

	var row rankingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return ranking.Ranking{}, false, nil
		}
		return ranking.Ranking{}, false, fmt.Errorf("select ranking season=%s club=%s: %w", season, clubID, err)
	}
	return rankingFromRow(row), true, nil
}

func (r *RankingRepository) ListBySeason(ctx context.Context, season string) ([]ranking.Ranking, error) {
	query, args, err := qb.Select("*").From("club_rankings").
		Where(qb.Eq("season", season)).
		OrderBy("position", "club_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select rankings query: %w", err)
	}

	var rows []rankingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select rankings season=%s: %w", season, err)
	}

	out := make([]ranking.Ranking, 0, len(rows))
	for _, row := range rows {
		out = append(out, rankingFromRow(row))
	}
	return out, nil
}

func rankingFromRow(row rankingTableModel) ranking.Ranking {
	return ranking.Ranking{
		ClubID:    row.ClubPublicID,
		Season:    row.Season,
		Position:  row.Position,
		CupStage:  ranking.CupStage(row.CupStage),
		Points:    row.Points,
		Tier:      ranking.Tier(row.Tier),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}
