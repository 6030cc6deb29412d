package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-league/internal/domain/standing"
	qb "github.com/riskibarqy/club-league/internal/platform/querybuilder"
)

type standingTableModel struct {
	Season         string `db:"season"`
	Competition    string `db:"competition"`
	GroupName      string `db:"group_name"`
	ClubPublicID   string `db:"club_public_id"`
	Position       int    `db:"position"`
	Played         int    `db:"played"`
	Won            int    `db:"won"`
	Drawn          int    `db:"drawn"`
	Lost           int    `db:"lost"`
	GoalsFor       int    `db:"goals_for"`
	GoalsAgainst   int    `db:"goals_against"`
	GoalDifference int    `db:"goal_difference"`
	Points         int    `db:"points"`
}

type StandingRepository struct {
	db *sqlx.DB
}

func NewStandingRepository(db *sqlx.DB) *StandingRepository {
	return &StandingRepository{db: db}
}

func (r *StandingRepository) ListByScope(ctx context.Context, scope standing.Scope) ([]standing.Standing, error) {
	query, args, err := qb.Select("*").From("standings").
		Where(scopeConditions(scope)...).
		OrderBy("position", "club_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select standings query: %w", err)
	}

	var rows []standingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select standings scope=%s: %w", scope.Key(), err)
	}

	out := make([]standing.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, standing.Standing{
			ClubID:         row.ClubPublicID,
			Position:       row.Position,
			Played:         row.Played,
			Won:            row.Won,
			Drawn:          row.Drawn,
			Lost:           row.Lost,
			GoalsFor:       row.GoalsFor,
			GoalsAgainst:   row.GoalsAgainst,
			GoalDifference: row.GoalDifference,
			Points:         row.Points,
		})
	}
	return out, nil
}

// ReplaceByScope swaps the whole table for scope in one transaction.
func (r *StandingRepository) ReplaceByScope(ctx context.Context, scope standing.Scope, rows []standing.Standing) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace standings tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery, deleteArgs, err := qb.DeleteFrom("standings").
		Where(scopeConditions(scope)...).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete standings query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete standings scope=%s: %w", scope.Key(), err)
	}

	for _, row := range rows {
		model := standingTableModel{
			Season:         scope.Season,
			Competition:    string(scope.Competition),
			GroupName:      scope.Group,
			ClubPublicID:   row.ClubID,
			Position:       row.Position,
			Played:         row.Played,
			Won:            row.Won,
			Drawn:          row.Drawn,
			Lost:           row.Lost,
			GoalsFor:       row.GoalsFor,
			GoalsAgainst:   row.GoalsAgainst,
			GoalDifference: row.GoalDifference,
			Points:         row.Points,
		}
		query, args, err := qb.InsertModel("standings", model, "")
		if err != nil {
			return fmt.Errorf("build insert standing query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert standing club=%s: %w", row.ClubID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace standings tx: %w", err)
	}
	return nil
}

func scopeConditions(scope standing.Scope) []qb.Condition {
	return []qb.Condition{
		qb.Eq("season", scope.Season),
		qb.Eq("competition", string(scope.Competition)),
		qb.Eq("group_name", scope.Group),
	}
}
