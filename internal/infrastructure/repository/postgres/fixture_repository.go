package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-league/internal/domain/fixture"
	qb "github.com/riskibarqy/club-league/internal/platform/querybuilder"
)

const fixturesTable = "fixtures"

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) Create(ctx context.Context, item fixture.Fixture) error {
	model, err := fixtureToInsertModel(item)
	if err != nil {
		return fmt.Errorf("encode fixture id=%s: %w", item.ID, err)
	}
	query, args, err := qb.InsertModel(fixturesTable, model, "")
	if err != nil {
		return fmt.Errorf("build insert fixture query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: id=%s", fixture.ErrDuplicate, item.ID)
		}
		return fmt.Errorf("insert fixture id=%s: %w", item.ID, err)
	}
	return nil
}

func (r *FixtureRepository) GetByID(ctx context.Context, id string) (fixture.Fixture, bool, error) {
	return r.getOne(ctx, r.db, qb.Eq("public_id", strings.TrimSpace(id)), false)
}

func (r *FixtureRepository) GetByExternalMatchID(ctx context.Context, externalMatchID string) (fixture.Fixture, bool, error) {
	externalMatchID = strings.TrimSpace(externalMatchID)
	if externalMatchID == "" {
		return fixture.Fixture{}, false, nil
	}
	return r.getOne(ctx, r.db, qb.Eq("external_match_id", externalMatchID), false)
}

func (r *FixtureRepository) List(ctx context.Context, filter fixture.Filter) ([]fixture.Fixture, error) {
	conditions := []qb.Condition{qb.IsNull("deleted_at")}
	if filter.Season != "" {
		conditions = append(conditions, qb.Eq("season", filter.Season))
	}
	if filter.Competition != "" {
		conditions = append(conditions, qb.Eq("competition", string(filter.Competition)))
	}
	if filter.Group != "" {
		conditions = append(conditions, qb.Eq("group_name", filter.Group))
	}
	if filter.Status != "" {
		conditions = append(conditions, qb.Eq("status", string(filter.Status)))
	}
	if filter.ClubID != "" {
		conditions = append(conditions, qb.Expr("(home_club_public_id = ? OR away_club_public_id = ?)", filter.ClubID, filter.ClubID))
	}

	query, args, err := qb.Select("*").From(fixturesTable).
		Where(conditions...).
		OrderBy("created_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures query: %w", err)
	}

	var rows []fixtureTableModel
	err = retryPooled(func() error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("select fixtures: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		item, err := fixtureFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Update locks the row for the duration of fn so concurrent writers on the same fixture serialize.
func (r *FixtureRepository) Update(ctx context.Context, id string, fn fixture.Mutator) (fixture.Fixture, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fixture.Fixture{}, false, fmt.Errorf("begin update fixture tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, exists, err := r.getOne(ctx, tx, qb.Eq("public_id", strings.TrimSpace(id)), true)
	if err != nil || !exists {
		return fixture.Fixture{}, exists, err
	}
	stored := current.Clone()

	if err := fn(&current); err != nil {
		if errors.Is(err, fixture.ErrUnchanged) {
			return stored, true, nil
		}
		return fixture.Fixture{}, true, err
	}

	model, err := fixtureToInsertModel(current)
	if err != nil {
		return fixture.Fixture{}, true, fmt.Errorf("encode fixture id=%s: %w", id, err)
	}
	query, args, err := qb.Update(fixturesTable).
		Set("round", model.Round).
		Set("group_name", model.GroupName).
		Set("external_match_id", model.ExternalMatchID).
		Set("status", model.Status).
		Set("scheduled_at", model.ScheduledAt).
		Set("locked_at", model.LockedAt).
		Set("proposals", model.Proposals).
		Set("votes", model.Votes).
		Set("lineups", model.Lineups).
		Set("result", model.Result).
		Set("reported_at", model.ReportedAt).
		Set("reported_by", model.ReportedBy).
		Set("version", model.Version).
		Set("updated_at", model.UpdatedAt).
		Where(qb.Eq("public_id", current.ID)).
		ToSQL()
	if err != nil {
		return fixture.Fixture{}, true, fmt.Errorf("build update fixture query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fixture.Fixture{}, true, fmt.Errorf("%w: external_match_id=%s", fixture.ErrDuplicate, current.ExternalMatchID)
		}
		return fixture.Fixture{}, true, fmt.Errorf("update fixture id=%s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fixture.Fixture{}, true, fmt.Errorf("commit update fixture tx: %w", err)
	}
	return current, true, nil
}

func (r *FixtureRepository) getOne(ctx context.Context, q sqlx.QueryerContext, cond qb.Condition, forUpdate bool) (fixture.Fixture, bool, error) {
	builder := qb.Select("*").From(fixturesTable).
		Where(cond, qb.IsNull("deleted_at")).
		Limit(1)
	if forUpdate {
		builder = builder.ForUpdate()
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return fixture.Fixture{}, false, fmt.Errorf("build select fixture query: %w", err)
	}

	var row fixtureTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("select fixture: %w", err)
	}

	item, err := fixtureFromRow(row)
	if err != nil {
		return fixture.Fixture{}, false, err
	}
	return item, true, nil
}
