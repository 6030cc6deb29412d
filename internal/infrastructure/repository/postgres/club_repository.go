package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/club-league/internal/domain/club"
	qb "github.com/riskibarqy/club-league/internal/platform/querybuilder"
)

type clubTableModel struct {
	ID          int64      `db:"id"`
	PublicID    string     `db:"public_id"`
	Name        string     `db:"name"`
	ExternalRef string     `db:"external_ref"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

type clubInsertModel struct {
	PublicID    string `db:"public_id"`
	Name        string `db:"name"`
	ExternalRef string `db:"external_ref"`
}

type ClubRepository struct {
	db *sqlx.DB
}

func NewClubRepository(db *sqlx.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

func (r *ClubRepository) Upsert(ctx context.Context, item club.Club) error {
	model := clubInsertModel{
		PublicID:    strings.TrimSpace(item.ID),
		Name:        strings.TrimSpace(item.Name),
		ExternalRef: strings.TrimSpace(item.ExternalRef),
	}
	query, args, err := qb.InsertModel("clubs", model, `ON CONFLICT (public_id)
DO UPDATE SET
    name = EXCLUDED.name,
    external_ref = EXCLUDED.external_ref,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert club query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert club id=%s: %w", item.ID, err)
	}
	return nil
}

func (r *ClubRepository) GetByID(ctx context.Context, id string) (club.Club, bool, error) {
	query, args, err := qb.Select("*").From("clubs").
		Where(
			qb.Eq("public_id", strings.TrimSpace(id)),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return club.Club{}, false, fmt.Errorf("build select club query: %w", err)
	}

	var row clubTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return club.Club{}, false, nil
		}
		return club.Club{}, false, fmt.Errorf("select club id=%s: %w", id, err)
	}
	return clubFromRow(row), true, nil
}

func (r *ClubRepository) List(ctx context.Context) ([]club.Club, error) {
	query, args, err := qb.Select("*").From("clubs").
		Where(qb.IsNull("deleted_at")).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select clubs query: %w", err)
	}

	var rows []clubTableModel
	err = retryPooled(func() error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("select clubs: %w", err)
	}

	out := make([]club.Club, 0, len(rows))
	for _, row := range rows {
		out = append(out, clubFromRow(row))
	}
	return out, nil
}

func clubFromRow(row clubTableModel) club.Club {
	return club.Club{
		ID:          row.PublicID,
		Name:        row.Name,
		ExternalRef: row.ExternalRef,
	}
}
