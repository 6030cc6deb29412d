package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/club-league/internal/domain/player"
	qb "github.com/riskibarqy/club-league/internal/platform/querybuilder"
)

type playerTableModel struct {
	ID           int64          `db:"id"`
	PublicID     string         `db:"public_id"`
	Name         string         `db:"name"`
	Aliases      pq.StringArray `db:"aliases"`
	ClubPublicID string         `db:"club_public_id"`
	ExternalRef  string         `db:"external_ref"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	DeletedAt    *time.Time     `db:"deleted_at"`
}

type playerInsertModel struct {
	PublicID     string         `db:"public_id"`
	Name         string         `db:"name"`
	Aliases      pq.StringArray `db:"aliases"`
	ClubPublicID string         `db:"club_public_id"`
	ExternalRef  string         `db:"external_ref"`
}

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Upsert(ctx context.Context, item player.Player) error {
	aliases := make(pq.StringArray, 0, len(item.Aliases))
	for _, alias := range item.Aliases {
		if alias = strings.TrimSpace(alias); alias != "" {
			aliases = append(aliases, alias)
		}
	}
	model := playerInsertModel{
		PublicID:     strings.TrimSpace(item.ID),
		Name:         strings.TrimSpace(item.Name),
		Aliases:      aliases,
		ClubPublicID: strings.TrimSpace(item.ClubID),
		ExternalRef:  strings.TrimSpace(item.ExternalRef),
	}
	query, args, err := qb.InsertModel("players", model, `ON CONFLICT (public_id)
DO UPDATE SET
    name = EXCLUDED.name,
    aliases = EXCLUDED.aliases,
    club_public_id = EXCLUDED.club_public_id,
    external_ref = EXCLUDED.external_ref,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert player id=%s: %w", item.ID, err)
	}
	return nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, id string) (player.Player, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(
			qb.Eq("public_id", strings.TrimSpace(id)),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player id=%s: %w", id, err)
	}
	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) ListByClub(ctx context.Context, clubID string) ([]player.Player, error) {
	return r.list(ctx, qb.Eq("club_public_id", strings.TrimSpace(clubID)), qb.IsNull("deleted_at"))
}

func (r *PlayerRepository) ListAll(ctx context.Context) ([]player.Player, error) {
	return r.list(ctx, qb.IsNull("deleted_at"))
}

func (r *PlayerRepository) list(ctx context.Context, conditions ...qb.Condition) ([]player.Player, error) {
	query, args, err := qb.Select("*").From("players").
		Where(conditions...).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	err = retryPooled(func() error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out, nil
}

func playerFromRow(row playerTableModel) player.Player {
	return player.Player{
		ID:          row.PublicID,
		Name:        row.Name,
		Aliases:     append([]string(nil), row.Aliases...),
		ClubID:      row.ClubPublicID,
		ExternalRef: row.ExternalRef,
	}
}
