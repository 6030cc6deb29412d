package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "season").
		From("fixtures").
		Where(Eq("season", "s1"), IsNull("deleted_at")).
		OrderBy("id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, season FROM fixtures WHERE season = $1 AND deleted_at IS NULL ORDER BY id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "s1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("award_ledger").
		Columns("season", "club_id").
		Values("s1", "club-a").
		Suffix("ON CONFLICT (season, club_id) DO NOTHING RETURNING season").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO award_ledger (season, club_id) VALUES ($1, $2) ON CONFLICT (season, club_id) DO NOTHING RETURNING season"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "s1" || args[1] != "club-a" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("wallets").
		Set("balance", int64(500)).
		SetExpr("updated_at", "NOW()").
		Where(Eq("club_id", "club-a")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE wallets SET balance = $1, updated_at = NOW() WHERE club_id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(500) || args[1] != "club-a" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ForUpdate(t *testing.T) {
	query, args, err := Select("club_id", "balance").
		From("wallets").
		Where(Eq("club_id", "club-a")).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select for update query: %v", err)
	}

	wantQuery := "SELECT club_id, balance FROM wallets WHERE club_id = $1 FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "club-a" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("player_contributions").
		Where(Eq("season", "s1"), Eq("fixture_id", "fx-1")).
		Suffix("RETURNING player_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM player_contributions WHERE season = $1 AND fixture_id = $2 RETURNING player_id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("wallets").ToSQL(); err == nil {
		t.Fatalf("expected unscoped delete to be rejected")
	}
}
