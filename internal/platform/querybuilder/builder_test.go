package querybuilder

import "testing"

func TestSelectBuilder_NaturalKeyLookup(t *testing.T) {
	t.Parallel()

	query, args, err := Select("id", "name AS name", "external_id").
		From("matches").
		Where(
			Eq("league_id", int64(1)),
			Eq("season_id", int64(2)),
			Eq("kickoff_time", nil),
		).
		OrderBy("id").
		Limit(2).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, name AS name, external_id FROM matches WHERE league_id = $1 AND season_id = $2 AND kickoff_time IS NULL ORDER BY id LIMIT 2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(1) || args[1] != int64(2) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_FoldContainsAndGroups(t *testing.T) {
	t.Parallel()

	query, args, err := Select("t.id").
		From("teams t").
		Join("JOIN matches m ON m.home_team_id = t.id").
		Where(
			EqFold("t.name", "Bulls"),
			Contains("t.name", "50%_off"),
			Or(
				And(In("m.home_team_id", []any{1, 2}), In("m.away_team_id", []any{3})),
				And(In("m.home_team_id", []any{3}), In("m.away_team_id", []any{1, 2})),
			),
			IsNotNull("t.external_id"),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := `SELECT t.id FROM teams t JOIN matches m ON m.home_team_id = t.id WHERE LOWER(t.name) = LOWER($1) AND t.name ILIKE $2 ESCAPE '\' AND ((m.home_team_id IN ($3, $4) AND m.away_team_id IN ($5)) OR (m.home_team_id IN ($6) AND m.away_team_id IN ($7, $8))) AND t.external_id IS NOT NULL`
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 8 || args[0] != "Bulls" || args[1] != `%50\%\_off%` {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_Returning(t *testing.T) {
	t.Parallel()

	query, args, err := InsertInto("teams").
		Columns("name", "external_id").
		Values("Bulls", "135").
		Returning("id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO teams (name, external_id) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Bulls" || args[1] != "135" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	t.Parallel()

	query, args, err := Update("teams").
		Set("external_id", "135").
		Where(Eq("id", int64(7)), IsNull("external_id")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE teams SET external_id = $1 WHERE id = $2 AND external_id IS NULL"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "135" || args[1] != int64(7) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestExprPlaceholders(t *testing.T) {
	t.Parallel()

	query, args, err := Select("id").
		From("matches").
		Where(Eq("league_id", 9), Expr("kickoff_time > ? AND home_score IS NULL", "2026-01-01")).
		ToSQL()
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if query != "SELECT id FROM matches WHERE league_id = $1 AND kickoff_time > $2 AND home_score IS NULL" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestBuilders_RejectIncompleteStatements(t *testing.T) {
	t.Parallel()

	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatalf("expected missing table error")
	}
	if _, _, err := InsertInto("teams").Columns("name", "country").Values("Bulls").ToSQL(); err == nil {
		t.Fatalf("expected value count error")
	}
	if _, _, err := Update("teams").Where(Eq("id", 1)).ToSQL(); err == nil {
		t.Fatalf("expected missing assignments error")
	}
	if _, _, err := DeleteFrom("team_season_stats").ToSQL(); err == nil {
		t.Fatalf("expected missing where error")
	}
}

func TestDeleteBuilder(t *testing.T) {
	t.Parallel()

	query, args, err := DeleteFrom("team_season_stats").Where(Eq("id", int64(3))).ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}
	if query != "DELETE FROM team_season_stats WHERE id = $1" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 1 || args[0] != int64(3) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInCondition_EmptyMatchesNothing(t *testing.T) {
	t.Parallel()

	query, args, err := Select("id").From("teams").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if query != "SELECT id FROM teams WHERE 1=0" || len(args) != 0 {
		t.Fatalf("unexpected query %q args %+v", query, args)
	}
}
