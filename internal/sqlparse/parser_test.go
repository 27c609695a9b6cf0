package sqlparse

import "testing"

func TestParseFileBasic(t *testing.T) {
	src := `-- name: GetUser :one
SELECT id, email FROM users WHERE id = $1;

-- name: ListUsers :many
SELECT id, email FROM users ORDER BY id;

-- name: DeleteUser :exec
DELETE FROM users WHERE id = $1;
`
	queries, err := ParseFile("users.sql", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(queries) != 3 {
		t.Fatalf("got %d queries, want 3", len(queries))
	}
	if queries[0].Name != "GetUser" || queries[0].Kind != KindOne {
		t.Errorf("query 0: got %+v", queries[0])
	}
	if queries[1].Name != "ListUsers" || queries[1].Kind != KindMany {
		t.Errorf("query 1: got %+v", queries[1])
	}
	if queries[2].Name != "DeleteUser" || queries[2].Kind != KindExec {
		t.Errorf("query 2: got %+v", queries[2])
	}
}

func TestParseFileRejectsEmptyBody(t *testing.T) {
	src := "-- name: Empty :one\n-- name: Next :one\nSELECT 1;\n"
	if _, err := ParseFile("empty.sql", []byte(src)); err == nil {
		t.Fatal("expected an error for a header with no SQL body")
	}
}

func TestParseFileRejectsBadKind(t *testing.T) {
	src := "-- name: Bad :wrong\nSELECT 1;\n"
	if _, err := ParseFile("bad.sql", []byte(src)); err == nil {
		t.Fatal("expected an error for an unknown query kind")
	}
}

func TestParseFileRejectsDuplicateNames(t *testing.T) {
	src := "-- name: X :one\nSELECT 1;\n-- name: X :many\nSELECT 2;\n"
	if _, err := ParseFile("dup.sql", []byte(src)); err == nil {
		t.Fatal("expected an error for a duplicate query name")
	}
}

func TestParseFileQuotesAliasHints(t *testing.T) {
	src := "-- name: GetUser :one\nSELECT email AS email!, nickname AS nickname? FROM users WHERE id = $1;\n"
	queries, err := ParseFile("users.sql", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	q := queries[0]
	if q.Hints["email!"] != NotNull {
		t.Errorf(`email! hint: got %v, want NotNull`, q.Hints["email!"])
	}
	if q.Hints["nickname?"] != Nullable {
		t.Errorf(`nickname? hint: got %v, want Nullable`, q.Hints["nickname?"])
	}
	want := `SELECT email AS "email!", nickname AS "nickname?" FROM users WHERE id = $1;`
	if q.SQL != want {
		t.Errorf("SQL: got %q, want %q", q.SQL, want)
	}
}

func TestParseFileFallsBackToSingleQuery(t *testing.T) {
	src := "SELECT id, email FROM users WHERE id = $1;\n"
	queries, err := ParseFile("get_user.sql", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(queries) != 1 {
		t.Fatalf("got %d queries, want 1", len(queries))
	}
	q := queries[0]
	if q.Name != "GetUser" {
		t.Errorf("name: got %q, want %q", q.Name, "GetUser")
	}
	if q.Kind != "" {
		t.Errorf("kind: got %q, want unset", q.Kind)
	}
}

func TestParseFileRejectsEmptyFile(t *testing.T) {
	src := "-- just a comment, no SQL\n\n"
	if _, err := ParseFile("empty.sql", []byte(src)); err == nil {
		t.Fatal("expected an EmptyQuery error for a file with no SQL content")
	}
}

func TestParseFileAccumulatesDocComment(t *testing.T) {
	src := "-- name: GetUser :one\n-- Looks a user up by primary key.\n-- Returns sql.ErrNoRows if absent.\nSELECT id, email FROM users WHERE id = $1;\n"
	queries, err := ParseFile("users.sql", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	want := "Looks a user up by primary key.\nReturns sql.ErrNoRows if absent."
	if queries[0].DocComment != want {
		t.Errorf("DocComment: got %q, want %q", queries[0].DocComment, want)
	}
}

func TestParseFileAllowsHeaderWithoutKind(t *testing.T) {
	src := "-- name: GetUser\nSELECT id, email FROM users WHERE id = $1;\n"
	queries, err := ParseFile("users.sql", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if queries[0].Kind != "" {
		t.Errorf("kind: got %q, want unset", queries[0].Kind)
	}
}
