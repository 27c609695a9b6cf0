package introspect

import (
	"testing"

	"github.com/riftdata/pgtc/internal/pgcat"
	"github.com/riftdata/pgtc/internal/pgerr"
	"github.com/riftdata/pgtc/internal/pgwire"
	"github.com/riftdata/pgtc/internal/sqlparse"
)

type fakeConn struct {
	describe map[string]pgwire.DescribeStatementResult
	err      map[string]error
	queries  map[string][]pgwire.MsgDataRow
}

func (f *fakeConn) DescribeStatement(sql string) (pgwire.DescribeStatementResult, error) {
	if err, ok := f.err[sql]; ok {
		return pgwire.DescribeStatementResult{}, err
	}
	return f.describe[sql], nil
}

func (f *fakeConn) SimpleQuery(sql string) ([]pgwire.MsgDataRow, error) {
	return f.queries[sql], nil
}

func TestRunResolvesParamsAndColumns(t *testing.T) {
	sql := "SELECT id, email FROM users WHERE id = $1"
	fc := &fakeConn{
		describe: map[string]pgwire.DescribeStatementResult{
			sql: {
				ParamOIDs: []uint32{23}, // int4
				Row: []pgwire.RowField{
					{Name: "id", TableOID: 16384, ColumnAttr: 1, TypeOID: 23},
					{Name: "email", TableOID: 16384, ColumnAttr: 2, TypeOID: 25},
				},
			},
		},
		queries: map[string][]pgwire.MsgDataRow{},
	}

	uq := sqlparse.UntypedQuery{File: "users.sql", Name: "GetUser", Kind: sqlparse.KindOne, SQL: sql}
	result, err := Run(fc, []sqlparse.UntypedQuery{uq}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Queries) != 1 {
		t.Fatalf("got %d queries, want 1", len(result.Queries))
	}
	tq := result.Queries[0]
	if len(tq.Params) != 1 || tq.Params[0].Name != "id" || tq.Params[0].Type.GoType() != "int32" {
		t.Errorf("params: got %+v", tq.Params)
	}
	// The fake never answers a pg_attribute lookup, so NullabilityCache
	// falls back to "nullable" for both columns and they come back wrapped.
	if len(tq.Cols) != 2 || tq.Cols[0].Type.GoType() != "*int32" || tq.Cols[1].Type.GoType() != "*string" {
		t.Errorf("cols: got %+v", tq.Cols)
	}
}

func TestRunIsolatesPerQueryErrors(t *testing.T) {
	goodSQL := "SELECT 1"
	badSQL := "SELECT frm typo"
	fc := &fakeConn{
		describe: map[string]pgwire.DescribeStatementResult{
			goodSQL: {Row: []pgwire.RowField{{Name: "?column?", TypeOID: 23}}},
		},
		err: map[string]error{
			badSQL: &pgerr.QueryError{Code: "42601", Message: "syntax error"},
		},
	}

	queries := []sqlparse.UntypedQuery{
		{File: "a.sql", Name: "Bad", Kind: sqlparse.KindOne, SQL: badSQL},
		{File: "a.sql", Name: "Good", Kind: sqlparse.KindOne, SQL: goodSQL},
	}

	result, err := Run(fc, queries, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Errors) != 1 || result.Errors[0].Name != "Bad" {
		t.Fatalf("expected one isolated error for Bad, got %+v", result.Errors)
	}
	if len(result.Queries) != 1 || result.Queries[0].Name != "Good" {
		t.Fatalf("expected Good to still resolve, got %+v", result.Queries)
	}
}

func TestRunAppliesColumnHintsByEchoedName(t *testing.T) {
	sql := `SELECT COUNT(*) AS "total!" FROM users`
	fc := &fakeConn{
		describe: map[string]pgwire.DescribeStatementResult{
			sql: {Row: []pgwire.RowField{{Name: "total!", TypeOID: 20}}},
		},
		queries: map[string][]pgwire.MsgDataRow{},
	}

	uq := sqlparse.UntypedQuery{
		File: "x.sql", Name: "CountUsers", Kind: sqlparse.KindOne, SQL: sql,
		Hints: map[string]sqlparse.Nullability{"total!": sqlparse.NotNull},
	}
	result, err := Run(fc, []sqlparse.UntypedQuery{uq}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Queries) != 1 {
		t.Fatalf("got %d queries, want 1", len(result.Queries))
	}
	col := result.Queries[0].Cols[0]
	if col.Name != "total" {
		t.Errorf("column name: got %q, want %q (hint suffix stripped)", col.Name, "total")
	}
	if col.Type.GoType() != "int64" {
		t.Errorf("column type: got %q, want non-optional int64 (NotNull hint applied)", col.Type.GoType())
	}
}

func TestRunDefaultsKindAndForcesExecRowsColumnsEmpty(t *testing.T) {
	manySQL := "SELECT id FROM users"
	execSQL := "DELETE FROM users"
	execRowsSQL := "DELETE FROM users WHERE active = false RETURNING id"
	fc := &fakeConn{
		describe: map[string]pgwire.DescribeStatementResult{
			manySQL:     {Row: []pgwire.RowField{{Name: "id", TypeOID: 23}}},
			execSQL:     {},
			execRowsSQL: {Row: []pgwire.RowField{{Name: "id", TypeOID: 23}}},
		},
		queries: map[string][]pgwire.MsgDataRow{},
	}

	queries := []sqlparse.UntypedQuery{
		{File: "a.sql", Name: "ListUsers", SQL: manySQL},
		{File: "a.sql", Name: "PurgeUsers", SQL: execSQL},
		{File: "a.sql", Name: "PurgeInactive", Kind: sqlparse.KindExecRows, SQL: execRowsSQL},
	}
	result, err := Run(fc, queries, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Queries) != 3 {
		t.Fatalf("got %d queries, want 3", len(result.Queries))
	}
	if result.Queries[0].Kind != sqlparse.KindMany {
		t.Errorf("ListUsers kind: got %q, want :many", result.Queries[0].Kind)
	}
	if result.Queries[1].Kind != sqlparse.KindExec {
		t.Errorf("PurgeUsers kind: got %q, want :exec", result.Queries[1].Kind)
	}
	if len(result.Queries[2].Cols) != 0 {
		t.Errorf("PurgeInactive cols: got %+v, want empty (forced by :execrows)", result.Queries[2].Cols)
	}
}

func TestRunReportsUnknownTypesOnce(t *testing.T) {
	sql := "SELECT col, col2 FROM t"
	fc := &fakeConn{
		describe: map[string]pgwire.DescribeStatementResult{
			sql: {Row: []pgwire.RowField{{Name: "col", TypeOID: 555555}, {Name: "col2", TypeOID: 555555}}},
		},
		queries: map[string][]pgwire.MsgDataRow{},
	}
	var unknowns []pgcat.Unknown
	_, err := Run(fc, []sqlparse.UntypedQuery{
		{File: "x.sql", Name: "Q", Kind: sqlparse.KindOne, SQL: sql},
	}, func(u pgcat.Unknown) { unknowns = append(unknowns, u) })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(unknowns) != 1 || unknowns[0].OID != 555555 {
		t.Errorf("got %v", unknowns)
	}
}
