// Package introspect drives the single-connection Parse/Describe/Sync
// conversation that turns a file's UntypedQuery blocks into TypedQuery
// records codegen can emit from. It owns no connection lifecycle of its
// own — the caller dials, authenticates, and closes the *pgwire.Conn.
package introspect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riftdata/pgtc/internal/pgcat"
	"github.com/riftdata/pgtc/internal/pgerr"
	"github.com/riftdata/pgtc/internal/pgwire"
	"github.com/riftdata/pgtc/internal/sqlparse"
	"github.com/riftdata/pgtc/pkg/logger"
)

// Conn is the subset of *pgwire.Conn introspection needs, so tests can
// supply a fake without opening a socket.
type Conn interface {
	pgcat.Querier
	DescribeStatement(sql string) (pgwire.DescribeStatementResult, error)
}

// Result is the outcome of resolving a batch of queries: the ones that
// resolved cleanly, and the ones that failed their own Describe/type
// resolution without aborting the rest of the batch.
type Result struct {
	Queries []sqlparse.TypedQuery
	Errors  []*pgerr.QueryError
}

// Run resolves every query in queries against conn, isolating per-query
// failures: a query that fails to Parse/Describe (bad SQL, unknown
// column) is recorded in Result.Errors and the rest of the batch still
// runs. A connection-level failure (socket reset, protocol violation)
// aborts the whole run and is returned as an error.
func Run(conn Conn, queries []sqlparse.UntypedQuery, onUnknownType func(pgcat.Unknown)) (*Result, error) {
	registry := pgcat.NewRegistry(conn)
	if onUnknownType != nil {
		registry.OnUnknownType(onUnknownType)
	}
	nullability := pgcat.NewNullabilityCache(conn)

	var result Result
	for _, uq := range queries {
		tq, err := resolveOne(conn, registry, nullability, uq)
		if err != nil {
			var qerr *pgerr.QueryError
			if errors.As(err, &qerr) {
				qerr.File = uq.File
				qerr.Name = uq.Name
				result.Errors = append(result.Errors, qerr)
				continue
			}
			return nil, fmt.Errorf("introspecting %s:%s: %w", uq.File, uq.Name, err)
		}
		result.Queries = append(result.Queries, tq)
	}
	return &result, nil
}

func resolveOne(conn Conn, registry *pgcat.Registry, nullability *pgcat.NullabilityCache, uq sqlparse.UntypedQuery) (sqlparse.TypedQuery, error) {
	desc, err := conn.DescribeStatement(uq.SQL)
	if err != nil {
		return sqlparse.TypedQuery{}, err
	}

	// Params carry no nullability override of their own — "!"/"?" hints
	// only ever attach to a result column's alias (see QuoteAliasHints).
	paramNames := sqlparse.RecoverParamNames(uq.SQL, len(desc.ParamOIDs))
	params := make([]sqlparse.Param, len(desc.ParamOIDs))
	for i, oid := range desc.ParamOIDs {
		t, err := registry.Resolve(oid)
		if err != nil {
			return sqlparse.TypedQuery{}, err
		}
		params[i] = sqlparse.Param{Ordinal: i + 1, Name: paramNames[i], Type: t}
	}

	cols := make([]sqlparse.Column, len(desc.Row))
	for i, f := range desc.Row {
		t, err := registry.Resolve(f.TypeOID)
		if err != nil {
			return sqlparse.TypedQuery{}, err
		}
		notNull, err := nullability.NotNull(f.TableOID, f.ColumnAttr)
		if err != nil {
			return sqlparse.TypedQuery{}, err
		}

		// A hinted alias is quoted in the SQL pgtc sends, so the server
		// echoes it back verbatim in f.Name, hint suffix and all — e.g.
		// "total!" comes back exactly as written. That echo is the only
		// thing hints are ever matched against; there is no separate
		// name map to keep in sync with column position.
		name := f.Name
		if hint, ok := uq.Hints[f.Name]; ok {
			switch hint {
			case sqlparse.NotNull:
				notNull = true
			case sqlparse.Nullable:
				notNull = false
			}
			name = strings.TrimSuffix(strings.TrimSuffix(f.Name, "!"), "?")
		}

		if !notNull {
			t = pgcat.Optional{Elem: t}
		}
		cols[i] = sqlparse.Column{Name: name, Type: t}
	}

	kind, cols := defaultKind(uq, cols)

	return sqlparse.TypedQuery{
		File:       uq.File,
		Name:       uq.Name,
		Kind:       kind,
		SQL:        uq.SQL,
		Params:     params,
		Cols:       cols,
		DocComment: uq.DocComment,
	}, nil
}

// defaultKind applies the query-kind defaulting invariant: an undeclared
// kind becomes :many when the query returns columns, :exec otherwise; an
// explicit :execrows forces Cols empty, since an exec-style call site has
// nowhere to put a row type and only reports the affected row count.
func defaultKind(uq sqlparse.UntypedQuery, cols []sqlparse.Column) (sqlparse.Kind, []sqlparse.Column) {
	kind := uq.Kind
	if kind == "" {
		if len(cols) > 0 {
			kind = sqlparse.KindMany
		} else {
			kind = sqlparse.KindExec
		}
	}
	if kind == sqlparse.KindExecRows && len(cols) > 0 {
		logger.Warn("execrows query returns columns, discarding them",
			"file", uq.File, "query", uq.Name, "columns", len(cols))
		cols = nil
	}
	return kind, cols
}
