// Package sqlparse extracts annotated queries from .sql source files and
// carries them from raw text through to the fully typed shape
// internal/introspect fills in via the server. Parsing never talks to a
// database; only internal/pgcat and internal/introspect touch a Conn.
package sqlparse

import (
	"fmt"

	"github.com/riftdata/pgtc/internal/pgcat"
)

// Kind is the ":kind" suffix of a query's "-- name: X :kind" header,
// selecting the calling convention the emitted helper uses.
type Kind string

const (
	// KindOne returns the first row, or an error if the query produced
	// none (sql.ErrNoRows passed through); further rows are ignored.
	KindOne Kind = "one"
	// KindMany returns every row as a slice.
	KindMany Kind = "many"
	// KindExec runs a statement that returns no rows and discards the
	// command tag.
	KindExec Kind = "exec"
	// KindExecRows runs a statement that returns no rows and reports the
	// affected row count from the command tag.
	KindExecRows Kind = "execrows"
)

// ParseKind validates a ":kind" token from a query header.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindOne, KindMany, KindExec, KindExecRows:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown query kind %q (want one of :one, :many, :exec, :execrows)", s)
	}
}

// UntypedQuery is one "-- name: X :kind" block as parsed from source,
// before any catalog round trip has resolved its parameter and column
// types.
type UntypedQuery struct {
	File string
	Name string
	Kind Kind
	// SQL is the query body after alias-hint tokens have been quoted
	// (see QuoteAliasHints) but before parameter names have been
	// recovered; it is exactly what gets sent to Parse.
	SQL string
	// Line is the 1-indexed line of the "-- name:" header, used in
	// diagnostics.
	Line int
	// Hints carries the nullable/not-null overrides QuoteAliasHints
	// extracted from "column!"/"column?" suffixes, keyed by the echoed
	// RowDescription field name (e.g. "total!"). internal/introspect
	// matches these against the column names the server actually
	// returns — never against a parameter, which has no alias to hint.
	Hints map[string]Nullability
	// DocComment is the accumulated text of any "--" comment lines
	// between the header and the first line of SQL, with the leading
	// "--" and a following space stripped from each line. It is empty
	// when the query has no leading comment block.
	DocComment string
}

// Nullability is an explicit override for a result column's nullability,
// as recovered from a "!"/"?" alias hint. Parameters have no such override.
type Nullability int

const (
	// NullabilityUnknown means no hint or catalog fact settled the
	// question; codegen falls back to a conservative nullable type.
	NullabilityUnknown Nullability = iota
	NotNull
	Nullable
)

// Param is one resolved bind parameter ($1, $2, ...) of a TypedQuery.
type Param struct {
	// Ordinal is the 1-based $n position.
	Ordinal int
	// Name is the recovered SQL identifier the generated argument is
	// named from, e.g. "user_id" for "$1" in "user_id = $1" (emitted as
	// the Go argument "userID").
	Name string
	Type pgcat.TargetType
}

// Column is one resolved result column of a TypedQuery.
type Column struct {
	Name string
	Type pgcat.TargetType
}

// TypedQuery is an UntypedQuery after a Parse/Describe round trip and
// catalog type resolution have filled in concrete parameter and column
// types.
type TypedQuery struct {
	File       string
	Name       string
	Kind       Kind
	SQL        string
	Params     []Param
	Cols       []Column
	DocComment string
}
