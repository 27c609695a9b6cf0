package pgcat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riftdata/pgtc/internal/pgwire"
)

// Querier is the subset of *pgwire.Conn the catalog needs: it always runs
// catalog lookups through the simple query protocol, since every value
// it binds is an integer OID pgtc formats itself, never user input.
type Querier interface {
	SimpleQuery(sql string) ([]pgwire.MsgDataRow, error)
}

// Registry resolves OIDs to TargetType for the lifetime of one
// introspection run. It is not safe for concurrent use — pgtc drives one
// connection at a time (see internal/introspect).
type Registry struct {
	conn      Querier
	resolved  map[uint32]TargetType
	onUnknown func(Unknown)
}

// NewRegistry creates a Registry backed by conn for any OID the built-in
// table doesn't cover.
func NewRegistry(conn Querier) *Registry {
	return &Registry{conn: conn, resolved: make(map[uint32]TargetType)}
}

// OnUnknownType registers a callback invoked the first (and only) time a
// given OID resolves to Unknown, so the caller (cmd/pgtc, through
// introspect.Run) can log a single warning per distinct unresolved type
// rather than once per column use.
func (r *Registry) OnUnknownType(f func(Unknown)) { r.onUnknown = f }

// Resolve returns the TargetType for oid, consulting the per-run cache,
// then the built-in table, then pg_catalog.
func (r *Registry) Resolve(oid uint32) (TargetType, error) {
	if t, ok := r.resolved[oid]; ok {
		return t, nil
	}
	if t, ok := wellKnown[oid]; ok {
		r.resolved[oid] = t
		return t, nil
	}
	if elemOID, ok := arrayOf[oid]; ok {
		elem, err := r.Resolve(elemOID)
		if err != nil {
			return nil, err
		}
		t := Array{Elem: elem}
		r.resolved[oid] = t
		return t, nil
	}

	t, err := r.resolveFromCatalog(oid)
	if err != nil {
		return nil, err
	}
	r.resolved[oid] = t
	if u, ok := t.(Unknown); ok && r.onUnknown != nil {
		r.onUnknown(u)
	}
	return t, nil
}

// resolveFromCatalog queries pg_type directly (not information_schema,
// which has no view onto enum member ordering or array element OIDs) for
// a type the built-in table doesn't know about.
func (r *Registry) resolveFromCatalog(oid uint32) (TargetType, error) {
	rows, err := r.conn.SimpleQuery(fmt.Sprintf(
		`SELECT typname, typtype, typelem FROM pg_catalog.pg_type WHERE oid = %d`, oid))
	if err != nil {
		return nil, fmt.Errorf("resolving type oid %d: %w", oid, err)
	}
	if len(rows) == 0 {
		return Unknown{OID: oid}, nil
	}

	row := rows[0]
	typname := textColumn(row, 0)
	typtype := textColumn(row, 1)
	typelem, _ := strconv.ParseUint(textColumn(row, 2), 10, 32)

	switch typtype {
	case "e":
		return r.resolveEnum(oid, typname)
	case "b":
		if typelem != 0 {
			elem, err := r.Resolve(uint32(typelem))
			if err != nil {
				return nil, err
			}
			return Array{Elem: elem}, nil
		}
	}
	return Unknown{OID: oid}, nil
}

// resolveEnum queries pg_enum for a type's labels, ordered by
// enumsortorder — the ordering Postgres itself uses and ALTER TYPE ...
// ADD VALUE ... BEFORE/AFTER can reorder independent of OID order.
func (r *Registry) resolveEnum(oid uint32, typname string) (TargetType, error) {
	rows, err := r.conn.SimpleQuery(fmt.Sprintf(
		`SELECT enumlabel FROM pg_catalog.pg_enum WHERE enumtypid = %d ORDER BY enumsortorder`, oid))
	if err != nil {
		return nil, fmt.Errorf("resolving enum oid %d (%s): %w", oid, typname, err)
	}
	values := make([]string, len(rows))
	for i, row := range rows {
		values[i] = textColumn(row, 0)
	}
	return Enum{PgName: typname, GoName: goTypeName(typname), Values: values}, nil
}

// goTypeName converts a Postgres type name like "order_status" into the Go
// exported identifier "OrderStatus".
func goTypeName(pgName string) string {
	parts := strings.FieldsFunc(pgName, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func textColumn(row pgwire.MsgDataRow, i int) string {
	if i >= len(row.Columns) || row.Columns[i] == nil {
		return ""
	}
	return string(row.Columns[i])
}

// NullabilityCache answers "can this table column hold NULL?" from
// pg_attribute.attnotnull, cached per (table OID, attribute number) for
// the run. Columns with no backing table attribute (computed expressions,
// tableOID == 0) are always reported nullable — the server doesn't give
// pgtc enough information to say otherwise.
type NullabilityCache struct {
	conn  Querier
	cache map[nullKey]bool
}

type nullKey struct {
	tableOID uint32
	attr     int16
}

// NewNullabilityCache creates a NullabilityCache backed by conn.
func NewNullabilityCache(conn Querier) *NullabilityCache {
	return &NullabilityCache{conn: conn, cache: make(map[nullKey]bool)}
}

// NotNull reports whether the given table column is declared NOT NULL.
func (n *NullabilityCache) NotNull(tableOID uint32, attr int16) (bool, error) {
	if tableOID == 0 || attr <= 0 {
		return false, nil
	}
	key := nullKey{tableOID, attr}
	if v, ok := n.cache[key]; ok {
		return v, nil
	}

	rows, err := n.conn.SimpleQuery(fmt.Sprintf(
		`SELECT attnotnull FROM pg_catalog.pg_attribute WHERE attrelid = %d AND attnum = %d`,
		tableOID, attr))
	if err != nil {
		return false, fmt.Errorf("checking nullability of attrelid %d attnum %d: %w", tableOID, attr, err)
	}
	notNull := len(rows) > 0 && textColumn(rows[0], 0) == "t"
	n.cache[key] = notNull
	return notNull, nil
}
