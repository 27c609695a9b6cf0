// Package pgcat resolves Postgres type OIDs into the Go types pgtc emits,
// consulting a built-in table of well-known OIDs first and falling back to
// a live pg_catalog query (and, for enums, its member labels) for anything
// the table doesn't cover.
package pgcat

import (
	"fmt"
	"strings"
)

// TargetType is the sealed set of shapes a resolved column or parameter
// type can take in generated code.
type TargetType interface {
	isTargetType()
	// GoType returns the Go type expression to emit, e.g. "int32",
	// "[]string", "*string", "MyEnum".
	GoType() string
}

// Primitive is a scalar Go type with no wrapping: string, int32, bool,
// float64, time.Time, []byte, uuid.UUID.
type Primitive struct {
	Name string
	// Import is the package this type requires, or "" for predeclared
	// types that need no import.
	Import string
}

func (Primitive) isTargetType()    {}
func (p Primitive) GoType() string { return p.Name }

// Array is a Postgres array column, rendered as a Go slice of its element
// type.
type Array struct {
	Elem TargetType
}

func (Array) isTargetType()    {}
func (a Array) GoType() string { return "[]" + a.Elem.GoType() }

// Optional wraps a type that the catalog reported (or the developer
// hinted) as nullable. Scalars get a pointer; an already-reference type
// (slice, pointer) is left as-is since nil already models NULL for it.
type Optional struct {
	Elem TargetType
}

func (Optional) isTargetType() {}
func (o Optional) GoType() string {
	switch e := o.Elem.(type) {
	case Array:
		return o.Elem.GoType() // nil slice already models NULL
	case Primitive:
		if strings.HasPrefix(e.Name, "[]") {
			return e.Name // []byte: nil slice already models NULL
		}
		return "*" + e.Name
	default:
		return "*" + o.Elem.GoType()
	}
}

// Enum is a Postgres enum type, rendered as a defined Go string type with
// one constant per label, ordered by enumsortorder.
type Enum struct {
	PgName string
	GoName string
	Values []string
}

func (Enum) isTargetType()    {}
func (e Enum) GoType() string { return e.GoName }

// Unknown is a type pgtc could not resolve from either the built-in table
// or a catalog lookup. Codegen falls back to string, and the Registry
// reports each distinct OID once to its OnUnknownType callback.
type Unknown struct {
	OID uint32
}

func (Unknown) isTargetType() {}
func (Unknown) GoType() string { return "string" }

func (u Unknown) String() string {
	return fmt.Sprintf("unresolved type oid %d", u.OID)
}
