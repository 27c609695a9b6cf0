package pgcat

import (
	"strings"
	"testing"

	"github.com/riftdata/pgtc/internal/pgwire"
)

type fakeQuerier struct {
	responses map[string][]pgwire.MsgDataRow
	calls     int
}

func (f *fakeQuerier) SimpleQuery(sql string) ([]pgwire.MsgDataRow, error) {
	f.calls++
	for prefix, rows := range f.responses {
		if strings.Contains(sql, prefix) {
			return rows, nil
		}
	}
	return nil, nil
}

func col(values ...string) pgwire.MsgDataRow {
	cols := make([][]byte, len(values))
	for i, v := range values {
		if v != "\x00NULL" {
			cols[i] = []byte(v)
		}
	}
	return pgwire.MsgDataRow{Columns: cols}
}

func TestResolveWellKnown(t *testing.T) {
	r := NewRegistry(&fakeQuerier{})
	typ, err := r.Resolve(23) // int4
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if typ.GoType() != "int32" {
		t.Errorf("got %q, want int32", typ.GoType())
	}
}

func TestResolveBuiltinArray(t *testing.T) {
	r := NewRegistry(&fakeQuerier{})
	typ, err := r.Resolve(1009) // _text
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if typ.GoType() != "[]string" {
		t.Errorf("got %q, want []string", typ.GoType())
	}
}

func TestResolveEnum(t *testing.T) {
	fq := &fakeQuerier{responses: map[string][]pgwire.MsgDataRow{
		"FROM pg_catalog.pg_type": {col("order_status", "e", "0")},
		"FROM pg_catalog.pg_enum": {col("pending"), col("shipped"), col("delivered")},
	}}
	r := NewRegistry(fq)
	typ, err := r.Resolve(99999)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	enum, ok := typ.(Enum)
	if !ok {
		t.Fatalf("got %T, want Enum", typ)
	}
	if enum.GoName != "OrderStatus" {
		t.Errorf("GoName: got %q, want OrderStatus", enum.GoName)
	}
	if len(enum.Values) != 3 || enum.Values[0] != "pending" {
		t.Errorf("Values: got %v", enum.Values)
	}
}

func TestResolveUnknownInvokesCallback(t *testing.T) {
	fq := &fakeQuerier{responses: map[string][]pgwire.MsgDataRow{}}
	r := NewRegistry(fq)
	var got Unknown
	calls := 0
	r.OnUnknownType(func(u Unknown) {
		got = u
		calls++
	})

	if _, err := r.Resolve(424242); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := r.Resolve(424242); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if calls != 1 {
		t.Errorf("onUnknown called %d times, want 1 (per-run cache should suppress the second)", calls)
	}
	if got.OID != 424242 {
		t.Errorf("got OID %d, want 424242", got.OID)
	}
}

func TestNullabilityCacheComputedExpressionIsNullable(t *testing.T) {
	n := NewNullabilityCache(&fakeQuerier{})
	notNull, err := n.NotNull(0, 0)
	if err != nil {
		t.Fatalf("NotNull: %v", err)
	}
	if notNull {
		t.Error("computed expression reported not-null, want nullable")
	}
}

func TestNullabilityCacheQueriesAndCaches(t *testing.T) {
	fq := &fakeQuerier{responses: map[string][]pgwire.MsgDataRow{
		"pg_attribute": {col("t")},
	}}
	n := NewNullabilityCache(fq)
	for i := 0; i < 3; i++ {
		notNull, err := n.NotNull(16384, 1)
		if err != nil {
			t.Fatalf("NotNull: %v", err)
		}
		if !notNull {
			t.Error("expected not-null")
		}
	}
	if fq.calls != 1 {
		t.Errorf("pg_attribute queried %d times, want 1 (later lookups should hit the cache)", fq.calls)
	}
}

func TestGoTypeNameConversion(t *testing.T) {
	cases := map[string]string{
		"order_status": "OrderStatus",
		"status":       "Status",
		"a_b_c":        "ABC",
	}
	for in, want := range cases {
		if got := goTypeName(in); got != want {
			t.Errorf("goTypeName(%q) = %q, want %q", in, got, want)
		}
	}
}
