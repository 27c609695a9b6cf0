package codegen

import (
	"strings"
	"testing"

	"github.com/riftdata/pgtc/internal/pgcat"
	"github.com/riftdata/pgtc/internal/sqlparse"
)

func TestEmitDeterministic(t *testing.T) {
	queries := []sqlparse.TypedQuery{
		{
			File: "users.sql", Name: "GetUser", Kind: sqlparse.KindOne,
			SQL:    "SELECT id, email FROM users WHERE id = $1",
			Params: []sqlparse.Param{{Ordinal: 1, Name: "id", Type: pgcat.Primitive{Name: "int32"}}},
			Cols: []sqlparse.Column{
				{Name: "id", Type: pgcat.Primitive{Name: "int32"}},
				{Name: "email", Type: pgcat.Primitive{Name: "string"}},
			},
		},
	}

	out1, err := Emit("db", queries)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	out2, err := Emit("db", queries)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	for _, name := range out1.Files() {
		if string(out1.Content(name)) != string(out2.Content(name)) {
			t.Errorf("%s: non-deterministic output between two Emit calls", name)
		}
	}
}

func TestEmitProducesExpectedFiles(t *testing.T) {
	queries := []sqlparse.TypedQuery{
		{File: "users.sql", Name: "GetUser", Kind: sqlparse.KindOne, SQL: "SELECT 1"},
		{File: "orders.sql", Name: "ListOrders", Kind: sqlparse.KindMany, SQL: "SELECT 1"},
	}
	out, err := Emit("db", queries)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	files := out.Files()
	want := []string{"helper.go", "orders.sql.go", "users.sql.go"}
	if len(files) != len(want) {
		t.Fatalf("got files %v, want %v", files, want)
	}
	for i, w := range want {
		if files[i] != w {
			t.Errorf("files[%d] = %q, want %q", i, files[i], w)
		}
	}
}

func TestEmitRendersEnumConstants(t *testing.T) {
	enum := pgcat.Enum{PgName: "order_status", GoName: "OrderStatus", Values: []string{"pending", "shipped"}}
	queries := []sqlparse.TypedQuery{
		{
			File: "orders.sql", Name: "GetStatus", Kind: sqlparse.KindOne, SQL: "SELECT status FROM orders",
			Cols: []sqlparse.Column{{Name: "status", Type: enum}},
		},
	}
	out, err := Emit("db", queries)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	helper := string(out.Content("helper.go"))
	if !strings.Contains(helper, "type OrderStatus string") {
		t.Errorf("helper.go missing enum type decl:\n%s", helper)
	}
	if !strings.Contains(helper, `OrderStatusPending OrderStatus = "pending"`) {
		t.Errorf("helper.go missing enum constant:\n%s", helper)
	}
}

func TestEmitRendersDocComment(t *testing.T) {
	queries := []sqlparse.TypedQuery{
		{
			File: "users.sql", Name: "GetUser", Kind: sqlparse.KindOne, SQL: "SELECT 1",
			DocComment: "Looks a user up by primary key.",
		},
	}
	out, err := Emit("db", queries)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	content := string(out.Content("users.sql.go"))
	if !strings.Contains(content, "// Looks a user up by primary key.\nfunc (q *Queries) GetUser(") {
		t.Errorf("users.sql.go missing rendered doc comment:\n%s", content)
	}
}

func TestEmitGeneratedHeaderMarksEveryFile(t *testing.T) {
	queries := []sqlparse.TypedQuery{{File: "a.sql", Name: "Q", Kind: sqlparse.KindExec, SQL: "DELETE FROM t"}}
	out, err := Emit("db", queries)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	for _, name := range out.Files() {
		if !strings.HasPrefix(string(out.Content(name)), GeneratedHeader) {
			t.Errorf("%s missing generated header", name)
		}
	}
}
