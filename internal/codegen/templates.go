package codegen

import (
	"path"
	"strconv"
	"strings"
	"text/template"
)

var templateFuncs = template.FuncMap{
	"quote":      strconv.Quote,
	"importName": func(p string) string { return path.Base(p) },
	"goName":     goName,
	"argName":    argName,
	"docComment": docComment,
}

// docComment renders a query's accumulated doc comment as Go "//" lines,
// or "" if the query had none.
func docComment(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "// " + line
	}
	return strings.Join(lines, "\n")
}

var groupTemplate = template.Must(template.New("group").Funcs(templateFuncs).Parse(`{{.Header}}
// source: {{.SourceFile}}

package {{.Package}}

import (
{{- range .Imports}}
	"{{.}}"
{{- end}}
)

{{range .Queries}}
const {{goName .Name}}SQL = {{quote .SQL}}
{{if .Cols}}
// {{.RowTypeName}} is the result row shape of {{.Name}}.
type {{.RowTypeName}} struct {
{{- range .Cols}}
	{{goName .Name}} {{.Type.GoType}}
{{- end}}
}
{{end}}
{{docComment .DocComment}}{{if eq .Kind "one"}}
func (q *Queries) {{.Name}}(ctx context.Context{{range .Params}}, {{argName .Name}} {{.Type.GoType}}{{end}}) ({{.RowTypeName}}, error) {
	row := q.db.QueryRowContext(ctx, {{goName .Name}}SQL{{range .Params}}, {{argName .Name}}{{end}})
	var result {{.RowTypeName}}
	err := row.Scan({{range $i, $c := .Cols}}{{if $i}}, {{end}}&result.{{goName $c.Name}}{{end}})
	return result, err
}
{{else if eq .Kind "many"}}
func (q *Queries) {{.Name}}(ctx context.Context{{range .Params}}, {{argName .Name}} {{.Type.GoType}}{{end}}) ([]{{.RowTypeName}}, error) {
	rows, err := q.db.QueryContext(ctx, {{goName .Name}}SQL{{range .Params}}, {{argName .Name}}{{end}})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []{{.RowTypeName}}
	for rows.Next() {
		var item {{.RowTypeName}}
		if err := rows.Scan({{range $i, $c := .Cols}}{{if $i}}, {{end}}&item.{{goName $c.Name}}{{end}}); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
{{else if eq .Kind "exec"}}
func (q *Queries) {{.Name}}(ctx context.Context{{range .Params}}, {{argName .Name}} {{.Type.GoType}}{{end}}) error {
	_, err := q.db.ExecContext(ctx, {{goName .Name}}SQL{{range .Params}}, {{argName .Name}}{{end}})
	return err
}
{{else if eq .Kind "execrows"}}
func (q *Queries) {{.Name}}(ctx context.Context{{range .Params}}, {{argName .Name}} {{.Type.GoType}}{{end}}) (int64, error) {
	result, err := q.db.ExecContext(ctx, {{goName .Name}}SQL{{range .Params}}, {{argName .Name}}{{end}})
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
{{end}}
{{end}}
`))

var helperTemplate = template.Must(template.New("helper").Funcs(templateFuncs).Parse(`{{.Header}}
package {{.Package}}

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB, *sql.Tx, and *sql.Conn: whatever
// connection or transaction the caller wants queries to run against.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries wraps a DBTX with the generated methods for every annotated
// query pgtc found.
type Queries struct {
	db DBTX
}

// New returns a Queries backed by db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of Queries that runs against tx instead.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}
{{range .Enums}}
// {{.GoName}} is the Go representation of the "{{.PgName}}" enum.
type {{.GoName}} string

const (
{{- $enum := .}}
{{- range .Values}}
	{{$enum.GoName}}{{goName .}} {{$enum.GoName}} = {{quote .}}
{{- end}}
)
{{end}}
`))
