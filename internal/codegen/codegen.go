// Package codegen turns a batch of resolved sqlparse.TypedQuery records
// into Go source. Generation is a pure function of its inputs — the same
// TypedQuery slice always produces byte-identical files, which is what
// lets "pgtc check" diff a fresh render against what's checked in without
// re-running introspection twice.
package codegen

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/riftdata/pgtc/internal/golang"
	"github.com/riftdata/pgtc/internal/pgcat"
	"github.com/riftdata/pgtc/internal/sqlparse"
)

// GeneratedHeader marks every file pgtc writes as generated output that
// should not be edited by hand.
const GeneratedHeader = "// Code generated by pgtc. DO NOT EDIT.\n"

// Emit renders one Go source file per input .sql file plus a shared
// helper.go carrying the DBTX interface and any enum types the queries
// reference. The returned Output holds the content keyed by relative
// output path; Files lists those paths in sorted order.
func Emit(packageName string, queries []sqlparse.TypedQuery) (*Output, error) {
	out := &Output{packageName: packageName, files: make(map[string][]byte)}

	groups := groupByFile(queries)
	groupNames := make([]string, 0, len(groups))
	for name := range groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	for _, name := range groupNames {
		content, err := renderGroup(packageName, name, groups[name])
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", name, err)
		}
		out.files[outputName(name)] = content
	}

	helper, err := renderHelper(packageName, collectEnums(queries))
	if err != nil {
		return nil, fmt.Errorf("rendering helper.go: %w", err)
	}
	out.files["helper.go"] = helper

	return out, nil
}

// Output is the rendered file set from one Emit call.
type Output struct {
	packageName string
	files       map[string][]byte
}

// Files returns the rendered files in deterministic (sorted) path order.
func (o *Output) Files() []string {
	names := make([]string, 0, len(o.files))
	for name := range o.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Content returns the rendered bytes for path, as returned by Files.
func (o *Output) Content(path string) []byte { return o.files[path] }

func outputName(sqlFile string) string {
	base := filepath.Base(sqlFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + ".sql.go"
}

func groupByFile(queries []sqlparse.TypedQuery) map[string][]sqlparse.TypedQuery {
	groups := make(map[string][]sqlparse.TypedQuery)
	for _, q := range queries {
		groups[q.File] = append(groups[q.File], q)
	}
	for file := range groups {
		sort.Slice(groups[file], func(i, j int) bool {
			return groups[file][i].Name < groups[file][j].Name
		})
	}
	return groups
}

// collectEnums gathers every distinct Enum type referenced by any query's
// params or columns, deduplicated by Go name and sorted for determinism.
func collectEnums(queries []sqlparse.TypedQuery) []pgcat.Enum {
	seen := make(map[string]pgcat.Enum)
	visit := func(t pgcat.TargetType) {
		switch v := t.(type) {
		case pgcat.Enum:
			seen[v.GoName] = v
		case pgcat.Array:
			if e, ok := v.Elem.(pgcat.Enum); ok {
				seen[e.GoName] = e
			}
		case pgcat.Optional:
			if e, ok := v.Elem.(pgcat.Enum); ok {
				seen[e.GoName] = e
			}
			if a, ok := v.Elem.(pgcat.Array); ok {
				if e, ok := a.Elem.(pgcat.Enum); ok {
					seen[e.GoName] = e
				}
			}
		}
	}
	for _, q := range queries {
		for _, p := range q.Params {
			visit(p.Type)
		}
		for _, c := range q.Cols {
			visit(c.Type)
		}
	}

	enums := make([]pgcat.Enum, 0, len(seen))
	for _, e := range seen {
		enums = append(enums, e)
	}
	sort.Slice(enums, func(i, j int) bool { return enums[i].GoName < enums[j].GoName })
	return enums
}

// collectImports returns the sorted, deduplicated set of packages a
// query's params and columns require.
func collectImports(queries []sqlparse.TypedQuery) []string {
	seen := map[string]bool{"context": true}
	var visit func(pgcat.TargetType)
	visit = func(t pgcat.TargetType) {
		switch v := t.(type) {
		case pgcat.Primitive:
			if v.Import != "" {
				seen[v.Import] = true
			}
		case pgcat.Array:
			visit(v.Elem)
		case pgcat.Optional:
			visit(v.Elem)
		}
	}
	for _, q := range queries {
		for _, p := range q.Params {
			visit(p.Type)
		}
		for _, c := range q.Cols {
			visit(c.Type)
		}
	}
	imports := make([]string, 0, len(seen))
	for imp := range seen {
		imports = append(imports, imp)
	}
	sort.Strings(imports)
	return imports
}

func goName(sqlName string) string { return golang.ExportedName(sqlName) }
func argName(sqlName string) string {
	return golang.EscapeIdent(golang.UnexportedName(sqlName))
}

func renderGroup(packageName, file string, queries []sqlparse.TypedQuery) ([]byte, error) {
	type queryView struct {
		sqlparse.TypedQuery
		RowTypeName string
	}
	views := make([]queryView, len(queries))
	for i, q := range queries {
		views[i] = queryView{TypedQuery: q, RowTypeName: q.Name + "Row"}
	}

	data := struct {
		Header      string
		Package     string
		SourceFile  string
		Imports     []string
		Queries     []queryView
		GoName      func(string) string
		ArgName     func(string) string
	}{
		Header:     GeneratedHeader,
		Package:    packageName,
		SourceFile: file,
		Imports:    collectImports(queries),
		Queries:    views,
		GoName:     goName,
		ArgName:    argName,
	}

	var buf bytes.Buffer
	if err := groupTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderHelper(packageName string, enums []pgcat.Enum) ([]byte, error) {
	data := struct {
		Header  string
		Package string
		Enums   []pgcat.Enum
	}{
		Header:  GeneratedHeader,
		Package: packageName,
		Enums:   enums,
	}
	var buf bytes.Buffer
	if err := helperTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
