package sqlparse

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/riftdata/pgtc/internal/golang"
	"github.com/riftdata/pgtc/internal/pgerr"
)

// HeaderPrefix marks a query header comment: "-- name: GetUser :one".
const HeaderPrefix = "-- name:"

// ParseFile extracts every annotated query from one .sql source file. It
// sweeps the file line by line: a header line opens a block, and every
// line up to (but not including) the next header or end of file is the
// query's SQL body. A header with no body is an error — there is nothing
// to Parse/Describe.
//
// A file with no "-- name:" header anywhere falls back to single-query
// mode: the whole file is one query, named from its filename stem, with
// its kind left unset for internal/introspect to default. A file that
// yields no query at all — no header and no SQL content to fall back
// to — fails with pgerr.EmptyQueryError.
func ParseFile(path string, source []byte) ([]UntypedQuery, error) {
	lines := strings.Split(string(source), "\n")

	var queries []UntypedQuery
	var current *UntypedQuery
	var body []string
	hasHeader := false

	flush := func() error {
		if current == nil {
			return nil
		}
		doc, sqlLines := splitDocComment(body)
		sql := strings.TrimSpace(strings.Join(sqlLines, "\n"))
		if sql == "" {
			return fmt.Errorf("%s:%d: query %q has a header but no SQL body", path, current.Line, current.Name)
		}
		stripped, hints, err := QuoteAliasHints(sql)
		if err != nil {
			return fmt.Errorf("%s:%d: query %q: %w", path, current.Line, current.Name, err)
		}
		current.SQL = stripped
		current.Hints = hints
		current.DocComment = doc
		queries = append(queries, *current)
		current = nil
		body = nil
		return nil
	}

	for i, line := range lines {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, HeaderPrefix) {
			hasHeader = true
			if err := flush(); err != nil {
				return nil, err
			}
			name, kind, err := parseHeader(trimmed, lineNum, path)
			if err != nil {
				return nil, err
			}
			current = &UntypedQuery{File: path, Name: name, Kind: kind, Line: lineNum}
			continue
		}

		if current != nil {
			body = append(body, line)
		}
		// Lines before the first header (bare comments, blank lines) are
		// not part of any query and are silently skipped.
	}

	if err := flush(); err != nil {
		return nil, err
	}

	if !hasHeader && len(queries) == 0 {
		q, err := singleQueryFallback(path, lines)
		if err != nil {
			return nil, err
		}
		if q != nil {
			queries = append(queries, *q)
		}
	}

	if len(queries) == 0 {
		return nil, &pgerr.EmptyQueryError{Path: path}
	}

	if err := checkDuplicateNames(path, queries); err != nil {
		return nil, err
	}

	return queries, nil
}

// singleQueryFallback builds the one query a headerless file contributes:
// the whole file is its body, its name comes from the filename stem, and
// its kind is left unset for internal/introspect to default from the
// shape of its resolved columns. It returns (nil, nil) for a file that
// carries no SQL content at all, so ParseFile can report EmptyQuery.
func singleQueryFallback(path string, lines []string) (*UntypedQuery, error) {
	doc, sqlLines := splitDocComment(lines)
	sql := strings.TrimSpace(strings.Join(sqlLines, "\n"))
	if sql == "" {
		return nil, nil
	}

	stripped, hints, err := QuoteAliasHints(sql)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &UntypedQuery{
		File:       path,
		Name:       golang.ExportedName(stem),
		Kind:       "",
		SQL:        stripped,
		Line:       1,
		Hints:      hints,
		DocComment: doc,
	}, nil
}

// splitDocComment peels the leading run of blank and "--" comment lines
// off body and joins them into a doc comment, stripping the "--" marker
// and one following space from each. The remaining lines, starting at
// the first line that is neither blank nor a comment, are the SQL body.
func splitDocComment(body []string) (doc string, sql []string) {
	var docLines []string
	i := 0
	for i < len(body) {
		t := strings.TrimSpace(body[i])
		if t == "" {
			i++
			continue
		}
		if strings.HasPrefix(t, "--") {
			docLines = append(docLines, strings.TrimPrefix(strings.TrimPrefix(t, "--"), " "))
			i++
			continue
		}
		break
	}
	return strings.Join(docLines, "\n"), body[i:]
}

// parseHeader parses "-- name: <Name> [:<kind>]" into its fields. The
// kind token is optional; when omitted, internal/introspect defaults it
// from the shape of the query's resolved columns.
func parseHeader(line string, lineNum int, path string) (name string, kind Kind, err error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, HeaderPrefix))
	fields := strings.Fields(rest)
	if len(fields) < 1 || len(fields) > 2 {
		return "", "", fmt.Errorf("%s:%d: malformed query header %q, want \"-- name: X\" or \"-- name: X :kind\"", path, lineNum, line)
	}
	name = fields[0]
	if len(fields) == 1 {
		return name, "", nil
	}

	kindToken := fields[1]
	if !strings.HasPrefix(kindToken, ":") {
		return "", "", fmt.Errorf("%s:%d: query %q: kind %q must start with ':'", path, lineNum, name, kindToken)
	}
	kind, err = ParseKind(strings.TrimPrefix(kindToken, ":"))
	if err != nil {
		return "", "", fmt.Errorf("%s:%d: query %q: %w", path, lineNum, name, err)
	}
	return name, kind, nil
}

func checkDuplicateNames(path string, queries []UntypedQuery) error {
	seen := make(map[string]int, len(queries))
	for _, q := range queries {
		if firstLine, ok := seen[q.Name]; ok {
			return fmt.Errorf("%s:%d: query name %q already used at line %d", path, q.Line, q.Name, firstLine)
		}
		seen[q.Name] = q.Line
	}
	return nil
}
