package sqlparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var paramRef = regexp.MustCompile(`\$(\d+)`)

// RecoverParamNames derives a human-readable name for each of the query's
// $1..$n positional parameters, since the wire protocol only ever reports
// their types, never names. It tries, in order:
//
//  1. INSERT ... (col1, col2) VALUES ($1, $2) — positional match against
//     the column list.
//  2. A backward scan from the $n token for "<identifier> <op>" or
//     "<op> <identifier>", e.g. "email = $1" or "$1 = email".
//  3. LIMIT $n / OFFSET $n special-casing.
//  4. A "paramN" fallback when nothing else matches.
func RecoverParamNames(sql string, count int) []string {
	names := make([]string, count)

	if insertCols := insertValueColumns(sql); insertCols != nil {
		for i := range names {
			if i < len(insertCols) {
				names[i] = insertCols[i]
			}
		}
	}

	// Scan the masked copy so a "$1"-shaped substring inside a string
	// literal or quoted identifier is never mistaken for a real bind
	// parameter; masking preserves byte offsets, so matches index
	// straight back into the original sql.
	masked := maskLiterals(sql)
	for _, loc := range paramRef.FindAllStringSubmatchIndex(masked, -1) {
		n, _ := strconv.Atoi(sql[loc[2]:loc[3]])
		if n < 1 || n > count || names[n-1] != "" {
			continue
		}
		if name := nameFromContext(sql, loc[0], loc[1]); name != "" {
			names[n-1] = name
		}
	}

	for i, name := range names {
		if name == "" {
			names[i] = fmt.Sprintf("param%d", i+1)
		}
	}
	return names
}

var insertValuesRE = regexp.MustCompile(`(?is)INSERT\s+INTO\s+\S+\s*\(([^)]*)\)\s*VALUES\s*\(([^)]*)\)`)

// insertValueColumns matches "INSERT INTO t (a, b) VALUES ($1, $2)" and
// returns {"a", "b"} ordered to match the $n positions found in the
// VALUES list, or nil if the query isn't a single-row positional INSERT.
func insertValueColumns(sql string) []string {
	m := insertValuesRE.FindStringSubmatch(sql)
	if m == nil {
		return nil
	}
	cols := splitIdentList(m[1])
	values := splitIdentList(m[2])
	if len(cols) != len(values) {
		return nil
	}

	result := make([]string, 0, len(cols))
	for i, v := range values {
		v = strings.TrimSpace(v)
		if !strings.HasPrefix(v, "$") {
			return nil // not a purely positional VALUES list
		}
		n, err := strconv.Atoi(v[1:])
		if err != nil || n < 1 {
			return nil
		}
		for len(result) < n {
			result = append(result, "")
		}
		result[n-1] = strings.Trim(strings.TrimSpace(cols[i]), `"`)
	}
	return result
}

func splitIdentList(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

var (
	identBefore = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\s*(?:=|<|>|<=|>=|<>|!=)\s*$`)
	identAfter  = regexp.MustCompile(`^\s*(?:=|<|>|<=|>=|<>|!=)\s*([a-zA-Z_][a-zA-Z0-9_]*)`)
	limitBefore = regexp.MustCompile(`(?i)\bLIMIT\s*$`)
	offsetBefore = regexp.MustCompile(`(?i)\bOFFSET\s*$`)
)

// nameFromContext inspects the text immediately surrounding one $n
// reference (sql[start:end]) for an adjacent comparison against a bare
// identifier, or a preceding LIMIT/OFFSET keyword.
func nameFromContext(sql string, start, end int) string {
	before := sql[:start]
	after := sql[end:]

	if limitBefore.MatchString(before) {
		return "limit"
	}
	if offsetBefore.MatchString(before) {
		return "offset"
	}
	if m := identBefore.FindStringSubmatch(before); m != nil {
		return m[1]
	}
	if m := identAfter.FindStringSubmatch(after); m != nil {
		return m[1]
	}
	return ""
}
