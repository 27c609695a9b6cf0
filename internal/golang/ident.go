// Package golang holds the target-language facts internal/codegen needs:
// Go's reserved words and the identifier-escaping convention pgtc applies
// when a SQL name collides with one.
package golang

import "strings"

// Keywords is the set of Go reserved words, which can never be used as an
// identifier (predeclared names like "len" or "string" are not reserved
// and are left alone — shadowing them is legal, if inadvisable, Go).
var Keywords = map[string]bool{
	"break": true, "default": true, "func": true, "interface": true, "select": true,
	"case": true, "defer": true, "go": true, "map": true, "struct": true,
	"chan": true, "else": true, "goto": true, "package": true, "switch": true,
	"const": true, "fallthrough": true, "if": true, "range": true, "type": true,
	"continue": true, "for": true, "import": true, "return": true, "var": true,
}

// EscapeIdent appends a trailing underscore to name if it collides with a
// Go keyword, and otherwise returns it unchanged. "type" becomes "type_";
// "status" is untouched.
func EscapeIdent(name string) string {
	if Keywords[name] {
		return name + "_"
	}
	return name
}

// ExportedName converts a snake_case or kebab-case SQL identifier into an
// exported Go identifier: "user_id" -> "UserID", "created-at" ->
// "CreatedAt". Known initialisms are upper-cased per Go convention.
func ExportedName(sqlName string) string {
	parts := strings.FieldsFunc(sqlName, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if upper, ok := initialisms[strings.ToLower(p)]; ok {
			b.WriteString(upper)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	name := b.String()
	if name == "" {
		return "Field"
	}
	return name
}

// UnexportedName is like ExportedName but with the leading word
// lower-cased, for generated parameter names ("user_id" -> "userID",
// "id" -> "id").
func UnexportedName(sqlName string) string {
	parts := strings.FieldsFunc(sqlName, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if upper, ok := initialisms[strings.ToLower(p)]; ok {
			if i == 0 {
				b.WriteString(strings.ToLower(upper))
			} else {
				b.WriteString(upper)
			}
			continue
		}
		if i == 0 {
			b.WriteString(strings.ToLower(p[:1]))
			b.WriteString(p[1:])
		} else {
			b.WriteString(strings.ToUpper(p[:1]))
			b.WriteString(p[1:])
		}
	}
	name := b.String()
	if name == "" {
		return "field"
	}
	return name
}

// initialisms mirrors the common-initialisms list Go style guides (and
// generators like sqlc) use so "user_id" reads as "UserID", not "UserId".
var initialisms = map[string]string{
	"id":   "ID",
	"url":  "URL",
	"uuid": "UUID",
	"api":  "API",
	"json": "JSON",
	"html": "HTML",
	"http": "HTTP",
	"sql":  "SQL",
	"db":   "DB",
}
