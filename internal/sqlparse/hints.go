package sqlparse

import "strings"

// QuoteAliasHints scans sql for "!"/"?" nullability hint suffixes on
// identifiers — e.g. "SELECT email AS email! FROM users" forces email
// not-null regardless of what the catalog reports, and "total?" forces it
// nullable. It rewrites each hinted identifier as a double-quoted
// identifier with the hint character folded inside the quotes (email! ->
// "email!"), so the server echoes the hint back verbatim in the matching
// RowDescription field name — that echo, not a side map, is what
// internal/introspect matches hints against. It also returns a map from
// the quoted name to its override for callers that want it directly.
//
// The scanner walks the text one byte at a time, tracking whether it is
// inside a single-quoted string or a double-quoted identifier so hint
// characters inside literals are left alone.
func QuoteAliasHints(sql string) (string, map[string]Nullability, error) {
	var out strings.Builder
	out.Grow(len(sql))
	hints := make(map[string]Nullability)

	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	i := 0
	n := len(sql)

	for i < n {
		c := sql[i]

		switch state {
		case stateSingleQuote:
			out.WriteByte(c)
			if c == '\'' {
				if i+1 < n && sql[i+1] == '\'' { // escaped quote
					out.WriteByte(sql[i+1])
					i += 2
					continue
				}
				state = stateNormal
			}
			i++
			continue
		case stateDoubleQuote:
			out.WriteByte(c)
			if c == '"' {
				if i+1 < n && sql[i+1] == '"' {
					out.WriteByte(sql[i+1])
					i += 2
					continue
				}
				state = stateNormal
			}
			i++
			continue
		case stateLineComment:
			out.WriteByte(c)
			if c == '\n' {
				state = stateNormal
			}
			i++
			continue
		case stateBlockComment:
			out.WriteByte(c)
			if c == '*' && i+1 < n && sql[i+1] == '/' {
				out.WriteByte('/')
				i += 2
				state = stateNormal
				continue
			}
			i++
			continue
		}

		// stateNormal
		switch {
		case c == '\'':
			state = stateSingleQuote
			out.WriteByte(c)
			i++
		case c == '"':
			state = stateDoubleQuote
			out.WriteByte(c)
			i++
		case c == '-' && i+1 < n && sql[i+1] == '-':
			state = stateLineComment
			out.WriteByte(c)
			i++
		case c == '/' && i+1 < n && sql[i+1] == '*':
			state = stateBlockComment
			out.WriteByte(c)
			i++
		case isIdentStart(c):
			start := i
			for i < n && isIdentChar(sql[i]) {
				i++
			}
			ident := sql[start:i]
			if i < n && (sql[i] == '!' || sql[i] == '?') {
				hintChar := sql[i]
				echoed := ident + string(hintChar) // RowDescription echoes this, unquoted
				if hintChar == '!' {
					hints[echoed] = NotNull
				} else {
					hints[echoed] = Nullable
				}
				out.WriteString(`"` + echoed + `"`)
				i++ // consume the hint character, already folded into the quoted name
			} else {
				out.WriteString(ident)
			}
		default:
			out.WriteByte(c)
			i++
		}
	}

	if state == stateSingleQuote || state == stateDoubleQuote {
		return "", nil, errUnterminatedLiteral
	}

	return out.String(), hints, nil
}

// maskLiterals returns a copy of sql the same length as the input with the
// contents of every string literal, quoted identifier, and comment
// replaced by spaces. Byte offsets into the result line up with offsets
// into sql, so callers can run a plain regexp against the mask to decide
// whether a match in sql fell inside a literal without re-deriving the
// quote/comment state themselves.
func maskLiterals(sql string) string {
	var out strings.Builder
	out.Grow(len(sql))

	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	i := 0
	n := len(sql)

	for i < n {
		c := sql[i]

		switch state {
		case stateSingleQuote:
			if c == '\'' {
				if i+1 < n && sql[i+1] == '\'' {
					out.WriteString("  ")
					i += 2
					continue
				}
				state = stateNormal
				out.WriteByte(' ')
				i++
				continue
			}
			out.WriteByte(' ')
			i++
			continue
		case stateDoubleQuote:
			if c == '"' {
				if i+1 < n && sql[i+1] == '"' {
					out.WriteString("  ")
					i += 2
					continue
				}
				state = stateNormal
				out.WriteByte(' ')
				i++
				continue
			}
			out.WriteByte(' ')
			i++
			continue
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
				i++
				continue
			}
			out.WriteByte(' ')
			i++
			continue
		case stateBlockComment:
			if c == '*' && i+1 < n && sql[i+1] == '/' {
				out.WriteString("  ")
				i += 2
				state = stateNormal
				continue
			}
			out.WriteByte(' ')
			i++
			continue
		}

		// stateNormal
		switch {
		case c == '\'':
			state = stateSingleQuote
			out.WriteByte(' ')
			i++
		case c == '"':
			state = stateDoubleQuote
			out.WriteByte(' ')
			i++
		case c == '-' && i+1 < n && sql[i+1] == '-':
			state = stateLineComment
			out.WriteString("  ")
			i += 2
		case c == '/' && i+1 < n && sql[i+1] == '*':
			state = stateBlockComment
			out.WriteString("  ")
			i += 2
		default:
			out.WriteByte(c)
			i++
		}
	}

	return out.String()
}

var errUnterminatedLiteral = unterminatedLiteralError{}

type unterminatedLiteralError struct{}

func (unterminatedLiteralError) Error() string { return "unterminated string or quoted identifier" }

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '$'
}
