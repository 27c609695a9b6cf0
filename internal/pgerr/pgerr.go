// Package pgerr defines the typed error taxonomy pgtc reports through:
// connection failures, authentication failures, wire-protocol violations,
// per-query catalog/SQL errors, source file errors, and configuration
// errors. Callers use errors.As to recover the concrete type, and errors.Is
// reaches the underlying cause through each type's Unwrap.
package pgerr

import "fmt"

// ConnectionError wraps a failure to reach or maintain a connection to the
// Postgres server (dial failure, socket reset, unexpected close).
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthError wraps a failure during the startup authentication exchange:
// a rejected password, an unsupported SASL mechanism, a malformed SCRAM
// server response.
type AuthError struct {
	User string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authenticating as %q: %v", e.User, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ProtocolError wraps a violation of the wire protocol's message framing
// or sequencing contract — something the server or pgtc's own codec got
// wrong, as opposed to a rejected SQL statement.
type ProtocolError struct {
	Context string
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error (%s): %v", e.Context, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// QueryError reports a single annotated query's Parse/Describe failure, as
// returned by the server's ErrorResponse. File and Name identify where the
// query came from so generate/check can report "file.sql:GetUser: ..."
// without aborting the rest of the run.
type QueryError struct {
	File    string
	Name    string
	Code    string // Postgres SQLSTATE, e.g. "42703"
	Message string
	Detail  string
	Hint    string
	// Position is the 1-based byte offset into the query text the server
	// flagged, or 0 if the server didn't report one.
	Position int
}

func (e *QueryError) Error() string {
	loc := e.File
	if e.Name != "" {
		loc = fmt.Sprintf("%s:%s", e.File, e.Name)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: [%s] %s", loc, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", loc, e.Message)
}

// FileError reports a problem reading or parsing a .sql source file that
// is unrelated to any single query: an unreadable file, an annotation
// with no SQL body, a malformed "-- name: X :kind" header.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// EmptyQueryError reports a .sql source file that parsed without error
// but contributed zero queries — no "-- name:" header, and, under
// single-query fallback, no non-empty SQL body either.
type EmptyQueryError struct {
	Path string
}

func (e *EmptyQueryError) Error() string {
	return fmt.Sprintf("%s: contains no non-empty query", e.Path)
}

// ConfigError reports a problem with the resolved configuration: a
// malformed DATABASE_URL, a missing required setting, an unreadable
// .env file.
type ConfigError struct {
	Setting string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %q: %v", e.Setting, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
