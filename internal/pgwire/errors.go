package pgwire

import (
	"strconv"

	"github.com/riftdata/pgtc/internal/pgerr"
)

// newQueryProtocolError converts a server ErrorResponse into a
// *pgerr.QueryError. File and Name are filled in by internal/introspect,
// which knows which query was in flight; at the wire layer only the
// server's own fields are available.
func newQueryProtocolError(m MsgErrorResponse) *pgerr.QueryError {
	pos, _ := strconv.Atoi(FieldValue(m.Fields, FieldPosition))
	return &pgerr.QueryError{
		Code:     FieldValue(m.Fields, FieldCode),
		Message:  FieldValue(m.Fields, FieldMessage),
		Detail:   FieldValue(m.Fields, FieldDetail),
		Hint:     FieldValue(m.Fields, FieldHint),
		Position: pos,
	}
}
