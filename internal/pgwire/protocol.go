package pgwire

// Postgres wire protocol version 3 message types and field constants.
// Reference: https://www.postgresql.org/docs/current/protocol-message-formats.html
//
// pgtc only ever plays the frontend (client) role: it dials out to a live
// Postgres server, authenticates, and drives Parse/Describe/Sync. The
// constant tables below keep both directions because the backend message
// bytes are required to decode what the server sends back.

// Frontend (client -> server) message types
const (
	MsgQuery    byte = 'Q'
	MsgParse    byte = 'P'
	MsgBind     byte = 'B'
	MsgDescribe byte = 'D'
	MsgExecute  byte = 'E'
	MsgClose    byte = 'C'
	MsgSync     byte = 'S'
	MsgFlush    byte = 'H'
	MsgTerminate byte = 'X'
	MsgPassword  byte = 'p'
)

// Backend (server -> client) message types
const (
	MsgAuthentication       byte = 'R'
	MsgBackendKeyData       byte = 'K'
	MsgBindComplete         byte = '2'
	MsgCloseComplete        byte = '3'
	MsgCommandComplete      byte = 'C'
	MsgDataRow              byte = 'D'
	MsgEmptyQueryResponse   byte = 'I'
	MsgErrorResponse        byte = 'E'
	MsgNoData               byte = 'n'
	MsgNoticeResponse       byte = 'N'
	MsgNotificationResponse byte = 'A'
	MsgParameterDescription byte = 't'
	MsgParameterStatus      byte = 'S'
	MsgParseComplete        byte = '1'
	MsgPortalSuspended      byte = 's'
	MsgReadyForQuery        byte = 'Z'
	MsgRowDescription       byte = 'T'
)

// Authentication request subtypes, carried in the int32 right after 'R'.
const (
	AuthOK                = 0
	AuthKerberosV5        = 2
	AuthCleartextPassword = 3
	AuthMD5Password       = 5
	AuthSCMCredential     = 6
	AuthGSS               = 7
	AuthGSSContinue       = 8
	AuthSSPI              = 9
	AuthSASL              = 10
	AuthSASLContinue      = 11
	AuthSASLFinal         = 12
)

// Transaction status indicators (ReadyForQuery)
const (
	TxStatusIdle   byte = 'I'
	TxStatusInTx   byte = 'T'
	TxStatusFailed byte = 'E'
)

// Protocol version and negotiation codes
const (
	ProtocolVersionNumber = 196608 // 3.0 = (3 << 16) | 0
	SSLRequestCode        = 80877103
	GSSENCRequestCode     = 80877104
)

// Error/notice field type bytes (ErrorResponse / NoticeResponse)
const (
	FieldSeverity byte = 'S'
	FieldCode     byte = 'C'
	FieldMessage  byte = 'M'
	FieldDetail   byte = 'D'
	FieldHint     byte = 'H'
	FieldPosition byte = 'P'
)
