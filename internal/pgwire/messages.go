package pgwire

import (
	"fmt"
)

// RowField carries the seven-tuple Postgres reports for one column of a
// RowDescription: name, the OID of the table it came from (0 for a
// computed expression), the column's attribute number within that table
// (<=0 for a computed expression), the column's type OID, its on-wire
// type length, type modifier, and format code (always 0/text here).
type RowField struct {
	Name       string
	TableOID   uint32
	ColumnAttr int16
	TypeOID    uint32
	TypeLen    int16
	TypeMod    int32
	FormatCode int16
}

// ErrorField is a single (code byte, value) pair from an ErrorResponse or
// NoticeResponse payload.
type ErrorField struct {
	Code  byte
	Value string
}

// FieldValue returns the value for a given field code, or "" if absent.
func FieldValue(fields []ErrorField, code byte) string {
	for _, f := range fields {
		if f.Code == code {
			return f.Value
		}
	}
	return ""
}

// Msg is the sealed set of backend messages pgtc's introspector needs to
// recognise. Decoded string/byte payloads are views into the connection's
// receive buffer — see Conn.recvMsg for the ownership contract.
type Msg interface{ isBackendMsg() }

type MsgAuthOk struct{}
type MsgAuthCleartext struct{}
type MsgAuthMD5 struct{ Salt [4]byte }
type MsgAuthSASL struct{ Mechanisms []string }
type MsgAuthSASLContinue struct{ Data []byte }
type MsgAuthSASLFinal struct{ Data []byte }
type MsgParamStatus struct{ Name, Value string }
type MsgBackendKeyData struct{ PID, SecretKey int32 }
type MsgReadyForQuery struct{ Status byte }
type MsgParseComplete struct{}
type MsgBindComplete struct{}
type MsgCloseComplete struct{}
type MsgNoData struct{}
type MsgParameterDescription struct{ OIDs []uint32 }
type MsgRowDescription struct{ Fields []RowField }
type MsgDataRow struct{ Columns [][]byte } // a nil entry is SQL NULL
type MsgCommandComplete struct{ Tag string }
type MsgErrorResponse struct{ Fields []ErrorField }
type MsgNoticeResponse struct{ Fields []ErrorField }
type MsgEmptyQueryResponse struct{}

func (MsgAuthOk) isBackendMsg()               {}
func (MsgAuthCleartext) isBackendMsg()        {}
func (MsgAuthMD5) isBackendMsg()              {}
func (MsgAuthSASL) isBackendMsg()             {}
func (MsgAuthSASLContinue) isBackendMsg()     {}
func (MsgAuthSASLFinal) isBackendMsg()        {}
func (MsgParamStatus) isBackendMsg()          {}
func (MsgBackendKeyData) isBackendMsg()       {}
func (MsgReadyForQuery) isBackendMsg()        {}
func (MsgParseComplete) isBackendMsg()        {}
func (MsgBindComplete) isBackendMsg()         {}
func (MsgCloseComplete) isBackendMsg()        {}
func (MsgNoData) isBackendMsg()               {}
func (MsgParameterDescription) isBackendMsg() {}
func (MsgRowDescription) isBackendMsg()       {}
func (MsgDataRow) isBackendMsg()              {}
func (MsgCommandComplete) isBackendMsg()      {}
func (MsgErrorResponse) isBackendMsg()        {}
func (MsgNoticeResponse) isBackendMsg()       {}
func (MsgEmptyQueryResponse) isBackendMsg()   {}

// DecodeBackendMessage decodes the payload (message body after the 5-byte
// header) of one backend message, given its type byte.
func DecodeBackendMessage(msgType byte, payload []byte) (Msg, error) {
	buf := NewBuffer(0)
	buf.SetBytes(payload)

	switch msgType {
	case MsgAuthentication:
		return decodeAuthentication(buf)
	case MsgParameterStatus:
		name, err := buf.ReadString()
		if err != nil {
			return nil, fmt.Errorf("parameter status name: %w", err)
		}
		value, err := buf.ReadString()
		if err != nil {
			return nil, fmt.Errorf("parameter status value: %w", err)
		}
		return MsgParamStatus{Name: name, Value: value}, nil
	case MsgBackendKeyData:
		pid, err := buf.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("backend key data pid: %w", err)
		}
		secret, err := buf.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("backend key data secret: %w", err)
		}
		return MsgBackendKeyData{PID: pid, SecretKey: secret}, nil
	case MsgReadyForQuery:
		status, err := buf.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("ready for query status: %w", err)
		}
		return MsgReadyForQuery{Status: status}, nil
	case MsgParseComplete:
		return MsgParseComplete{}, nil
	case MsgBindComplete:
		return MsgBindComplete{}, nil
	case MsgCloseComplete:
		return MsgCloseComplete{}, nil
	case MsgNoData:
		return MsgNoData{}, nil
	case MsgParameterDescription:
		return decodeParameterDescription(buf)
	case MsgRowDescription:
		return decodeRowDescription(buf)
	case MsgDataRow:
		return decodeDataRow(buf)
	case MsgCommandComplete:
		tag, err := buf.ReadString()
		if err != nil {
			return nil, fmt.Errorf("command complete tag: %w", err)
		}
		return MsgCommandComplete{Tag: tag}, nil
	case MsgErrorResponse:
		fields, err := decodeFields(buf)
		if err != nil {
			return nil, fmt.Errorf("error response: %w", err)
		}
		return MsgErrorResponse{Fields: fields}, nil
	case MsgNoticeResponse:
		fields, err := decodeFields(buf)
		if err != nil {
			return nil, fmt.Errorf("notice response: %w", err)
		}
		return MsgNoticeResponse{Fields: fields}, nil
	case MsgEmptyQueryResponse:
		return MsgEmptyQueryResponse{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown backend message type %q", ErrInvalidMessage, msgType)
	}
}

func decodeAuthentication(buf *Buffer) (Msg, error) {
	authType, err := buf.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("authentication type: %w", err)
	}
	switch authType {
	case AuthOK:
		return MsgAuthOk{}, nil
	case AuthCleartextPassword:
		return MsgAuthCleartext{}, nil
	case AuthMD5Password:
		salt, err := buf.ReadBytes(4)
		if err != nil {
			return nil, fmt.Errorf("md5 salt: %w", err)
		}
		var s [4]byte
		copy(s[:], salt)
		return MsgAuthMD5{Salt: s}, nil
	case AuthSASL:
		var mechanisms []string
		for {
			m, err := buf.ReadString()
			if err != nil {
				return nil, fmt.Errorf("sasl mechanism: %w", err)
			}
			if m == "" {
				break
			}
			mechanisms = append(mechanisms, m)
		}
		return MsgAuthSASL{Mechanisms: mechanisms}, nil
	case AuthSASLContinue:
		return MsgAuthSASLContinue{Data: buf.ReadRemainder()}, nil
	case AuthSASLFinal:
		return MsgAuthSASLFinal{Data: buf.ReadRemainder()}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported authentication type %d", ErrInvalidMessage, authType)
	}
}

func decodeParameterDescription(buf *Buffer) (Msg, error) {
	n, err := buf.ReadInt16()
	if err != nil {
		return nil, fmt.Errorf("num param oids: %w", err)
	}
	oids := make([]uint32, n)
	for i := range oids {
		v, err := buf.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("param oid %d: %w", i, err)
		}
		oids[i] = uint32(v)
	}
	return MsgParameterDescription{OIDs: oids}, nil
}

func decodeRowDescription(buf *Buffer) (Msg, error) {
	n, err := buf.ReadInt16()
	if err != nil {
		return nil, fmt.Errorf("num fields: %w", err)
	}
	fields := make([]RowField, n)
	for i := range fields {
		name, err := buf.ReadString()
		if err != nil {
			return nil, fmt.Errorf("field %d name: %w", i, err)
		}
		tableOID, err := buf.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("field %d table oid: %w", i, err)
		}
		attr, err := buf.ReadInt16()
		if err != nil {
			return nil, fmt.Errorf("field %d attr: %w", i, err)
		}
		typeOID, err := buf.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("field %d type oid: %w", i, err)
		}
		typeLen, err := buf.ReadInt16()
		if err != nil {
			return nil, fmt.Errorf("field %d type len: %w", i, err)
		}
		typeMod, err := buf.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("field %d type mod: %w", i, err)
		}
		format, err := buf.ReadInt16()
		if err != nil {
			return nil, fmt.Errorf("field %d format: %w", i, err)
		}
		fields[i] = RowField{
			Name:       name,
			TableOID:   uint32(tableOID),
			ColumnAttr: attr,
			TypeOID:    uint32(typeOID),
			TypeLen:    typeLen,
			TypeMod:    typeMod,
			FormatCode: format,
		}
	}
	return MsgRowDescription{Fields: fields}, nil
}

func decodeDataRow(buf *Buffer) (Msg, error) {
	n, err := buf.ReadInt16()
	if err != nil {
		return nil, fmt.Errorf("num columns: %w", err)
	}
	cols := make([][]byte, n)
	for i := range cols {
		length, err := buf.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("column %d length: %w", i, err)
		}
		if length == -1 {
			cols[i] = nil
			continue
		}
		v, err := buf.ReadBytes(int(length))
		if err != nil {
			return nil, fmt.Errorf("column %d value: %w", i, err)
		}
		cols[i] = v
	}
	return MsgDataRow{Columns: cols}, nil
}

func decodeFields(buf *Buffer) ([]ErrorField, error) {
	var fields []ErrorField
	for {
		code, err := buf.ReadByte()
		if err != nil {
			return nil, err
		}
		if code == 0 {
			return fields, nil
		}
		value, err := buf.ReadString()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ErrorField{Code: code, Value: value})
	}
}

// --- Frontend encoders ---
// Each returns the message payload; callers pass it to WriteMessage with
// the appropriate type byte (WriteUntypedMessage for StartupMessage, which
// has none).

// EncodeStartupMessage builds the payload for the initial StartupMessage:
// protocol version followed by null-terminated "user"/<user>, "database"/<db>
// pairs and a final null terminator. No type byte precedes it on the wire.
func EncodeStartupMessage(user, database string) []byte {
	buf := NewBuffer(64)
	buf.WriteInt32(ProtocolVersionNumber)
	buf.WriteString("user")
	buf.WriteString(user)
	buf.WriteString("database")
	buf.WriteString(database)
	_ = buf.WriteByte(0)
	return buf.Bytes()
}

// EncodePasswordMessage builds a PasswordMessage ('p') payload carrying a
// cleartext or pre-hashed (MD5) password.
func EncodePasswordMessage(password string) []byte {
	buf := NewBuffer(len(password) + 1)
	buf.WriteString(password)
	return buf.Bytes()
}

// EncodeSASLInitialResponse builds the SASLInitialResponse ('p') payload:
// mechanism name, null terminator, then a 4-byte response length followed
// by the response bytes.
func EncodeSASLInitialResponse(mechanism string, response []byte) []byte {
	buf := NewBuffer(len(mechanism) + 5 + len(response))
	buf.WriteString(mechanism)
	buf.WriteInt32(int32(len(response)))
	buf.WriteBytes(response)
	return buf.Bytes()
}

// EncodeSASLResponse builds the SASLResponse ('p') payload: raw response
// bytes, no additional framing beyond the message envelope.
func EncodeSASLResponse(response []byte) []byte {
	buf := NewBuffer(len(response))
	buf.WriteBytes(response)
	return buf.Bytes()
}

// EncodeParse builds a Parse ('P') payload for an unnamed statement with
// the given SQL and zero parameter-type hints, leaving parameter OIDs for
// the server to infer.
func EncodeParse(sql string) []byte {
	buf := NewBuffer(len(sql) + 8)
	buf.WriteString("") // unnamed statement
	buf.WriteString(sql)
	buf.WriteInt16(0) // no parameter type hints
	return buf.Bytes()
}

// DescribeTarget identifies what a Describe message targets.
type DescribeTarget byte

const (
	DescribeStatement DescribeTarget = 'S'
	DescribePortal    DescribeTarget = 'P'
)

// EncodeDescribe builds a Describe ('D') payload for the unnamed
// statement/portal.
func EncodeDescribe(target DescribeTarget) []byte {
	buf := NewBuffer(2)
	_ = buf.WriteByte(byte(target))
	buf.WriteString("")
	return buf.Bytes()
}

// EncodeSync builds the (empty) Sync ('S') payload.
func EncodeSync() []byte { return nil }

// EncodeSimpleQuery builds a simple Query ('Q') payload.
func EncodeSimpleQuery(sql string) []byte {
	buf := NewBuffer(len(sql) + 1)
	buf.WriteString(sql)
	return buf.Bytes()
}

// EncodeClose builds a Close ('C') payload for the unnamed statement/portal.
func EncodeClose(target DescribeTarget) []byte {
	buf := NewBuffer(2)
	_ = buf.WriteByte(byte(target))
	buf.WriteString("")
	return buf.Bytes()
}

// EncodeTerminate builds the (empty) Terminate ('X') payload.
func EncodeTerminate() []byte { return nil }
