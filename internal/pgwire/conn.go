package pgwire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUnsupportedAuth      = errors.New("unsupported authentication method")
	ErrConnectionClosed     = errors.New("connection closed")
	ErrProtocolViolation    = errors.New("protocol violation")
)

// ConnID is a unique connection identifier, useful for correlating log
// lines when an introspection run opens several connections in sequence.
type ConnID uint64

var connIDCounter uint64

func nextConnID() ConnID {
	return ConnID(atomic.AddUint64(&connIDCounter, 1))
}

// Conn is a single frontend connection to a live Postgres server. pgtc
// never pools or multiplexes connections — one Conn serves one
// introspection run, opened, used for a sequence of Parse/Describe/Sync
// round trips, then closed.
type Conn struct {
	id   ConnID
	conn net.Conn

	params    map[string]string
	pid       int32
	secretKey int32

	mu     sync.Mutex
	closed bool

	recvBuf []byte // accumulates bytes read from conn until a full frame exists
}

// Connect dials the server at address ("host:port") and returns an
// unauthenticated Conn. Call Handshake next.
func Connect(ctx context.Context, address string) (*Conn, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	return &Conn{
		id:      nextConnID(),
		conn:    nc,
		params:  make(map[string]string),
		recvBuf: make([]byte, 0, 4096),
	}, nil
}

// ID returns the connection's log-correlation identifier.
func (c *Conn) ID() ConnID { return c.id }

// ParameterStatus returns the value the server reported for name during
// startup, or "" if it never sent one.
func (c *Conn) ParameterStatus(name string) string { return c.params[name] }

// SetDeadline sets the read/write deadline on the underlying socket.
func (c *Conn) SetDeadline(t time.Time) error { return c.conn.SetDeadline(t) }

// Close closes the underlying connection. Safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// Handshake sends the StartupMessage for user/database, drives whatever
// authentication exchange the server demands via creds, and consumes the
// post-authentication ParameterStatus/BackendKeyData stream up to the
// first ReadyForQuery. A failure during the authentication exchange is
// returned as a typed AuthError (see internal/pgerr); a failure after it
// is returned as a wrapped error, or as a *pgerr.QueryError for a server
// ErrorResponse.
func (c *Conn) Handshake(user, database string, creds Credentials) error {
	if err := WriteUntypedMessage(c.conn, EncodeStartupMessage(user, database)); err != nil {
		return fmt.Errorf("sending startup message: %w", err)
	}

	if err := c.authenticate(user, creds); err != nil {
		return err
	}

	for {
		msg, err := c.recvMsg()
		if err != nil {
			return fmt.Errorf("post-auth handshake: %w", err)
		}
		switch m := msg.(type) {
		case MsgParamStatus:
			c.params[m.Name] = m.Value
		case MsgBackendKeyData:
			c.pid = m.PID
			c.secretKey = m.SecretKey
		case MsgReadyForQuery:
			return nil
		case MsgErrorResponse:
			return newQueryProtocolError(m)
		case MsgNoticeResponse:
			// accepted and ignored
		default:
			return fmt.Errorf("%w: unexpected message %T during handshake", ErrProtocolViolation, msg)
		}
	}
}

// recvMsg returns the next fully-framed backend message, blocking on the
// socket as needed. The returned Msg's []byte/string fields may alias
// c.recvBuf and are only valid until the next recvMsg call — callers that
// need to retain them (e.g. DataRow column values) must copy first.
func (c *Conn) recvMsg() (Msg, error) {
	for {
		msgType, total, err := PeekBackendFrame(c.recvBuf)
		if err == nil {
			frame := c.recvBuf[:total]
			msg, decodeErr := DecodeBackendMessage(msgType, frame[5:])
			c.recvBuf = c.recvBuf[total:]
			c.compact()
			if decodeErr != nil {
				return nil, decodeErr
			}
			return msg, nil
		}
		if !errors.Is(err, ErrNeedMoreData) {
			return nil, err
		}
		if err := c.fill(); err != nil {
			return nil, err
		}
	}
}

// fill reads at least one more chunk from the socket into recvBuf.
func (c *Conn) fill() error {
	start := len(c.recvBuf)
	grow := 4096
	if cap(c.recvBuf)-start < grow {
		next := make([]byte, start, (cap(c.recvBuf)+grow)*2)
		copy(next, c.recvBuf)
		c.recvBuf = next
	}
	c.recvBuf = c.recvBuf[:start+grow]
	n, err := c.conn.Read(c.recvBuf[start : start+grow])
	c.recvBuf = c.recvBuf[:start+n]
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("%w: %w", ErrConnectionClosed, err)
		}
		return fmt.Errorf("reading from connection: %w", err)
	}
	return nil
}

// compact copies nothing: messages recvMsg has just returned may still
// alias the current backing array. Unconsumed bytes move to the front of
// a fresh backing array in fill, once the remaining capacity runs short.
func (c *Conn) compact() {
	if len(c.recvBuf) == 0 {
		c.recvBuf = c.recvBuf[:0]
		return
	}
}

// sendExtendedQuery runs the Parse/Describe/Sync sequence the introspector
// needs for one query: it never Binds or Executes because pgtc only needs
// the parameter and result shapes, not a result set.
func (c *Conn) sendExtendedQuery(sql string) error {
	if err := WriteMessage(c.conn, MsgParse, EncodeParse(sql)); err != nil {
		return fmt.Errorf("sending parse: %w", err)
	}
	if err := WriteMessage(c.conn, MsgDescribe, EncodeDescribe(DescribeStatement)); err != nil {
		return fmt.Errorf("sending describe: %w", err)
	}
	if err := WriteMessage(c.conn, MsgSync, EncodeSync()); err != nil {
		return fmt.Errorf("sending sync: %w", err)
	}
	return nil
}

// DescribeStatementResult is the typed outcome of one Parse/Describe/Sync
// round trip: the inferred parameter OIDs and the result row shape (nil
// for statements with no result set, e.g. an INSERT without RETURNING).
type DescribeStatementResult struct {
	ParamOIDs []uint32
	Row       []RowField // nil if the statement returns no rows
}

// DescribeStatement parses sql as an unnamed prepared statement and
// returns its inferred parameter and result types. It always consumes
// through ReadyForQuery, even on error, so the connection is ready for
// the next query.
func (c *Conn) DescribeStatement(sql string) (DescribeStatementResult, error) {
	if err := c.sendExtendedQuery(sql); err != nil {
		return DescribeStatementResult{}, err
	}

	var result DescribeStatementResult
	var queryErr error

	for {
		msg, err := c.recvMsg()
		if err != nil {
			return DescribeStatementResult{}, fmt.Errorf("describing statement: %w", err)
		}
		switch m := msg.(type) {
		case MsgParseComplete:
			// no-op, continues to ParameterDescription
		case MsgParameterDescription:
			result.ParamOIDs = append([]uint32(nil), m.OIDs...)
		case MsgRowDescription:
			result.Row = append([]RowField(nil), m.Fields...)
		case MsgNoData:
			result.Row = nil
		case MsgErrorResponse:
			queryErr = newQueryProtocolError(m)
		case MsgReadyForQuery:
			if queryErr != nil {
				return DescribeStatementResult{}, queryErr
			}
			return result, nil
		default:
			return DescribeStatementResult{}, fmt.Errorf("%w: unexpected message %T describing statement", ErrProtocolViolation, msg)
		}
	}
}

// SimpleQuery runs sql via the simple query protocol and returns its rows.
// internal/pgcat uses this for catalog lookups, where named-statement
// overhead buys nothing.
func (c *Conn) SimpleQuery(sql string) ([]MsgDataRow, error) {
	if err := WriteMessage(c.conn, MsgQuery, EncodeSimpleQuery(sql)); err != nil {
		return nil, fmt.Errorf("sending query: %w", err)
	}

	var rows []MsgDataRow
	var queryErr error

	for {
		msg, err := c.recvMsg()
		if err != nil {
			return nil, fmt.Errorf("running query: %w", err)
		}
		switch m := msg.(type) {
		case MsgRowDescription:
			// column shapes are not needed for catalog queries; pgcat knows
			// the shape of its own SQL text.
		case MsgDataRow:
			cols := make([][]byte, len(m.Columns))
			for i, v := range m.Columns {
				if v != nil {
					cols[i] = append([]byte(nil), v...)
				}
			}
			rows = append(rows, MsgDataRow{Columns: cols})
		case MsgCommandComplete, MsgEmptyQueryResponse:
			// no-op, waits for ReadyForQuery
		case MsgErrorResponse:
			queryErr = newQueryProtocolError(m)
		case MsgReadyForQuery:
			if queryErr != nil {
				return nil, queryErr
			}
			return rows, nil
		default:
			return nil, fmt.Errorf("%w: unexpected message %T running query", ErrProtocolViolation, msg)
		}
	}
}

// Close the unnamed statement and terminate the connection cleanly.
func (c *Conn) Terminate() error {
	if err := WriteMessage(c.conn, MsgClose, EncodeClose(DescribeStatement)); err != nil {
		return err
	}
	if err := WriteMessage(c.conn, MsgTerminate, EncodeTerminate()); err != nil {
		return err
	}
	return c.Close()
}
