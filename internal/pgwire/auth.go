package pgwire

import (
	"crypto/md5" //nolint:gosec // required by the Postgres wire protocol, not a security choice
	"encoding/hex"
	"fmt"

	"github.com/riftdata/pgtc/internal/pgerr"
	"github.com/riftdata/pgtc/internal/scram"
)

// Credentials supplies the password for a connection on demand, so
// internal/pgwire never has to know whether it came from DATABASE_URL, a
// .env file, or an interactive prompt.
type Credentials interface {
	Password() (string, error)
}

// StaticPassword is a Credentials that always returns the same password.
type StaticPassword string

func (p StaticPassword) Password() (string, error) { return string(p), nil }

// authenticate dispatches on whatever authentication request the server
// sent in response to the StartupMessage and drives it to completion.
func (c *Conn) authenticate(user string, creds Credentials) error {
	msg, err := c.recvMsg()
	if err != nil {
		return &pgerr.AuthError{User: user, Err: fmt.Errorf("reading authentication request: %w", err)}
	}

	switch m := msg.(type) {
	case MsgAuthOk:
		return nil
	case MsgAuthCleartext:
		return c.authCleartext(user, creds)
	case MsgAuthMD5:
		return c.authMD5(user, creds, m.Salt)
	case MsgAuthSASL:
		return c.authSASL(user, creds, m.Mechanisms)
	case MsgErrorResponse:
		return &pgerr.AuthError{User: user, Err: fmt.Errorf("%w: %w", ErrAuthenticationFailed, newQueryProtocolError(m))}
	default:
		return &pgerr.AuthError{User: user, Err: fmt.Errorf("%w: unexpected message %T", ErrUnsupportedAuth, msg)}
	}
}

func (c *Conn) authCleartext(user string, creds Credentials) error {
	password, err := creds.Password()
	if err != nil {
		return &pgerr.AuthError{User: user, Err: err}
	}
	if err := WriteMessage(c.conn, MsgPassword, EncodePasswordMessage(password)); err != nil {
		return &pgerr.AuthError{User: user, Err: err}
	}
	return c.awaitAuthOK(user)
}

func (c *Conn) authMD5(user string, creds Credentials, salt [4]byte) error {
	password, err := creds.Password()
	if err != nil {
		return &pgerr.AuthError{User: user, Err: err}
	}
	hashed := MD5Password(user, password, salt)
	if err := WriteMessage(c.conn, MsgPassword, EncodePasswordMessage(hashed)); err != nil {
		return &pgerr.AuthError{User: user, Err: err}
	}
	return c.awaitAuthOK(user)
}

func (c *Conn) authSASL(user string, creds Credentials, mechanisms []string) error {
	supported := false
	for _, m := range mechanisms {
		if m == scram.Mechanism {
			supported = true
			break
		}
	}
	if !supported {
		return &pgerr.AuthError{User: user, Err: fmt.Errorf("%w: server offered %v, pgtc only supports %s", ErrUnsupportedAuth, mechanisms, scram.Mechanism)}
	}

	password, err := creds.Password()
	if err != nil {
		return &pgerr.AuthError{User: user, Err: err}
	}

	conv, err := scram.NewClient(password)
	if err != nil {
		return &pgerr.AuthError{User: user, Err: err}
	}

	first := conv.ClientFirstMessage()
	if err := WriteMessage(c.conn, MsgPassword, EncodeSASLInitialResponse(scram.Mechanism, []byte(first))); err != nil {
		return &pgerr.AuthError{User: user, Err: err}
	}

	msg, err := c.recvMsg()
	if err != nil {
		return &pgerr.AuthError{User: user, Err: fmt.Errorf("reading SASL continue: %w", err)}
	}
	cont, ok := msg.(MsgAuthSASLContinue)
	if !ok {
		return &pgerr.AuthError{User: user, Err: fmt.Errorf("%w: expected AuthenticationSASLContinue, got %T", ErrProtocolViolation, msg)}
	}

	final, err := conv.ClientFinalMessage(string(cont.Data))
	if err != nil {
		return &pgerr.AuthError{User: user, Err: err}
	}
	if err := WriteMessage(c.conn, MsgPassword, EncodeSASLResponse([]byte(final))); err != nil {
		return &pgerr.AuthError{User: user, Err: err}
	}

	msg, err = c.recvMsg()
	if err != nil {
		return &pgerr.AuthError{User: user, Err: fmt.Errorf("reading SASL final: %w", err)}
	}
	sfinal, ok := msg.(MsgAuthSASLFinal)
	if !ok {
		if errResp, ok := msg.(MsgErrorResponse); ok {
			return &pgerr.AuthError{User: user, Err: fmt.Errorf("%w: %w", ErrAuthenticationFailed, newQueryProtocolError(errResp))}
		}
		return &pgerr.AuthError{User: user, Err: fmt.Errorf("%w: expected AuthenticationSASLFinal, got %T", ErrProtocolViolation, msg)}
	}
	if err := conv.VerifyServerFinal(string(sfinal.Data)); err != nil {
		return &pgerr.AuthError{User: user, Err: err}
	}

	return c.awaitAuthOK(user)
}

// awaitAuthOK reads the final AuthenticationOk that follows a password or
// SASL exchange.
func (c *Conn) awaitAuthOK(user string) error {
	msg, err := c.recvMsg()
	if err != nil {
		return &pgerr.AuthError{User: user, Err: err}
	}
	switch m := msg.(type) {
	case MsgAuthOk:
		return nil
	case MsgErrorResponse:
		return &pgerr.AuthError{User: user, Err: fmt.Errorf("%w: %w", ErrAuthenticationFailed, newQueryProtocolError(m))}
	default:
		return &pgerr.AuthError{User: user, Err: fmt.Errorf("%w: expected AuthenticationOk, got %T", ErrProtocolViolation, msg)}
	}
}

// MD5Password computes the MD5 password hash the wire protocol requires:
// concat('md5', md5(concat(md5(concat(password, username)), salt))). MD5
// is mandated by the protocol, not chosen for strength.
func MD5Password(user, password string, salt [4]byte) string {
	inner := md5.Sum([]byte(password + user)) //nolint:gosec
	innerHex := hex.EncodeToString(inner[:])
	outer := md5.Sum(append([]byte(innerHex), salt[:]...)) //nolint:gosec
	return "md5" + hex.EncodeToString(outer[:])
}
