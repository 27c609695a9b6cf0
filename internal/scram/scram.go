// Package scram implements the client side of the SCRAM-SHA-256 SASL
// mechanism (RFC 5802) that Postgres uses for password authentication from
// version 10 onward. It is a connection-free state machine: internal/pgwire
// drives it by feeding in the server's messages and writing its outputs to
// the wire, so this package never imports net or pgwire.
package scram

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xdg-go/stringprep"
	"golang.org/x/crypto/pbkdf2"
)

// Mechanism is the SASL mechanism name pgtc advertises and expects the
// server to select.
const Mechanism = "SCRAM-SHA-256"

var (
	ErrInvalidServerFirst = errors.New("invalid SCRAM server-first-message")
	ErrInvalidServerFinal = errors.New("invalid SCRAM server-final-message")
	ErrServerSignature    = errors.New("SCRAM server signature mismatch")
	ErrNonceMismatch      = errors.New("SCRAM server nonce does not extend client nonce")
)

// Client carries the state of one SCRAM-SHA-256 conversation from
// client-first-message through server-final verification. Zero value is
// not usable; construct with NewClient.
type Client struct {
	password string
	cnonce   string

	clientFirstBare string
	serverFirst     string
	fullNonce       string
	saltedPassword  []byte
	authMessage     string
}

// NewClient starts a new conversation for the given password, generating a
// fresh random client nonce.
func NewClient(password string) (*Client, error) {
	nonce, err := makeNonce()
	if err != nil {
		return nil, fmt.Errorf("generating client nonce: %w", err)
	}
	return &Client{password: password, cnonce: nonce}, nil
}

// ClientFirstMessage returns the "client-first-message" to send as the
// SASLInitialResponse body, using the "n,," gs2 header (no channel
// binding, as pgtc only ever connects in plaintext or behind external TLS
// termination it doesn't itself verify).
func (c *Client) ClientFirstMessage() string {
	c.clientFirstBare = "n=,r=" + c.cnonce
	return "n,," + c.clientFirstBare
}

// ClientFinalMessage consumes the server's "server-first-message" (the
// AuthenticationSASLContinue payload) and returns the
// "client-final-message" to send as the SASLResponse body.
func (c *Client) ClientFinalMessage(serverFirst string) (string, error) {
	c.serverFirst = serverFirst

	parts := strings.Split(serverFirst, ",")
	if len(parts) != 3 || !strings.HasPrefix(parts[0], "r=") ||
		!strings.HasPrefix(parts[1], "s=") || !strings.HasPrefix(parts[2], "i=") {
		return "", ErrInvalidServerFirst
	}

	fullNonce := parts[0][2:]
	if len(fullNonce) <= len(c.cnonce) || !strings.HasPrefix(fullNonce, c.cnonce) {
		return "", ErrNonceMismatch
	}
	c.fullNonce = fullNonce

	salt, err := base64.StdEncoding.DecodeString(parts[1][2:])
	if err != nil {
		return "", fmt.Errorf("%w: salt: %v", ErrInvalidServerFirst, err)
	}

	iters, err := strconv.Atoi(parts[2][2:])
	if err != nil || iters <= 0 {
		return "", fmt.Errorf("%w: iteration count", ErrInvalidServerFirst)
	}

	// client-final-message-without-proof; "biws" is base64("n,,")
	clientFinalWithoutProof := "c=biws,r=" + c.fullNonce

	normalized, err := stringprep.SASLprep.Prepare(c.password)
	if err != nil {
		// Postgres authenticates successfully even for passwords outside the
		// SASLprep profile, so fall back to the raw password rather than
		// failing the handshake.
		normalized = c.password
	}

	c.saltedPassword = pbkdf2.Key([]byte(normalized), salt, iters, sha256.Size, sha256.New)
	c.authMessage = c.clientFirstBare + "," + c.serverFirst + "," + clientFinalWithoutProof

	proof := clientProof(c.saltedPassword, c.authMessage)
	return fmt.Sprintf("%s,p=%s", clientFinalWithoutProof, proof), nil
}

// VerifyServerFinal checks the server's "server-final-message" (the
// AuthenticationSASLFinal payload) against the signature this client
// independently derived, in constant time.
func (c *Client) VerifyServerFinal(serverFinal string) error {
	if !strings.HasPrefix(serverFinal, "v=") {
		return ErrInvalidServerFinal
	}
	want := serverSignature(c.saltedPassword, c.authMessage)
	if subtle.ConstantTimeCompare([]byte(want), []byte(serverFinal[2:])) != 1 {
		return ErrServerSignature
	}
	return nil
}

func makeNonce() (string, error) {
	data := make([]byte, 24)
	if _, err := rand.Read(data); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// clientProof computes ClientKey := HMAC(SaltedPassword, "Client Key"),
// StoredKey := H(ClientKey), ClientSignature := HMAC(StoredKey,
// AuthMessage), and returns ClientKey XOR ClientSignature, base64-encoded.
func clientProof(saltedPassword []byte, authMessage string) string {
	clientKey := hmacSum(saltedPassword, []byte("Client Key"))
	storedKey := sha256.Sum256(clientKey)
	clientSignature := hmacSum(storedKey[:], []byte(authMessage))

	proof := make([]byte, len(clientSignature))
	for i := range proof {
		proof[i] = clientKey[i] ^ clientSignature[i]
	}
	return base64.StdEncoding.EncodeToString(proof)
}

// serverSignature computes ServerKey := HMAC(SaltedPassword, "Server
// Key"), ServerSignature := HMAC(ServerKey, AuthMessage), base64-encoded.
func serverSignature(saltedPassword []byte, authMessage string) string {
	serverKey := hmacSum(saltedPassword, []byte("Server Key"))
	sig := hmacSum(serverKey, []byte(authMessage))
	return base64.StdEncoding.EncodeToString(sig)
}

func hmacSum(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}
