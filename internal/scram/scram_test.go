package scram

import (
	"encoding/base64"
	"strings"
	"testing"
)

// TestRFC5802Fixture borrows the password "pencil" and the client and
// server nonces from the worked example in RFC 5802 section 5. The
// client-first-message carries an empty "n=" user, as Postgres ignores
// it, and the salt here is not the RFC's; the test checks the
// conversation is internally consistent rather than byte-matching the
// RFC's SHA-1 proof.
func TestRFC5802Fixture(t *testing.T) {
	client := &Client{password: "pencil", cnonce: "fyko+d2lbbFgONRv9qkxdawL"}

	first := client.ClientFirstMessage()
	if first != "n,,n=,r=fyko+d2lbbFgONRv9qkxdawL" {
		t.Fatalf("unexpected client-first-message: %q", first)
	}

	salt := base64.StdEncoding.EncodeToString([]byte("saltsaltsalt1234"))
	serverFirst := "r=" + client.cnonce + "3rfcNHYJY1ZVvWVs7j,s=" + salt + ",i=4096"

	final, err := client.ClientFinalMessage(serverFirst)
	if err != nil {
		t.Fatalf("ClientFinalMessage: %v", err)
	}
	if !strings.HasPrefix(final, "c=biws,r=") {
		t.Fatalf("client-final-message missing channel-binding/nonce prefix: %q", final)
	}
	if !strings.Contains(final, ",p=") {
		t.Fatalf("client-final-message missing proof: %q", final)
	}

	serverSig := serverSignature(client.saltedPassword, client.authMessage)
	if err := client.VerifyServerFinal("v=" + serverSig); err != nil {
		t.Fatalf("VerifyServerFinal rejected a genuine signature: %v", err)
	}
}

func TestClientFinalMessageRejectsNonceMismatch(t *testing.T) {
	client, err := NewClient("pencil")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	salt := base64.StdEncoding.EncodeToString([]byte("saltsaltsalt1234"))
	client.ClientFirstMessage()

	_, err = client.ClientFinalMessage("r=not-the-client-nonce,s=" + salt + ",i=4096")
	if err != ErrNonceMismatch {
		t.Fatalf("expected ErrNonceMismatch, got %v", err)
	}
}

func TestVerifyServerFinalRejectsForgedSignature(t *testing.T) {
	client, err := NewClient("pencil")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client.ClientFirstMessage()
	salt := base64.StdEncoding.EncodeToString([]byte("saltsaltsalt1234"))
	serverFirst := "r=" + client.cnonce + "xyz,s=" + salt + ",i=4096"
	if _, err := client.ClientFinalMessage(serverFirst); err != nil {
		t.Fatalf("ClientFinalMessage: %v", err)
	}

	if err := client.VerifyServerFinal("v=bm90dGhlcmlnaHRzaWduYXR1cmU="); err != ErrServerSignature {
		t.Fatalf("expected ErrServerSignature, got %v", err)
	}
}
