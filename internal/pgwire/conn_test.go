package pgwire

import (
	"errors"
	"net"
	"testing"
)

func TestFillWrapsClosedConnection(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	server.Close()

	c := &Conn{conn: client, recvBuf: make([]byte, 0, 64)}
	_, err := c.recvMsg()
	if !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("recvMsg after peer close: got %v, want an error wrapping ErrConnectionClosed", err)
	}
}
