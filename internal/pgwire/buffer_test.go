package pgwire

import (
	"bytes"
	"testing"
)

func TestBufferWriteRead(t *testing.T) {
	buf := NewBuffer(64)

	_ = buf.WriteByte(42)
	buf.WriteInt16(1234)
	buf.WriteInt32(567890)
	buf.WriteString("hello")
	buf.WriteBytes([]byte{1, 2, 3})

	buf.SetPosition(0)

	b, err := buf.ReadByte()
	if err != nil || b != 42 {
		t.Errorf("ReadByte: got %d, want 42", b)
	}

	i16, err := buf.ReadInt16()
	if err != nil || i16 != 1234 {
		t.Errorf("ReadInt16: got %d, want 1234", i16)
	}

	i32, err := buf.ReadInt32()
	if err != nil || i32 != 567890 {
		t.Errorf("ReadInt32: got %d, want 567890", i32)
	}

	s, err := buf.ReadString()
	if err != nil || s != "hello" {
		t.Errorf("ReadString: got %q, want 'hello'", s)
	}

	data, err := buf.ReadBytes(3)
	if err != nil || !bytes.Equal(data, []byte{1, 2, 3}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", data)
	}
}

func TestEncodeStartupMessage(t *testing.T) {
	payload := EncodeStartupMessage("testuser", "testdb")

	buf := NewBuffer(0)
	buf.SetBytes(payload)

	version, err := buf.ReadInt32()
	if err != nil {
		t.Fatalf("reading version: %v", err)
	}
	if version != ProtocolVersionNumber {
		t.Errorf("version: got %d, want %d", version, ProtocolVersionNumber)
	}

	params := map[string]string{}
	for {
		key, err := buf.ReadString()
		if err != nil {
			t.Fatalf("reading key: %v", err)
		}
		if key == "" {
			break
		}
		value, err := buf.ReadString()
		if err != nil {
			t.Fatalf("reading value for %q: %v", key, err)
		}
		params[key] = value
	}

	if params["user"] != "testuser" {
		t.Errorf("user: got %q, want 'testuser'", params["user"])
	}
	if params["database"] != "testdb" {
		t.Errorf("database: got %q, want 'testdb'", params["database"])
	}
}

func TestPeekBackendFrameNeedsMoreData(t *testing.T) {
	// A ReadyForQuery frame is 6 bytes total (1 type + 4 length + 1 status).
	full := []byte{'Z', 0, 0, 0, 5, 'I'}

	for n := 0; n < len(full); n++ {
		if _, _, err := PeekBackendFrame(full[:n]); err != ErrNeedMoreData {
			t.Fatalf("with %d of %d bytes: got err %v, want ErrNeedMoreData", n, len(full), err)
		}
	}

	msgType, total, err := PeekBackendFrame(full)
	if err != nil {
		t.Fatalf("PeekBackendFrame: %v", err)
	}
	if msgType != 'Z' || total != len(full) {
		t.Errorf("got (%c, %d), want ('Z', %d)", msgType, total, len(full))
	}
}

func TestPeekBackendFrameRejectsOversizedMessage(t *testing.T) {
	header := []byte{'D', 0x7f, 0xff, 0xff, 0xff}
	if _, _, err := PeekBackendFrame(header); err != ErrMessageTooLarge {
		t.Fatalf("got %v, want ErrMessageTooLarge", err)
	}
}

func TestDecodeBackendMessageRowDescriptionRoundTrip(t *testing.T) {
	buf := NewBuffer(0)
	buf.WriteInt16(1)
	buf.WriteString("id")
	buf.WriteInt32(16384) // table oid
	buf.WriteInt16(1)     // attnum
	buf.WriteInt32(23)    // int4 oid
	buf.WriteInt16(4)     // typlen
	buf.WriteInt32(-1)    // typmod
	buf.WriteInt16(0)     // format code

	msg, err := DecodeBackendMessage(MsgRowDescription, buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBackendMessage: %v", err)
	}
	rd, ok := msg.(MsgRowDescription)
	if !ok {
		t.Fatalf("got %T, want MsgRowDescription", msg)
	}
	if len(rd.Fields) != 1 || rd.Fields[0].Name != "id" || rd.Fields[0].TypeOID != 23 {
		t.Errorf("unexpected fields: %+v", rd.Fields)
	}
}

func TestDecodeBackendMessageDataRowNull(t *testing.T) {
	buf := NewBuffer(0)
	buf.WriteInt16(2)
	buf.WriteInt32(-1) // NULL
	buf.WriteInt32(3)
	buf.WriteBytes([]byte("foo"))

	msg, err := DecodeBackendMessage(MsgDataRow, buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBackendMessage: %v", err)
	}
	dr := msg.(MsgDataRow)
	if dr.Columns[0] != nil {
		t.Errorf("column 0: got %v, want nil (NULL)", dr.Columns[0])
	}
	if string(dr.Columns[1]) != "foo" {
		t.Errorf("column 1: got %q, want 'foo'", dr.Columns[1])
	}
}

func TestMD5Password(t *testing.T) {
	user := "postgres"
	pass := "secret"
	salt := [4]byte{0x01, 0x02, 0x03, 0x04}

	result := MD5Password(user, pass, salt)

	if len(result) < 3 || result[:3] != "md5" {
		t.Errorf("MD5Password should start with 'md5', got %q", result)
	}
	if len(result) != 35 {
		t.Errorf("MD5Password length: got %d, want 35", len(result))
	}
}
