package frame

import (
	"testing"

	"sentrygate/wire"
)

func buildHeartbeatFrame(t *testing.T, withCRC bool) []byte {
	t.Helper()
	hb := wire.Heartbeat{SubsystemID: 3, State: 0, CPUPct: 45, MemPct: 62, UptimeS: 86400, ErrorCode: 0}
	h := wire.Header{
		Version:    wire.ProtocolVersion,
		MsgType:    wire.MsgHeartbeat,
		SrcID:      5,
		Seq:        1,
		TSNanos:    123456789,
		PayloadLen: wire.HeartbeatSize,
	}
	buf := append(wire.EncodeHeader(h), wire.EncodeHeartbeat(hb)...)
	if withCRC {
		crc := wire.CRC32(buf)
		buf = appendCRC(buf, crc)
	}
	return buf
}

func appendCRC(buf []byte, crc uint32) []byte {
	out := make([]byte, len(buf)+4)
	copy(out, buf)
	out[len(buf)+0] = byte(crc)
	out[len(buf)+1] = byte(crc >> 8)
	out[len(buf)+2] = byte(crc >> 16)
	out[len(buf)+3] = byte(crc >> 24)
	return out
}

func TestParseMinimalValidHeartbeat(t *testing.T) {
	buf := buildHeartbeatFrame(t, false)
	pf, err := Parse(buf, false)
	if err != ErrNone {
		t.Fatalf("Parse() error = %v, want ErrNone", err)
	}
	if pf.Header.MsgType != wire.MsgHeartbeat {
		t.Fatalf("MsgType = %d, want MsgHeartbeat", pf.Header.MsgType)
	}
	if len(pf.PayloadView) != wire.HeartbeatSize {
		t.Fatalf("payload len = %d, want %d", len(pf.PayloadView), wire.HeartbeatSize)
	}
	got := wire.DecodeHeartbeat(pf.PayloadView)
	want := wire.Heartbeat{SubsystemID: 3, State: 0, CPUPct: 45, MemPct: 62, UptimeS: 86400, ErrorCode: 0}
	if got != want {
		t.Fatalf("decoded heartbeat = %+v, want %+v", got, want)
	}
}

func TestParseWithCRCOK(t *testing.T) {
	buf := buildHeartbeatFrame(t, true)
	_, err := Parse(buf, true)
	if err != ErrNone {
		t.Fatalf("Parse() error = %v, want ErrNone", err)
	}
}

func TestParseCRCMismatch(t *testing.T) {
	buf := buildHeartbeatFrame(t, true)
	buf[len(buf)-1] ^= 0xFF // flip the last CRC byte
	_, err := Parse(buf, true)
	if err != ErrCrcMismatch {
		t.Fatalf("Parse() error = %v, want ErrCrcMismatch", err)
	}
}

func TestParseTooShort(t *testing.T) {
	_, err := Parse(make([]byte, wire.HeaderSize-1), false)
	if err != ErrTooShort {
		t.Fatalf("Parse() error = %v, want ErrTooShort", err)
	}
}

func TestParseBadVersion(t *testing.T) {
	buf := buildHeartbeatFrame(t, false)
	buf[0] = 9
	_, err := Parse(buf, false)
	if err != ErrBadVersion {
		t.Fatalf("Parse() error = %v, want ErrBadVersion", err)
	}
}

func TestParseBadMsgType(t *testing.T) {
	buf := buildHeartbeatFrame(t, false)
	buf[1] = 0xAA
	_, err := Parse(buf, false)
	if err != ErrBadMsgType {
		t.Fatalf("Parse() error = %v, want ErrBadMsgType", err)
	}
}

func TestParsePayloadTooLong(t *testing.T) {
	buf := buildHeartbeatFrame(t, false)
	h := wire.DecodeHeader(buf)
	h.PayloadLen = wire.MaxPayloadSize + 1
	wire.PutHeader(buf, h)
	_, err := Parse(buf, false)
	if err != ErrPayloadTooLong {
		t.Fatalf("Parse() error = %v, want ErrPayloadTooLong", err)
	}
}

func TestParseTruncated(t *testing.T) {
	buf := buildHeartbeatFrame(t, false)
	truncated := buf[:len(buf)-2]
	_, err := Parse(truncated, false)
	if err != ErrTruncated {
		t.Fatalf("Parse() error = %v, want ErrTruncated", err)
	}
}

// TestParseNeverPanics is a bounds-safety property check: no input length,
// from zero up through a full frame, should cause Parse to read out of
// bounds or panic, regardless of what garbage bytes precede it.
func TestParseNeverPanics(t *testing.T) {
	full := buildHeartbeatFrame(t, true)
	for n := 0; n <= len(full); n++ {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Parse panicked at length %d: %v", n, r)
				}
			}()
			Parse(full[:n], true)
		}()
	}
}
