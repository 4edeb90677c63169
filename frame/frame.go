// Package frame validates raw datagram bytes against the telemetry wire
// format and produces a ParsedFrame that borrows its payload view directly
// from the input buffer — callers must extract what they need before the
// buffer is reused (the same zero-copy-view discipline the corpus's own
// packet decoders use, e.g. mesh.DecodePacket's Payload slice).
package frame

import (
	"encoding/binary"
	"fmt"

	"sentrygate/wire"
)

// ParseError enumerates the wire-validation failures, in the priority
// order they are detected.
type ParseError int

const (
	ErrNone ParseError = iota
	ErrTooShort
	ErrBadVersion
	ErrBadMsgType
	ErrPayloadTooLong
	ErrTruncated
	ErrCrcMismatch
)

func (e ParseError) String() string {
	switch e {
	case ErrTooShort:
		return "TOO_SHORT"
	case ErrBadVersion:
		return "BAD_VERSION"
	case ErrBadMsgType:
		return "BAD_MSG_TYPE"
	case ErrPayloadTooLong:
		return "PAYLOAD_TOO_LONG"
	case ErrTruncated:
		return "TRUNCATED"
	case ErrCrcMismatch:
		return "CRC_MISMATCH"
	default:
		return "OK"
	}
}

func (e ParseError) Error() string {
	return fmt.Sprintf("frame: %s", e.String())
}

// ParsedFrame is the result of a successful parse. PayloadView aliases the
// caller's input slice; it must not be retained past the lifetime of that
// buffer (copy it out if you need to keep it — e.g. before the receive
// buffer is recycled for the next datagram).
type ParsedFrame struct {
	Header      wire.Header
	PayloadView []byte
	CRC         uint32
	HasCRC      bool
}

// Parse validates buf against the wire format and, on success, returns a
// ParsedFrame whose PayloadView borrows buf[wire.HeaderSize : wire.HeaderSize+payloadLen].
// crcEnabled controls whether the trailing 4-byte CRC is required and checked;
// when false, any trailing bytes beyond the payload are tolerated and ignored.
func Parse(buf []byte, crcEnabled bool) (ParsedFrame, ParseError) {
	var out ParsedFrame

	if len(buf) < wire.HeaderSize {
		return out, ErrTooShort
	}

	out.Header = wire.DecodeHeader(buf)

	if out.Header.Version != wire.ProtocolVersion {
		return out, ErrBadVersion
	}

	switch out.Header.MsgType {
	case wire.MsgPlot, wire.MsgTrack, wire.MsgHeartbeat, wire.MsgEngagement:
	default:
		return out, ErrBadMsgType
	}

	if out.Header.PayloadLen > wire.MaxPayloadSize {
		return out, ErrPayloadTooLong
	}

	expected := wire.HeaderSize + int(out.Header.PayloadLen)
	if crcEnabled {
		expected += wire.CRCSize
	}
	if len(buf) < expected {
		return out, ErrTruncated
	}

	payloadEnd := wire.HeaderSize + int(out.Header.PayloadLen)
	out.PayloadView = buf[wire.HeaderSize:payloadEnd]

	out.HasCRC = crcEnabled
	if crcEnabled {
		out.CRC = binary.LittleEndian.Uint32(buf[payloadEnd : payloadEnd+wire.CRCSize])
		computed := wire.CRC32(buf[:payloadEnd])
		if computed != out.CRC {
			return out, ErrCrcMismatch
		}
	}

	return out, ErrNone
}
