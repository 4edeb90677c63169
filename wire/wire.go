// Package wire implements the packed little-endian wire encoding for
// telemetry frame headers and payloads, plus the CRC-32 checksum primitive
// used to guard them. Every struct here maps byte-for-byte onto the fixed
// layout described by the telemetry protocol; there is no reflection and
// no padding between fields.
package wire

import "encoding/binary"

// Protocol version carried by every frame header.
const ProtocolVersion = 1

// Message type discriminants.
const (
	MsgPlot       = 1
	MsgTrack      = 2
	MsgHeartbeat  = 3
	MsgEngagement = 4
)

// Fixed sizes, in bytes, of the wire structures.
const (
	HeaderSize      = 18
	CRCSize         = 4
	MaxPayloadSize  = 1024
	PlotSize        = 21
	TrackSize       = 25
	HeartbeatSize   = 11
	EngagementSize  = 13
)

// Header is the fixed 18-byte frame header, field order and widths fixed
// by the protocol: version, msg_type, src_id, seq, ts_ns, payload_len.
type Header struct {
	Version    uint8
	MsgType    uint8
	SrcID      uint16
	Seq        uint32
	TSNanos    uint64
	PayloadLen uint16
}

// EncodeHeader writes h to a fresh 18-byte little-endian buffer.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	PutHeader(buf, h)
	return buf
}

// PutHeader writes h into buf, which must be at least HeaderSize bytes.
func PutHeader(buf []byte, h Header) {
	buf[0] = h.Version
	buf[1] = h.MsgType
	binary.LittleEndian.PutUint16(buf[2:4], h.SrcID)
	binary.LittleEndian.PutUint32(buf[4:8], h.Seq)
	binary.LittleEndian.PutUint64(buf[8:16], h.TSNanos)
	binary.LittleEndian.PutUint16(buf[16:18], h.PayloadLen)
}

// DecodeHeader reads a Header from buf. Callers must ensure len(buf) >= HeaderSize.
func DecodeHeader(buf []byte) Header {
	return Header{
		Version:    buf[0],
		MsgType:    buf[1],
		SrcID:      binary.LittleEndian.Uint16(buf[2:4]),
		Seq:        binary.LittleEndian.Uint32(buf[4:8]),
		TSNanos:    binary.LittleEndian.Uint64(buf[8:16]),
		PayloadLen: binary.LittleEndian.Uint16(buf[16:18]),
	}
}

// Plot is the PLOT payload kind (21 bytes).
type Plot struct {
	PlotID     uint32
	AzMdeg     int32
	ElMdeg     int32
	RangeM     uint32
	AmpDB      int16
	DopplerMps int16
	Quality    uint8
}

func EncodePlot(p Plot) []byte {
	buf := make([]byte, PlotSize)
	PutPlot(buf, p)
	return buf
}

func PutPlot(buf []byte, p Plot) {
	binary.LittleEndian.PutUint32(buf[0:4], p.PlotID)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.AzMdeg))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.ElMdeg))
	binary.LittleEndian.PutUint32(buf[12:16], p.RangeM)
	binary.LittleEndian.PutUint16(buf[16:18], uint16(p.AmpDB))
	binary.LittleEndian.PutUint16(buf[18:20], uint16(p.DopplerMps))
	buf[20] = p.Quality
}

func DecodePlot(buf []byte) Plot {
	return Plot{
		PlotID:     binary.LittleEndian.Uint32(buf[0:4]),
		AzMdeg:     int32(binary.LittleEndian.Uint32(buf[4:8])),
		ElMdeg:     int32(binary.LittleEndian.Uint32(buf[8:12])),
		RangeM:     binary.LittleEndian.Uint32(buf[12:16]),
		AmpDB:      int16(binary.LittleEndian.Uint16(buf[16:18])),
		DopplerMps: int16(binary.LittleEndian.Uint16(buf[18:20])),
		Quality:    buf[20],
	}
}

// Track is the TRACK payload kind (25 bytes).
type Track struct {
	TrackID      uint32
	Class        uint8
	Threat       uint8
	IFF          uint8
	AzMdeg       int32
	ElMdeg       int32
	RangeM       uint32
	VelocityMps  int16
	RCSDbsm      int16
	UpdateCount  uint16
}

func EncodeTrack(t Track) []byte {
	buf := make([]byte, TrackSize)
	PutTrack(buf, t)
	return buf
}

func PutTrack(buf []byte, t Track) {
	binary.LittleEndian.PutUint32(buf[0:4], t.TrackID)
	buf[4] = t.Class
	buf[5] = t.Threat
	buf[6] = t.IFF
	binary.LittleEndian.PutUint32(buf[7:11], uint32(t.AzMdeg))
	binary.LittleEndian.PutUint32(buf[11:15], uint32(t.ElMdeg))
	binary.LittleEndian.PutUint32(buf[15:19], t.RangeM)
	binary.LittleEndian.PutUint16(buf[19:21], uint16(t.VelocityMps))
	binary.LittleEndian.PutUint16(buf[21:23], uint16(t.RCSDbsm))
	binary.LittleEndian.PutUint16(buf[23:25], t.UpdateCount)
}

func DecodeTrack(buf []byte) Track {
	return Track{
		TrackID:     binary.LittleEndian.Uint32(buf[0:4]),
		Class:       buf[4],
		Threat:      buf[5],
		IFF:         buf[6],
		AzMdeg:      int32(binary.LittleEndian.Uint32(buf[7:11])),
		ElMdeg:      int32(binary.LittleEndian.Uint32(buf[11:15])),
		RangeM:      binary.LittleEndian.Uint32(buf[15:19]),
		VelocityMps: int16(binary.LittleEndian.Uint16(buf[19:21])),
		RCSDbsm:     int16(binary.LittleEndian.Uint16(buf[21:23])),
		UpdateCount: binary.LittleEndian.Uint16(buf[23:25]),
	}
}

// Heartbeat is the HEARTBEAT payload kind (11 bytes).
type Heartbeat struct {
	SubsystemID uint16
	State       uint8
	CPUPct      uint8
	MemPct      uint8
	UptimeS     uint32
	ErrorCode   uint16
}

func EncodeHeartbeat(h Heartbeat) []byte {
	buf := make([]byte, HeartbeatSize)
	PutHeartbeat(buf, h)
	return buf
}

func PutHeartbeat(buf []byte, h Heartbeat) {
	binary.LittleEndian.PutUint16(buf[0:2], h.SubsystemID)
	buf[2] = h.State
	buf[3] = h.CPUPct
	buf[4] = h.MemPct
	binary.LittleEndian.PutUint32(buf[5:9], h.UptimeS)
	binary.LittleEndian.PutUint16(buf[9:11], h.ErrorCode)
}

func DecodeHeartbeat(buf []byte) Heartbeat {
	return Heartbeat{
		SubsystemID: binary.LittleEndian.Uint16(buf[0:2]),
		State:       buf[2],
		CPUPct:      buf[3],
		MemPct:      buf[4],
		UptimeS:     binary.LittleEndian.Uint32(buf[5:9]),
		ErrorCode:   binary.LittleEndian.Uint16(buf[9:11]),
	}
}

// Engagement is the ENGAGEMENT payload kind (13 bytes).
type Engagement struct {
	WeaponID        uint16
	Mode            uint8
	AssignedTrack   uint32
	RoundsRemaining uint16
	BarrelTempC     int16
	BurstCount      uint16
}

func EncodeEngagement(e Engagement) []byte {
	buf := make([]byte, EngagementSize)
	PutEngagement(buf, e)
	return buf
}

func PutEngagement(buf []byte, e Engagement) {
	binary.LittleEndian.PutUint16(buf[0:2], e.WeaponID)
	buf[2] = e.Mode
	binary.LittleEndian.PutUint32(buf[3:7], e.AssignedTrack)
	binary.LittleEndian.PutUint16(buf[7:9], e.RoundsRemaining)
	binary.LittleEndian.PutUint16(buf[9:11], uint16(e.BarrelTempC))
	binary.LittleEndian.PutUint16(buf[11:13], e.BurstCount)
}

func DecodeEngagement(buf []byte) Engagement {
	return Engagement{
		WeaponID:        binary.LittleEndian.Uint16(buf[0:2]),
		Mode:            buf[2],
		AssignedTrack:   binary.LittleEndian.Uint32(buf[3:7]),
		RoundsRemaining: binary.LittleEndian.Uint16(buf[7:9]),
		BarrelTempC:     int16(binary.LittleEndian.Uint16(buf[9:11])),
		BurstCount:      binary.LittleEndian.Uint16(buf[11:13]),
	}
}
