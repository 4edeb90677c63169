package gateway

import (
	"bytes"
	"sync"
	"testing"

	"sentrygate/eventbus"
	"sentrygate/wire"
)

func buildFrame(t *testing.T, msgType uint8, srcID uint16, seq uint32, payload []byte, withCRC bool) []byte {
	t.Helper()
	h := wire.Header{
		Version:    wire.ProtocolVersion,
		MsgType:    msgType,
		SrcID:      srcID,
		Seq:        seq,
		TSNanos:    1,
		PayloadLen: uint16(len(payload)),
	}
	buf := append(wire.EncodeHeader(h), payload...)
	if withCRC {
		crc := wire.CRC32(buf)
		buf = append(buf, byte(crc), byte(crc>>8), byte(crc>>16), byte(crc>>24))
	}
	return buf
}

func heartbeatPayload(state uint8) []byte {
	return wire.EncodeHeartbeat(wire.Heartbeat{SubsystemID: 1, State: state, CPUPct: 10, MemPct: 20, UptimeS: 5})
}

func newTestGateway() *Gateway {
	return New(Config{CRCEnabled: false, LogOutput: new(bytes.Buffer)})
}

func TestProcessFrameMalformedRecordsStats(t *testing.T) {
	g := newTestGateway()
	g.processFrame([]byte{0, 1, 2}, 1)

	global := g.stats.GlobalSnapshot()
	if global.MalformedTotal != 1 {
		t.Fatalf("malformed_total = %d, want 1", global.MalformedTotal)
	}
}

func TestProcessFrameCrcMismatchCountsCrcFailAndMalformed(t *testing.T) {
	g := New(Config{CRCEnabled: true, LogOutput: new(bytes.Buffer)})
	buf := buildFrame(t, wire.MsgHeartbeat, 5, 1, heartbeatPayload(0), true)
	buf[len(buf)-1] ^= 0xFF

	g.processFrame(buf, 1)

	global := g.stats.GlobalSnapshot()
	if global.CrcFailTotal != 1 {
		t.Fatalf("crc_fail_total = %d, want 1", global.CrcFailTotal)
	}
	if global.MalformedTotal != 1 {
		t.Fatalf("malformed_total = %d, want 1", global.MalformedTotal)
	}
}

func TestProcessFrameSequenceVerdicts(t *testing.T) {
	g := newTestGateway()

	g.processFrame(buildFrame(t, wire.MsgHeartbeat, 7, 0, heartbeatPayload(0), false), 1)
	g.processFrame(buildFrame(t, wire.MsgHeartbeat, 7, 1, heartbeatPayload(0), false), 2)
	g.processFrame(buildFrame(t, wire.MsgHeartbeat, 7, 5, heartbeatPayload(0), false), 3) // gap
	g.processFrame(buildFrame(t, wire.MsgHeartbeat, 7, 1, heartbeatPayload(0), false), 4) // duplicate

	src := g.stats.SourceSnapshot(7)
	if src.RxCount != 4 {
		t.Fatalf("rx_count = %d, want 4", src.RxCount)
	}
	if src.Gaps == 0 {
		t.Fatalf("expected at least one recorded gap")
	}
	if src.Duplicates != 1 {
		t.Fatalf("duplicates = %d, want 1", src.Duplicates)
	}
}

func TestProcessFrameHeartbeatDegradedPublishesWarnEvent(t *testing.T) {
	g := newTestGateway()

	var mu sync.Mutex
	var got []eventbus.Record
	g.bus.SubscribeAll(func(r eventbus.Record) {
		mu.Lock()
		got = append(got, r)
		mu.Unlock()
	})

	g.processFrame(buildFrame(t, wire.MsgHeartbeat, 1, 0, heartbeatPayload(1), false), 1)

	mu.Lock()
	defer mu.Unlock()
	found := false
	for _, r := range got {
		if r.ID == eventbus.EvtHeartbeatDegrade && r.Severity == eventbus.SeverityWarn {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an EvtHeartbeatDegrade/WARN event, got %+v", got)
	}
}

func TestProcessFrameTrackDispatchesTrackingEvent(t *testing.T) {
	g := newTestGateway()

	var mu sync.Mutex
	var got []eventbus.Record
	g.bus.SubscribeAll(func(r eventbus.Record) {
		mu.Lock()
		got = append(got, r)
		mu.Unlock()
	})

	payload := wire.EncodeTrack(wire.Track{TrackID: 42, Class: 1, Threat: 2})
	g.processFrame(buildFrame(t, wire.MsgTrack, 9, 0, payload, false), 1)

	mu.Lock()
	defer mu.Unlock()
	found := false
	for _, r := range got {
		if r.ID == eventbus.EvtTrackUpdate && r.Category == eventbus.CategoryTracking {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an EvtTrackUpdate/TRACKING event, got %+v", got)
	}
}
