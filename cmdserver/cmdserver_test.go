package cmdserver

import (
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"sentrygate/cmdframe"
	"sentrygate/cmdhandler"
	"sentrygate/eventbus"
	"sentrygate/logx"
	"sentrygate/stats"
)

func newTestServer(t *testing.T) (*Server, uint16) {
	t.Helper()
	s := stats.New()
	l := logx.New(io.Discard, eventbus.SeverityInfo)
	h := cmdhandler.New(s, l, nil, nil)

	// Port 0 would let the OS pick, but Server binds by fixed port; probe
	// for a free one via a throwaway listener.
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("probe listen: %v", err)
	}
	port := uint16(probe.Addr().(*net.TCPAddr).Port)
	probe.Close()

	srv := New(port, h)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return srv, port
}

func readFrame(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var header [4]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		t.Fatalf("read header: %v", err)
	}
	n := binary.BigEndian.Uint32(header[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(conn, payload); err != nil {
		t.Fatalf("read payload: %v", err)
	}
	return payload
}

func TestServerRoundTripsCommand(t *testing.T) {
	srv, port := newTestServer(t)
	defer srv.Stop()

	conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port))))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write(cmdframe.Encode([]byte("GET HEALTH"))); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got := readFrame(t, conn)
	if !bytes.Equal(got, []byte("HEALTH OK")) {
		t.Fatalf("response = %q, want HEALTH OK", got)
	}
}

func TestServerHandlesMultipleConnections(t *testing.T) {
	srv, port := newTestServer(t)
	defer srv.Stop()

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port)))
	conn1, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial 1: %v", err)
	}
	defer conn1.Close()
	conn2, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial 2: %v", err)
	}
	defer conn2.Close()

	conn1.Write(cmdframe.Encode([]byte("GET STATS")))
	conn2.Write(cmdframe.Encode([]byte("GET HEALTH")))

	got1 := readFrame(t, conn1)
	got2 := readFrame(t, conn2)

	if !bytes.HasPrefix(got1, []byte("STATS")) {
		t.Fatalf("conn1 response = %q, want STATS prefix", got1)
	}
	if !bytes.Equal(got2, []byte("HEALTH OK")) {
		t.Fatalf("conn2 response = %q, want HEALTH OK", got2)
	}
}

func TestStopClosesConnectionsWithinGrace(t *testing.T) {
	srv, port := newTestServer(t)

	conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port))))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	// Give the accept loop a moment to register the connection.
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	srv.Stop()
	elapsed := time.Since(start)

	if elapsed > StopGrace+500*time.Millisecond {
		t.Fatalf("Stop took %v, want within roughly StopGrace (%v)", elapsed, StopGrace)
	}
	if srv.ConnectionCount() != 0 {
		t.Fatalf("ConnectionCount after Stop = %d, want 0", srv.ConnectionCount())
	}
}
