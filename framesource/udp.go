package framesource

import (
	"fmt"
	"net"
	"time"
)

const maxDatagramSize = 65536

// DefaultPollTimeout matches the original socket's poll() timeout: short
// enough that Stop() is observed promptly, long enough to avoid
// busy-looping the receive goroutine.
const DefaultPollTimeout = 100 * time.Millisecond

// UDPSource receives frames from a bound UDP socket.
type UDPSource struct {
	conn    *net.UDPConn
	timeout time.Duration
	buf     []byte
}

// NewUDPSource returns a UDPSource with the default poll timeout. Call
// Bind before using it.
func NewUDPSource() *UDPSource {
	return &UDPSource{timeout: DefaultPollTimeout, buf: make([]byte, maxDatagramSize)}
}

// Bind opens a UDP socket listening on port across all interfaces.
func (u *UDPSource) Bind(port uint16) error {
	u.Close()
	addr := &net.UDPAddr{Port: int(port)}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("framesource: bind udp port %d: %w", port, err)
	}
	u.conn = conn
	return nil
}

// SetTimeout changes the per-Receive poll timeout.
func (u *UDPSource) SetTimeout(d time.Duration) {
	u.timeout = d
}

// Receive reads one datagram, or returns ok=false on timeout or error.
func (u *UDPSource) Receive() (frame []byte, ok bool) {
	if u.conn == nil {
		return nil, false
	}
	if err := u.conn.SetReadDeadline(time.Now().Add(u.timeout)); err != nil {
		return nil, false
	}
	n, _, err := u.conn.ReadFromUDP(u.buf)
	if err != nil || n <= 0 {
		return nil, false
	}
	out := make([]byte, n)
	copy(out, u.buf[:n])
	return out, true
}

// Done is always false for a live socket: it has no notion of exhaustion,
// only of being closed.
func (u *UDPSource) Done() bool {
	return u.conn == nil
}

// Close releases the underlying socket.
func (u *UDPSource) Close() error {
	if u.conn == nil {
		return nil
	}
	err := u.conn.Close()
	u.conn = nil
	return err
}
