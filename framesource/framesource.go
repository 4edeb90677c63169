// Package framesource defines the single interface the gateway
// orchestrator ingests frames through, with two concrete providers behind
// it: a live UDP socket and a replay.Source. The orchestrator never knows
// which one it's talking to.
package framesource

// Source yields raw frame bytes one at a time. Receive returns ok=false on
// timeout, transient error, or source exhaustion — callers distinguish
// "nothing right now" from "never again" via Done.
type Source interface {
	// Receive blocks up to an implementation-defined timeout waiting for
	// the next frame. ok is false if nothing arrived in that window.
	Receive() (frame []byte, ok bool)

	// Done reports whether this source will never yield another frame.
	Done() bool

	// Close releases any resources held by the source.
	Close() error
}
