package mqttsink

import (
	"testing"

	"sentrygate/eventbus"
)

func TestNewClampsInvalidQoS(t *testing.T) {
	s := New(Config{QoS: 7})
	if s.cfg.QoS != 0 {
		t.Fatalf("QoS = %d, want clamped to 0", s.cfg.QoS)
	}
}

// TestPublishWithoutConnectIsANoop verifies a Sink that was never
// connected silently drops publishes instead of panicking on a nil client.
func TestPublishWithoutConnectIsANoop(t *testing.T) {
	s := New(Config{Topic: "sentrygate/events"})
	s.Publish(eventbus.Record{ID: eventbus.EvtHeartbeatOK, TimestampNs: 1})
}

func TestDisconnectWithoutConnectIsANoop(t *testing.T) {
	s := New(Config{})
	s.Disconnect(0)
}
