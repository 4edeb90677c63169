// Package mqttsink bridges the event bus to an MQTT broker, publishing
// every event as a JSON message. It mirrors the shape of an MQTT ingest
// client in reverse: where that style of client subscribes and decodes,
// this one encodes and publishes, reusing the same connection/reconnect
// options.
package mqttsink

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	jsoniter "github.com/json-iterator/go"

	"sentrygate/eventbus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// eventMessage is the wire shape published to the broker; field names are
// deliberately spelled out, unlike the abbreviated tags an ingest-side
// feed uses to save bandwidth, since this sink is diagnostic rather than
// bandwidth-constrained.
type eventMessage struct {
	EventID     uint16 `json:"event_id"`
	EventName   string `json:"event_name"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	TimestampNs uint64 `json:"timestamp_ns"`
	Detail      string `json:"detail"`
}

// Config controls the MQTT connection and publish topic.
type Config struct {
	Broker   string
	Port     int
	ClientID string
	Topic    string
	QoS      byte
}

// Sink publishes eventbus.Records to an MQTT broker.
type Sink struct {
	cfg    Config
	client mqtt.Client
}

// New constructs a Sink. Call Connect before Publish.
func New(cfg Config) *Sink {
	if cfg.QoS > 2 {
		cfg.QoS = 0
	}
	return &Sink{cfg: cfg}
}

// Connect establishes the MQTT connection, with auto-reconnect enabled so
// a broker blip doesn't require the gateway to restart the sink.
func (s *Sink) Connect() error {
	opts := mqtt.NewClientOptions()
	brokerURL := fmt.Sprintf("tcp://%s:%d", s.cfg.Broker, s.cfg.Port)
	opts.AddBroker(brokerURL)

	clientID := s.cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("sentrygate-%d", time.Now().UnixNano())
	}
	opts.SetClientID(clientID)

	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(1 * time.Minute)

	s.client = mqtt.NewClient(opts)

	token := s.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqttsink: connect to %s: %w", brokerURL, token.Error())
	}
	return nil
}

// Publish sends r to the configured topic as JSON, fire-and-forget: the
// publish token is not waited on, so a slow or unreachable broker never
// blocks the event bus dispatch that called this.
func (s *Sink) Publish(r eventbus.Record) {
	if s.client == nil || !s.client.IsConnected() {
		return
	}
	msg := eventMessage{
		EventID:     uint16(r.ID),
		EventName:   r.ID.String(),
		Category:    r.Category.String(),
		Severity:    r.Severity.String(),
		TimestampNs: r.TimestampNs,
		Detail:      r.Detail,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.client.Publish(s.cfg.Topic, s.cfg.QoS, false, payload)
}

// Disconnect closes the MQTT connection, waiting up to quiesceMs for
// in-flight publishes to drain.
func (s *Sink) Disconnect(quiesceMs uint) {
	if s.client != nil {
		s.client.Disconnect(quiesceMs)
	}
}
