package telemetry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-node/internal/journal"
	"github.com/nerrad567/gray-logic-node/internal/node"
)

// Publisher is the subset of *mqtt.Client used by MQTTSink.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTSink publishes the retained state snapshot for every event, and
// command events on the event topic.
type MQTTSink struct {
	pub    Publisher
	topics mqtt.Topics
	qos    byte
}

// NewMQTTSink creates an MQTT sink.
func NewMQTTSink(pub Publisher, topics mqtt.Topics, qos byte) *MQTTSink {
	return &MQTTSink{pub: pub, topics: topics, qos: qos}
}

// Name implements Sink.
func (s *MQTTSink) Name() string { return "mqtt" }

// Handle implements Sink.
func (s *MQTTSink) Handle(_ context.Context, ev node.Event) error {
	state, err := json.Marshal(ev.Snapshot)
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}
	if err := s.pub.Publish(s.topics.State(), state, s.qos, true); err != nil {
		return fmt.Errorf("publishing state: %w", err)
	}

	if ev.Kind != node.EventCommand {
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	if err := s.pub.Publish(s.topics.Event(), payload, s.qos, false); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}
	return nil
}

// PointWriter is the subset of *influxdb.Client used by InfluxSink.
type PointWriter interface {
	WriteNodeIO(nodeID, kind, source string, s influxdb.IOSample)
}

// InfluxSink writes every event as a node_io point.
type InfluxSink struct {
	w      PointWriter
	nodeID string
}

// NewInfluxSink creates an InfluxDB sink tagging points with nodeID.
func NewInfluxSink(w PointWriter, nodeID string) *InfluxSink {
	return &InfluxSink{w: w, nodeID: nodeID}
}

// Name implements Sink.
func (s *InfluxSink) Name() string { return "influxdb" }

// Handle implements Sink. Writes are batched by the client, so errors
// surface on its error callback rather than here.
func (s *InfluxSink) Handle(_ context.Context, ev node.Event) error {
	snap := ev.Snapshot
	s.w.WriteNodeIO(s.nodeID, string(ev.Kind), ev.Source, influxdb.IOSample{
		AnalogValue:   snap.AnalogValue,
		Voltage:       snap.Voltage,
		ButtonPressed: snap.ButtonPressed,
		LEDOn:         snap.LEDOn,
		RelayOn:       snap.RelayOn,
		Time:          snap.Timestamp,
	})
	return nil
}

// Recorder is the subset of *journal.Journal used by JournalSink.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// JournalSink appends command events to the journal. Samples are skipped.
type JournalSink struct {
	rec Recorder
}

// NewJournalSink creates a journal sink.
func NewJournalSink(rec Recorder) *JournalSink {
	return &JournalSink{rec: rec}
}

// Name implements Sink.
func (s *JournalSink) Name() string { return "journal" }

// Handle implements Sink.
func (s *JournalSink) Handle(ctx context.Context, ev node.Event) error {
	if ev.Kind != node.EventCommand {
		return nil
	}
	return s.rec.Record(ctx, EntryFromEvent(ev))
}

// EntryFromEvent converts a loop event to a journal entry.
func EntryFromEvent(ev node.Event) journal.Entry {
	return journal.Entry{
		Kind:          string(ev.Kind),
		Action:        ev.Action,
		Source:        ev.Source,
		LEDOn:         ev.Snapshot.LEDOn,
		RelayOn:       ev.Snapshot.RelayOn,
		AnalogValue:   ev.Snapshot.AnalogValue,
		ButtonPressed: ev.Snapshot.ButtonPressed,
		CreatedAt:     ev.Snapshot.Timestamp,
	}
}

// Broadcaster is the subset of *api.Hub used by HubSink.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// HubSink pushes events to WebSocket subscribers of node.<kind>.
type HubSink struct {
	b Broadcaster
}

// NewHubSink creates a WebSocket hub sink.
func NewHubSink(b Broadcaster) *HubSink {
	return &HubSink{b: b}
}

// Name implements Sink.
func (s *HubSink) Name() string { return "websocket" }

// Handle implements Sink.
func (s *HubSink) Handle(_ context.Context, ev node.Event) error {
	s.b.Broadcast(Channel(ev.Kind), ev)
	return nil
}

// Channel returns the WebSocket channel for an event kind.
func Channel(kind node.EventKind) string {
	return "node." + string(kind)
}
