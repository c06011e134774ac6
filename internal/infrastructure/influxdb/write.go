package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementNodeIO is the measurement holding node I/O readings.
const MeasurementNodeIO = "node_io"

// IOSample is one reading of a node's inputs and outputs.
type IOSample struct {
	AnalogValue   int
	Voltage       float64
	ButtonPressed bool
	LEDOn         bool
	RelayOn       bool
	Time          time.Time
}

// NodeIOPoint builds the node_io point for a reading.
//
// Tags are node and kind ("sample" or "command"), plus source when
// non-empty. A zero s.Time is replaced by the current time.
func NodeIOPoint(nodeID, kind, source string, s IOSample) *write.Point {
	ts := s.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	p := write.NewPointWithMeasurement(MeasurementNodeIO).
		AddTag("node", nodeID).
		AddTag("kind", kind).
		AddField("analog_value", s.AnalogValue).
		AddField("voltage", s.Voltage).
		AddField("button_pressed", s.ButtonPressed).
		AddField("led_on", s.LEDOn).
		AddField("relay_on", s.RelayOn).
		SetTime(ts)
	if source != "" {
		p.AddTag("source", source)
	}
	return p
}

// WriteNodeIO queues one reading. Points written after Close are dropped.
//
//	client.WriteNodeIO("bench-1", "command", "http", influxdb.IOSample{LEDOn: true})
func (c *Client) WriteNodeIO(nodeID, kind, source string, s IOSample) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(NodeIOPoint(nodeID, kind, source, s))
}
