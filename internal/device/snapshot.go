package device

import "time"

// Scale converts raw analog readings to volts.
type Scale struct {
	// MaxValue is the full-scale raw reading.
	MaxValue int

	// ReferenceVolts is the voltage at MaxValue.
	ReferenceVolts float64
}

// Voltage returns raw × ReferenceVolts / MaxValue.
// A non-positive MaxValue yields 0.
func (sc Scale) Voltage(raw int) float64 {
	if sc.MaxValue <= 0 {
		return 0
	}
	return float64(raw) * sc.ReferenceVolts / float64(sc.MaxValue)
}

// Snapshot is an immutable copy of State handed to observers outside the
// node loop (telemetry, WebSocket clients, the journal).
type Snapshot struct {
	LEDOn         bool      `json:"led_state"`
	RelayOn       bool      `json:"relay_state"`
	AnalogValue   int       `json:"analog_value"`
	Voltage       float64   `json:"voltage"`
	ButtonPressed bool      `json:"button_pressed"`
	Timestamp     time.Time `json:"timestamp"`
}

// Snapshot copies the current state and computes its voltage.
func (s *State) Snapshot(scale Scale) Snapshot {
	return Snapshot{
		LEDOn:         s.ledOn,
		RelayOn:       s.relayOn,
		AnalogValue:   s.lastAnalogValue,
		Voltage:       scale.Voltage(s.lastAnalogValue),
		ButtonPressed: s.lastButtonPressed,
		Timestamp:     time.Now().UTC(),
	}
}

// SameIO reports whether two snapshots carry the same I/O values,
// ignoring the timestamp.
func (s Snapshot) SameIO(other Snapshot) bool {
	return s.LEDOn == other.LEDOn &&
		s.RelayOn == other.RelayOn &&
		s.AnalogValue == other.AnalogValue &&
		s.ButtonPressed == other.ButtonPressed
}
