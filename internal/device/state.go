package device

import "github.com/nerrad567/gray-logic-node/internal/hal"

// State is the node's single record of output commands and input samples.
//
// Output setters drive the corresponding pin before returning, so the field
// and the physical level never disagree for an observer on the owning
// goroutine. Input setters only record what the sampler read.
//
// Thread Safety:
//   - State is NOT safe for concurrent use. Exactly one goroutine (the node
//     loop) owns it; everything else sees Snapshot copies.
type State struct {
	out       hal.Outputs
	maxAnalog int

	ledOn             bool
	relayOn           bool
	lastAnalogValue   int
	lastButtonPressed bool
}

// NewState creates the boot state: both outputs off, no input sampled yet.
// The outputs are driven off immediately so pins and fields agree from the
// first instant.
//
// Parameters:
//   - out: Pins written by SetLED and SetRelay
//   - maxAnalog: Upper bound for SetAnalogValue (the converter's full scale)
//
// Returns:
//   - *State: Boot state
func NewState(out hal.Outputs, maxAnalog int) *State {
	s := &State{out: out, maxAnalog: maxAnalog}
	out.SetLED(false)
	out.SetRelay(false)
	return s
}

// LEDOn reports the last commanded LED level.
func (s *State) LEDOn() bool { return s.ledOn }

// SetLED records the LED command and writes the LED pin.
func (s *State) SetLED(on bool) {
	s.ledOn = on
	s.out.SetLED(on)
}

// RelayOn reports the last commanded relay level.
func (s *State) RelayOn() bool { return s.relayOn }

// SetRelay records the relay command and writes the relay pin.
func (s *State) SetRelay(on bool) {
	s.relayOn = on
	s.out.SetRelay(on)
}

// AnalogValue returns the last sampled analog reading.
func (s *State) AnalogValue() int { return s.lastAnalogValue }

// SetAnalogValue records an analog reading, clamped to [0, maxAnalog].
func (s *State) SetAnalogValue(v int) {
	switch {
	case v < 0:
		v = 0
	case v > s.maxAnalog:
		v = s.maxAnalog
	}
	s.lastAnalogValue = v
}

// ButtonPressed returns the last sampled button level.
func (s *State) ButtonPressed() bool { return s.lastButtonPressed }

// SetButtonPressed records a button sample.
func (s *State) SetButtonPressed(pressed bool) { s.lastButtonPressed = pressed }
