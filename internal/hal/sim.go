package hal

import "sync"

// Output pin names recorded by Sim.
const (
	PinLED   = "led"
	PinRelay = "relay"
)

// PinWrite is one output write observed by Sim.
type PinWrite struct {
	Pin string
	On  bool
}

// Sim is an in-memory Board. It records every output write so tests can
// check the physical side of a state change, and lets callers script inputs.
//
// Thread Safety:
//   - All methods are safe for concurrent use; tests drive inputs from their
//     own goroutine while the node loop reads them.
type Sim struct {
	mu       sync.Mutex
	maxValue int
	led      bool
	relay    bool
	button   bool
	analog   int
	source   func() int
	writes   []PinWrite
	closed   bool
}

// NewSim returns a board with all outputs off, button released and the
// analog input at zero. maxValue bounds SetAnalog.
func NewSim(maxValue int) *Sim {
	return &Sim{maxValue: maxValue}
}

// SetLED implements Outputs.
func (s *Sim) SetLED(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.led = on
	s.writes = append(s.writes, PinWrite{Pin: PinLED, On: on})
}

// SetRelay implements Outputs.
func (s *Sim) SetRelay(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relay = on
	s.writes = append(s.writes, PinWrite{Pin: PinRelay, On: on})
}

// ReadAnalog implements Inputs.
func (s *Sim) ReadAnalog() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source != nil {
		return clamp(s.source(), s.maxValue)
	}
	return s.analog
}

// ReadButton implements Inputs.
func (s *Sim) ReadButton() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.button
}

// Close implements Board.
func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// SetAnalog sets the analog input, clamped to [0, maxValue].
// It replaces any source set with SetAnalogSource.
func (s *Sim) SetAnalog(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = nil
	s.analog = clamp(v, s.maxValue)
}

// SetAnalogSource makes every ReadAnalog call consult fn.
func (s *Sim) SetAnalogSource(fn func() int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = fn
}

// SetButton sets the button input.
func (s *Sim) SetButton(pressed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.button = pressed
}

// LED returns the current LED pin level.
func (s *Sim) LED() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.led
}

// Relay returns the current relay pin level.
func (s *Sim) Relay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.relay
}

// Writes returns a copy of every output write so far, oldest first.
func (s *Sim) Writes() []PinWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PinWrite, len(s.writes))
	copy(out, s.writes)
	return out
}

// Closed reports whether Close was called.
func (s *Sim) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
