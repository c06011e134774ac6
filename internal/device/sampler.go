package device

import "github.com/nerrad567/gray-logic-node/internal/hal"

// Sampler copies the board's inputs into State.
type Sampler struct {
	in    hal.Inputs
	state *State
}

// NewSampler returns a sampler reading in and writing state.
func NewSampler(in hal.Inputs, state *State) *Sampler {
	return &Sampler{in: in, state: state}
}

// Sample performs one sampling pass. Both inputs are read and written into
// State unconditionally; there is no debouncing or smoothing. It reports
// whether either recorded value changed.
func (s *Sampler) Sample() bool {
	analog := s.in.ReadAnalog()
	pressed := s.in.ReadButton()

	prevAnalog := s.state.AnalogValue()
	prevPressed := s.state.ButtonPressed()

	s.state.SetAnalogValue(analog)
	s.state.SetButtonPressed(pressed)

	return s.state.AnalogValue() != prevAnalog || pressed != prevPressed
}
