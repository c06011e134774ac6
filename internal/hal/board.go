package hal

import (
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/logging"
)

// Outputs drives the node's digital outputs. Writes are synchronous.
type Outputs interface {
	SetLED(on bool)
	SetRelay(on bool)
}

// Inputs reads the node's inputs.
type Inputs interface {
	// ReadAnalog returns the raw converter reading in [0, MaxValue].
	ReadAnalog() int

	// ReadButton reports whether the button is pressed.
	ReadButton() bool
}

// Board is a complete set of node I/O.
type Board interface {
	Outputs
	Inputs

	// Close releases the pins.
	Close() error
}

// Open builds the Board selected by cfg.Driver.
func Open(cfg config.BoardConfig, logger *logging.Logger) (Board, error) {
	switch strings.ToLower(cfg.Driver) {
	case "sim":
		sim := NewSim(cfg.ADC.MaxValue)
		sim.SetAnalogSource(sweep(cfg.ADC.MaxValue, 10*time.Second))
		return sim, nil
	case "periph":
		return OpenPeriph(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// sweep returns a triangle wave over [0, maxValue] with the given period so
// that a simulated sensor visibly moves on the control panel.
func sweep(maxValue int, period time.Duration) func() int {
	start := time.Now()
	return func() int {
		phase := float64(time.Since(start)%period) / float64(period)
		if phase > 0.5 {
			phase = 1 - phase
		}
		return int(phase * 2 * float64(maxValue))
	}
}
