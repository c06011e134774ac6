package hal

import (
	"fmt"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/logging"
)

// sampleReader is the part of an analog converter PeriphBoard needs.
type sampleReader interface {
	Read() (analog.Sample, error)
}

// PeriphBoard drives the node's pins through periph.io.
//
// Pins are addressed by their registry names ("GPIO17" for BCM 17 on a
// Raspberry Pi). Pin errors are logged once per transition into the failing
// state; reads then return the last good value.
type PeriphBoard struct {
	led    gpio.PinIO
	relay  gpio.PinIO
	button gpio.PinIO
	adc    sampleReader

	buttonActiveLow bool
	relayActiveLow  bool
	logger          *logging.Logger

	lastAnalog int
	adcFailing bool
}

// OpenPeriph initialises the periph host drivers and claims the configured pins.
// Outputs start low ("off").
func OpenPeriph(cfg config.BoardConfig, logger *logging.Logger) (*PeriphBoard, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialising periph host: %w", err)
	}

	b := &PeriphBoard{
		adc:             NewIIOADC(cfg.ADC.Path, cfg.ADC.MaxValue, cfg.ADC.ReferenceVolts),
		buttonActiveLow: cfg.ButtonActiveLow,
		relayActiveLow:  cfg.RelayActiveLow,
		logger:          logger.With("component", "hal"),
	}

	var err error
	if b.led, err = lookupPin(cfg.LEDPin); err != nil {
		return nil, err
	}
	if b.relay, err = lookupPin(cfg.RelayPin); err != nil {
		return nil, err
	}
	if b.button, err = lookupPin(cfg.ButtonPin); err != nil {
		return nil, err
	}

	if err := b.led.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("configuring led pin %s: %w", cfg.LEDPin, err)
	}
	if err := b.relay.Out(b.relayLevel(false)); err != nil {
		return nil, fmt.Errorf("configuring relay pin %s: %w", cfg.RelayPin, err)
	}

	pull := gpio.PullDown
	if cfg.ButtonActiveLow {
		pull = gpio.PullUp
	}
	if err := b.button.In(pull, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configuring button pin %s: %w", cfg.ButtonPin, err)
	}

	b.logger.Info("board pins claimed",
		"led", b.led.Name(),
		"relay", b.relay.Name(),
		"button", b.button.Name(),
		"adc", cfg.ADC.Path,
	)

	return b, nil
}

func lookupPin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
	}
	return p, nil
}

// SetLED drives the LED pin.
func (b *PeriphBoard) SetLED(on bool) {
	if err := b.led.Out(gpio.Level(on)); err != nil {
		b.logger.Warn("led write failed", "on", on, "error", err)
	}
}

// SetRelay drives the relay pin, honouring active-low wiring.
func (b *PeriphBoard) SetRelay(on bool) {
	if err := b.relay.Out(b.relayLevel(on)); err != nil {
		b.logger.Warn("relay write failed", "on", on, "error", err)
	}
}

func (b *PeriphBoard) relayLevel(on bool) gpio.Level {
	if b.relayActiveLow {
		return gpio.Level(!on)
	}
	return gpio.Level(on)
}

// ReadButton reads the button level, honouring active-low wiring.
func (b *PeriphBoard) ReadButton() bool {
	level := b.button.Read()
	if b.buttonActiveLow {
		return level == gpio.Low
	}
	return level == gpio.High
}

// ReadAnalog reads the converter. On failure the previous reading is returned.
func (b *PeriphBoard) ReadAnalog() int {
	sample, err := b.adc.Read()
	if err != nil {
		if !b.adcFailing {
			b.logger.Warn("adc read failed, holding last value", "value", b.lastAnalog, "error", err)
			b.adcFailing = true
		}
		return b.lastAnalog
	}
	if b.adcFailing {
		b.logger.Info("adc reads recovered")
		b.adcFailing = false
	}
	b.lastAnalog = int(sample.Raw)
	return b.lastAnalog
}

// Close drives outputs off and halts all pins.
func (b *PeriphBoard) Close() error {
	b.SetLED(false)
	b.SetRelay(false)

	var firstErr error
	for _, p := range []gpio.PinIO{b.led, b.relay, b.button} {
		if err := p.Halt(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("halting %s: %w", p.Name(), err)
		}
	}
	return firstErr
}
