package hal

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/physic"
)

// IIOADC reads one channel of a Linux Industrial I/O converter through its
// sysfs raw value file (e.g. /sys/bus/iio/devices/iio:device0/in_voltage0_raw).
type IIOADC struct {
	path     string
	maxValue int
	vref     float64
}

// NewIIOADC returns a reader for the raw value file at path. maxValue is the
// converter's full-scale reading and vref the voltage it corresponds to.
func NewIIOADC(path string, maxValue int, vref float64) *IIOADC {
	return &IIOADC{path: path, maxValue: maxValue, vref: vref}
}

// Read returns one sample. Raw is clamped to [0, maxValue].
func (a *IIOADC) Read() (analog.Sample, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return analog.Sample{}, fmt.Errorf("reading %s: %w", a.path, err)
	}

	raw, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return analog.Sample{}, fmt.Errorf("%w: %q", ErrADCRange, strings.TrimSpace(string(data)))
	}

	raw = clamp(raw, a.maxValue)
	return analog.Sample{
		Raw: int32(raw),
		V:   toPotential(raw, a.maxValue, a.vref),
	}, nil
}

// String implements fmt.Stringer.
func (a *IIOADC) String() string {
	return "iio:" + a.path
}

func clamp(raw, maxValue int) int {
	if raw < 0 {
		return 0
	}
	if raw > maxValue {
		return maxValue
	}
	return raw
}

func toPotential(raw, maxValue int, vref float64) physic.ElectricPotential {
	if maxValue <= 0 {
		return 0
	}
	return physic.ElectricPotential(float64(raw) * vref / float64(maxValue) * float64(physic.Volt))
}
