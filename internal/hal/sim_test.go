package hal

import (
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/logging"
)

func TestSim_RecordsWrites(t *testing.T) {
	sim := NewSim(4095)

	sim.SetLED(true)
	sim.SetRelay(true)
	sim.SetLED(false)

	want := []PinWrite{
		{Pin: PinLED, On: true},
		{Pin: PinRelay, On: true},
		{Pin: PinLED, On: false},
	}
	got := sim.Writes()
	if len(got) != len(want) {
		t.Fatalf("Writes() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Writes()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	if sim.LED() {
		t.Error("LED() = true after final off write")
	}
	if !sim.Relay() {
		t.Error("Relay() = false after on write")
	}
}

func TestSim_AnalogClamped(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "in range", in: 2048, want: 2048},
		{name: "negative", in: -5, want: 0},
		{name: "above full scale", in: 5000, want: 4095},
		{name: "full scale", in: 4095, want: 4095},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := NewSim(4095)
			sim.SetAnalog(tt.in)
			if got := sim.ReadAnalog(); got != tt.want {
				t.Errorf("ReadAnalog() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSim_AnalogSource(t *testing.T) {
	sim := NewSim(100)
	n := 0
	sim.SetAnalogSource(func() int {
		n += 60
		return n
	})

	if got := sim.ReadAnalog(); got != 60 {
		t.Errorf("first ReadAnalog() = %d, want 60", got)
	}
	if got := sim.ReadAnalog(); got != 100 {
		t.Errorf("second ReadAnalog() = %d, want clamped 100", got)
	}

	sim.SetAnalog(7)
	if got := sim.ReadAnalog(); got != 7 {
		t.Errorf("ReadAnalog() after SetAnalog = %d, want 7", got)
	}
}

func TestSim_Button(t *testing.T) {
	sim := NewSim(4095)
	if sim.ReadButton() {
		t.Fatal("button should start released")
	}
	sim.SetButton(true)
	if !sim.ReadButton() {
		t.Error("ReadButton() = false after SetButton(true)")
	}
}

func TestOpen_Sim(t *testing.T) {
	cfg := config.Default().Board
	cfg.Driver = "sim"

	board, err := Open(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer board.Close()

	if v := board.ReadAnalog(); v < 0 || v > cfg.ADC.MaxValue {
		t.Errorf("ReadAnalog() = %d, want within [0, %d]", v, cfg.ADC.MaxValue)
	}
}

func TestSim_Close(t *testing.T) {
	sim := NewSim(4095)
	var board Board = sim

	if sim.Closed() {
		t.Fatal("Closed() = true before Close")
	}
	if err := board.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !sim.Closed() {
		t.Error("Closed() = false after Close")
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := config.Default().Board
	cfg.Driver = "arduino"

	_, err := Open(cfg, logging.Discard())
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Open() error = %v, want ErrUnknownDriver", err)
	}
}
