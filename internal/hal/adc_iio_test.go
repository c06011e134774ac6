package hal

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"periph.io/x/conn/v3/physic"
)

func writeRaw(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing raw file: %v", err)
	}
	return path
}

func TestIIOADC_Read(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantRaw int32
	}{
		{name: "mid scale", content: "2048\n", wantRaw: 2048},
		{name: "zero", content: "0", wantRaw: 0},
		{name: "full scale", content: "4095\n", wantRaw: 4095},
		{name: "over range clamps", content: "5000\n", wantRaw: 4095},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adc := NewIIOADC(writeRaw(t, tt.content), 4095, 3.3)
			sample, err := adc.Read()
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if sample.Raw != tt.wantRaw {
				t.Errorf("Raw = %d, want %d", sample.Raw, tt.wantRaw)
			}

			wantV := float64(tt.wantRaw) * 3.3 / 4095
			gotV := float64(sample.V) / float64(physic.Volt)
			if math.Abs(gotV-wantV) > 1e-6 {
				t.Errorf("V = %v volts, want %v", gotV, wantV)
			}
		})
	}
}

func TestIIOADC_ReadGarbage(t *testing.T) {
	adc := NewIIOADC(writeRaw(t, "n/a\n"), 4095, 3.3)
	_, err := adc.Read()
	if !errors.Is(err, ErrADCRange) {
		t.Errorf("Read() error = %v, want ErrADCRange", err)
	}
}

func TestIIOADC_ReadMissingFile(t *testing.T) {
	adc := NewIIOADC(filepath.Join(t.TempDir(), "missing"), 4095, 3.3)
	if _, err := adc.Read(); err == nil {
		t.Error("Read() expected error for missing file")
	}
}
