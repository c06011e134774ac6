package network

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const kibibyte = 1024

// Prober reads host facts from procfs.
type Prober struct {
	// Root is the procfs mount point, normally "/proc".
	Root string

	// Interface is the wireless interface for RSSI.
	Interface string
}

// NewProber returns a Prober over /proc for iface.
func NewProber(iface string) *Prober {
	return &Prober{Root: "/proc", Interface: iface}
}

// RSSI returns the signal level in dBm from /proc/net/wireless. The second
// result is false for wired or unknown interfaces.
func (p *Prober) RSSI() (int, bool) {
	f, err := os.Open(filepath.Join(p.Root, "net", "wireless"))
	if err != nil {
		return 0, false
	}
	defer f.Close()

	prefix := p.Interface + ":"
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		// iface: status link level noise ...
		fields := strings.Fields(strings.TrimPrefix(line, prefix))
		if len(fields) < 3 {
			return 0, false
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[2], "."), 64)
		if err != nil {
			return 0, false
		}
		return int(level), true
	}
	return 0, false
}

// FreeMemory returns available memory in bytes. It prefers MemAvailable from
// /proc/meminfo and falls back to the Go runtime's view. The result is
// always positive.
func (p *Prober) FreeMemory() uint64 {
	if v, ok := p.memAvailable(); ok && v > 0 {
		return v
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.Sys > ms.HeapInuse {
		return ms.Sys - ms.HeapInuse
	}
	if ms.Sys > 0 {
		return ms.Sys
	}
	return 1
}

func (p *Prober) memAvailable() (uint64, bool) {
	data, err := os.ReadFile(filepath.Join(p.Root, "meminfo"))
	if err != nil {
		return 0, false
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != "MemAvailable:" {
			continue
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, false
		}
		return kb * kibibyte, true
	}
	return 0, false
}

// ChipID identifies the board: the device-tree model when present, then the
// cpuinfo hardware or model name, then GOOS/GOARCH.
func (p *Prober) ChipID() string {
	if data, err := os.ReadFile(filepath.Join(p.Root, "device-tree", "model")); err == nil {
		if model := strings.TrimSpace(strings.TrimRight(string(data), "\x00")); model != "" {
			return model
		}
	}

	if data, err := os.ReadFile(filepath.Join(p.Root, "cpuinfo")); err == nil {
		var modelName string
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			key, value, ok := strings.Cut(scanner.Text(), ":")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
			switch {
			case key == "Hardware" && value != "":
				return value
			case key == "model name" && modelName == "":
				modelName = value
			}
		}
		if modelName != "" {
			return modelName
		}
	}

	return runtime.GOOS + "/" + runtime.GOARCH
}
