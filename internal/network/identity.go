package network

import (
	"os"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-node/internal/device"
)

// NodeID returns configured when set, otherwise a name-based UUID derived
// from the MAC address (or the hostname when there is no MAC). The result is
// stable across restarts of the same board.
func NodeID(configured string, addr Address) string {
	if configured != "" {
		return configured
	}

	seed := addr.MAC.String()
	if seed == "" {
		seed, _ = os.Hostname() //nolint:errcheck // empty hostname still yields a valid UUID
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("graylogic-node:"+seed)).String()
}

// Identity reports device info for the served interface. Static facts are
// captured once; RSSI and free memory are probed on every call.
type Identity struct {
	name   string
	id     string
	addr   Address
	prober *Prober
	chipID string
}

// NewIdentity captures the node's static facts.
func NewIdentity(name, id string, addr Address, prober *Prober) *Identity {
	return &Identity{
		name:   name,
		id:     id,
		addr:   addr,
		prober: prober,
		chipID: prober.ChipID(),
	}
}

// ID returns the node identifier.
func (i *Identity) ID() string { return i.id }

// Address returns the associated address.
func (i *Identity) Address() Address { return i.addr }

// DeviceInfo implements device.InfoProvider.
func (i *Identity) DeviceInfo() device.Info {
	rssi, ok := i.prober.RSSI()
	var ip string
	if i.addr.IP != nil {
		ip = i.addr.IP.String()
	}
	return device.Info{
		Name:       i.name,
		ID:         i.id,
		IP:         ip,
		MAC:        i.addr.MAC.String(),
		RSSI:       rssi,
		HasRSSI:    ok,
		FreeMemory: i.prober.FreeMemory(),
		ChipID:     i.chipID,
	}
}
