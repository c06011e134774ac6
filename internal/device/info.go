package device

// Info identifies the node and its host for GET /api/device/info.
type Info struct {
	// Name is the configured device name.
	Name string

	// ID is the stable node identifier.
	ID string

	// IP is the IPv4 address the control surface is served on.
	IP string

	// MAC is the hardware address of the served interface.
	MAC string

	// RSSI is the wireless signal level in dBm. Valid only when HasRSSI.
	RSSI    int
	HasRSSI bool

	// FreeMemory is the available memory in bytes. Always positive.
	FreeMemory uint64

	// ChipID describes the board or SoC.
	ChipID string
}

// InfoProvider produces a fresh Info on each call.
type InfoProvider interface {
	DeviceInfo() Info
}

// StaticInfo is an InfoProvider that always returns the same Info.
type StaticInfo Info

// DeviceInfo implements InfoProvider.
func (s StaticInfo) DeviceInfo() Info { return Info(s) }
