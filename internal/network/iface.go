package network

import (
	"fmt"
	"net"
)

// Address is the node's identity on the network.
type Address struct {
	Interface string
	IP        net.IP
	MAC       net.HardwareAddr
}

// Resolver looks up the current address of an interface.
type Resolver func(iface string) (Address, error)

// InterfaceAddress returns the first IPv4 address and the hardware address
// of the named interface.
func InterfaceAddress(name string) (Address, error) {
	ifc, err := net.InterfaceByName(name)
	if err != nil {
		return Address{}, fmt.Errorf("looking up interface %s: %w", name, err)
	}

	addrs, err := ifc.Addrs()
	if err != nil {
		return Address{}, fmt.Errorf("listing addresses of %s: %w", name, err)
	}

	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return Address{Interface: name, IP: ip4, MAC: ifc.HardwareAddr}, nil
		}
	}

	return Address{}, fmt.Errorf("%w: %s", ErrNoAddress, name)
}
