package network

import "errors"

var (
	// ErrNoAddress is returned when the interface has no usable IPv4 address yet.
	ErrNoAddress = errors.New("network: interface has no ipv4 address")

	// ErrJoinFailed is returned when the network manager rejects a join.
	ErrJoinFailed = errors.New("network: join failed")
)
