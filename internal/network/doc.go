// Package network brings the node onto its network at boot and reports the
// host facts shown by /api/device/info.
//
// Association blocks until the configured interface has an IPv4 address.
// Every failed attempt is logged and retried after a fixed delay; only
// context cancellation ends the wait. When an SSID is configured the join
// is delegated to NetworkManager (nmcli); otherwise the interface is assumed
// wired or already associated and boot just waits for its address.
//
// Host probes read Linux procfs:
//   - /proc/net/wireless for the signal level
//   - /proc/meminfo for available memory
//   - /proc/device-tree/model or /proc/cpuinfo for the board identifier
package network
