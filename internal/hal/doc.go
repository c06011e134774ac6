// Package hal is the node's device I/O layer.
//
// It reads and writes the physical pins behind the node's four signals:
// an LED output, a relay output, a button input and an analog sensor input.
// The layer is stateless with respect to the rest of the node: it only moves
// values between pins and callers.
//
// Implementations:
//   - PeriphBoard: Linux GPIO through periph.io, analog through an IIO sysfs channel
//   - Sim: in-memory board for development machines and tests
//
// All Board operations are total. Hardware faults are logged by the
// implementation and never surface to callers.
package hal
