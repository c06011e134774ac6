// Package device holds the node's device state and the sampler that feeds it.
//
// # Key Types
//
//   - State: last commanded outputs (LED, relay) and last sampled inputs
//     (analog value, button). Output setters write the pin synchronously.
//   - Sampler: one pass reads both inputs and records them in State.
//   - Snapshot: immutable copy of State plus the computed voltage.
//   - Scale: raw analog reading to volts.
//   - Info: identity and host facts reported by /api/device/info.
//
// # Usage
//
//	state := device.NewState(board, cfg.Board.ADC.MaxValue)
//	sampler := device.NewSampler(board, state)
//
//	state.SetLED(true) // pin is high when this returns
//	sampler.Sample()
//	snap := state.Snapshot(device.Scale{MaxValue: 4095, ReferenceVolts: 3.3})
//
// # Thread Safety
//
// State and Sampler belong to a single goroutine (the node loop). They carry
// no locks. Other goroutines only ever receive Snapshot values.
package device
