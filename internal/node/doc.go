// Package node runs the cooperative main loop that owns the device state.
//
// One goroutine (Loop.Run) performs every read and write of device.State:
// each turn it services at most one pending request through the dispatcher,
// runs one sampling pass, emits events, then sleeps for the sample
// interval. HTTP handlers and MQTT callbacks never touch the state; they
// call Submit and block until the loop answers.
//
//	HTTP handler ─┐
//	              ├─ Submit ──▶ requests chan ──▶ Loop.Step ──▶ dispatch + sample
//	MQTT command ─┘                                   │
//	                                                  ▼
//	                                        events chan (non-blocking)
//	                                                  │
//	                                                  ▼
//	                                     telemetry / WebSocket / journal
package node
