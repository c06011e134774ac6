// Package dispatch maps (method, path) pairs to device handlers and encodes
// their results.
//
// The route table is fixed when the Dispatcher is built. Lookup is exact on
// both method and path; anything unmatched yields the structured 404 from
// NotFound. Handlers run on the node loop goroutine and are the only code
// that mutates device.State outputs.
//
// Usage:
//
//	d := dispatch.New(&dispatch.Env{
//	    State: state,
//	    Scale: device.Scale{MaxValue: 4095, ReferenceVolts: 3.3},
//	    Info:  identity,
//	    Panel: panel.Index(""),
//	})
//	res := d.Dispatch("GET", "/api/led/toggle")
//	body, contentType, err := dispatch.Encode(res)
package dispatch
