// Package panel provides the node's browser control panel as an embedded
// HTML document.
//
// The page is compiled into the binary with go:embed and served verbatim at
// GET / by the dispatcher. It drives the LED and relay endpoints and polls
// /api/sensor/data. During development a directory containing index.html
// can replace the embedded copy without recompiling.
package panel
