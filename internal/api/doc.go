// Package api implements the HTTP transport and WebSocket push for a
// Gray Logic Node.
//
// This package provides:
//   - The board's fixed route table, registered with chi and forwarded to
//     the node loop one request at a time
//   - Ancillary endpoints that never touch device state: /api/health,
//     /api/events (actuation journal) and /ws (live state push)
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Architecture
//
// HTTP handler goroutines never read or write device state. Every device
// route, and every unmatched path, is submitted to node.Loop, which owns
// the state and answers with an already encoded reply:
//
//	browser ──► chi ──► Server.forward ──► loop.Submit ──► dispatcher
//	                                            ◄── Reply ◄──┘
//
// Unmatched paths and methods get the dispatcher's own 404 body, so a
// client sees one error shape regardless of which layer missed.
//
// # WebSocket
//
// GET /ws?channels=node.command,node.sample opens a push stream. Every frame
// is a JSON Message. The server sends {"type":"event","channel":...,
// "payload":<node.Event>}; clients may send subscribe or unsubscribe with a
// "channels" list, or ping, and get ack, pong or error back.
//
// # Security
//
// The node serves plain HTTP with no authentication. It is intended for a
// trusted local network.
package api
