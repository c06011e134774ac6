// Package telemetry carries node loop events to the outside world.
//
// A Fanout drains loop.Events() on its own goroutine and hands each event
// to a list of sinks:
//
//	loop.Events() ──► Fanout ──┬─► MQTTSink    graylogic/node/{id}/state, /event
//	                           ├─► InfluxSink  node_io points
//	                           ├─► JournalSink SQLite events table
//	                           └─► HubSink     WebSocket node.command / node.sample
//
// Sink errors are logged and never reach the loop. The reverse direction,
// MQTT commands into the loop, is handled by CommandListener.
package telemetry
