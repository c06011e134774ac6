package node

import "github.com/nerrad567/gray-logic-node/internal/device"

// EventKind classifies loop events.
type EventKind string

// Event kinds.
const (
	// EventCommand follows every output command.
	EventCommand EventKind = "command"

	// EventSample reports changed inputs, at most once per publish interval.
	EventSample EventKind = "sample"
)

// Event is emitted by the loop to observers.
type Event struct {
	Kind EventKind `json:"kind"`

	// Action is the command performed ("led/toggle"). Empty for samples.
	Action string `json:"action,omitempty"`

	// Source is where the command came from ("http", "mqtt").
	Source string `json:"source,omitempty"`

	Snapshot device.Snapshot `json:"state"`
}
