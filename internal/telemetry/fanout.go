package telemetry

import (
	"context"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-node/internal/node"
)

// Sink receives loop events.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string

	// Handle processes one event. It must not retain ev.
	Handle(ctx context.Context, ev node.Event) error
}

// Fanout delivers each event to every sink in order.
type Fanout struct {
	events <-chan node.Event
	sinks  []Sink
	logger *logging.Logger
}

// NewFanout creates a fan-out over the loop's event channel.
//
// Parameters:
//   - events: Channel returned by node.Loop.Events
//   - logger: Structured logger for sink failures
//   - sinks: Destinations, called in the given order
//
// Returns:
//   - *Fanout: Fan-out ready to Run
func NewFanout(events <-chan node.Event, logger *logging.Logger, sinks ...Sink) *Fanout {
	return &Fanout{
		events: events,
		sinks:  sinks,
		logger: logger.With("component", "telemetry"),
	}
}

// Sinks returns the names of the configured sinks.
func (f *Fanout) Sinks() []string {
	names := make([]string, len(f.sinks))
	for i, s := range f.sinks {
		names[i] = s.Name()
	}
	return names
}

// Run delivers events until ctx is cancelled.
func (f *Fanout) Run(ctx context.Context) {
	f.logger.Info("telemetry fan-out started", "sinks", f.Sinks())
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-f.events:
			f.Deliver(ctx, ev)
		}
	}
}

// Deliver hands ev to every sink, logging failures.
func (f *Fanout) Deliver(ctx context.Context, ev node.Event) {
	for _, s := range f.sinks {
		if err := s.Handle(ctx, ev); err != nil {
			f.logger.Warn("telemetry sink failed",
				"sink", s.Name(),
				"kind", ev.Kind,
				"action", ev.Action,
				"error", err,
			)
		}
	}
}
