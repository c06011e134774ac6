package node

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/device"
	"github.com/nerrad567/gray-logic-node/internal/dispatch"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/logging"
)

// Loop defaults.
const (
	defaultSampleInterval = 20 * time.Millisecond
	defaultEventBuffer    = 64
)

// Reply is the encoded answer to a submitted request.
type Reply struct {
	Status      int
	ContentType string
	Body        []byte
}

type request struct {
	method string
	path   string
	source string
	reply  chan Reply
}

// Options configures a Loop.
type Options struct {
	// SampleInterval is the wait between turns.
	SampleInterval time.Duration

	// PublishInterval is the minimum spacing of sample events.
	PublishInterval time.Duration

	// EventBuffer is the capacity of the event channel.
	EventBuffer int
}

// Loop is the node's cooperative main loop.
//
// Thread Safety:
//   - Submit, Events and Dropped are safe for concurrent use.
//   - Step and Run must be called from a single goroutine.
type Loop struct {
	dispatcher *dispatch.Dispatcher
	sampler    *device.Sampler
	state      *device.State
	scale      device.Scale
	logger     *logging.Logger
	opts       Options

	requests chan *request
	events   chan Event
	done     chan struct{}
	stopped  atomic.Bool
	dropped  atomic.Uint64

	lastSample   device.Snapshot
	lastPublish  time.Time
	pendingInput bool
}

// New creates a loop over an already wired dispatcher, sampler and state.
//
// Parameters:
//   - d: Dispatcher whose Env.State is state
//   - sampler: Sampler writing into state
//   - state: Device state owned by the loop
//   - scale: Analog scale for snapshots
//   - opts: Cadence and buffering; zero values take defaults
//   - logger: Structured logger
//
// Returns:
//   - *Loop: Loop ready to Run
func New(d *dispatch.Dispatcher, sampler *device.Sampler, state *device.State, scale device.Scale, opts Options, logger *logging.Logger) *Loop {
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = defaultSampleInterval
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaultEventBuffer
	}

	return &Loop{
		dispatcher: d,
		sampler:    sampler,
		state:      state,
		scale:      scale,
		logger:     logger.With("component", "loop"),
		opts:       opts,
		requests:   make(chan *request),
		events:     make(chan Event, opts.EventBuffer),
		done:       make(chan struct{}),
		lastSample: state.Snapshot(scale),
	}
}

// Events returns the channel observers read from. It is never closed.
func (l *Loop) Events() <-chan Event {
	return l.events
}

// Dropped returns the number of events discarded because the channel was full.
func (l *Loop) Dropped() uint64 {
	return l.dropped.Load()
}

// Submit hands a request to the loop and waits for its reply.
//
// Parameters:
//   - ctx: Cancels the wait
//   - method: HTTP method
//   - path: Request path without query
//   - source: Origin recorded on command events ("http", "mqtt")
//
// Returns:
//   - Reply: Encoded response
//   - error: ErrStopped if the loop has exited, or ctx.Err()
func (l *Loop) Submit(ctx context.Context, method, path, source string) (Reply, error) {
	if l.stopped.Load() {
		return Reply{}, ErrStopped
	}

	req := &request{
		method: method,
		path:   path,
		source: source,
		reply:  make(chan Reply, 1),
	}

	select {
	case l.requests <- req:
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	case <-l.done:
		return Reply{}, ErrStopped
	}

	// The loop answers within the same turn that accepted the request.
	select {
	case rep := <-req.reply:
		return rep, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// Step runs one turn: at most one pending request, then one sampling pass.
// It never blocks.
func (l *Loop) Step() {
	select {
	case req := <-l.requests:
		l.serve(req)
	default:
	}

	l.sample()
}

// Run steps until ctx is cancelled, waiting SampleInterval between turns.
func (l *Loop) Run(ctx context.Context) {
	defer func() {
		l.stopped.Store(true)
		close(l.done)
	}()

	l.logger.Info("loop started",
		"sample_interval", l.opts.SampleInterval,
		"publish_interval", l.opts.PublishInterval,
	)

	ticker := time.NewTicker(l.opts.SampleInterval)
	defer ticker.Stop()

	for {
		l.Step()

		select {
		case <-ctx.Done():
			l.logger.Info("loop stopped", "dropped_events", l.dropped.Load())
			return
		case <-ticker.C:
		}
	}
}

func (l *Loop) serve(req *request) {
	res := l.dispatcher.Dispatch(req.method, req.path)

	body, contentType, err := dispatch.Encode(res)
	if err != nil {
		l.logger.Error("encoding response", "path", req.path, "error", err)
		res = dispatch.NotFound(req.path)
		body, contentType, _ = dispatch.Encode(res) //nolint:errcheck // NotFound always encodes
	}
	req.reply <- Reply{Status: res.Status, ContentType: contentType, Body: body}

	if res.Action != "" {
		l.logger.Debug("command", "action", res.Action, "source", req.source)
		l.emit(Event{
			Kind:     EventCommand,
			Action:   res.Action,
			Source:   req.source,
			Snapshot: l.state.Snapshot(l.scale),
		})
	}
}

func (l *Loop) sample() {
	if l.sampler.Sample() {
		l.pendingInput = true
	}
	if !l.pendingInput {
		return
	}

	now := time.Now()
	if !l.lastPublish.IsZero() && now.Sub(l.lastPublish) < l.opts.PublishInterval {
		return
	}

	snap := l.state.Snapshot(l.scale)
	l.pendingInput = false
	if snap.SameIO(l.lastSample) {
		return
	}

	l.lastSample = snap
	l.lastPublish = now
	l.emit(Event{Kind: EventSample, Snapshot: snap})
}

// emit never blocks the loop; a full channel drops the event.
func (l *Loop) emit(ev Event) {
	select {
	case l.events <- ev:
	default:
		n := l.dropped.Add(1)
		if n == 1 || n%100 == 0 {
			l.logger.Warn("event channel full, dropping", "kind", ev.Kind, "dropped", n)
		}
	}
}
