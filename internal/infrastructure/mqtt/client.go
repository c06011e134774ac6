package mqtt

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
)

// Logger is satisfied by *logging.Logger and *slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MessageHandler receives inbound messages. Paho calls it from its own
// goroutine. A returned error is logged and otherwise ignored.
type MessageHandler func(topic string, payload []byte) error

type subscription struct {
	qos     byte
	handler MessageHandler
}

// Client is a node's broker connection.
//
// It keeps the node's status topic current (online on every connect,
// offline on Close, and the broker-published will on connection loss) and
// restores subscriptions after reconnects. Methods are safe for
// concurrent use.
type Client struct {
	raw    pahomqtt.Client
	topics Topics
	qos    byte

	connected atomic.Bool

	mu           sync.Mutex
	subs         map[string]subscription
	logger       Logger
	onConnect    func()
	onDisconnect func(error)
}

func newClient(topics Topics, qos byte) *Client {
	return &Client{
		topics: topics,
		qos:    qos,
		subs:   make(map[string]subscription),
	}
}

// Connect dials the broker and waits for the first connection.
//
// Parameters:
//   - cfg: MQTT configuration from config.yaml
//   - topics: Topic builder for this node
//
// Returns:
//   - *Client: Connected client
//   - error: ErrConnectionFailed when the broker is unreachable within the timeout
func Connect(cfg config.MQTTConfig, topics Topics) (*Client, error) {
	c := newClient(topics, byte(cfg.QoS)) //nolint:gosec // validated to 0..2

	opts := newOptions(cfg, topics).
		SetOnConnectHandler(func(pahomqtt.Client) { c.connectionUp() }).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.connectionDown(err) })

	c.raw = pahomqtt.NewClient(opts)
	if err := await(c.raw.Connect(), ErrConnectionFailed); err != nil {
		// Stop the background retry started by SetConnectRetry.
		c.raw.Disconnect(0)
		return nil, fmt.Errorf("%s: %w", brokerURL(cfg.Broker), err)
	}

	// The connect handler runs asynchronously; report connected now.
	c.connected.Store(true)
	return c, nil
}

func (c *Client) connectionUp() {
	c.connected.Store(true)

	c.mu.Lock()
	for topic, s := range c.subs {
		c.raw.Subscribe(topic, s.qos, c.dispatch(s.handler))
	}
	hook := c.onConnect
	c.mu.Unlock()

	c.raw.Publish(c.topics.Status(), c.qos, true, statusPayload(c.topics.NodeID, StatusOnline, "", time.Now()))

	if hook != nil {
		hook()
	}
}

func (c *Client) connectionDown(err error) {
	c.connected.Store(false)

	c.mu.Lock()
	hook := c.onDisconnect
	c.mu.Unlock()
	if hook != nil {
		hook(err)
	}
}

// Close publishes a graceful offline status and disconnects. It is safe on
// a client that never connected.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	if c.IsConnected() {
		t := c.raw.Publish(c.topics.Status(), c.qos, true,
			statusPayload(c.topics.NodeID, StatusOffline, "shutdown", time.Now()))
		t.WaitTimeout(ackTimeout)
	}
	c.raw.Disconnect(disconnectQuiesce)
	c.connected.Store(false)
	return nil
}

// HealthCheck reports ErrNotConnected while the broker link is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// Topics returns the node's topic builder.
func (c *Client) Topics() Topics {
	return c.topics
}

// IsConnected reports the last known link state.
func (c *Client) IsConnected() bool {
	return c.raw != nil && c.connected.Load() && c.raw.IsConnected()
}

// Subscriptions lists the tracked subscription topics, sorted.
func (c *Client) Subscriptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	topics := make([]string, 0, len(c.subs))
	for t := range c.subs {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// SetOnConnect registers a hook run after every (re)connection.
func (c *Client) SetOnConnect(fn func()) {
	c.mu.Lock()
	c.onConnect = fn
	c.mu.Unlock()
}

// SetOnDisconnect registers a hook run when the connection drops.
func (c *Client) SetOnDisconnect(fn func(err error)) {
	c.mu.Lock()
	c.onDisconnect = fn
	c.mu.Unlock()
}

// SetLogger sets where handler errors and panics are reported.
func (c *Client) SetLogger(l Logger) {
	c.mu.Lock()
	c.logger = l
	c.mu.Unlock()
}

func (c *Client) log() Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logger
}

// dispatch adapts h to paho, recovering panics so one bad message cannot
// kill paho's router goroutine.
func (c *Client) dispatch(h MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if l := c.log(); l != nil {
					l.Error("MQTT handler panic recovered", "topic", msg.Topic(), "panic", r)
				}
			}
		}()

		if err := h(msg.Topic(), msg.Payload()); err != nil {
			if l := c.log(); l != nil {
				l.Warn("MQTT handler returned error", "topic", msg.Topic(), "error", err)
			}
		}
	}
}
