package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-node/internal/node"
)

// SourceMQTT tags commands received over MQTT.
const SourceMQTT = "mqtt"

// defaultCommandTimeout bounds the wait for the loop to answer.
const defaultCommandTimeout = 5 * time.Second

// Submitter is the subset of *node.Loop used by CommandListener.
type Submitter interface {
	Submit(ctx context.Context, method, path, source string) (node.Reply, error)
}

// Subscriber is the subset of *mqtt.Client used by CommandListener.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// commandPayload is the JSON form of a command message.
type commandPayload struct {
	Action string `json:"action"`
}

// CommandListener turns MQTT command messages into loop requests.
//
// Payloads are either {"action":"led/on"} or the bare action text. Each
// becomes GET /api/<action> with source "mqtt", so the route table alone
// decides what is valid.
type CommandListener struct {
	sub       Subscriber
	submitter Submitter
	topics    mqtt.Topics
	qos       byte
	timeout   time.Duration
	logger    *logging.Logger
}

// NewCommandListener creates a listener. Call Start to subscribe.
func NewCommandListener(sub Subscriber, submitter Submitter, topics mqtt.Topics, qos byte, logger *logging.Logger) *CommandListener {
	return &CommandListener{
		sub:       sub,
		submitter: submitter,
		topics:    topics,
		qos:       qos,
		timeout:   defaultCommandTimeout,
		logger:    logger.With("component", "mqtt-commands"),
	}
}

// Start subscribes to the node's command topic.
func (c *CommandListener) Start() error {
	topic := c.topics.Command()
	if err := c.sub.Subscribe(topic, c.qos, c.handle); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	c.logger.Info("listening for commands", "topic", topic)
	return nil
}

// Stop unsubscribes from the command topic.
func (c *CommandListener) Stop() error {
	if err := c.sub.Unsubscribe(c.topics.Command()); err != nil {
		return fmt.Errorf("unsubscribing from %s: %w", c.topics.Command(), err)
	}
	return nil
}

func (c *CommandListener) handle(topic string, payload []byte) error {
	action, err := ParseAction(payload)
	if err != nil {
		c.logger.Warn("ignoring command", "topic", topic, "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	path := "/api/" + action
	rep, err := c.submitter.Submit(ctx, http.MethodGet, path, SourceMQTT)
	if err != nil {
		return fmt.Errorf("submitting %s: %w", path, err)
	}

	if rep.Status != http.StatusOK {
		c.logger.Warn("command rejected", "action", action, "status", rep.Status)
		return nil
	}
	c.logger.Debug("command applied", "action", action)
	return nil
}

// ParseAction extracts the action from a command payload.
//
// Returns:
//   - string: Action such as "led/toggle", without leading slash or "api/"
//   - error: ErrEmptyAction or ErrInvalidAction
func ParseAction(payload []byte) (string, error) {
	raw := strings.TrimSpace(string(payload))
	if strings.HasPrefix(raw, "{") {
		var p commandPayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidAction, err)
		}
		raw = strings.TrimSpace(p.Action)
	}

	action := strings.Trim(raw, "/")
	action = strings.TrimPrefix(action, "api/")
	if action == "" {
		return "", ErrEmptyAction
	}
	if strings.ContainsAny(action, "?# \t\r\n") || strings.Contains(action, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	return action, nil
}
