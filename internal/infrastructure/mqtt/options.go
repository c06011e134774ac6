package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second

	// ackTimeout bounds the wait for a broker acknowledgement.
	ackTimeout = 5 * time.Second

	disconnectQuiesce uint = 250 // ms
	keepAlive              = 30 * time.Second

	maxQoS = 2

	// maxPayloadSize caps outgoing messages. Node snapshots are well under 1KB.
	maxPayloadSize = 64 << 10
)

// Status values published on the status topic.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// statusMessage is the retained payload of the status topic.
type statusMessage struct {
	Status    string `json:"status"`
	NodeID    string `json:"node_id"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func statusPayload(nodeID, status, reason string, at time.Time) []byte {
	b, _ := json.Marshal(statusMessage{ //nolint:errcheck // plain strings always marshal
		Status:    status,
		NodeID:    nodeID,
		Reason:    reason,
		Timestamp: at.UTC().Format(time.RFC3339),
	})
	return b
}

// brokerURL returns tcp:// or, with TLS, ssl:// for the broker.
func brokerURL(b config.MQTTBrokerConfig) string {
	scheme := "tcp"
	if b.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, b.Host, b.Port)
}

// clientID suffixes the configured prefix with the node ID so several
// nodes sharing one config file do not evict each other at the broker.
func clientID(prefix, nodeID string) string {
	switch {
	case nodeID == "":
		return prefix
	case prefix == "":
		return nodeID
	default:
		return prefix + "-" + nodeID
	}
}

// newOptions builds the paho options for a node: clean session, automatic
// reconnect with capped backoff and a retained offline will on the status
// topic.
func newOptions(cfg config.MQTTConfig, topics Topics) *pahomqtt.ClientOptions {
	retry := time.Duration(cfg.Reconnect.InitialDelay) * time.Second
	maxRetry := time.Duration(cfg.Reconnect.MaxDelay) * time.Second

	opts := pahomqtt.NewClientOptions().
		AddBroker(brokerURL(cfg.Broker)).
		SetClientID(clientID(cfg.Broker.ClientID, topics.NodeID)).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(retry).
		SetMaxReconnectInterval(maxRetry).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(keepAlive).
		SetWill(topics.Status(),
			string(statusPayload(topics.NodeID, StatusOffline, "connection_lost", time.Now())),
			1, true)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}
	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	return opts
}

// validate checks arguments shared by Publish and Subscribe.
func validate(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	return nil
}

// await waits for a paho token and wraps any failure with op.
func await(t pahomqtt.Token, op error) error {
	if !t.WaitTimeout(ackTimeout) {
		return fmt.Errorf("%w: no acknowledgement after %v", op, ackTimeout)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("%w: %w", op, err)
	}
	return nil
}
