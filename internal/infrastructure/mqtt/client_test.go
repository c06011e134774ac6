package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "graylogic-node",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

var benchTopics = Topics{NodeID: "bench-1"}

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "State", got: benchTopics.State(), expected: "graylogic/node/bench-1/state"},
		{name: "Event", got: benchTopics.Event(), expected: "graylogic/node/bench-1/event"},
		{name: "Command", got: benchTopics.Command(), expected: "graylogic/node/bench-1/command"},
		{name: "Status", got: benchTopics.Status(), expected: "graylogic/node/bench-1/status"},
		{name: "AllNodeStates", got: benchTopics.AllNodeStates(), expected: "graylogic/node/+/state"},
		{name: "AllNodes", got: benchTopics.AllNodes(), expected: "graylogic/node/#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestClientID(t *testing.T) {
	tests := []struct {
		prefix, nodeID, want string
	}{
		{"graylogic-node", "bench-1", "graylogic-node-bench-1"},
		{"graylogic-node", "", "graylogic-node"},
		{"", "bench-1", "bench-1"},
	}
	for _, tt := range tests {
		if got := clientID(tt.prefix, tt.nodeID); got != tt.want {
			t.Errorf("clientID(%q, %q) = %q, want %q", tt.prefix, tt.nodeID, got, tt.want)
		}
	}
}

func TestNewOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "node"
	cfg.Auth.Password = "secret"

	opts := newOptions(cfg, benchTopics)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want [tcp://127.0.0.1:1883]", opts.Servers)
	}
	if opts.ClientID != "graylogic-node-bench-1" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "node" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q", opts.Username, opts.Password)
	}
	if !opts.AutoReconnect || !opts.CleanSession {
		t.Error("AutoReconnect and CleanSession should be enabled")
	}
	if opts.MaxReconnectInterval != 5*time.Second {
		t.Errorf("MaxReconnectInterval = %v, want 5s", opts.MaxReconnectInterval)
	}
	if opts.TLSConfig != nil && opts.TLSConfig.MinVersion != 0 {
		t.Error("TLS configured without broker.tls")
	}
}

func TestNewOptions_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := newOptions(cfg, benchTopics)

	if opts.Servers[0].String() != "ssl://127.0.0.1:8883" {
		t.Errorf("Servers[0] = %v, want ssl://127.0.0.1:8883", opts.Servers[0])
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion == 0 {
		t.Error("TLS config missing minimum version")
	}
}

func TestNewOptions_Will(t *testing.T) {
	opts := newOptions(testConfig(), benchTopics)

	if !opts.WillEnabled || !opts.WillRetained {
		t.Error("will should be enabled and retained")
	}
	if opts.WillTopic != "graylogic/node/bench-1/status" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}

	var msg statusMessage
	if err := json.Unmarshal(opts.WillPayload, &msg); err != nil {
		t.Fatalf("will payload is not JSON: %v", err)
	}
	if msg.Status != StatusOffline || msg.NodeID != "bench-1" || msg.Reason != "connection_lost" {
		t.Errorf("will = %+v", msg)
	}
}

func TestStatusPayload(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))

	got := string(statusPayload("bench-1", StatusOnline, "", at))
	want := `{"status":"online","node_id":"bench-1","timestamp":"2026-03-01T11:00:00Z"}`
	if got != want {
		t.Errorf("online payload = %s, want %s", got, want)
	}

	got = string(statusPayload("bench-1", StatusOffline, "shutdown", at))
	if !strings.Contains(got, `"reason":"shutdown"`) {
		t.Errorf("offline payload = %s", got)
	}
}

func TestPublish_Validation(t *testing.T) {
	c := newClient(benchTopics, 1)

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{name: "empty topic", topic: "", payload: []byte("x"), qos: 1, wantErr: ErrInvalidTopic},
		{name: "invalid qos", topic: "t", payload: []byte("x"), qos: 3, wantErr: ErrInvalidQoS},
		{name: "oversize payload", topic: "t", payload: make([]byte, maxPayloadSize+1), qos: 1, wantErr: ErrPublishFailed},
		{name: "not connected", topic: "t", payload: []byte("x"), qos: 1, wantErr: ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribe_Validation(t *testing.T) {
	c := newClient(benchTopics, 1)
	handler := func(string, []byte) error { return nil }

	tests := []struct {
		name    string
		topic   string
		qos     byte
		handler MessageHandler
		wantErr error
	}{
		{"empty topic", "", 1, handler, ErrInvalidTopic},
		{"invalid qos", "t", 3, handler, ErrInvalidQoS},
		{"nil handler", "t", 1, nil, ErrSubscribeFailed},
		{"not connected", "t", 1, handler, ErrNotConnected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Subscribe(tt.topic, tt.qos, tt.handler); !errors.Is(err, tt.wantErr) {
				t.Errorf("Subscribe() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if subs := c.Subscriptions(); len(subs) != 0 {
		t.Errorf("Subscriptions() = %v, failed subscribes must not be tracked", subs)
	}
}

func TestUnsubscribe_DropsTrackingWhileDisconnected(t *testing.T) {
	c := newClient(benchTopics, 1)
	c.subs["graylogic/node/bench-1/command"] = subscription{qos: 1, handler: func(string, []byte) error { return nil }}

	if err := c.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe(empty) error = %v", err)
	}
	if err := c.Unsubscribe("graylogic/node/bench-1/command"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Unsubscribe() error = %v, want ErrNotConnected", err)
	}
	if subs := c.Subscriptions(); len(subs) != 0 {
		t.Errorf("Subscriptions() = %v, want none", subs)
	}
}

func TestHealthCheck(t *testing.T) {
	c := newClient(benchTopics, 1)

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestClose_NeverConnected(t *testing.T) {
	c := newClient(benchTopics, 1)
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true for a never-connected client")
	}
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func TestDispatch(t *testing.T) {
	t.Run("recovers panic", func(t *testing.T) {
		c := newClient(benchTopics, 1)
		logger := &recordingLogger{}
		c.SetLogger(logger)

		c.dispatch(func(string, []byte) error { panic("boom") })(nil, fakeMessage{topic: "t"})

		if len(logger.errors) != 1 {
			t.Errorf("logged errors = %v, want one panic record", logger.errors)
		}
	})

	t.Run("logs handler error", func(t *testing.T) {
		c := newClient(benchTopics, 1)
		logger := &recordingLogger{}
		c.SetLogger(logger)

		var gotTopic, gotPayload string
		h := c.dispatch(func(topic string, payload []byte) error {
			gotTopic, gotPayload = topic, string(payload)
			return errors.New("handler error")
		})
		h(nil, fakeMessage{topic: benchTopics.Command(), payload: []byte("led/on")})

		if gotTopic != benchTopics.Command() || gotPayload != "led/on" {
			t.Errorf("handler saw %q %q", gotTopic, gotPayload)
		}
		if len(logger.warns) != 1 {
			t.Errorf("logged warnings = %v, want one", logger.warns)
		}
	})

	t.Run("no logger", func(t *testing.T) {
		c := newClient(benchTopics, 1)
		c.dispatch(func(string, []byte) error { panic("quiet") })(nil, fakeMessage{topic: "t"})
	})
}

func TestHooks(t *testing.T) {
	c := newClient(benchTopics, 1)

	var lost error
	c.SetOnDisconnect(func(err error) { lost = err })
	c.connected.Store(true)

	c.connectionDown(errors.New("EOF"))

	if lost == nil || lost.Error() != "EOF" {
		t.Errorf("disconnect hook got %v, want EOF", lost)
	}
	if c.connected.Load() {
		t.Error("connected flag still set after connection loss")
	}
}
