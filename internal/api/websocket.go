package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/logging"
)

// WebSocket message types.
const (
	MsgEvent       = "event"
	MsgSubscribe   = "subscribe"
	MsgUnsubscribe = "unsubscribe"
	MsgPing        = "ping"
	MsgPong        = "pong"
	MsgAck         = "ack"
	MsgError       = "error"
)

// Channels carrying node loop events.
const (
	ChannelCommand = "node.command"
	ChannelSample  = "node.sample"
)

const (
	clientSendBuffer = 64
	hubQueueSize     = 64
)

// defaultChannels are subscribed on connect when ?channels= is absent.
var defaultChannels = []string{ChannelCommand, ChannelSample}

// Message is the single frame format in both directions. Clients send
// subscribe, unsubscribe and ping; the server sends event, ack, pong and
// error.
type Message struct {
	Type      string   `json:"type"`
	ID        string   `json:"id,omitempty"`
	Channel   string   `json:"channel,omitempty"`
	Channels  []string `json:"channels,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
	Payload   any      `json:"payload,omitempty"`
	Error     string   `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The CORS middleware already filtered the origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

type outbound struct {
	channel string
	data    []byte
}

// Hub fans broadcasts out to WebSocket clients. The client set is owned by
// the Run goroutine; Register, Unregister and Broadcast talk to it over
// channels. A client whose buffer is full is disconnected.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan outbound
	stopped    chan struct{}

	clients map[*wsClient]struct{}
	count   atomic.Int64
	dropped atomic.Uint64
}

// NewHub creates a hub. Clients can only connect while Run is running.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:        cfg,
		logger:     logger,
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan outbound, hubQueueSize),
		stopped:    make(chan struct{}),
		clients:    make(map[*wsClient]struct{}),
	}
}

// Run services the hub until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.remove(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			h.logger.Debug("websocket client connected", "clients", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.remove(c)
				h.logger.Debug("websocket client disconnected", "clients", len(h.clients))
			}
		case m := <-h.broadcast:
			for c := range h.clients {
				if !c.subscribed(m.channel) {
					continue
				}
				select {
				case c.send <- m.data:
				default:
					h.logger.Warn("websocket client too slow, disconnecting")
					h.remove(c)
				}
			}
		}
	}
}

// remove must only be called from Run.
func (h *Hub) remove(c *wsClient) {
	delete(h.clients, c)
	h.count.Store(int64(len(h.clients)))
	close(c.send)
}

// join adds c. It returns false once the hub has stopped.
func (h *Hub) join(c *wsClient) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

// leave removes c. Removing an unknown client is a no-op.
func (h *Hub) leave(c *wsClient) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// Broadcast queues payload for subscribers of channel. It never blocks:
// when the queue is full the message is dropped and counted.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := json.Marshal(Message{
		Type:      MsgEvent,
		Channel:   channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("failed to marshal broadcast", "channel", channel, "error", err)
		return
	}

	select {
	case h.broadcast <- outbound{channel: channel, data: data}:
	default:
		h.dropped.Add(1)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Dropped returns the number of broadcasts discarded because the hub
// queue was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// wsClient is one WebSocket connection. conn is nil in unit tests that
// exercise the hub alone.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte

	mu       sync.Mutex
	channels map[string]struct{}
}

func newClient(conn *websocket.Conn, channels []string) *wsClient {
	c := &wsClient{
		conn:     conn,
		send:     make(chan []byte, clientSendBuffer),
		channels: make(map[string]struct{}, len(channels)),
	}
	c.subscribe(channels)
	return c
}

func (c *wsClient) subscribed(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.channels[channel]
	return ok
}

func (c *wsClient) subscribe(channels []string) {
	c.mu.Lock()
	for _, ch := range channels {
		c.channels[ch] = struct{}{}
	}
	c.mu.Unlock()
}

func (c *wsClient) unsubscribe(channels []string) {
	c.mu.Lock()
	for _, ch := range channels {
		delete(c.channels, ch)
	}
	c.mu.Unlock()
}

// handleWebSocket upgrades to a WebSocket subscribed to ?channels=a,b, or
// to both node channels when the parameter is absent.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	channels := defaultChannels
	if v := r.URL.Query().Get("channels"); v != "" {
		channels = splitChannels(v)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := newClient(conn, channels)
	if !s.hub.join(c) {
		conn.Close() //nolint:errcheck // shutting down
		return
	}

	// replies carries answers to client frames; writePump is the only writer.
	replies := make(chan Message, clientSendBuffer)
	go s.writePump(c, replies)
	go s.readPump(c, replies)
}

// splitChannels parses a comma separated channel list, dropping blanks.
func splitChannels(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) wsDurations() (ping, pong time.Duration) {
	return time.Duration(s.wsCfg.PingInterval) * time.Second,
		time.Duration(s.wsCfg.PongTimeout) * time.Second
}

// readPump handles client frames until the connection fails, then
// unregisters the client.
func (s *Server) readPump(c *wsClient, replies chan<- Message) {
	defer func() {
		s.hub.leave(c)
		close(replies)
	}()

	ping, pong := s.wsDurations()
	extend := func() error { return c.conn.SetReadDeadline(time.Now().Add(ping + pong)) }

	c.conn.SetReadLimit(int64(s.wsCfg.MaxMessageSize))
	extend() //nolint:errcheck // a failed deadline surfaces on read
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		var in Message
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read error", "error", err)
			}
			if !malformed(err) {
				return
			}
			queue(replies, Message{Type: MsgError, Error: "invalid JSON message"})
			continue
		}
		extend() //nolint:errcheck // a failed deadline surfaces on read

		queue(replies, reply(c, in))
	}
}

// malformed reports whether err came from decoding a frame rather than
// from the connection.
func malformed(err error) bool {
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return errors.As(err, &syntax) || errors.As(err, &typ)
}

// queue drops the reply when the writer has fallen behind or exited.
func queue(replies chan<- Message, m Message) {
	select {
	case replies <- m:
	default:
	}
}

// reply applies one client frame and returns the answer.
func reply(c *wsClient, in Message) Message {
	switch in.Type {
	case MsgSubscribe:
		c.subscribe(in.Channels)
		return Message{Type: MsgAck, ID: in.ID, Channels: in.Channels}
	case MsgUnsubscribe:
		c.unsubscribe(in.Channels)
		return Message{Type: MsgAck, ID: in.ID, Channels: in.Channels}
	case MsgPing:
		return Message{Type: MsgPong, ID: in.ID}
	default:
		return Message{Type: MsgError, ID: in.ID, Error: "unknown message type: " + in.Type}
	}
}

// writePump is the only writer on c.conn. It exits when the hub closes
// c.send or a write fails.
func (s *Server) writePump(c *wsClient, replies <-chan Message) {
	ping, pong := s.wsDurations()
	ticker := time.NewTicker(ping)
	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck // already finished
	}()

	deadline := func() { c.conn.SetWriteDeadline(time.Now().Add(pong)) } //nolint:errcheck // write reports failure

	for {
		select {
		case data, ok := <-c.send:
			deadline()
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil) //nolint:errcheck // best effort
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case m, ok := <-replies:
			if !ok {
				replies = nil
				continue
			}
			m.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
			deadline()
			if err := c.conn.WriteJSON(m); err != nil {
				return
			}
		case <-ticker.C:
			deadline()
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
