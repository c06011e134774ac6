package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/gray-logic-node/internal/dispatch"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-node/internal/journal"
	"github.com/nerrad567/gray-logic-node/internal/node"
)

// SourceHTTP tags commands received over HTTP.
const SourceHTTP = "http"

const (
	shutdownTimeout = 10 * time.Second
	healthTimeout   = 3 * time.Second
)

var (
	ErrMissingDeps = errors.New("api: logger, loop and routes are required")
	ErrNotStarted  = errors.New("api: server not started")
)

// Submitter hands a request to the node loop. Implemented by *node.Loop.
type Submitter interface {
	Submit(ctx context.Context, method, path, source string) (node.Reply, error)
}

// EventReader lists journal entries. Implemented by *journal.Journal.
type EventReader interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// HealthChecker is an infrastructure client reported by /api/health.
// Implemented by *database.DB, *mqtt.Client and *influxdb.Client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Logger  *logging.Logger
	Loop    Submitter
	Routes  []dispatch.Route
	Journal EventReader // optional; /api/events answers 503 without it
	Hub     *Hub        // optional; Start creates and runs one when nil
	Checks  map[string]HealthChecker
	NodeID  string
	Version string
}

// Server is the node's HTTP front end. It never touches device state:
// device routes are forwarded to the loop.
type Server struct {
	cfg     config.APIConfig
	wsCfg   config.WebSocketConfig
	logger  *logging.Logger
	loop    Submitter
	routes  []dispatch.Route
	journal EventReader
	checks  map[string]HealthChecker
	nodeID  string
	version string

	hub      *Hub
	server   *http.Server
	listener net.Listener
	stop     context.CancelFunc
}

// New validates deps and returns an unstarted server.
//
// Returns:
//   - error: ErrMissingDeps when logger, loop or routes are absent
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil || deps.Loop == nil || len(deps.Routes) == 0 {
		return nil, ErrMissingDeps
	}
	return &Server{
		cfg:     deps.Config,
		wsCfg:   deps.WS,
		logger:  deps.Logger.With("component", "api"),
		loop:    deps.Loop,
		routes:  deps.Routes,
		journal: deps.Journal,
		checks:  deps.Checks,
		nodeID:  deps.NodeID,
		version: deps.Version,
		hub:     deps.Hub,
	}, nil
}

// Start binds the listen address and serves in the background. Binding
// happens before Start returns, so a busy port is reported here.
//
// Parameters:
//   - ctx: Parent of the owned hub's lifetime; Close ends serving
//
// Returns:
//   - error: The bind failure
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)))
	if err != nil {
		return fmt.Errorf("listening: %w", err)
	}

	ctx, s.stop = context.WithCancel(ctx)
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
		go s.hub.Run(ctx)
	}

	read := time.Duration(s.cfg.Timeouts.Read) * time.Second
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       read,
		ReadHeaderTimeout: read,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server listening", "address", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address after Start, otherwise the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Hub returns the WebSocket hub, or nil before Start when none was injected.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close stops accepting connections and waits up to 10 seconds for
// in-flight requests. Safe to call before Start.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	s.stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck returns ErrNotStarted before Start.
func (s *Server) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("api health check: %w", err)
	}
	if s.server == nil {
		return ErrNotStarted
	}
	return nil
}
