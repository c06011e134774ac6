package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-node/internal/node"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Device routes, all answered by the node loop
	for _, route := range s.routes {
		r.Method(route.Method, route.Path, http.HandlerFunc(s.forward))
	}

	// Misses go to the loop too, so the 404 body comes from the dispatcher
	r.NotFound(s.forward)
	r.MethodNotAllowed(s.forward)

	// Ancillary endpoints
	r.Get("/api/health", s.handleHealth)
	r.Get("/api/events", s.handleListEvents)
	if s.wsCfg.Enabled {
		r.Get("/ws", s.handleWebSocket)
	}

	return r
}

// forward submits the request to the node loop and writes its reply verbatim.
func (s *Server) forward(w http.ResponseWriter, r *http.Request) {
	rep, err := s.loop.Submit(r.Context(), r.Method, r.URL.Path, SourceHTTP)
	if err != nil {
		if errors.Is(err, node.ErrStopped) {
			writeError(w, http.StatusServiceUnavailable, "node loop is not running")
			return
		}
		// The client went away or the request timed out.
		s.logger.Debug("request abandoned", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}

	w.Header().Set("Content-Type", rep.ContentType)
	w.WriteHeader(rep.Status)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write(rep.Body)
}

// handleHealth reports the node and each connected infrastructure client.
// Any failing check answers 503 with status "degraded"; the device routes
// keep working either way.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			checks[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	clients := 0
	if s.hub != nil {
		clients = s.hub.ClientCount()
	}
	writeJSON(w, code, map[string]any{
		"status":            status,
		"version":           s.version,
		"node_id":           s.nodeID,
		"checks":            checks,
		"websocket_clients": clients,
	})
}

// handleListEvents returns recent journal entries, newest first.
// Query: ?limit=N (default 50, max 200).
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "journal is disabled")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := s.journal.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing journal", "error", err)
		writeInternalError(w, "failed to read journal")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": entries,
		"count":  len(entries),
	})
}
