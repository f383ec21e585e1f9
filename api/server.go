package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/shadowsync"
	"github.com/poiesic/shadowsync/agent"
	"github.com/poiesic/shadowsync/core"
	"github.com/poiesic/shadowsync/health"
	"github.com/poiesic/shadowsync/ingestion"
)

const maxBodyBytes = 1 << 20

// Config holds HTTP server configuration.
type Config struct {
	ListenAddr   string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server exposes an engine over HTTP.
type Server struct {
	engine *shadowsync.Engine
	router chi.Router
	cfg    Config
	logger *slog.Logger
}

// IngestRequest is the body of POST /api/ingest.
type IngestRequest struct {
	Text string `json:"text" validate:"notblank"`
}

// AskRequest is the body of POST /api/agent/ask.
type AskRequest struct {
	Query string `json:"query" validate:"notblank,max=4000"`
}

// GraphResponse is the body of GET /api/graph.
type GraphResponse struct {
	Nodes []*core.Node `json:"nodes"`
	Edges []*core.Edge `json:"edges"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	core.HealthSnapshot
	BufferLevel string `json:"bufferLevel"`
	Busy        bool   `json:"busy"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer builds the router for engine.
func NewServer(engine *shadowsync.Engine, cfg Config, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	if cfg.ListenAddr == "" {
		return nil, errors.New("listen address is required")
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine: engine,
		cfg:    cfg,
		logger: logger.With("component", "api"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Post("/ingest", s.handleIngest)
		r.Get("/graph", s.handleGraph)
		r.Get("/vectors", s.handleVectors)
		r.Get("/events", s.handleEvents)
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Post("/agent/ask", s.handleAsk)
		r.Get("/agent/messages", s.handleMessages)
	})
	r.Handle("/metrics", engine.Metrics().Handler())

	s.router = r
	return s, nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server and blocks until the context is cancelled,
// then performs graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.ListenAddr, err)
	}
	s.logger.Info("listening", "addr", ln.Addr().String())

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return <-errCh
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if !s.decode(w, r, &req) {
		return
	}

	err := s.engine.Ingest(r.Context(), req.Text)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	case errors.Is(err, ingestion.ErrEmptyInput):
		s.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, ingestion.ErrPipelineReleased):
		s.writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.logger.Error("error accepting ingestion", "err", err)
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	graph := s.engine.GraphRepository()
	nodes, err := graph.Nodes(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	edges, err := graph.Edges(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Edges: edges})
}

func (s *Server) handleVectors(w http.ResponseWriter, r *http.Request) {
	points, err := s.engine.VectorRepository().Points(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.engine.EventRepository().List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.engine.Simulator().Snapshot()
	s.writeJSON(w, http.StatusOK, HealthResponse{
		HealthSnapshot: snapshot,
		BufferLevel:    health.Level(snapshot.BufferPercent),
		Busy:           s.engine.Busy(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.engine.Status(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if !s.decode(w, r, &req) {
		return
	}

	reply, err := s.engine.Ask(r.Context(), req.Query)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, reply)
	case errors.Is(err, agent.ErrEmptyQuery):
		s.writeError(w, http.StatusBadRequest, err)
	default:
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleMessages(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Agent().Messages())
}

// decode reads and validates a JSON body, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	if err := validateStruct(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("error writing response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
