package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"serena/internal/config"
	"serena/internal/logging"
	"serena/internal/project"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/server"
)

// Version is the server version reported to MCP clients.
const Version = "0.1.0"

// DefaultDrainTimeout bounds how long Shutdown waits for in-flight requests.
const DefaultDrainTimeout = 10 * time.Second

// Options configure a server start.
type Options struct {
	Host string
	Port int

	// Profile selects the tool compatibility profile registered during
	// startup (see tools.go).
	Profile ToolProfile

	// DrainTimeout bounds graceful shutdown. Zero means DefaultDrainTimeout.
	DrainTimeout time.Duration

	// EnableWebDashboard and EnableGUILogWindow are accepted for
	// compatibility with existing deployment configurations. The server is
	// headless; they are logged and otherwise ignored.
	EnableWebDashboard bool
	EnableGUILogWindow bool
}

// Server coordinates the lifecycle of the MCP server: construction, tool
// registration, request serving and graceful shutdown.
//
// The health endpoint is mounted before the MCP catch-all and answers from
// the moment the listener is up, so orchestrator liveness probes never
// false-negative while tool registration is still running.
type Server struct {
	cfg    *config.Config
	logger *logging.AppLogger
	opts   Options

	resolver *project.Resolver

	mcpServer  *server.MCPServer
	streamable *server.StreamableHTTPServer
	httpServer *http.Server

	state    atomic.Int32
	serveErr chan error

	// registrar performs tool registration; replaced in tests to exercise
	// the registration window.
	registrar func(ctx context.Context) error

	mu         sync.Mutex
	addr       string
	registered bool
	active     *project.Project
}

// NewServer creates a server coordinator. Nothing is bound or registered
// until Start.
func NewServer(cfg *config.Config, logger *logging.AppLogger, opts Options) *Server {
	if opts.DrainTimeout == 0 {
		opts.DrainTimeout = DefaultDrainTimeout
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		opts:     opts,
		resolver: project.NewResolver(cfg, logger),
	}
	s.registrar = s.registerTools
	return s
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	return State(s.state.Load())
}

func (s *Server) setState(next State) {
	prev := State(s.state.Swap(int32(next)))
	s.logger.LogStateTransition("server", prev.String(), next.String())
}

// Addr returns the bound listener address, empty before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start constructs the underlying MCP server, brings up the HTTP listener,
// registers the agent tools and transitions to serving.
//
// The listener is up (and the health endpoint answering) before tool
// registration begins; the MCP mount itself rejects traffic until the
// coordinator is ready. Any fault during construction or registration moves
// the coordinator to StateError, tears the listener down and is returned to
// the caller. There is no partial-success mode.
func (s *Server) Start(ctx context.Context) error {
	if s.opts.EnableWebDashboard || s.opts.EnableGUILogWindow {
		s.logger.Warn("Dashboard and GUI log window are not available on a headless server; ignoring")
	}

	s.mcpServer = server.NewMCPServer(
		"serena",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Serena is a coding agent server. Activate a project with the 'activate_project' tool before using project-scoped tools."),
	)
	s.streamable = server.NewStreamableHTTPServer(s.mcpServer,
		server.WithEndpointPath("/mcp"),
	)
	s.setState(StateConstructed)

	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.setState(StateError)
		return fmt.Errorf("cannot bind %s: %w", addr, err)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	s.httpServer = &http.Server{Handler: s.router()}
	s.serveErr = make(chan error, 1)
	go func() {
		err := s.httpServer.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.serveErr <- err
	}()
	s.logger.Info("Listener up, health endpoint live", "addr", s.Addr())

	s.setState(StateToolsRegistering)
	if err := s.registrar(ctx); err != nil {
		s.setState(StateError)
		s.httpServer.Close()
		return fmt.Errorf("tool registration failed: %w", err)
	}

	s.setState(StateReady)
	s.setState(StateServing)
	s.logger.Info("Serving MCP traffic",
		"addr", s.Addr(),
		"endpoint", "/mcp",
		"profile", s.opts.Profile,
	)
	return nil
}

// Wait blocks until the serve loop exits and returns its error, if any.
func (s *Server) Wait() error {
	return <-s.serveErr
}

// Shutdown drains in-flight requests within the configured drain timeout,
// force-closing any that remain, and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.setState(StateShuttingDown)
	s.logger.Info("Shutting down", "drain_timeout", s.opts.DrainTimeout)

	drainCtx, cancel := context.WithTimeout(ctx, s.opts.DrainTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(drainCtx)
	if err != nil {
		s.logger.Warn("Drain timeout exceeded, closing remaining connections", "error", err)
		s.httpServer.Close()
	}

	s.setState(StateStopped)
	s.logger.Info("Server stopped")
	return err
}

// router builds the HTTP surface: permissive CORS in front of everything,
// the health route, and the MCP transport mounted at the root catch-all.
// Route order matters: /health must win over the mount so liveness probes
// are served even if the mounted subtree mis-routes "/".
func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	// Browser-based MCP clients connect cross-origin with credentials, so
	// the origin is reflected rather than wildcarded.
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return true
		},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS", "HEAD", "DELETE"},
		AllowedHeaders:   []string{"*", "mcp-protocol-version", "mcp-session-id"},
		ExposedHeaders:   []string{"Mcp-Session-Id", "Mcp-Protocol-Version"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", s.handleHealth)
	r.Mount("/", http.HandlerFunc(s.handleMCP))

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.State().Alive() {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	if !s.State().AcceptingTraffic() {
		http.Error(w, "server is starting", http.StatusServiceUnavailable)
		return
	}
	s.streamable.ServeHTTP(w, r)
}

// activeProject returns the project activated in this server, if any.
func (s *Server) activeProject() *project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Server) setActiveProject(p *project.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = p
}
