package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/pkg/coordinator"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/guidepost/pkg/session"
	"github.com/aretw0/guidepost/pkg/trigger"
	"github.com/aretw0/lifecycle"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	toursURI        = "guidepost://tours"
	tourTemplateURI = "guidepost://tours/{id}"
)

// TourSummary is a tour without its steps.
type TourSummary struct {
	ID    string        `json:"id" jsonschema_description:"Tour identifier"`
	Title string        `json:"title,omitempty"`
	Roles []domain.Role `json:"roles,omitempty"`
	Steps int           `json:"steps" jsonschema_description:"Number of steps"`
}

// TourList wraps the list so the structured output is an object.
type TourList struct {
	Tours []TourSummary `json:"tours"`
}

// SessionResult is returned by every session tool.
type SessionResult struct {
	Session   *domain.TourSession `json:"session" jsonschema_description:"Session snapshot after the call"`
	Completed bool                `json:"completed,omitempty" jsonschema_description:"Set when next_step ended the tour"`
}

type listArgs struct {
	Role string `json:"role"`
}

type tourArgs struct {
	TourID string `json:"tour_id"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type startArgs struct {
	SessionID string `json:"session_id"`
	TourID    string `json:"tour_id"`
	Tag       string `json:"tag"`
}

type gotoArgs struct {
	SessionID string `json:"session_id"`
	Index     int    `json:"index"`
}

// Server exposes the tour registry and session operations as an MCP Server.
type Server struct {
	registry  ports.StepRegistry
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(reg ports.StepRegistry, sessions *session.Manager, version string, opts ...Option) *Server {
	s := &Server{
		registry:  reg,
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("guidepost-mcp", strings.TrimSpace(version), server.WithResourceCapabilities(false, false)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, mostly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
		return nil
	})

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_tours",
		mcp.WithDescription("List guided tours. With a role, only the tours offered to that role."),
		mcp.WithString("role", mcp.Description("administrator, dealer or anonymous (optional)")),
		mcp.WithOutputSchema[TourList](),
	), mcp.NewStructuredToolHandler(s.handleListTours))

	s.mcpServer.AddTool(mcp.NewTool("get_tour",
		mcp.WithDescription("Get a tour with its ordered steps."),
		mcp.WithString("tour_id", mcp.Required(), mcp.Description("Tour identifier")),
		mcp.WithOutputSchema[domain.Tour](),
	), mcp.NewStructuredToolHandler(s.handleGetTour))

	s.mcpServer.AddTool(mcp.NewTool("start_tour",
		mcp.WithDescription("Start a tour for a session, replacing any tour already running."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("tour_id", mcp.Required(), mcp.Description("Tour identifier")),
		mcp.WithString("tag", mcp.Description("Label for the run; defaults to the tour id")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("stop_tour",
		mcp.WithDescription("Stop the running tour. Stopping an inactive session does nothing."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleStop))

	s.mcpServer.AddTool(mcp.NewTool("goto_step",
		mcp.WithDescription("Jump to a 0-based step index. Out of range values are clamped."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based step index")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleGoto))

	s.mcpServer.AddTool(mcp.NewTool("next_step",
		mcp.WithDescription("Advance one step. On the last step this finishes the tour."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleNext))

	s.mcpServer.AddTool(mcp.NewTool("prev_step",
		mcp.WithDescription("Go back one step."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handlePrev))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Read a session. Unknown sessions are reported inactive."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleGetSession))
}

func (s *Server) handleListTours(ctx context.Context, request mcp.CallToolRequest, args listArgs) (TourList, error) {
	var tours []domain.Tour
	if args.Role != "" {
		tours = s.registry.ToursForRole(domain.ParseRole(args.Role))
	} else {
		tours = s.registry.List()
	}
	return TourList{Tours: summarize(tours)}, nil
}

func (s *Server) handleGetTour(ctx context.Context, request mcp.CallToolRequest, args tourArgs) (domain.Tour, error) {
	return s.registry.Tour(args.TourID)
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args startArgs) (SessionResult, error) {
	var opts []trigger.Option
	if args.Tag != "" {
		opts = append(opts, trigger.WithTag(args.Tag))
	}
	button := trigger.NewLabeledButton(s.registry, args.TourID, opts...)
	return s.update(ctx, args.SessionID, func(ctx context.Context) (bool, error) {
		return false, button.Activate(ctx)
	})
}

func (s *Server) handleStop(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResult, error) {
	return s.update(ctx, args.SessionID, func(ctx context.Context) (bool, error) {
		coordinator.MustFromContext(ctx).Stop(ctx)
		return false, nil
	})
}

func (s *Server) handleGoto(ctx context.Context, request mcp.CallToolRequest, args gotoArgs) (SessionResult, error) {
	return s.update(ctx, args.SessionID, func(ctx context.Context) (bool, error) {
		coordinator.MustFromContext(ctx).GoTo(ctx, args.Index)
		return false, nil
	})
}

func (s *Server) handleNext(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResult, error) {
	return s.update(ctx, args.SessionID, func(ctx context.Context) (bool, error) {
		return coordinator.MustFromContext(ctx).Next(ctx), nil
	})
}

func (s *Server) handlePrev(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResult, error) {
	return s.update(ctx, args.SessionID, func(ctx context.Context) (bool, error) {
		coordinator.MustFromContext(ctx).Prev(ctx)
		return false, nil
	})
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResult, error) {
	if args.SessionID == "" {
		return SessionResult{}, errors.New("session_id is required")
	}
	current, err := s.sessions.LoadOrNew(ctx, args.SessionID)
	if err != nil {
		return SessionResult{}, err
	}
	return SessionResult{Session: current}, nil
}

// update runs op with the session's coordinator provided on ctx and saves the result.
func (s *Server) update(ctx context.Context, sessionID string, op func(ctx context.Context) (bool, error)) (SessionResult, error) {
	if sessionID == "" {
		return SessionResult{}, errors.New("session_id is required")
	}

	var completed bool
	saved, err := s.sessions.Update(ctx, sessionID, func(ctx context.Context, c *coordinator.Coordinator) error {
		var err error
		completed, err = op(coordinator.NewContext(ctx, c))
		return err
	})
	if err != nil {
		s.logger.Warn("MCP session tool failed", "session_id", sessionID, "error", err)
		return SessionResult{}, err
	}
	return SessionResult{Session: saved, Completed: completed}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(toursURI, "Guided tours",
		mcp.WithResourceDescription("Every registered tour with its steps"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(toursURI, s.registry.List())
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(tourTemplateURI, "Guided tour",
		mcp.WithTemplateDescription("A single tour by id"),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, toursURI+"/")
		tour, err := s.registry.Tour(id)
		if err != nil {
			return nil, err
		}
		return jsonResource(request.Params.URI, tour)
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(payload),
		},
	}, nil
}

func summarize(tours []domain.Tour) []TourSummary {
	out := make([]TourSummary, 0, len(tours))
	for _, t := range tours {
		out = append(out, TourSummary{ID: t.ID, Title: t.Title, Roles: t.Roles, Steps: len(t.Steps)})
	}
	return out
}
