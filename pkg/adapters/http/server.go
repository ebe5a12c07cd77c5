package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/internal/presentation/graph"
	"github.com/aretw0/guidepost/pkg/coordinator"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/guidepost/pkg/session"
	"github.com/aretw0/guidepost/pkg/trigger"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server implements ServerInterface on top of a step registry and a session manager.
type Server struct {
	Registry ports.StepRegistry
	Sessions *session.Manager
	Streams  *StreamManager
	Watcher  ports.Watchable
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
	Version  string
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithWatcher enables the global hot-reload stream on /events.
func WithWatcher(w ports.Watchable) Option {
	return func(s *Server) {
		s.Watcher = w
	}
}

// WithGatherer exposes the gatherer on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewServer builds a Server. Streams are created here so callers can publish out of band.
func NewServer(reg ports.StepRegistry, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Registry: reg,
		Sessions: sessions,
		Logger:   logging.NewNop(),
		Version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.Logger)
	return s
}

// NewHandler creates a new HTTP handler for the tour service.
func NewHandler(reg ports.StepRegistry, sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(reg, sessions, opts...).Handler()
}

// Handler returns the routed handler for s.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	handler := HandlerWithOptions(s, ChiServerOptions{
		BaseRouter:         r,
		SessionMiddlewares: []func(http.Handler) http.Handler{s.Provide},
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		},
	})
	return enableCORS(handler)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Guidepost API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "guidepost-http",
		"version":     strings.TrimSpace(s.Version),
		"api_version": apiVersion,
	})
}

// ListTours handles the GET /tours request.
func (s *Server) ListTours(w http.ResponseWriter, r *http.Request, params ListToursParams) {
	var tours []domain.Tour
	if params.Role != nil {
		tours = s.Registry.ToursForRole(domain.ParseRole(*params.Role))
	} else {
		tours = s.Registry.List()
	}

	resp := make([]TourSummary, 0, len(tours))
	for _, t := range tours {
		resp = append(resp, TourSummary{ID: t.ID, Title: t.Title, Roles: t.Roles, Steps: len(t.Steps)})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetTour handles the GET /tours/{tourId} request.
func (s *Server) GetTour(w http.ResponseWriter, r *http.Request, tourId string) {
	tour, err := s.Registry.Tour(tourId)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tour)
}

// GetTourGraph handles the GET /tours/{tourId}/graph request.
func (s *Server) GetTourGraph(w http.ResponseWriter, r *http.Request, tourId string, params GetTourGraphParams) {
	tour, err := s.Registry.Tour(tourId)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	var overlay *graph.Overlay
	if params.SessionId != nil {
		current, err := s.Sessions.LoadOrNew(r.Context(), *params.SessionId)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		overlay = graph.OverlayFor(tour, current)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(tour, overlay)))
}

// GetSession handles the GET /sessions/{sessionId} request. Unknown sessions are inactive.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, sessionId string) {
	if !sessionIDPattern.MatchString(sessionId) {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	current, err := s.Sessions.LoadOrNew(r.Context(), sessionId)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stateOf(current, false))
}

// DeleteSession handles the DELETE /sessions/{sessionId} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request, sessionId string) {
	if !sessionIDPattern.MatchString(sessionId) {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}
	if err := s.Sessions.Delete(r.Context(), sessionId); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartSession handles the POST /sessions/{sessionId}/start request.
// A tour id goes through the same trigger path the page affordances use.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request, sessionId string) {
	var body StartRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("StartSession: Invalid request body", "error", err)
		return
	}
	if (body.TourID == nil) == (body.Steps == nil) {
		http.Error(w, "exactly one of tour_id or steps is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	c := coordinator.MustFromContext(ctx)

	if body.Steps != nil {
		steps, err := normalizeSteps(*body.Steps)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c.Start(ctx, steps, deref(body.Tag))
		s.writeJSON(w, http.StatusOK, stateOf(c.Session(), false))
		return
	}

	var err error
	if body.Role != nil {
		err = trigger.NewFloatingMenu(s.Registry, domain.ParseRole(*body.Role)).Activate(ctx, *body.TourID)
	} else {
		var opts []trigger.Option
		if body.Tag != nil {
			opts = append(opts, trigger.WithTag(*body.Tag))
		}
		err = trigger.NewLabeledButton(s.Registry, *body.TourID, opts...).Activate(ctx)
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stateOf(c.Session(), false))
}

// StopSession handles the POST /sessions/{sessionId}/stop request.
func (s *Server) StopSession(w http.ResponseWriter, r *http.Request, sessionId string) {
	c := coordinator.MustFromContext(r.Context())
	c.Stop(r.Context())
	s.writeJSON(w, http.StatusOK, stateOf(c.Session(), false))
}

// GotoStep handles the POST /sessions/{sessionId}/goto request.
func (s *Server) GotoStep(w http.ResponseWriter, r *http.Request, sessionId string) {
	var body GotoRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Index == nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	c := coordinator.MustFromContext(r.Context())
	c.GoTo(r.Context(), *body.Index)
	s.writeJSON(w, http.StatusOK, stateOf(c.Session(), false))
}

// NextStep handles the POST /sessions/{sessionId}/next request.
func (s *Server) NextStep(w http.ResponseWriter, r *http.Request, sessionId string) {
	c := coordinator.MustFromContext(r.Context())
	completed := c.Next(r.Context())
	s.writeJSON(w, http.StatusOK, stateOf(c.Session(), completed))
}

// PrevStep handles the POST /sessions/{sessionId}/prev request.
func (s *Server) PrevStep(w http.ResponseWriter, r *http.Request, sessionId string) {
	c := coordinator.MustFromContext(r.Context())
	c.Prev(r.Context())
	s.writeJSON(w, http.StatusOK, stateOf(c.Session(), false))
}

// RenderTrigger handles the GET /triggers/{variant} request.
func (s *Server) RenderTrigger(w http.ResponseWriter, r *http.Request, variant string, params RenderTriggerParams) {
	role := domain.ParseRole(deref(params.Role))
	tourID := deref(params.Tour)

	v := trigger.Variant(variant)
	if v != trigger.VariantFloating {
		if tourID == "" {
			http.Error(w, "tour is required for bound triggers", http.StatusBadRequest)
			return
		}
		if _, err := s.Registry.Tour(tourID); err != nil {
			s.writeDomainError(w, err)
			return
		}
	}

	renderer, err := trigger.New(v, s.Registry, role, tourID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf); err != nil {
		s.Logger.Error("RenderTrigger failed", "variant", variant, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	if buf.Len() == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	// Global hot reload
	if params.SessionId == nil {
		if s.Watcher == nil {
			http.Error(w, "session_id is required", http.StatusBadRequest)
			return
		}
		events, err := s.Watcher.Watch(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusInternalServerError)
			return
		}
		s.Logger.Info("SSE: Subscribing to tour reloads")
		startStream(w, flusher)

		for {
			select {
			case <-r.Context().Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: reload\ndata: %s\n\n", event)
				flusher.Flush()
			}
		}
	}

	sessionID := *params.SessionId
	s.Logger.Info("SSE: Subscribing to session updates", "session_id", sessionID)

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	startStream(w, flusher)

	var watchList []string
	if params.Watch != nil {
		watchList = strings.Split(*params.Watch, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE: Client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !watched(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func startStream(w http.ResponseWriter, flusher http.Flusher) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
}

// watched reports whether the diff in msg touches any field of watchList.
func watched(msg string, watchList []string) bool {
	var diff domain.SessionDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watchList {
		switch strings.TrimSpace(field) {
		case "active":
			if diff.Active != nil {
				return true
			}
		case "index":
			if diff.CurrentIndex != nil {
				return true
			}
		case "tag":
			if diff.Tag != nil {
				return true
			}
		case "steps":
			if diff.Steps != nil {
				return true
			}
		}
	}
	return false
}

// publish broadcasts the change between two snapshots to the session's subscribers.
func (s *Server) publish(sessionID string, before, after *domain.TourSession) {
	diff := domain.Diff(before, after)
	if diff == nil {
		s.Logger.Debug("No diff calculated", "session_id", sessionID)
		return
	}
	payload, err := json.Marshal(diff)
	if err != nil {
		s.Logger.Error("Diff encode failed", "session_id", sessionID, "error", err)
		return
	}
	s.Streams.Broadcast(sessionID, string(payload))
}

// -- Helpers --

func stateOf(current *domain.TourSession, completed bool) SessionState {
	state := SessionState{TourSession: current, Completed: completed}
	if current.Active {
		if step, ok := current.CurrentStep(); ok {
			state.CurrentStep = &step
		}
	}
	return state
}

func normalizeSteps(steps []domain.StepDescriptor) ([]domain.StepDescriptor, error) {
	out := domain.CloneSteps(steps)
	for i := range out {
		if strings.TrimSpace(out[i].Target) == "" {
			return nil, fmt.Errorf("step %d: empty target", i)
		}
		p, err := domain.ParsePlacement(string(out[i].Placement))
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		out[i].Placement = p
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "error", err)
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTourNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, trigger.ErrUnknownVariant):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, trigger.ErrTourNotOffered):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		s.Logger.Error("Request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

