package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/guidepost"
	httpAdapter "github.com/aretw0/guidepost/pkg/adapters/http"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/observability"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/lifecycle"
)

// ShutdownTimeout bounds how long in-flight requests get after a stop signal.
const ShutdownTimeout = 5 * time.Second

// NewHTTPServer wires the HTTP adapter to the runtime.
func NewHTTPServer(rt *Runtime, addr string) (*http.Server, error) {
	if err := httpAdapter.ValidateSpec(); err != nil {
		return nil, err
	}

	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(rt.Logger),
		httpAdapter.WithGatherer(rt.Gatherer),
		httpAdapter.WithVersion(guidepost.Version),
	}
	if w, ok := rt.Guide.Loader().(ports.Watchable); ok {
		opts = append(opts, httpAdapter.WithWatcher(w))
	}

	handler := httpAdapter.NewHandler(rt.Guide.Registry(), rt.Guide.Sessions(), opts...)
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Serve runs srv until ctx is cancelled, then shuts it down gracefully.
// Tour documents are reloaded when the loader reports changes.
func Serve(ctx context.Context, rt *Runtime, srv *http.Server) error {
	stop := StartWatchers(ctx, rt)
	defer stop()

	serverErrors := make(chan error, 1)
	lifecycle.Go(ctx, func(context.Context) error {
		rt.Logger.Info("Starting guidepost server", "address", srv.Addr, "store", rt.Config.Store)
		serverErrors <- srv.ListenAndServe()
		return nil
	})

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		rt.Logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			rt.Logger.Warn("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "error", err)
			return srv.Close()
		}
		rt.Logger.Info("Server stopped gracefully")
		return nil
	}
}

// StartWatchers runs WatchTours and WatchActivity in the background.
// The returned stop function cancels both and waits for them to return.
func StartWatchers(ctx context.Context, rt *Runtime) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	tasks := []lifecycle.Task{
		lifecycle.Go(ctx, func(ctx context.Context) error {
			WatchTours(ctx, rt)
			return nil
		}),
		lifecycle.Go(ctx, func(ctx context.Context) error {
			WatchActivity(ctx, rt)
			return nil
		}),
	}
	return func() {
		cancel()
		for _, t := range tasks {
			_ = t.Wait()
		}
	}
}

// WatchActivity logs catalog replacements and saved session transitions
// until ctx is done.
func WatchActivity(ctx context.Context, rt *Runtime) {
	agg := observability.NewAggregator(rt.Guide.Registry(), rt.Guide.Sessions())
	for snap := range agg.Watch(ctx) {
		switch state := snap.Payload.(type) {
		case []domain.Tour:
			rt.Logger.Info("Tour catalog changed", "tours", len(state))
		case *domain.TourSession:
			rt.Logger.Debug("Session changed",
				"session_id", snap.ComponentID,
				"tag", state.Tag,
				"active", state.Active,
				"step", state.CurrentIndex,
			)
		}
	}
}

// WatchTours reloads the registry on every change event until ctx is done.
// Loaders that cannot watch make it return immediately.
func WatchTours(ctx context.Context, rt *Runtime) {
	events, err := rt.Guide.Watch(ctx)
	if err != nil {
		rt.Logger.Debug("Tour hot reload disabled", "reason", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-events:
			if !ok {
				return
			}
			if err := rt.Guide.Reload(ctx); err != nil {
				rt.Logger.Error("Tour reload failed, keeping previous tours", "document", id, "error", err)
				continue
			}
			rt.Logger.Info("Tours reloaded", "document", id)
		}
	}
}
