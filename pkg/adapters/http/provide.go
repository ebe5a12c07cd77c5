package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/aretw0/guidepost/pkg/coordinator"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/go-chi/chi/v5"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// errRejected aborts the session update when the handler answered with an error status.
var errRejected = errors.New("request rejected")

// Provide makes the session's coordinator available to the wrapped handler.
// The handler's response is held back until the session has been saved, so a
// client never sees a state that failed to persist. Error responses discard
// every change the handler made.
func (s *Server) Provide(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionId")
		if !sessionIDPattern.MatchString(sessionID) {
			http.Error(w, "invalid session id", http.StatusBadRequest)
			return
		}

		buf := newBufferedResponse()
		var before *domain.TourSession
		after, err := s.Sessions.Update(r.Context(), sessionID, func(ctx context.Context, c *coordinator.Coordinator) error {
			before = c.Session()
			next.ServeHTTP(buf, r.WithContext(coordinator.NewContext(ctx, c)))
			if buf.status >= http.StatusBadRequest {
				return errRejected
			}
			return nil
		})
		switch {
		case errors.Is(err, errRejected):
		case err != nil:
			s.Logger.Error("Session update failed", "session_id", sessionID, "error", err)
			http.Error(w, "session update failed", http.StatusInternalServerError)
			return
		default:
			s.publish(sessionID, before, after)
		}
		buf.flushTo(w)
	})
}

// bufferedResponse collects a handler's response in memory.
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header)}
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	for k, v := range b.header {
		w.Header()[k] = v
	}
	if b.status == 0 {
		b.status = http.StatusOK
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}
