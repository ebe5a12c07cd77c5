package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/guidepost/pkg/adapters/memory"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/observability"
	"github.com/aretw0/guidepost/pkg/registry"
	"github.com/aretw0/guidepost/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*memory.Store
}

func (f failingStore) Save(ctx context.Context, id string, s *domain.TourSession) error {
	return errors.New("disk full")
}

type stubWatcher struct {
	events []string
}

func (w stubWatcher) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, len(w.events))
	for _, e := range w.events {
		ch <- e
	}
	close(ch)
	return ch, nil
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewServer(registry.Builtin(), session.NewManager(store), opts...), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) SessionState {
	t.Helper()
	var state SessionState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func TestHealthAndInfo(t *testing.T) {
	srv, _ := newTestServer(t, WithVersion("1.2.3\n"))
	h := srv.Handler()

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])
}

func TestSpecIsValid(t *testing.T) {
	require.NoError(t, ValidateSpec())

	srv, _ := newTestServer(t)
	w := do(t, srv.Handler(), http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "operationId: startSession")
}

func TestListTours_FilterByRole(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	var all []TourSummary
	w := do(t, h, http.MethodGet, "/tours", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, len(registry.BuiltinTours()))

	var anon []TourSummary
	w = do(t, h, http.MethodGet, "/tours?role=anonymous", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &anon))
	assert.Empty(t, anon)

	var dealer []TourSummary
	w = do(t, h, http.MethodGet, "/tours?role=dealer", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dealer))
	require.NotEmpty(t, dealer)
	for _, s := range dealer {
		assert.Contains(t, s.Roles, domain.RoleDealer)
	}
}

func TestGetTour(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := do(t, h, http.MethodGet, "/tours/admin-dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	var tour domain.Tour
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tour))
	assert.Len(t, tour.Steps, 4)

	w = do(t, h, http.MethodGet, "/tours/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTourGraph_WithOverlay(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/sessions/s1/start", `{"tour_id":"admin-dashboard"}`).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/sessions/s1/next", "").Code)

	w := do(t, h, http.MethodGet, "/tours/admin-dashboard/graph?session_id=s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "graph LR"))
	assert.Contains(t, body, "classDef current")
}

func TestSessionLifecycle(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Handler()

	w := do(t, h, http.MethodGet, "/sessions/s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeState(t, w).Active)

	w = do(t, h, http.MethodPost, "/sessions/s1/start", `{"tour_id":"admin-dashboard"}`)
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.True(t, state.Active)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Equal(t, "admin-dashboard", state.Tag)
	require.NotNil(t, state.CurrentStep)
	assert.Equal(t, `[data-tour="sidebar"]`, state.CurrentStep.Target)

	w = do(t, h, http.MethodPost, "/sessions/s1/goto", `{"index":99}`)
	assert.Equal(t, 3, decodeState(t, w).CurrentIndex)

	w = do(t, h, http.MethodPost, "/sessions/s1/prev", "")
	assert.Equal(t, 2, decodeState(t, w).CurrentIndex)

	w = do(t, h, http.MethodPost, "/sessions/s1/goto", `{"index":-5}`)
	assert.Equal(t, 0, decodeState(t, w).CurrentIndex)

	w = do(t, h, http.MethodPost, "/sessions/s1/stop", "")
	state = decodeState(t, w)
	assert.False(t, state.Active)
	assert.Len(t, state.Steps, 4)
	assert.Nil(t, state.CurrentStep)

	// Second stop is harmless.
	w = do(t, h, http.MethodPost, "/sessions/s1/stop", "")
	assert.Equal(t, http.StatusOK, w.Code)

	saved, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, saved.Active)

	w = do(t, h, http.MethodDelete, "/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, err = store.Load(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestNext_CompletesTour(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	do(t, h, http.MethodPost, "/sessions/s1/start", `{"tour_id":"admin-dashboard"}`)
	do(t, h, http.MethodPost, "/sessions/s1/goto", `{"index":3}`)

	w := do(t, h, http.MethodPost, "/sessions/s1/next", "")
	state := decodeState(t, w)
	assert.True(t, state.Completed)
	assert.False(t, state.Active)
}

func TestUnknownSession_ReadsInactiveAndIsNotStored(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Handler()

	w := do(t, h, http.MethodGet, "/sessions/ghost", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeState(t, w).Active)

	for _, path := range []string{"/sessions/ghost/stop", "/sessions/ghost/next", "/sessions/ghost/prev"} {
		w = do(t, h, http.MethodPost, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
	}
	w = do(t, h, http.MethodPost, "/sessions/ghost/goto", `{"index":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestGoto_InactiveIsNoop(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv.Handler(), http.MethodPost, "/sessions/s1/goto", `{"index":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.False(t, state.Active)
	assert.Equal(t, 0, state.CurrentIndex)
}

func TestStart_ExplicitSteps(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := do(t, h, http.MethodPost, "/sessions/s1/start",
		`{"tag":"custom","steps":[{"target":"#a","content":{"title":"A","body":"a"}},{"target":"#b","placement":"top"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, "custom", state.Tag)
	require.Len(t, state.Steps, 2)
	assert.Equal(t, domain.PlacementBottom, state.Steps[0].Placement)

	w = do(t, h, http.MethodPost, "/sessions/s2/start", `{"steps":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	state = decodeState(t, w)
	assert.True(t, state.Active)
	assert.Empty(t, state.Steps)
	assert.Nil(t, state.CurrentStep)
}

func TestStart_Errors(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		name string
		body string
		code int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"neither", `{}`, http.StatusBadRequest},
		{"both", `{"tour_id":"admin-users","steps":[]}`, http.StatusBadRequest},
		{"bad placement", `{"steps":[{"target":"#a","placement":"diagonal"}]}`, http.StatusBadRequest},
		{"unknown tour", `{"tour_id":"nope"}`, http.StatusNotFound},
		{"not offered", `{"tour_id":"admin-users","role":"dealer"}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/sessions/s1/start", tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}

	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids, "rejected requests must not persist")
}

func TestStart_ReplacesRunningTour(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	do(t, h, http.MethodPost, "/sessions/s1/start", `{"tour_id":"admin-dashboard"}`)
	do(t, h, http.MethodPost, "/sessions/s1/next", "")

	w := do(t, h, http.MethodPost, "/sessions/s1/start", `{"tour_id":"dealer-profile","role":"dealer"}`)
	state := decodeState(t, w)
	assert.Equal(t, "dealer-profile", state.Tag)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.True(t, state.Active)
}

func TestInvalidSessionID(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/sessions/a.b/next", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/sessions/a.b", "").Code)
}

func TestSaveFailure_Returns500(t *testing.T) {
	store := failingStore{memory.NewStore()}
	srv := NewServer(registry.Builtin(), session.NewManager(store))

	w := do(t, srv.Handler(), http.MethodPost, "/sessions/s1/start", `{"tour_id":"admin-dashboard"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "admin-dashboard")
}

func TestRenderTrigger(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := do(t, h, http.MethodGet, "/triggers/button?tour=admin-dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `data-guidepost-tour="admin-dashboard"`)

	w = do(t, h, http.MethodGet, "/triggers/floating?role=dealer", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dealer-profile")

	w = do(t, h, http.MethodGet, "/triggers/floating", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/triggers/icon", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/triggers/icon?tour=nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/triggers/banner?tour=admin-users", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	store := memory.NewStore()
	srv := NewServer(registry.Builtin(), session.NewManager(store, session.WithLifecycleHooks(metrics.Hooks())), WithGatherer(reg))
	h := srv.Handler()

	do(t, h, http.MethodPost, "/sessions/s1/start", `{"tour_id":"admin-dashboard"}`)

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `guidepost_tours_started_total{tag="admin-dashboard"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Handler(), http.MethodOptions, "/sessions/s1/next", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents_Global(t *testing.T) {
	srv, _ := newTestServer(t, WithWatcher(stubWatcher{events: []string{"tours/admin-users"}}))

	w := do(t, srv.Handler(), http.MethodGet, "/events", "")
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "event: ping\ndata: connected\n\n")
	assert.Contains(t, body, "event: reload\ndata: tours/admin-users\n\n")
}

func TestSubscribeEvents_RequiresSessionWithoutWatcher(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv.Handler(), http.MethodGet, "/events", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscribeEvents_SessionDiffs(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events?session_id=s1&watch=index,steps", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	require.Eventually(t, func() bool { return srv.Streams.Subscribers("s1") == 1 }, time.Second, 10*time.Millisecond)

	post := func(path, body string) {
		r, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		r.Body.Close()
	}
	post("/sessions/s1/start", `{"tour_id":"admin-dashboard"}`)
	post("/sessions/s1/next", "")

	var got []domain.SessionDiff
	for len(got) < 2 && lines.Scan() {
		line := lines.Text()
		if !strings.HasPrefix(line, "data: {") {
			continue
		}
		var diff domain.SessionDiff
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &diff))
		got = append(got, diff)
	}
	require.Len(t, got, 2)

	// The first diff carries the whole start, the second only the index.
	require.NotNil(t, got[0].Active)
	assert.True(t, *got[0].Active)
	require.NotNil(t, got[0].Steps)
	assert.Len(t, *got[0].Steps, 4)
	require.NotNil(t, got[1].CurrentIndex)
	assert.Equal(t, 1, *got[1].CurrentIndex)
	assert.Nil(t, got[1].Steps)
	assert.Nil(t, got[1].Active)
}

func TestSubscribeEvents_EmptyStepsReplacement(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	post := func(path, body string) {
		r, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		r.Body.Close()
	}
	post("/sessions/s1/start", `{"steps":[{"target":"#a","placement":"top"}],"tag":"custom"}`)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events?session_id=s1&watch=steps", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	require.Eventually(t, func() bool { return srv.Streams.Subscribers("s1") == 1 }, time.Second, 10*time.Millisecond)

	post("/sessions/s1/start", `{"steps":[],"tag":"custom"}`)

	var diff domain.SessionDiff
	for lines.Scan() {
		line := lines.Text()
		if !strings.HasPrefix(line, "data: {") {
			continue
		}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &diff))
		break
	}
	require.NotNil(t, diff.Steps, "an empty replacement must reach steps watchers")
	assert.Empty(t, *diff.Steps)
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("s1")

	for i := 0; i < 20; i++ {
		sm.Broadcast("s1", "x")
	}
	assert.Len(t, ch, 10)

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("s1"))
}
