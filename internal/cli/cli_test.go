package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/guidepost/internal/config"
	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/pkg/adapters/file"
	"github.com/aretw0/guidepost/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/guidepost/pkg/adapters/redis"
	"github.com/aretw0/guidepost/pkg/registry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, mutate func(*config.Config)) *Runtime {
	t.Helper()
	cfg := config.Default()
	cfg.SessionsDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	rt, err := Setup(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestSetup_SelectsStore(t *testing.T) {
	rt := setup(t, nil)
	assert.IsType(t, &memory.Store{}, rt.Guide.Store())

	rt = setup(t, func(c *config.Config) { c.Store = config.StoreFile })
	assert.IsType(t, &file.Store{}, rt.Guide.Store())

	mr := miniredis.RunT(t)
	rt = setup(t, func(c *config.Config) {
		c.Store = config.StoreRedis
		c.Redis.Addr = mr.Addr()
		c.Redis.Locking = true
	})
	assert.IsType(t, &redisAdapter.Store{}, rt.Guide.Store())

	_, err := rt.Guide.Start(context.Background(), "s1", registry.TourAdminUsers, "")
	require.NoError(t, err)
	assert.True(t, mr.Exists(config.Default().Redis.Prefix+"data:s1"))
}

func TestSetup_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Store = config.StoreRedis
	cfg.Redis.Addr = addr

	_, err := Setup(context.Background(), cfg, logging.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestSetup_CountsTours(t *testing.T) {
	rt := setup(t, nil)

	_, err := rt.Guide.Start(context.Background(), "s1", registry.TourAdminDashboard, "")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(rt.Metrics.Started.WithLabelValues(registry.TourAdminDashboard)))
}

func TestRunWalk_JSON(t *testing.T) {
	rt := setup(t, nil)

	var out strings.Builder
	in := strings.NewReader("next\n{\"command\":\"close\"}\n")
	err := RunWalk(context.Background(), rt, WalkOptions{
		SessionID: "w1",
		TourID:    registry.TourAdminDashboard,
		JSON:      true,
	}, in, &out)
	require.NoError(t, err)

	var types []string
	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	for scanner.Scan() {
		var msg map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &msg))
		types = append(types, msg["type"].(string))
	}
	assert.Equal(t, []string{"step", "step"}, types[:2])

	s, err := rt.Guide.Session(context.Background(), "w1")
	require.NoError(t, err)
	assert.False(t, s.Active)
	assert.Equal(t, 1, s.CurrentIndex)
}

func TestRunWalk_SkipsMissingTargets(t *testing.T) {
	rt := setup(t, nil)

	var out strings.Builder
	err := RunWalk(context.Background(), rt, WalkOptions{
		SessionID: "w1",
		TourID:    registry.TourAdminDashboard,
		Missing:   []string{`[data-tour="stats"]`},
	}, strings.NewReader("n\n"), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Step 1/4")
	assert.Contains(t, out.String(), "Step 3/4")
	assert.NotContains(t, out.String(), "Step 2/4")
	assert.Contains(t, out.String(), "Paused at step 3")
}

func TestRunWalk_ResumesAtPausedStep(t *testing.T) {
	rt := setup(t, nil)
	ctx := context.Background()
	opts := WalkOptions{SessionID: "w1", TourID: registry.TourAdminDashboard}

	var out strings.Builder
	require.NoError(t, RunWalk(ctx, rt, opts, strings.NewReader("n\nn\n"), &out))
	assert.Contains(t, out.String(), "Paused at step 3")

	out.Reset()
	require.NoError(t, RunWalk(ctx, rt, opts, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "Step 3/4")
	assert.NotContains(t, out.String(), "Step 1/4")
	assert.Contains(t, out.String(), "Paused at step 3")
}

func TestRunWalk_Fresh(t *testing.T) {
	rt := setup(t, nil)
	ctx := context.Background()

	_, err := rt.Guide.Start(ctx, "w1", registry.TourAdminUsers, "")
	require.NoError(t, err)

	var out strings.Builder
	err = RunWalk(ctx, rt, WalkOptions{SessionID: "w1", TourID: registry.TourDealerProfile, Fresh: true}, strings.NewReader(""), &out)
	require.NoError(t, err)

	s, err := rt.Guide.Session(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, registry.TourDealerProfile, s.Tag)
}

func TestNewHTTPServer(t *testing.T) {
	rt := setup(t, nil)

	srv, err := NewHTTPServer(rt, ":0")
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/sessions/s1/start", "application/json", strings.NewReader(`{"tour_id":"admin-dashboard"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServe_StopsOnCancel(t *testing.T) {
	rt := setup(t, nil)
	srv, err := NewHTTPServer(rt, "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, rt, srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

// syncBuffer guards a strings.Builder shared with background loggers.
type syncBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestStartWatchers_LogsActivity(t *testing.T) {
	rt := setup(t, nil)
	var logs syncBuffer
	rt.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := context.Background()
	stop := StartWatchers(ctx, rt)

	assert.Eventually(t, func() bool {
		if _, err := rt.Guide.Start(ctx, "w1", registry.TourAdminUsers, ""); err != nil {
			return false
		}
		return strings.Contains(logs.String(), "Session changed")
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, logs.String(), "session_id=w1")

	require.NoError(t, rt.Guide.Reload(ctx))
	assert.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "Tour catalog changed")
	}, 2*time.Second, 20*time.Millisecond)

	stop()
}

func TestNewSignalContext_Cancel(t *testing.T) {
	ctx := NewSignalContext(context.Background())
	assert.NoError(t, ctx.Err())

	ctx.Cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
	assert.Nil(t, ctx.Signal())
}
