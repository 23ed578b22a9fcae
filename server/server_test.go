package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/foreman/metrics"
	"github.com/teranos/foreman/persist"
	"github.com/teranos/foreman/workflow"
	"github.com/teranos/foreman/world"
	"github.com/teranos/foreman/world/sim"
)

type fixture struct {
	world *sim.World
	wf    *workflow.Workflow
	srv   *Server
	http  *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	f := &fixture{world: sim.New("server-test", nil, log)}

	f.world.AddBuilding(1, "Wood Furnace")
	job := sim.NewJob(world.JobMakeCharcoal, 1)
	job.Items = []world.JobItem{sim.NewJobItem(world.ItemWood, world.NoMaterial)}
	job.Flags.Suspend = true
	f.world.AddJob(job)

	rec := metrics.NewRecorder()
	f.wf = workflow.New(f.world, persist.NewMemoryStore(), workflow.Options{
		Logger:   log,
		Recorder: rec,
		Notifier: workflow.NotifierFunc(func(e workflow.Event) { f.srv.Notify(e) }),
	})
	f.srv = New(f.wf, f.world, rec.Handler(), log)
	f.http = httptest.NewServer(f.srv.Handler())

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		f.srv.Shutdown(ctx)
		f.http.Close()
	})
	return f
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return f.srv.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestEventsAreBroadcast(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	release := f.world.Suspend()
	require.NoError(t, f.wf.Load(context.Background()))
	_, err := f.wf.SetConstraint(context.Background(), "BAR//COAL", true, 20, -1)
	release()
	require.NoError(t, err)

	seen := map[string]EventMessage{}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for len(seen) < 2 {
		var msg EventMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "event", msg.Type)
		switch msg.Kind {
		case workflow.EventJobResumed.String(), workflow.EventProductionStarted.String():
			seen[msg.Kind] = msg
		}
	}
	assert.Equal(t, "BAR//COAL", seen[workflow.EventProductionStarted.String()].Constraint)
	assert.NotZero(t, seen[workflow.EventJobResumed.String()].JobID)
}

func TestNotifyWithoutClients(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 0, f.srv.broadcast(EventMessage{Type: "event", Text: "nobody listening"}))
}

func TestClientDisconnectUnregisters(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()
	assert.Eventually(t, func() bool { return f.srv.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	release := f.world.Suspend()
	require.NoError(t, f.wf.Load(context.Background()))
	_, err := f.wf.SetConstraint(context.Background(), "BAR//COAL", true, 20, -1)
	f.world.AdvanceFrames(42)
	release()
	require.NoError(t, err)

	resp, err := http.Get(f.http.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var doc StatusDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, 42, doc.Frame)
	assert.True(t, doc.Status.Enabled)
	require.Len(t, doc.Constraints, 1)
	assert.Equal(t, "BAR//COAL", doc.Constraints[0].Spec)
	assert.Equal(t, workflow.RequestResume, doc.Constraints[0].Request)
	require.Len(t, doc.Jobs.Jobs, 1)
	assert.Equal(t, workflow.StatusRunning, doc.Jobs.Jobs[0].Status)
}

func TestStatusRejectsPost(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Post(f.http.URL+"/status", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStatusWithoutWorkflow(t *testing.T) {
	srv := New(nil, nil, nil, zaptest.NewLogger(t).Sugar())
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code, "metrics disabled")
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	release := f.world.Suspend()
	require.NoError(t, f.wf.Load(context.Background()))
	require.NoError(t, f.wf.Enable(context.Background()))
	release()

	resp, err := http.Get(f.http.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "foreman_tracked_jobs 1")
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name   string
		host   string
		origin string
		want   bool
	}{
		{"no origin", "localhost:8080", "", true},
		{"same host", "localhost:8080", "http://localhost:8080", true},
		{"same host other port", "localhost:8080", "http://localhost:3000", true},
		{"other host", "localhost:8080", "http://evil.example", false},
		{"garbage", "localhost:8080", "://", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/events", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, checkOrigin(r))
		})
	}
}

func serveAsync(srv *Server) <-chan error {
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe("127.0.0.1:0") }()
	return done
}

func TestShutdownRightAfterListen(t *testing.T) {
	srv := New(nil, nil, nil, zaptest.NewLogger(t).Sugar())
	done := serveAsync(srv)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ListenAndServe still running after Shutdown returned")
	}

	if addr := srv.Addr(); addr != nil {
		_, err := http.Get("http://" + addr.String() + "/status")
		assert.Error(t, err, "listener must be closed")
	}
}

func TestListenAndServe(t *testing.T) {
	f := newFixture(t)
	srv := New(f.wf, f.world, nil, zaptest.NewLogger(t).Sugar())
	done := serveAsync(srv)
	require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr().String() + "/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-done)
}
