package monitor

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestServer(t *testing.T, opts ...ServerOption) (*Server, *EventCollector, *httptest.Server) {
	t.Helper()
	collector := NewEventCollector()
	s := NewServer("", collector, NewDashboard("run-1"), opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.closeClients()
		ts.Close()
	})
	return s, collector, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	tr := &http.Transport{}
	defer tr.CloseIdleConnections()

	resp, err := (&http.Client{Transport: tr}).Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Health(t *testing.T) {
	_, _, ts := newTestServer(t)

	code, body := get(t, ts.URL+"/health")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)
}

func TestServer_Dashboard(t *testing.T) {
	_, collector, ts := newTestServer(t)
	collector.EmitPlanStarted("orders", 3)

	code, body := get(t, ts.URL+"/dashboard")

	require.Equal(t, http.StatusOK, code)
	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(body), &snap))
	assert.Equal(t, "run-1", snap.RunID)
	assert.Equal(t, "running", snap.Plans["orders"].Status)
}

func TestServer_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pavlov_runs_total 1\n"))
	})
	_, _, ts := newTestServer(t, WithMetricsHandler(metrics))

	code, body := get(t, ts.URL+"/metrics")

	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "pavlov_runs_total")
}

func TestServer_MetricsNotConfigured(t *testing.T) {
	_, _, ts := newTestServer(t)

	code, _ := get(t, ts.URL+"/metrics")

	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_WebSocketFeed(t *testing.T) {
	s, collector, ts := newTestServer(t)
	conn := dial(t, ts)

	first := readMessage(t, conn)
	assert.Equal(t, "dashboard", first.Type)
	require.NotNil(t, first.Dashboard)
	assert.Equal(t, "run-1", first.Dashboard.RunID)

	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	collector.Emit(CheckEvent{Type: EventCheckFailed, Check: "isString", Message: "asserting 1 is string"})

	msg := readMessage(t, conn)
	assert.Equal(t, "event", msg.Type)
	require.NotNil(t, msg.Event)
	assert.Equal(t, EventCheckFailed, msg.Event.Type)
	assert.Equal(t, "asserting 1 is string", msg.Event.Message)
	assert.Equal(t, 1, s.dashboard.Snapshot().Checks["isString"].Failed)
}

func TestServer_ClientDisconnect(t *testing.T) {
	s, _, ts := newTestServer(t)
	conn := dial(t, ts)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return s.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_UpgradeRequired(t *testing.T) {
	_, _, ts := newTestServer(t)

	code, _ := get(t, ts.URL+"/ws")

	assert.Equal(t, http.StatusBadRequest, code)
}

func TestServer_HandlerSubscribesOnce(t *testing.T) {
	collector := NewEventCollector()
	s := NewServer("", collector, NewDashboard("run"))
	s.Handler()
	s.Handler()

	collector.Emit(CheckEvent{Type: EventCheckPassed, Check: "pass", Passed: true})

	assert.Equal(t, 1, s.dashboard.Snapshot().Checks["pass"].Passed)
}

func TestServer_ServeAndCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer("127.0.0.1:0", NewEventCollector(), NewDashboard("run"))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		return s.Addr() == ln.Addr().String()
	}, 2*time.Second, 10*time.Millisecond)

	url := "ws://" + s.Addr() + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	_ = conn.Close()
	assert.Zero(t, s.ClientCount())
}

func TestServer_StopBeforeStart(t *testing.T) {
	s := NewServer(":0", NewEventCollector(), NewDashboard("run"))

	assert.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, ":0", s.Addr())
}

func TestServer_Start_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := NewServer(ln.Addr().String(), NewEventCollector(), NewDashboard("run"))
	err = s.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitor server")
}

func TestServer_StopEndsServe(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer("", NewEventCollector(), NewDashboard("run"))
	done := make(chan error, 1)
	go func() { done <- s.Serve(context.Background(), ln) }()
	require.Eventually(t, func() bool { return s.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
