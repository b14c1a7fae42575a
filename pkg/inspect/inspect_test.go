package inspect_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/reconcile/pkg/inspect"
	"github.com/vango-dev/reconcile/pkg/metrics"
	"github.com/vango-dev/reconcile/pkg/render"
	. "github.com/vango-dev/reconcile/pkg/vdom"
	"github.com/vango-dev/reconcile/pkg/vtest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newInspector(t *testing.T) (*vtest.Harness, *inspect.Hub, *httptest.Server) {
	t.Helper()
	registry := prometheus.NewRegistry()
	hub := inspect.NewHub(10, quietLogger())
	h := vtest.New(t,
		render.WithCommitHook(hub.Publish),
		render.WithMetrics(metrics.New(metrics.WithRegistry(registry))))
	srv := inspect.NewServer(h.C, hub,
		inspect.WithGatherer(registry),
		inspect.WithLogger(quietLogger()))
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return h, hub, ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func TestHealthz(t *testing.T) {
	_, _, ts := newInspector(t)
	status, body := get(t, ts.URL+"/healthz")
	if status != http.StatusOK || body != "OK" {
		t.Errorf("GET /healthz = %d %q, want 200 OK", status, body)
	}
}

func TestSnapshot(t *testing.T) {
	h, _, ts := newInspector(t)
	h.Render(Ul(Li(Key("a"), "milk")))

	status, body := get(t, ts.URL+"/snapshot")
	if status != http.StatusOK {
		t.Fatalf("GET /snapshot status = %d", status)
	}
	want := `<body><ul><li q:key="a">milk</li></ul></body>`
	if body != want {
		t.Errorf("GET /snapshot = %s, want %s", body, want)
	}
}

func TestSnapshotAfterClose(t *testing.T) {
	h, _, ts := newInspector(t)
	if err := h.C.Close(t.Context()); err != nil {
		t.Fatal(err)
	}
	status, _ := get(t, ts.URL+"/snapshot")
	if status != http.StatusServiceUnavailable {
		t.Errorf("GET /snapshot after Close = %d, want %d", status, http.StatusServiceUnavailable)
	}
}

func TestPassesHistory(t *testing.T) {
	h, hub, ts := newInspector(t)

	_, body := get(t, ts.URL+"/passes")
	if strings.TrimSpace(body) != "[]" {
		t.Errorf("GET /passes before any render = %s, want []", body)
	}

	h.Render(Ul(Li(Key("a"), "a")))
	h.Render(Ul(Li(Key("a"), "a"), Li(Key("b"), "b")))

	_, body = get(t, ts.URL+"/passes")
	var passes []inspect.Summary
	if err := json.Unmarshal([]byte(body), &passes); err != nil {
		t.Fatalf("decode /passes: %v", err)
	}
	if len(passes) != 2 {
		t.Fatalf("len(passes) = %d, want 2", len(passes))
	}
	if passes[0].Kind != "render" {
		t.Errorf("Kind = %q, want render", passes[0].Kind)
	}
	// li and its text
	if passes[1].Created != 2 {
		t.Errorf("Created = %d, want 2", passes[1].Created)
	}
	if len(hub.History()) != 2 {
		t.Errorf("History() = %d entries, want 2", len(hub.History()))
	}
}

func TestHistoryLimit(t *testing.T) {
	hub := inspect.NewHub(2, quietLogger())
	h := vtest.New(t, render.WithCommitHook(hub.Publish))
	for _, text := range []string{"a", "b", "c"} {
		h.Render(P(text))
	}
	history := hub.History()
	if len(history) != 2 {
		t.Fatalf("History() = %d entries, want 2", len(history))
	}
	if len(history[1].Ops) != 1 || history[1].Ops[0] != "SetText #text" {
		t.Errorf("last Ops = %v, want [SetText #text]", history[1].Ops)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, _, ts := newInspector(t)
	h.Render(P("x"))

	status, body := get(t, ts.URL+"/metrics")
	if status != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", status)
	}
	if !strings.Contains(body, `reconcile_passes_total{kind="render"} 1`) {
		t.Errorf("GET /metrics is missing the pass counter:\n%s", body)
	}
}

func TestWebSocketStream(t *testing.T) {
	h, hub, ts := newInspector(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	rc := h.Render(Div(ID("app")))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got inspect.Summary
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.ID != rc.ID() {
		t.Errorf("streamed ID = %q, want %q", got.ID, rc.ID())
	}
	if got.Operations != rc.Perf().Operations {
		t.Errorf("streamed Operations = %d, want %d", got.Operations, rc.Perf().Operations)
	}
}
