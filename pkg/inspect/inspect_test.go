package inspect

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/vtree/pkg/host"
	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/telemetry"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *memhost.Host, *httptest.Server) {
	t.Helper()
	h := memhost.New()
	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	s := New(h, opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return s, h, ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestTree(t *testing.T) {
	_, h, ts := newTestServer(t)
	root := h.NewRoot("window")
	label, _ := h.CreateNode(root, "span")
	h.SetProperty(label, "text", "hello")
	h.SetProperty(label, "command", func() {})

	code, body := get(t, ts.URL+"/tree")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	var got treeResponse
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", body, err)
	}
	if len(got.Roots) != 1 || got.Roots[0].Kind != "window" {
		t.Fatalf("roots = %+v", got.Roots)
	}
	span := got.Roots[0].Children[0]
	if span.Props["text"] != "hello" || span.Props["command"] != "<func>" {
		t.Errorf("span props = %v", span.Props)
	}
}

func TestTreeEmpty(t *testing.T) {
	_, _, ts := newTestServer(t)
	_, body := get(t, ts.URL+"/tree")
	if strings.TrimSpace(body) != `{"roots":[]}` {
		t.Errorf("body = %q", body)
	}
}

func TestSubtree(t *testing.T) {
	_, h, ts := newTestServer(t)
	root := h.NewRoot("window")
	div, _ := h.CreateNode(root, "div")

	tests := []struct {
		path string
		code int
	}{
		{"/tree/" + strings.TrimPrefix(div.String(), "#"), http.StatusOK},
		{"/tree/999", http.StatusNotFound},
		{"/tree/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if code, body := get(t, ts.URL+tt.path); code != tt.code {
			t.Errorf("GET %s = %d %q, want %d", tt.path, code, body, tt.code)
		}
	}
}

func TestOutline(t *testing.T) {
	_, h, ts := newTestServer(t)
	root := h.NewRoot("window")
	text, _ := h.CreateNode(root, host.KindText)
	h.SetProperty(text, host.PropText, "a")

	_, body := get(t, ts.URL+"/outline")
	want := "window\n  #text text=\"a\"\n"
	if body != want {
		t.Errorf("outline = %q, want %q", body, want)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
	m.ObservePatch(2, 1, 3, 0, 0)

	_, _, ts := newTestServer(t, WithGatherer(reg))
	code, body := get(t, ts.URL+"/metrics")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !strings.Contains(body, "vtree_patches_total 1") {
		t.Errorf("metrics body missing patches counter:\n%s", body)
	}
}

func TestHealthz(t *testing.T) {
	_, _, ts := newTestServer(t)
	if code, body := get(t, ts.URL+"/healthz"); code != http.StatusOK || body != "ok" {
		t.Errorf("healthz = %d %q", code, body)
	}
}

func dial(t *testing.T, s *Server, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for s.Hub().Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func TestMutationStream(t *testing.T) {
	s, h, ts := newTestServer(t)
	conn := dial(t, s, ts)

	root := h.NewRoot("window")
	btn, _ := h.CreateNode(root, "button")
	h.SetProperty(btn, "command", func() {})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got []memhost.Mutation
	for len(got) < 2 {
		var m memhost.Mutation
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v", err)
		}
		got = append(got, m)
	}
	if got[0].Op != memhost.OpCreate || got[0].Handle != btn || got[0].Kind != "button" {
		t.Errorf("first mutation = %+v", got[0])
	}
	if got[1].Op != memhost.OpSet || got[1].Name != "command" || got[1].Value != "<func>" {
		t.Errorf("second mutation = %+v", got[1])
	}
}

func TestSlowClientDropped(t *testing.T) {
	s, h, ts := newTestServer(t, WithBufferSize(1))
	dial(t, s, ts)

	root := h.NewRoot("window")
	// Publish runs on this goroutine; flood faster than one slot drains.
	for range 1000 {
		id, _ := h.CreateNode(root, "div")
		h.DestroyNode(id)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Hub().Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow client still connected")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCloseDisconnectsClients(t *testing.T) {
	s, h, ts := newTestServer(t)
	conn := dial(t, s, ts)
	s.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("read after Close = %v, want normal closure", err)
	}

	// Unsubscribed: mutations no longer reach the hub.
	root := h.NewRoot("window")
	h.CreateNode(root, "div")
	if n := s.Hub().Clients(); n != 0 {
		t.Errorf("Clients() = %d after Close", n)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := New(memhost.New(), WithLogger(slog.New(slog.DiscardHandler)))
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, l) }()

	if code, _ := get(t, "http://"+l.Addr().String()+"/healthz"); code != http.StatusOK {
		t.Fatalf("healthz status = %d", code)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

// syncBuffer is a log sink shared with the server goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPlainRequestToStreamIsRejected(t *testing.T) {
	logs := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, _, ts := newTestServer(t, WithLogger(logger))

	status, _ := get(t, ts.URL+"/ws")
	if status != http.StatusBadRequest {
		t.Errorf("GET /ws status = %d, want %d", status, http.StatusBadRequest)
	}
	if !strings.Contains(logs.String(), "V081") {
		t.Errorf("upgrade failure not logged with its code:\n%s", logs.String())
	}
}
