package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/kazi-app/ups/internal/domain"
	"github.com/kazi-app/ups/internal/ups"
)

func newTestServer(t *testing.T, cfg ups.Config) (*ups.Provider, *httptest.Server) {
	t.Helper()
	p, err := ups.NewProvider(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = p.Close() })

	s := New(p, Options{
		Logger:      zerolog.Nop(),
		Registry:    prometheus.NewRegistry(),
		CORSOrigins: []string{"https://app.kazi.test"},
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return p, ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	p, ts := newTestServer(t, ups.Config{})

	if resp := do(t, http.MethodGet, ts.URL+"/healthz", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz = %d", resp.StatusCode)
	}

	resp := do(t, http.MethodGet, ts.URL+"/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/health = %d", resp.StatusCode)
	}
	h := decodeBody[map[string]any](t, resp)
	if h["is_healthy"] != true || h["state"] != "ready" {
		t.Errorf("health = %v", h)
	}

	p.Bus().Pause()
	if resp := do(t, http.MethodGet, ts.URL+"/health", ""); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("paused bus /health = %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, ups.Config{})
	do(t, http.MethodGet, ts.URL+"/healthz", "")

	resp := do(t, http.MethodGet, ts.URL+"/metrics", "")
	b, _ := io.ReadAll(resp.Body)
	body := string(b)
	for _, want := range []string{"ups_provider_healthy 1", `ups_provider_state{state="ready"} 1`, "ups_http_requests_total"} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics missing %q", want)
		}
	}
}

func TestFeatures(t *testing.T) {
	p, ts := newTestServer(t, ups.Config{EnabledFeatures: []string{"comments"}})

	resp := do(t, http.MethodPut, ts.URL+"/features/ai", "")
	got := decodeBody[featuresResponse](t, resp)
	if len(got.Enabled) != 2 || !p.IsFeatureEnabled("ai") {
		t.Errorf("enabled = %v", got.Enabled)
	}
	if len(got.Known) == 0 {
		t.Error("known features missing")
	}

	do(t, http.MethodDelete, ts.URL+"/features/comments", "")
	if p.IsFeatureEnabled("comments") {
		t.Error("comments still enabled")
	}
}

func TestComments(t *testing.T) {
	_, ts := newTestServer(t, ups.Config{UserID: "u1"})

	resp := do(t, http.MethodPost, ts.URL+"/comments/", `{"content":"logo too small","priority":"high","tags":["brand"]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create = %d", resp.StatusCode)
	}
	c := decodeBody[domain.Comment](t, resp)
	if c.AuthorID != "u1" || c.Priority != domain.PriorityHigh {
		t.Errorf("comment = %+v", c)
	}
	do(t, http.MethodPost, ts.URL+"/comments/", `{"content":"footer link broken"}`)

	list := decodeBody[[]domain.Comment](t, do(t, http.MethodGet, ts.URL+"/comments/?tag=brand", ""))
	if len(list) != 1 || list[0].ID != c.ID {
		t.Errorf("filtered list = %+v", list)
	}

	patched := decodeBody[domain.Comment](t, do(t, http.MethodPatch, ts.URL+"/comments/"+c.ID, `{"content":"logo way too small"}`))
	if patched.Content != "logo way too small" {
		t.Errorf("patched = %+v", patched)
	}

	resolved := decodeBody[domain.Comment](t, do(t, http.MethodPost, ts.URL+"/comments/"+c.ID+"/resolve", ""))
	if resolved.Status != domain.CommentResolved {
		t.Errorf("resolved = %+v", resolved)
	}

	if resp := do(t, http.MethodDelete, ts.URL+"/comments/"+c.ID, ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/comments/"+c.ID, ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted = %d", resp.StatusCode)
	}
}

func TestComments_Errors(t *testing.T) {
	_, ts := newTestServer(t, ups.Config{})

	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"empty content", http.MethodPost, "/comments/", `{"content":"  "}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/comments/", `{"content":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/comments/", `{"text":"x"}`, http.StatusBadRequest},
		{"resolve unknown", http.MethodPost, "/comments/nope/resolve", "", http.StatusNotFound},
		{"suggest disabled", http.MethodPost, "/comments/nope/suggest", "", http.StatusForbidden},
		{"export format", http.MethodGet, "/comments/export?format=pdf", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, ts.URL+tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			e := decodeBody[ErrorResponse](t, resp)
			if e.Error == "" || e.Message == "" {
				t.Errorf("error body = %+v", e)
			}
		})
	}
}

func TestExport(t *testing.T) {
	_, ts := newTestServer(t, ups.Config{})
	do(t, http.MethodPost, ts.URL+"/comments/", `{"content":"logo"}`)

	resp := do(t, http.MethodGet, ts.URL+"/comments/export?format=csv", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Export-ID") == "" {
		t.Error("missing X-Export-ID")
	}
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "logo") {
		t.Errorf("body = %q", b)
	}
}

func TestNotifications(t *testing.T) {
	_, ts := newTestServer(t, ups.Config{})

	n := decodeBody[domain.Notification](t, do(t, http.MethodPost, ts.URL+"/notifications/", `{"title":"Build done","type":"success"}`))
	do(t, http.MethodPost, ts.URL+"/notifications/", `{"title":"Review requested"}`)

	if resp := do(t, http.MethodPost, ts.URL+"/notifications/"+n.ID+"/read", ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("mark read = %d", resp.StatusCode)
	}
	got := decodeBody[notificationsResponse](t, do(t, http.MethodGet, ts.URL+"/notifications/", ""))
	if len(got.Notifications) != 2 || got.Unread != 1 {
		t.Errorf("list = %+v", got)
	}
	marked := decodeBody[markAllResponse](t, do(t, http.MethodPost, ts.URL+"/notifications/read", ""))
	if marked.Marked != 1 {
		t.Errorf("marked = %d", marked.Marked)
	}
	do(t, http.MethodDelete, ts.URL+"/notifications/", "")
	got = decodeBody[notificationsResponse](t, do(t, http.MethodGet, ts.URL+"/notifications/", ""))
	if len(got.Notifications) != 0 {
		t.Errorf("after clear = %+v", got)
	}
	if resp := do(t, http.MethodPost, ts.URL+"/notifications/nope/read", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown = %d", resp.StatusCode)
	}
}

func TestEvents(t *testing.T) {
	_, ts := newTestServer(t, ups.Config{})

	if resp := do(t, http.MethodPost, ts.URL+"/events/", `{"type":"widget.opened","data":{"id":1}}`); resp.StatusCode != http.StatusAccepted {
		t.Errorf("publish = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, ts.URL+"/events/", `{"type":"widget.*"}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("wildcard publish = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, ts.URL+"/events/broadcast", `{"target":"invoices","kind":"invoice.sent"}`); resp.StatusCode != http.StatusAccepted {
		t.Errorf("broadcast = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, ts.URL+"/events/broadcast", `{"target":"invoices"}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("broadcast without kind = %d", resp.StatusCode)
	}
}

func TestEventStream(t *testing.T) {
	p, ts := newTestServer(t, ups.Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events/stream?pattern=widget.*", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	// headers are flushed after the subscription exists
	if err := p.PublishCustom(context.Background(), "widget.opened", "w1"); err != nil {
		t.Fatal(err)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		if line := sc.Text(); strings.HasPrefix(line, "event: ") {
			if line != "event: widget.opened" {
				t.Errorf("line = %q", line)
			}
			return
		}
	}
	t.Fatalf("stream ended: %v", sc.Err())
}

func TestCORS(t *testing.T) {
	_, ts := newTestServer(t, ups.Config{})

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/comments/", nil)
	req.Header.Set("Origin", "https://app.kazi.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.kazi.test" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestServe_Shutdown(t *testing.T) {
	p, err := ups.NewProvider(ups.Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	s := New(p, Options{Logger: zerolog.Nop(), Registry: prometheus.NewRegistry()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0", time.Second) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}
