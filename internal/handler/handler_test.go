package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/config"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/handler/call"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/handler/dashboard"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/handler/health"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/internal/svc"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/backend"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/model"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/monitor"

	"github.com/gorilla/websocket"
)

type fakeCalls struct {
	result *backend.StartCallResult
	err    error
}

func (f *fakeCalls) StartCall(ctx context.Context, req backend.StartCallRequest) (*backend.StartCallResult, error) {
	return f.result, f.err
}

// idleStream stays open until closed.
type idleStream struct {
	closed chan struct{}
	once   sync.Once
}

func (s *idleStream) Run(sink monitor.StreamSink) { <-s.closed }
func (s *idleStream) Send(v any) error { return nil }
func (s *idleStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

type idleDialer struct{}

func (idleDialer) Dial(ctx context.Context, sessionID string) (monitor.Stream, error) {
	return &idleStream{closed: make(chan struct{})}, nil
}

func newServiceContext(t *testing.T, calls svc.CallStarter) *svc.ServiceContext {
	t.Helper()
	var c config.Config
	c.Dashboard.DefaultPrompt = "안녕하세요, 어르신"
	ctx := &svc.ServiceContext{
		Config:    c,
		Calls:     calls,
		Dashboard: monitor.NewDashboard(idleDialer{}),
	}
	t.Cleanup(ctx.Close)
	return ctx
}

func postJSON(h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func waitForStatus(t *testing.T, d *monitor.Dashboard, status model.CallStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for d.Status() != status {
		if time.Now().After(deadline) {
			t.Fatalf("status = %q, want %q", d.Status(), status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

const validCall = `{"elderId":"elder_001","phoneNumber":"010-1234-5678","prompt":"안녕하세요"}`

func TestStartCallHandler(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		ctx := newServiceContext(t, &fakeCalls{})
		rec := postJSON(call.StartCallHandler(ctx), "/api/call", `{"elderId":"elder_001"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var resp struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		decodeBody(t, rec, &resp)
		if resp.Success || resp.Error != "elderId, phoneNumber, prompt are required" {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("body without content type is still read", func(t *testing.T) {
		calls := &fakeCalls{result: &backend.StartCallResult{
			Success: true, SessionID: "s1", Raw: json.RawMessage(`{"success":true,"sessionId":"s1"}`),
		}}
		ctx := newServiceContext(t, calls)

		req := httptest.NewRequest(http.MethodPost, "/api/call", strings.NewReader(validCall))
		rec := httptest.NewRecorder()
		call.StartCallHandler(ctx)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("malformed body is an internal error", func(t *testing.T) {
		ctx := newServiceContext(t, &fakeCalls{})
		rec := postJSON(call.StartCallHandler(ctx), "/api/call", `{"elderId":`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Internal server error") {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("success proxies the backend body and starts monitoring", func(t *testing.T) {
		raw := `{"success":true,"sessionId":"s1","callSid":"c1"}`
		ctx := newServiceContext(t, &fakeCalls{result: &backend.StartCallResult{
			Success: true, SessionID: "s1", CallSid: "c1", Raw: json.RawMessage(raw),
		}})

		rec := postJSON(call.StartCallHandler(ctx), "/api/call", validCall)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if rec.Body.String() != raw {
			t.Errorf("body = %s", rec.Body.String())
		}

		waitForStatus(t, ctx.Dashboard, model.CallStatusActive)
		snap := ctx.Dashboard.Snapshot("")
		if snap.Call.SessionID != "s1" || snap.Call.ElderID != "elder_001" || snap.Call.PhoneNumber != "010-1234-5678" {
			t.Errorf("call = %+v", snap.Call)
		}
	})

	t.Run("backend rejection keeps its status", func(t *testing.T) {
		ctx := newServiceContext(t, &fakeCalls{err: &backend.RejectedError{
			Status: http.StatusServiceUnavailable, Message: "Backend server error: busy",
		}})

		rec := postJSON(call.StartCallHandler(ctx), "/api/call", validCall)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Backend server error: busy") {
			t.Errorf("body = %s", rec.Body.String())
		}
		if ctx.Dashboard.Status() != model.CallStatusIdle {
			t.Errorf("rejected call changed dashboard status to %q", ctx.Dashboard.Status())
		}
	})

	t.Run("transport failure is an internal error", func(t *testing.T) {
		ctx := newServiceContext(t, &fakeCalls{err: errors.New("connection refused")})

		rec := postJSON(call.StartCallHandler(ctx), "/api/call", validCall)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Internal server error") {
			t.Errorf("body = %s", rec.Body.String())
		}
	})
}

func TestDashboardHandlers(t *testing.T) {
	ctx := newServiceContext(t, nil)

	t.Run("snapshot of an idle dashboard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard?q=test", nil)
		rec := httptest.NewRecorder()
		dashboard.GetDashboardHandler(ctx)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		var snap struct {
			model.DashboardSnapshot
			DefaultPrompt string `json:"defaultPrompt"`
		}
		decodeBody(t, rec, &snap)
		if snap.DefaultPrompt != "안녕하세요, 어르신" {
			t.Errorf("default prompt = %q", snap.DefaultPrompt)
		}
		if snap.Call.Status != model.CallStatusIdle || snap.Query != "test" || snap.Quality != nil {
			t.Errorf("snapshot = %+v", snap)
		}
		if snap.Stats.AvgResponseTime != model.DefaultAvgResponseTime {
			t.Errorf("stats = %+v", snap.Stats)
		}
	})

	t.Run("session update needs an open stream", func(t *testing.T) {
		rec := postJSON(dashboard.UpdateSessionHandler(ctx), "/api/dashboard/session", `{"session":{"voice":"alloy"}}`)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("export", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/export", nil)
		rec := httptest.NewRecorder()
		dashboard.ExportTranscriptHandler(ctx)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
			t.Errorf("content type = %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, "unknown") {
			t.Errorf("content disposition = %q", cd)
		}
		if rec.Body.Len() != 0 {
			t.Errorf("empty call exported %q", rec.Body.String())
		}
	})
}

func TestUpdateSessionWhileActive(t *testing.T) {
	ctx := newServiceContext(t, nil)
	if err := ctx.Dashboard.StartCall(monitor.CallMeta{SessionID: "s1"}); err != nil {
		t.Fatalf("start call: %v", err)
	}
	waitForStatus(t, ctx.Dashboard, model.CallStatusActive)

	rec := postJSON(dashboard.UpdateSessionHandler(ctx), "/api/dashboard/session", `{"session":{"voice":"alloy"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHealthHandler(t *testing.T) {
	ctx := newServiceContext(t, nil)

	rec := httptest.NewRecorder()
	health.HealthHandler(ctx)(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Status     string `json:"status"`
		CallStatus string `json:"callStatus"`
	}
	decodeBody(t, rec, &resp)
	if resp.Status != "ok" || resp.CallStatus != "idle" {
		t.Errorf("response = %+v", resp)
	}
}

func TestDashboardStreamHandler(t *testing.T) {
	ctx := newServiceContext(t, nil)
	srv := httptest.NewServer(dashboard.DashboardStreamHandler(ctx))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	type message struct {
		Type    string          `json:"type"`
		Content json.RawMessage `json:"content"`
	}
	read := func() message {
		t.Helper()
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg
	}

	if msg := read(); msg.Type != "snapshot" {
		t.Fatalf("first message type = %q", msg.Type)
	}

	if err := ctx.Dashboard.StartCall(monitor.CallMeta{SessionID: "s1", ElderID: "elder_001"}); err != nil {
		t.Fatalf("start call: %v", err)
	}
	for {
		msg := read()
		if msg.Type != "snapshot" {
			t.Fatalf("unexpected message %q", msg.Type)
		}
		var snap model.DashboardSnapshot
		if err := json.Unmarshal(msg.Content, &snap); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		if snap.Call.SessionID == "s1" && snap.Call.Status == model.CallStatusActive {
			break
		}
	}

	if err := conn.WriteJSON(map[string]string{"type": "bogus"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	for {
		msg := read()
		if msg.Type == "snapshot" {
			continue
		}
		if msg.Type != "error" {
			t.Errorf("reply to unknown message = %q, want error", msg.Type)
		}
		break
	}
}
