package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kaikura/voicecafe/pkg/payment"
	"github.com/kaikura/voicecafe/pkg/session"
	"github.com/kaikura/voicecafe/pkg/tools"
)

type stubExecutor struct {
	result string
	err    error
	got    *tools.Invocation
}

func (s *stubExecutor) Execute(ctx context.Context, inv tools.Invocation) (string, error) {
	s.got = &inv
	return s.result, s.err
}

func newTestServer(t *testing.T, executor tools.Executor, mintURL string) *Server {
	t.Helper()
	if executor == nil {
		executor = &stubExecutor{result: "{}"}
	}
	return NewServer(Options{
		Port:     "0",
		Minter:   &session.Minter{APIKey: "sk-test", Model: "m", Voice: "v", URL: mintURL},
		Executor: executor,
		Payments: payment.NewService("sk_test_unused", "http://localhost:3000"),
	})
}

// apiRequest builds a same-origin request that passes the origin check.
func apiRequest(method, target string, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Referer", "http://"+req.Host+"/")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestOriginCheck(t *testing.T) {
	s := newTestServer(t, nil, "")

	t.Run("missing referer is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		resp, err := s.app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("foreign referer is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("Referer", "https://evil.example.com/")
		resp, err := s.app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("expected 403, got %d", resp.StatusCode)
		}

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		if body["success"] != false {
			t.Errorf("expected success=false body, got %v", body)
		}
	})

	t.Run("same-origin referer passes", func(t *testing.T) {
		resp, err := s.app.Test(apiRequest(http.MethodGet, "/api/status", ""))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})
}

func TestRealtimeSessionRoute(t *testing.T) {
	t.Run("forwards mint response verbatim", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"sess_1","client_secret":{"value":"ek_1"}}`))
		}))
		defer upstream.Close()

		s := newTestServer(t, nil, upstream.URL)
		resp, err := s.app.Test(apiRequest(http.MethodGet, "/api/realtime-session", ""))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		body, _ := io.ReadAll(resp.Body)
		if string(body) != `{"id":"sess_1","client_secret":{"value":"ek_1"}}` {
			t.Errorf("mint response not forwarded verbatim: %s", body)
		}
	})

	t.Run("upstream failure is masked", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"internal key detail"}}`, http.StatusUnauthorized)
		}))
		defer upstream.Close()

		s := newTestServer(t, nil, upstream.URL)
		resp, err := s.app.Test(apiRequest(http.MethodGet, "/api/realtime-session", ""))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if strings.Contains(string(body), "internal key detail") {
			t.Error("upstream error detail must not leak to clients")
		}
	})
}

func TestFunctionCallRoute(t *testing.T) {
	t.Run("returns executor result", func(t *testing.T) {
		exec := &stubExecutor{result: `{"id":"plink_1"}`}
		s := newTestServer(t, exec, "")

		resp, err := s.app.Test(apiRequest(http.MethodPost, "/api/handle-function-call",
			`{"id":"call_1","name":"create_payment_link","arguments":{"price":"price_1"}}`))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		body, _ := io.ReadAll(resp.Body)
		if string(body) != `{"id":"plink_1"}` {
			t.Errorf("result mismatch: %s", body)
		}
		if exec.got == nil || exec.got.Name != "create_payment_link" {
			t.Errorf("invocation not decoded: %+v", exec.got)
		}
	})

	t.Run("executor error is masked", func(t *testing.T) {
		exec := &stubExecutor{err: errors.New("stripe: api key expired")}
		s := newTestServer(t, exec, "")

		resp, err := s.app.Test(apiRequest(http.MethodPost, "/api/handle-function-call",
			`{"name":"create_product","arguments":{}}`))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if strings.Contains(string(body), "api key expired") {
			t.Error("executor error detail must not leak to clients")
		}
	})
}

func TestCreatePaymentRoute(t *testing.T) {
	s := newTestServer(t, nil, "")

	resp, err := s.app.Test(apiRequest(http.MethodPost, "/api/create-payment", `{"amount":500}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing name, got %d", resp.StatusCode)
	}
}

func TestDashboardWithoutBridge(t *testing.T) {
	s := newTestServer(t, nil, "")

	t.Run("status is idle", func(t *testing.T) {
		resp, err := s.app.Test(apiRequest(http.MethodGet, "/api/status", ""))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		var view StatusView
		json.NewDecoder(resp.Body).Decode(&view)
		if view.State != "idle" || view.Connected {
			t.Errorf("expected idle status, got %+v", view)
		}
	})

	t.Run("message submission conflicts", func(t *testing.T) {
		resp, err := s.app.Test(apiRequest(http.MethodPost, "/api/message", `{"text":"hi"}`))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("expected 409, got %d", resp.StatusCode)
		}
	})
}
