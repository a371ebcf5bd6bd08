package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kaikura/voicecafe/pkg/tools"
)

func TestProvisionerFetch(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET, got %s", r.Method)
			}
			w.Write([]byte(`{"client_secret":{"value":"ek_test_123"}}`))
		}))
		defer srv.Close()

		p := &Provisioner{Endpoint: srv.URL}
		cred, err := p.Fetch(context.Background())
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if cred.Value != "ek_test_123" {
			t.Errorf("credential mismatch: %q", cred.Value)
		}
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		p := &Provisioner{Endpoint: srv.URL}
		_, err := p.Fetch(context.Background())

		var perr *ProvisioningError
		if !errors.As(err, &perr) {
			t.Fatalf("expected ProvisioningError, got %v", err)
		}
		if perr.StatusCode != http.StatusInternalServerError {
			t.Errorf("status mismatch: %d", perr.StatusCode)
		}
	})

	t.Run("missing credential field", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"sess_1"}`))
		}))
		defer srv.Close()

		p := &Provisioner{Endpoint: srv.URL}
		_, err := p.Fetch(context.Background())
		if !errors.Is(err, ErrMissingCredential) {
			t.Errorf("expected ErrMissingCredential, got %v", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		p := &Provisioner{Endpoint: srv.URL}
		if _, err := p.Fetch(context.Background()); err == nil {
			t.Error("expected error for malformed body")
		}
	})
}

func TestMinterMint(t *testing.T) {
	t.Run("sends flattened tool schemas", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
				t.Errorf("auth header mismatch: %q", auth)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("decode request: %v", err)
			}
			w.Write([]byte(`{"client_secret":{"value":"ek_1"}}`))
		}))
		defer srv.Close()

		m := &Minter{
			APIKey: "sk-test",
			Model:  "gpt-4o-realtime-preview-2024-12-17",
			Voice:  "verse",
			Tools:  tools.Definitions(),
			URL:    srv.URL,
		}
		raw, err := m.Mint(context.Background())
		if err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if len(raw) == 0 {
			t.Error("empty mint response")
		}

		if got["model"] != "gpt-4o-realtime-preview-2024-12-17" {
			t.Errorf("model mismatch: %v", got["model"])
		}
		toolList := got["tools"].([]any)
		if len(toolList) != len(tools.Definitions()) {
			t.Fatalf("expected %d tools, got %d", len(tools.Definitions()), len(toolList))
		}
		first := toolList[0].(map[string]any)["function"].(map[string]any)
		if first["name"] == "" || first["parameters"] == nil {
			t.Errorf("flattened tool incomplete: %v", first)
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}))
		defer srv.Close()

		m := &Minter{APIKey: "bad", URL: srv.URL}
		_, err := m.Mint(context.Background())

		var perr *ProvisioningError
		if !errors.As(err, &perr) {
			t.Fatalf("expected ProvisioningError, got %v", err)
		}
		if perr.StatusCode != http.StatusUnauthorized {
			t.Errorf("status mismatch: %d", perr.StatusCode)
		}
	})
}
