package line

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestProfile(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth := r.Header.Get("Authorization"); auth != "Bearer tok_1" {
				t.Errorf("auth mismatch: %q", auth)
			}
			w.Write([]byte(`{"userId":"U1","displayName":"Hana","pictureUrl":"https://example.com/p.jpg"}`))
		}))
		defer srv.Close()

		c := NewClient("ch", "secret", "http://localhost/callback")
		c.ProfileEndpoint = srv.URL

		p, err := c.Profile(context.Background(), "tok_1")
		if err != nil {
			t.Fatalf("profile failed: %v", err)
		}
		if p.UserID != "U1" || p.DisplayName != "Hana" {
			t.Errorf("profile mismatch: %+v", p)
		}
	})

	t.Run("rejected token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := NewClient("ch", "secret", "")
		c.ProfileEndpoint = srv.URL

		if _, err := c.Profile(context.Background(), "bad"); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAuthCodeURL(t *testing.T) {
	c := NewClient("1234567890", "secret", "https://example.com/callback")
	url := c.AuthCodeURL("state-abc")
	if url == "" {
		t.Fatal("empty auth URL")
	}
	for _, want := range []string{"access.line.me", "client_id=1234567890", "state=state-abc"} {
		if !strings.Contains(url, want) {
			t.Errorf("auth URL missing %q: %s", want, url)
		}
	}
}
