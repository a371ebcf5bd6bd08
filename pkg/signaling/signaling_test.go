package signaling

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kaikura/voicecafe/pkg/session"
)

const fakeOffer = "v=0\r\no=- 0 0 IN IP4 127.0.0.1\r\ns=-\r\n"

func TestNegotiate(t *testing.T) {
	cred := session.Credential{Value: "ek_test"}

	t.Run("happy path", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("model") != "gpt-4o-realtime-preview-2024-12-17" {
				t.Errorf("model query missing: %s", r.URL.RawQuery)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/sdp" {
				t.Errorf("content type mismatch: %q", ct)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer ek_test" {
				t.Errorf("auth mismatch: %q", auth)
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != fakeOffer {
				t.Errorf("offer not sent verbatim: %q", body)
			}
			w.Write([]byte("v=0\r\nanswer"))
		}))
		defer srv.Close()

		c := &Client{Model: "gpt-4o-realtime-preview-2024-12-17", BaseURL: srv.URL}
		answer, err := c.Negotiate(context.Background(), fakeOffer, cred)
		if err != nil {
			t.Fatalf("negotiate failed: %v", err)
		}
		if answer != "v=0\r\nanswer" {
			t.Errorf("answer not returned verbatim: %q", answer)
		}
	})

	t.Run("remote rejection carries status and body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("invalid ephemeral key"))
		}))
		defer srv.Close()

		c := &Client{Model: "m", BaseURL: srv.URL}
		_, err := c.Negotiate(context.Background(), fakeOffer, cred)

		var serr *SignalingError
		if !errors.As(err, &serr) {
			t.Fatalf("expected SignalingError, got %v", err)
		}
		if serr.StatusCode != http.StatusUnauthorized {
			t.Errorf("status mismatch: %d", serr.StatusCode)
		}
		if serr.Body != "invalid ephemeral key" {
			t.Errorf("body mismatch: %q", serr.Body)
		}
	})

	t.Run("empty answer", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		c := &Client{Model: "m", BaseURL: srv.URL}
		if _, err := c.Negotiate(context.Background(), fakeOffer, cred); !errors.Is(err, ErrEmptyAnswer) {
			t.Errorf("expected ErrEmptyAnswer, got %v", err)
		}
	})
}
