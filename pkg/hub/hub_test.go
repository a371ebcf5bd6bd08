package hub

import (
	"testing"
	"time"
)

func TestStop(t *testing.T) {
	t.Run("ends the run loop", func(t *testing.T) {
		h := New("status")
		done := make(chan struct{})
		go func() {
			h.Run()
			close(done)
		}()

		h.Stop()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("run loop did not stop")
		}
	})

	t.Run("disconnects registered clients", func(t *testing.T) {
		h := New("conversation")
		go h.Run()

		c := &Client{hub: h, send: make(chan []byte, 1)}
		h.register <- c
		if h.ClientCount() != 1 {
			t.Fatalf("client count: %d", h.ClientCount())
		}

		h.Stop()

		select {
		case _, ok := <-c.send:
			if ok {
				t.Fatal("expected the send channel to be closed")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("client not disconnected")
		}
		if h.ClientCount() != 0 {
			t.Errorf("client count after stop: %d", h.ClientCount())
		}
	})

	t.Run("safe to call twice", func(t *testing.T) {
		h := New("status")
		h.Stop()
		h.Stop()
	})
}
