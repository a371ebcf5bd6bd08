package media

import (
	"errors"
	"io"
	"testing"
)

func TestSilentSource(t *testing.T) {
	s := &SilentSource{}

	frame, err := s.ReadFrame()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(frame) != FrameSize {
		t.Errorf("expected %d samples, got %d", FrameSize, len(frame))
	}
	for _, sample := range frame {
		if sample != 0 {
			t.Fatal("silent source produced non-zero sample")
		}
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := s.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF after close, got %v", err)
	}
}

func TestMediaErrorUnwrap(t *testing.T) {
	cause := errors.New("device busy")
	err := &MediaError{Reason: "start recorder", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("cause not unwrapped")
	}
	if err.Error() == "" {
		t.Error("empty error string")
	}
}
