// Package media provides microphone capture and remote-audio playback for
// the realtime session bridge. Capture is abstracted behind Source so the
// bridge can run against a silent source in tests.
package media

import (
	"errors"
	"fmt"
)

// Audio format used on the local track.
const (
	SampleRate = 24000 // PCM16 mono, matching the session's pcm16 format
	Channels   = 1
	FrameMS    = 20
	FrameSize  = SampleRate * FrameMS / 1000 // samples per frame
)

// ErrNoDevice indicates no capture device is available.
var ErrNoDevice = errors.New("media: no capture device available")

// MediaError indicates microphone acquisition failed. The bridge treats
// it as fatal for the session; there is no retry.
type MediaError struct {
	// Reason describes what failed.
	Reason string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *MediaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("media: %s: %v", e.Reason, e.Cause)
	}
	return "media: " + e.Reason
}

// Unwrap returns the underlying cause.
func (e *MediaError) Unwrap() error {
	return e.Cause
}

// Source delivers PCM16 microphone frames at SampleRate.
type Source interface {
	// ReadFrame returns the next FrameSize samples. It blocks until a
	// full frame is available or the source is closed.
	ReadFrame() ([]int16, error)

	// Close releases the capture device.
	Close() error
}
