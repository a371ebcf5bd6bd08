package bridge

import "errors"

// Sentinel errors for the bridge package.
var (
	// ErrAlreadyStarted indicates Start was called twice on one bridge.
	ErrAlreadyStarted = errors.New("bridge: already started")

	// ErrClosed indicates the bridge was torn down.
	ErrClosed = errors.New("bridge: closed")

	// ErrFailed indicates the session collapsed into the failed state
	// before Start could finish.
	ErrFailed = errors.New("bridge: session failed")

	// ErrChannelNotOpen indicates the data channel is not ready; sends
	// become no-ops rather than failures.
	ErrChannelNotOpen = errors.New("bridge: data channel not open")
)
