// Package bridge owns the realtime session: it provisions the ephemeral
// credential, drives the peer-connection handshake, reassembles streaming
// transcript events and relays model-initiated tool calls. One bridge
// holds at most one peer connection and one transcript.
package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v3"

	"github.com/kaikura/voicecafe/internal/log"
	"github.com/kaikura/voicecafe/pkg/protocol"
	"github.com/kaikura/voicecafe/pkg/session"
	"github.com/kaikura/voicecafe/pkg/tools"
	"github.com/kaikura/voicecafe/pkg/transcript"
)

// State is the bridge lifecycle state.
type State string

const (
	StateIdle         State = "idle"
	StateProvisioning State = "provisioning"
	StateNegotiating  State = "negotiating"
	StateConnected    State = "connected"
	StateClosed       State = "closed"
	StateFailed       State = "failed"
)

// genericToolFailure is what goes on the wire when a tool fails. The
// executor's internal error is logged locally, never transmitted.
const genericToolFailure = "tool execution failed"

// CredentialFetcher provisions the ephemeral credential.
type CredentialFetcher interface {
	Fetch(ctx context.Context) (session.Credential, error)
}

// Signaler performs the offer/answer exchange.
type Signaler interface {
	Negotiate(ctx context.Context, offerSDP string, cred session.Credential) (string, error)
}

// Config wires the bridge's collaborators.
type Config struct {
	Fetcher  CredentialFetcher
	Signaler Signaler
	Executor tools.Executor

	// NewPeer creates the peer connection. Defaults to NewPeer.
	NewPeer func() (PeerConnection, error)

	// NewTrack acquires the microphone and returns the local track plus
	// a release function. Nil means a text-only session with no local
	// audio. An error here fails the session; there is no retry.
	NewTrack func() (webrtc.TrackLocal, func(), error)

	// OnRemoteTrack receives the inbound audio track, if any.
	OnRemoteTrack func(track *webrtc.TrackRemote)
}

// Snapshot is the read-only view handed to the presentation layer.
type Snapshot struct {
	State      State                 `json:"state"`
	Connected  bool                  `json:"connected"`
	Message    string                `json:"message,omitempty"`
	Transcript transcript.Transcript `json:"transcript"`
}

// Bridge is the realtime session bridge.
type Bridge struct {
	cfg Config

	mu           sync.Mutex
	state        State
	message      string // user-facing connectivity message
	peer         PeerConnection
	channel      DataChannel
	tr           transcript.Transcript
	releaseMedia func()

	onUpdate func(Snapshot)
}

// New creates an idle bridge.
func New(cfg Config) *Bridge {
	if cfg.NewPeer == nil {
		cfg.NewPeer = NewPeer
	}
	return &Bridge{cfg: cfg, state: StateIdle}
}

// OnUpdate registers the snapshot observer. Must be set before Start.
func (b *Bridge) OnUpdate(fn func(Snapshot)) {
	b.onUpdate = fn
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Connected reports the connectivity flag shown to the user.
func (b *Bridge) Connected() bool {
	return b.State() == StateConnected
}

// Snapshot returns a read-only copy of the bridge's observable state.
func (b *Bridge) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Bridge) snapshotLocked() Snapshot {
	return Snapshot{
		State:      b.state,
		Connected:  b.state == StateConnected,
		Message:    b.message,
		Transcript: transcript.Snapshot(b.tr),
	}
}

// Start drives the session to connected: microphone, credential,
// peer connection, data channel, offer/answer. Any error collapses the
// session into the failed state; errors are surfaced to readers only as
// the connectivity flag plus a human-readable message.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.state != StateIdle {
		b.mu.Unlock()
		return ErrAlreadyStarted
	}
	b.state = StateProvisioning
	b.mu.Unlock()
	b.notify()

	if err := b.start(ctx); err != nil {
		b.fail(err)
		return err
	}

	b.mu.Lock()
	switch b.state {
	case StateNegotiating:
	case StateFailed:
		// A transport error beat us to the finish.
		b.mu.Unlock()
		return ErrFailed
	default:
		b.mu.Unlock()
		return ErrClosed
	}
	b.state = StateConnected
	b.mu.Unlock()
	b.notify()
	log.Info("realtime session connected")
	return nil
}

func (b *Bridge) start(ctx context.Context) error {
	// Microphone first: no point minting a credential we cannot use.
	var track webrtc.TrackLocal
	if b.cfg.NewTrack != nil {
		var release func()
		var err error
		track, release, err = b.cfg.NewTrack()
		if err != nil {
			return err
		}
		b.mu.Lock()
		b.releaseMedia = release
		b.mu.Unlock()
	}

	// The credential authorizes exactly one handshake. A provisioning
	// failure means no peer connection is ever created.
	cred, err := b.cfg.Fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	peer, err := b.cfg.NewPeer()
	if err != nil {
		return err
	}
	b.mu.Lock()
	if b.state != StateProvisioning {
		// Close arrived while the credential fetch was in flight. The
		// session stays torn down; the fresh peer never entered the
		// bridge, so it is closed here.
		b.mu.Unlock()
		peer.Close()
		return ErrClosed
	}
	b.state = StateNegotiating
	b.peer = peer
	b.mu.Unlock()
	b.notify()

	if b.cfg.OnRemoteTrack != nil {
		peer.OnTrack(b.cfg.OnRemoteTrack)
	}
	if err := peer.AddTrack(track); err != nil {
		return err
	}

	channel, err := peer.CreateDataChannel(DataChannelLabel)
	if err != nil {
		return err
	}
	channel.OnMessage(b.handleMessage)
	channel.OnError(func(err error) {
		log.Error("data channel error", "error", err)
		b.fail(err)
	})
	b.mu.Lock()
	b.channel = channel
	b.mu.Unlock()

	offer, err := peer.CreateOffer()
	if err != nil {
		return err
	}

	answer, err := b.cfg.Signaler.Negotiate(ctx, offer, cred)
	if err != nil {
		return err
	}
	return peer.SetRemoteAnswer(answer)
}

// handleMessage processes one inbound data-channel frame. Frames arrive
// in send order; transcript mutation happens under the bridge lock before
// any tool execution is scheduled.
func (b *Bridge) handleMessage(data []byte) {
	ev, err := protocol.ParseEvent(data)
	if err != nil {
		log.Warn("dropping undecodable event", "error", err)
		return
	}

	switch ev.Type {
	case protocol.TypeTextDelta, protocol.TypeTextDone:
		b.mu.Lock()
		b.tr = transcript.Reduce(b.tr, ev)
		b.mu.Unlock()
		b.notify()

	case protocol.TypeFunctionCall:
		if ev.Function == nil {
			log.Warn("function call event without payload")
			return
		}
		inv := tools.Invocation{
			ID:        uuid.NewString(),
			Name:      ev.Function.Name,
			Arguments: ev.Function.Arguments,
		}
		// Execute without blocking delivery of subsequent frames.
		// Each invocation carries its own correlation id, so overlap
		// across events is fine.
		go b.runTool(inv)

	default:
		// Forward compatible: unrecognized events are ignored.
	}
}

// runTool executes one invocation and feeds the outcome back into the
// channel. Results arriving after teardown are discarded by the no-op
// send. Tool execution is intentionally not tied to the Start context;
// in-flight calls finish on their own.
func (b *Bridge) runTool(inv tools.Invocation) {
	result, err := b.cfg.Executor.Execute(context.Background(), inv)
	if err != nil {
		log.Error("tool execution failed", "tool", inv.Name, "call_id", inv.ID, "error", err)
		b.send(protocol.NewFunctionErrorEvent(inv.Name, genericToolFailure))
		return
	}

	b.mu.Lock()
	b.tr = transcript.AppendAssistant(b.tr, fmt.Sprintf("%s: %s", inv.Name, result))
	b.mu.Unlock()
	b.notify()

	b.send(protocol.NewFunctionResultEvent(inv.Name, result))
}

// SendUserMessage appends a user turn and transmits it. The turn is
// appended even when the channel is not open; the send is then skipped
// and ErrChannelNotOpen returned so callers may log it.
func (b *Bridge) SendUserMessage(text string) error {
	b.mu.Lock()
	b.tr = transcript.AppendUser(b.tr, text)
	b.mu.Unlock()
	b.notify()

	return b.send(protocol.NewItemCreateEvent(uuid.NewString(), text))
}

// send transmits one event, as a no-op when the channel is not open.
func (b *Bridge) send(ev *protocol.Event) error {
	b.mu.Lock()
	channel := b.channel
	b.mu.Unlock()

	if channel == nil || !channel.Ready() {
		return ErrChannelNotOpen
	}

	data, err := ev.Bytes()
	if err != nil {
		return err
	}
	return channel.Send(data)
}

// fail collapses the session into the terminal failed state.
func (b *Bridge) fail(err error) {
	b.mu.Lock()
	if b.state == StateClosed || b.state == StateFailed {
		b.mu.Unlock()
		return
	}
	b.state = StateFailed
	b.message = "connection unavailable"
	b.channel = nil
	peer := b.peer
	b.peer = nil
	release := b.releaseMedia
	b.releaseMedia = nil
	b.mu.Unlock()

	log.Error("realtime session failed", "error", err)
	if peer != nil {
		peer.Close()
	}
	if release != nil {
		release()
	}
	b.notify()
}

// Close tears down the peer connection and releases the microphone.
// Closing is the single cancellation primitive; in-flight tool calls are
// not interrupted, their late results are dropped by the no-op send.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.state == StateClosed {
		b.mu.Unlock()
		return nil
	}
	b.state = StateClosed
	b.channel = nil
	peer := b.peer
	b.peer = nil
	release := b.releaseMedia
	b.releaseMedia = nil
	b.mu.Unlock()

	if release != nil {
		release()
	}
	var err error
	if peer != nil {
		err = peer.Close()
	}
	b.notify()
	return err
}

func (b *Bridge) notify() {
	if b.onUpdate == nil {
		return
	}
	b.onUpdate(b.Snapshot())
}
