package bridge

import (
	"sync"

	"github.com/pion/webrtc/v3"
)

// FakeChannel is a scripted DataChannel for testing.
type FakeChannel struct {
	mu sync.Mutex

	// Open controls Ready(); toggle it to simulate a closed channel.
	Open bool

	// SendFunc overrides Send when set.
	SendFunc func(data []byte) error

	// Captured calls for assertions
	Sent [][]byte

	onMessage func(data []byte)
	onError   func(err error)
}

// Send implements DataChannel.
func (c *FakeChannel) Send(data []byte) error {
	if c.SendFunc != nil {
		return c.SendFunc(data)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sent = append(c.Sent, data)
	return nil
}

// Ready implements DataChannel.
func (c *FakeChannel) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Open
}

// SetOpen toggles the channel's ready state.
func (c *FakeChannel) SetOpen(open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Open = open
}

// SentFrames returns a copy of everything sent so far.
func (c *FakeChannel) SentFrames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.Sent))
	copy(out, c.Sent)
	return out
}

// OnMessage implements DataChannel.
func (c *FakeChannel) OnMessage(fn func(data []byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = fn
}

// OnError implements DataChannel.
func (c *FakeChannel) OnError(fn func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

// Deliver simulates an inbound frame.
func (c *FakeChannel) Deliver(data []byte) {
	c.mu.Lock()
	fn := c.onMessage
	c.mu.Unlock()
	if fn != nil {
		fn(data)
	}
}

// FailTransport simulates a transport error.
func (c *FakeChannel) FailTransport(err error) {
	c.mu.Lock()
	fn := c.onError
	c.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// FakePeer is a scripted PeerConnection for testing.
type FakePeer struct {
	// Channel is handed out by CreateDataChannel.
	Channel *FakeChannel

	// Configurable behavior
	CreateOfferFunc     func() (string, error)
	SetRemoteAnswerFunc func(sdp string) error

	// Captured calls for assertions
	TracksAdded  []webrtc.TrackLocal
	RemoteAnswer string
	Closed       bool

	onTrack func(track *webrtc.TrackRemote)
}

// NewFakePeer creates a fake peer with an open channel.
func NewFakePeer() *FakePeer {
	return &FakePeer{Channel: &FakeChannel{Open: true}}
}

// AddTrack implements PeerConnection.
func (p *FakePeer) AddTrack(track webrtc.TrackLocal) error {
	if track != nil {
		p.TracksAdded = append(p.TracksAdded, track)
	}
	return nil
}

// CreateDataChannel implements PeerConnection.
func (p *FakePeer) CreateDataChannel(label string) (DataChannel, error) {
	return p.Channel, nil
}

// CreateOffer implements PeerConnection.
func (p *FakePeer) CreateOffer() (string, error) {
	if p.CreateOfferFunc != nil {
		return p.CreateOfferFunc()
	}
	return "v=0\r\nfake-offer", nil
}

// SetRemoteAnswer implements PeerConnection.
func (p *FakePeer) SetRemoteAnswer(sdp string) error {
	if p.SetRemoteAnswerFunc != nil {
		return p.SetRemoteAnswerFunc(sdp)
	}
	p.RemoteAnswer = sdp
	return nil
}

// OnTrack implements PeerConnection.
func (p *FakePeer) OnTrack(fn func(track *webrtc.TrackRemote)) {
	p.onTrack = fn
}

// Close implements PeerConnection.
func (p *FakePeer) Close() error {
	p.Closed = true
	p.Channel.SetOpen(false)
	return nil
}
