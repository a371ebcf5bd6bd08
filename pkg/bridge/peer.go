package bridge

import (
	"fmt"

	"github.com/pion/webrtc/v3"
)

// DataChannelLabel matches the label the realtime service expects.
const DataChannelLabel = "oai-events"

// DataChannel is the bridge's view of the ordered bidirectional channel.
type DataChannel interface {
	// Send transmits one text frame.
	Send(data []byte) error

	// Ready reports whether the channel is open for sending.
	Ready() bool

	// OnMessage registers the inbound frame handler. Frames arrive in
	// send order; the transport guarantees ordered delivery.
	OnMessage(fn func(data []byte))

	// OnError registers the transport-error handler.
	OnError(fn func(err error))
}

// PeerConnection abstracts the browser-style peer connection so the
// bridge state machine is testable against a fake.
type PeerConnection interface {
	// AddTrack attaches the local audio track. A nil track is skipped.
	AddTrack(track webrtc.TrackLocal) error

	// CreateDataChannel creates the ordered data channel.
	CreateDataChannel(label string) (DataChannel, error)

	// CreateOffer builds the local description, applies it, waits for
	// candidate gathering and returns the complete offer SDP. The
	// exchange is single-shot HTTP, so there is no trickle.
	CreateOffer() (string, error)

	// SetRemoteAnswer applies the remote answer SDP verbatim.
	SetRemoteAnswer(sdp string) error

	// OnTrack registers the remote media track handler.
	OnTrack(fn func(track *webrtc.TrackRemote))

	// Close tears down the transport.
	Close() error
}

// pionPeer implements PeerConnection over pion/webrtc.
type pionPeer struct {
	pc *webrtc.PeerConnection
}

// NewPeer creates a real peer connection.
func NewPeer() (PeerConnection, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return nil, fmt.Errorf("bridge: create peer connection: %w", err)
	}
	return &pionPeer{pc: pc}, nil
}

func (p *pionPeer) AddTrack(track webrtc.TrackLocal) error {
	if track == nil {
		return nil
	}
	if _, err := p.pc.AddTrack(track); err != nil {
		return fmt.Errorf("bridge: add track: %w", err)
	}
	return nil
}

func (p *pionPeer) CreateDataChannel(label string) (DataChannel, error) {
	ordered := true
	dc, err := p.pc.CreateDataChannel(label, &webrtc.DataChannelInit{Ordered: &ordered})
	if err != nil {
		return nil, fmt.Errorf("bridge: create data channel: %w", err)
	}
	return &pionChannel{dc: dc}, nil
}

func (p *pionPeer) CreateOffer() (string, error) {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return "", fmt.Errorf("bridge: create offer: %w", err)
	}

	gathered := webrtc.GatheringCompletePromise(p.pc)
	if err := p.pc.SetLocalDescription(offer); err != nil {
		return "", fmt.Errorf("bridge: set local description: %w", err)
	}
	<-gathered

	return p.pc.LocalDescription().SDP, nil
}

func (p *pionPeer) SetRemoteAnswer(sdp string) error {
	answer := webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  sdp,
	}
	if err := p.pc.SetRemoteDescription(answer); err != nil {
		return fmt.Errorf("bridge: set remote description: %w", err)
	}
	return nil
}

func (p *pionPeer) OnTrack(fn func(track *webrtc.TrackRemote)) {
	p.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		fn(track)
	})
}

func (p *pionPeer) Close() error {
	return p.pc.Close()
}

// pionChannel implements DataChannel over a pion data channel.
type pionChannel struct {
	dc *webrtc.DataChannel
}

func (c *pionChannel) Send(data []byte) error {
	return c.dc.SendText(string(data))
}

func (c *pionChannel) Ready() bool {
	return c.dc.ReadyState() == webrtc.DataChannelStateOpen
}

func (c *pionChannel) OnMessage(fn func(data []byte)) {
	c.dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		fn(msg.Data)
	})
}

func (c *pionChannel) OnError(fn func(err error)) {
	c.dc.OnError(fn)
}
