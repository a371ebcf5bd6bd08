package media

import (
	"encoding/binary"
	"errors"
	"io"
	"os/exec"
	"sync"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"
	"gopkg.in/hraban/opus.v2"
)

// playbackRate is the opus RTP clock rate; remote audio is decoded at
// full rate regardless of our capture rate.
const playbackRate = 48000

// Sink plays the remote audio track through an external player process
// (aplay on Linux).
type Sink struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	mu     sync.Mutex
	closed bool
}

// NewSink starts the player process.
func NewSink() (*Sink, error) {
	cmd := exec.Command("aplay",
		"-f", "S16_LE",
		"-r", "48000",
		"-c", "1",
		"-t", "raw",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &MediaError{Reason: "open playback pipe", Cause: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &MediaError{Reason: "start player", Cause: err}
	}
	return &Sink{cmd: cmd, stdin: stdin}, nil
}

// Play drains the remote track, decoding opus packets into the player.
// It returns when the track ends or the sink is closed.
func (s *Sink) Play(track *webrtc.TrackRemote) error {
	decoder, err := opus.NewDecoder(playbackRate, Channels)
	if err != nil {
		return &MediaError{Reason: "create opus decoder", Cause: err}
	}

	pcm := make([]int16, playbackRate/1000*120) // up to 120ms per packet
	for {
		packet, _, err := track.ReadRTP()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		n, err := s.decodePacket(decoder, packet, pcm)
		if err != nil {
			// A corrupt packet is not fatal to the stream.
			continue
		}
		if err := s.write(pcm[:n]); err != nil {
			return err
		}
	}
}

func (s *Sink) decodePacket(decoder *opus.Decoder, packet *rtp.Packet, pcm []int16) (int, error) {
	if len(packet.Payload) == 0 {
		return 0, nil
	}
	return decoder.Decode(packet.Payload, pcm)
}

func (s *Sink) write(pcm []int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return io.ErrClosedPipe
	}

	raw := make([]byte, len(pcm)*2)
	for i, sample := range pcm {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(sample))
	}
	_, err := s.stdin.Write(raw)
	return err
}

// Close stops the player process.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.stdin.Close()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()
	return nil
}
