package media

import (
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// ExecSource captures microphone audio by piping raw PCM16 from an
// external recorder process (arecord on Linux).
type ExecSource struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser

	mu     sync.Mutex
	closed bool
}

// NewExecSource starts the recorder and returns a Source. Device may be
// empty for the system default.
func NewExecSource(device string) (*ExecSource, error) {
	args := []string{
		"-f", "S16_LE",
		"-r", fmt.Sprint(SampleRate),
		"-c", fmt.Sprint(Channels),
		"-t", "raw",
	}
	if device != "" {
		args = append(args, "-D", device)
	}

	cmd := exec.Command("arecord", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &MediaError{Reason: "open capture pipe", Cause: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &MediaError{Reason: "start recorder", Cause: err}
	}

	return &ExecSource{cmd: cmd, stdout: stdout}, nil
}

// ReadFrame implements Source.
func (s *ExecSource) ReadFrame() ([]int16, error) {
	raw := make([]byte, FrameSize*2)
	if _, err := io.ReadFull(s.stdout, raw); err != nil {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return nil, io.EOF
		}
		return nil, &MediaError{Reason: "read capture frame", Cause: err}
	}

	frame := make([]int16, FrameSize)
	for i := range frame {
		frame[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return frame, nil
}

// Close implements Source.
func (s *ExecSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.stdout.Close()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()
	return nil
}

// SilentSource produces zeroed frames. Used when no microphone is wanted
// (text-only sessions) and in tests.
type SilentSource struct {
	mu     sync.Mutex
	closed bool
}

// ReadFrame implements Source. It paces itself to real time since there
// is no device providing back-pressure.
func (s *SilentSource) ReadFrame() ([]int16, error) {
	time.Sleep(FrameMS * time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, io.EOF
	}
	return make([]int16, FrameSize), nil
}

// Close implements Source.
func (s *SilentSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
