// voicecafe-agent is a headless session client. It provisions a
// credential from the backend, connects a peer to the realtime API and
// relays tool calls back through the backend. Lines typed on stdin are
// sent as user messages; assistant turns are printed as they stream in.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kaikura/voicecafe/internal/config"
	"github.com/kaikura/voicecafe/internal/log"
	"github.com/kaikura/voicecafe/pkg/bridge"
	"github.com/kaikura/voicecafe/pkg/media"
	"github.com/kaikura/voicecafe/pkg/session"
	"github.com/kaikura/voicecafe/pkg/signaling"
	"github.com/kaikura/voicecafe/pkg/tools"
	"github.com/pion/webrtc/v3"
)

func main() {
	backend := flag.String("backend", "http://localhost:"+config.Port(), "Backend base URL")
	withMic := flag.Bool("mic", false, "Capture microphone audio (requires arecord)")
	withAudio := flag.Bool("audio", false, "Play assistant audio (requires aplay)")
	device := flag.String("device", "", "ALSA capture device, empty for default")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := bridge.Config{
		Fetcher:  &session.Provisioner{Endpoint: *backend + "/api/realtime-session"},
		Signaler: &signaling.Client{Model: config.Model()},
		Executor: &tools.Relay{Endpoint: *backend + "/api/handle-function-call"},
	}
	cfg.NewTrack = newTrackFactory(*withMic, *device)

	var sink *media.Sink
	if *withAudio {
		s, err := media.NewSink()
		if err != nil {
			log.Error("audio output unavailable", "error", err)
			os.Exit(1)
		}
		sink = s
		defer sink.Close()
		cfg.OnRemoteTrack = func(track *webrtc.TrackRemote) {
			go func() {
				if err := sink.Play(track); err != nil {
					log.Error("playback stopped", "error", err)
				}
			}()
		}
	}

	b := bridge.New(cfg)
	b.OnUpdate(printTurns())

	if err := b.Start(ctx); err != nil {
		log.Error("session failed", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	log.Info("session connected", "backend", *backend)
	fmt.Println("Type a message and press enter. Ctrl-C to quit.")

	go readStdin(b)

	<-ctx.Done()
	fmt.Println()
}

func newTrackFactory(withMic bool, device string) func() (webrtc.TrackLocal, func(), error) {
	return func() (webrtc.TrackLocal, func(), error) {
		var source media.Source
		if withMic {
			s, err := media.NewExecSource(device)
			if err != nil {
				return nil, nil, err
			}
			source = s
		} else {
			source = &media.SilentSource{}
		}

		track, err := media.NewTrack(source, func(err error) {
			log.Error("capture error", "error", err)
		})
		if err != nil {
			source.Close()
			return nil, nil, err
		}
		return track, func() { source.Close() }, nil
	}
}

// printTurns prints each assistant turn once it is done and user turns as
// they are appended. It tracks how many turns were already printed so
// repeated snapshots do not repeat output.
func printTurns() func(bridge.Snapshot) {
	printed := 0
	return func(snap bridge.Snapshot) {
		for i, turn := range snap.Transcript {
			if i < printed {
				continue
			}
			// Hold off on an assistant turn until it stops streaming.
			if !turn.Done {
				break
			}
			fmt.Printf("[%s] %s\n", turn.Role, turn.Text)
			printed = i + 1
		}
		if snap.State == bridge.StateFailed {
			fmt.Println(snap.Message)
		}
	}
}

func readStdin(b *bridge.Bridge) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := b.SendUserMessage(text); err != nil {
			log.Error("message not sent", "error", err)
		}
	}
}
