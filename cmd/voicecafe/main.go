// voicecafe backend - mints realtime session credentials, relays the
// assistant's payment tool calls to Stripe and serves the conversation
// dashboard.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kaikura/voicecafe/internal/config"
	"github.com/kaikura/voicecafe/internal/log"
	"github.com/kaikura/voicecafe/pkg/bridge"
	"github.com/kaikura/voicecafe/pkg/line"
	"github.com/kaikura/voicecafe/pkg/media"
	"github.com/kaikura/voicecafe/pkg/payment"
	"github.com/kaikura/voicecafe/pkg/session"
	"github.com/kaikura/voicecafe/pkg/signaling"
	"github.com/kaikura/voicecafe/pkg/tools"
	"github.com/kaikura/voicecafe/pkg/web"
	"github.com/pion/webrtc/v3"
)

const defaultInstructions = "あなたはカフェの店員です。日本語で話してください。"

func main() {
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	withAgent := flag.Bool("agent", false, "Run an in-process session bridge feeding the dashboard")
	withMic := flag.Bool("mic", false, "Capture real microphone audio for the in-process bridge")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	openAIKey := config.OpenAIKeyRequired()
	stripeKey := config.StripeKeyRequired()

	instructions := os.Getenv("ASSISTANT_INSTRUCTIONS")
	if instructions == "" {
		instructions = defaultInstructions
	}

	var lineClient *line.Client
	if id := config.LineChannelID(); id != "" {
		lineClient = line.NewClient(id, config.LineChannelSecret(), config.BaseURL()+"/line/callback")
	}

	server := web.NewServer(web.Options{
		Port: config.Port(),
		Minter: &session.Minter{
			APIKey:       openAIKey,
			Model:        config.Model(),
			Voice:        config.Voice(),
			Instructions: instructions,
			Tools:        tools.Definitions(),
		},
		Executor: tools.NewStripeExecutor(stripeKey),
		Payments: payment.NewService(stripeKey, config.BaseURL()),
		Line:     lineClient,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *withAgent {
		b := newAgentBridge(*withMic)
		server.AttachBridge(b)

		go func() {
			// Give the listener a moment; the bridge provisions
			// against our own routes.
			time.Sleep(500 * time.Millisecond)
			if err := b.Start(ctx); err != nil {
				log.Error("in-process bridge failed", "error", err)
			}
		}()
		defer b.Close()
	}

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	if err := server.Start(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// newAgentBridge wires a bridge against this process's own API routes.
func newAgentBridge(withMic bool) *bridge.Bridge {
	base := config.BaseURL()

	cfg := bridge.Config{
		Fetcher:  &session.Provisioner{Endpoint: base + "/api/realtime-session"},
		Signaler: &signaling.Client{Model: config.Model()},
		Executor: &tools.Relay{Endpoint: base + "/api/handle-function-call"},
	}
	cfg.NewTrack = func() (webrtc.TrackLocal, func(), error) {
		var source media.Source
		if withMic {
			s, err := media.NewExecSource("")
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

	return bridge.New(cfg)
}
