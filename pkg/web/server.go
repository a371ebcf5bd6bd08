// Package web provides the voicecafe backend server: ephemeral session
// minting, the tool-call relay, checkout creation and a live dashboard
// for the conversation.
package web

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/kaikura/voicecafe/internal/log"
	"github.com/kaikura/voicecafe/pkg/bridge"
	"github.com/kaikura/voicecafe/pkg/hub"
	"github.com/kaikura/voicecafe/pkg/line"
	"github.com/kaikura/voicecafe/pkg/payment"
	"github.com/kaikura/voicecafe/pkg/session"
	"github.com/kaikura/voicecafe/pkg/tools"
)

// Conversation is the bridge surface the dashboard reads and writes.
type Conversation interface {
	Snapshot() bridge.Snapshot
	SendUserMessage(text string) error
}

// Server is the backend HTTP server.
type Server struct {
	app  *fiber.App
	port string

	minter   *session.Minter
	executor tools.Executor
	payments *payment.Service
	line     *line.Client

	// Attached in-process bridge, if any
	convMu sync.RWMutex
	conv   Conversation

	statusHub       *hub.Hub
	conversationHub *hub.Hub
}

// Options configures the server's collaborators. Line may be nil when
// no LINE channel is configured.
type Options struct {
	Port     string
	Minter   *session.Minter
	Executor tools.Executor
	Payments *payment.Service
	Line     *line.Client
}

// NewServer creates the backend server and registers all routes.
func NewServer(opts Options) *Server {
	s := &Server{
		port:            opts.Port,
		minter:          opts.Minter,
		executor:        opts.Executor,
		payments:        opts.Payments,
		line:            opts.Line,
		statusHub:       hub.New("status"),
		conversationHub: hub.New("conversation"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "voicecafe",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Frontend-only guard on all API routes
	api := app.Group("/api", OriginCheck())
	api.Get("/realtime-session", s.handleRealtimeSession)
	api.Post("/handle-function-call", s.handleFunctionCall)
	api.Post("/create-payment", s.handleCreatePayment)
	api.Get("/line/profile", s.handleLineProfile)
	api.Get("/status", s.handleStatus)
	api.Get("/conversation", s.handleConversation)
	api.Post("/message", s.handleUserMessage)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/conversation", websocket.New(s.handleConversationWS))

	s.app = app
	return s
}

// AttachBridge connects an in-process bridge to the dashboard routes and
// subscribes the hubs to its updates.
func (s *Server) AttachBridge(b *bridge.Bridge) {
	s.convMu.Lock()
	s.conv = b
	s.convMu.Unlock()

	b.OnUpdate(func(snap bridge.Snapshot) {
		s.statusHub.BroadcastJSON(statusView(snap))
		s.conversationHub.BroadcastJSON(snap.Transcript)
	})
}

func (s *Server) conversation() Conversation {
	s.convMu.RLock()
	defer s.convMu.RUnlock()
	return s.conv
}

// Start starts the server and blocks.
func (s *Server) Start() error {
	go s.statusHub.Run()
	go s.conversationHub.Run()

	log.Info("backend listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown gracefully stops the server and its broadcast hubs.
func (s *Server) Shutdown() error {
	s.statusHub.Stop()
	s.conversationHub.Stop()
	return s.app.Shutdown()
}
