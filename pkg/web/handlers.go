package web

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/kaikura/voicecafe/internal/log"
	"github.com/kaikura/voicecafe/pkg/bridge"
	"github.com/kaikura/voicecafe/pkg/hub"
	"github.com/kaikura/voicecafe/pkg/payment"
	"github.com/kaikura/voicecafe/pkg/tools"
)

// StatusView is the connection status shown on the dashboard.
type StatusView struct {
	State     string `json:"state"`
	Connected bool   `json:"connected"`
	Message   string `json:"message,omitempty"`
}

func statusView(snap bridge.Snapshot) StatusView {
	return StatusView{
		State:     string(snap.State),
		Connected: snap.Connected,
		Message:   snap.Message,
	}
}

// handleRealtimeSession mints an ephemeral session and forwards the
// response verbatim, client_secret included.
func (s *Server) handleRealtimeSession(c *fiber.Ctx) error {
	raw, err := s.minter.Mint(c.Context())
	if err != nil {
		log.Error("failed to create realtime session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create realtime session",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

// handleFunctionCall executes one relayed tool invocation.
func (s *Server) handleFunctionCall(c *fiber.Ctx) error {
	var inv tools.Invocation
	if err := c.BodyParser(&inv); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid tool call payload",
		})
	}

	log.Info("tool call received", "tool", inv.Name, "call_id", inv.ID)

	result, err := s.executor.Execute(c.Context(), inv)
	if err != nil {
		log.Error("tool call failed", "tool", inv.Name, "call_id", inv.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to handle tool call",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(result)
}

// handleCreatePayment creates a checkout session and returns its URL.
func (s *Server) handleCreatePayment(c *fiber.Ctx) error {
	var req payment.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment request",
		})
	}

	url, err := s.payments.CreateCheckout(c.Context(), req)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		log.Error("failed to create checkout session", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create checkout session",
		})
	}

	return c.JSON(fiber.Map{"url": url})
}

// handleLineProfile fetches the LINE profile for the bearer token the
// client obtained from its LIFF login.
func (s *Server) handleLineProfile(c *fiber.Ctx) error {
	if s.line == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
			"error": "LINE channel not configured",
		})
	}

	token := c.Query("access_token")
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "access_token is required",
		})
	}

	profile, err := s.line.Profile(c.Context(), token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Failed to fetch profile",
		})
	}
	return c.JSON(profile)
}

// handleStatus returns the attached bridge's connection status.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	conv := s.conversation()
	if conv == nil {
		return c.JSON(StatusView{State: string(bridge.StateIdle)})
	}
	return c.JSON(statusView(conv.Snapshot()))
}

// handleConversation returns a read-only transcript snapshot.
func (s *Server) handleConversation(c *fiber.Ctx) error {
	conv := s.conversation()
	if conv == nil {
		return c.JSON([]any{})
	}
	return c.JSON(conv.Snapshot().Transcript)
}

// UserMessageRequest is the dashboard's input form payload.
type UserMessageRequest struct {
	Text string `json:"text"`
}

// handleUserMessage submits a user message through the attached bridge.
func (s *Server) handleUserMessage(c *fiber.Ctx) error {
	conv := s.conversation()
	if conv == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "No active session",
		})
	}

	var req UserMessageRequest
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text is required",
		})
	}

	if err := conv.SendUserMessage(req.Text); err != nil {
		// The optimistic turn is already appended; tell the client the
		// transport did not carry it.
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"sent": false,
		})
	}
	return c.JSON(fiber.Map{"sent": true})
}

// handleStatusWS streams status updates to dashboard observers.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	if conv := s.conversation(); conv != nil {
		data, err := json.Marshal(statusView(conv.Snapshot()))
		if err == nil {
			c.WriteMessage(websocket.TextMessage, data)
		}
	}
	hub.NewClient(s.statusHub, c).Run()
}

// handleConversationWS streams transcript updates to dashboard observers.
func (s *Server) handleConversationWS(c *websocket.Conn) {
	if conv := s.conversation(); conv != nil {
		data, err := json.Marshal(conv.Snapshot().Transcript)
		if err == nil {
			c.WriteMessage(websocket.TextMessage, data)
		}
	}
	hub.NewClient(s.conversationHub, c).Run()
}
