package handlers

import (
	"encoding/json"
	"net/http"

	"member-directory-backend/internal/middleware"
	"member-directory-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler handles WebSocket connections used for like notifications
type WebSocketHandler struct {
	hub          *services.WSHub
	tokenService *services.TokenService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, tokenService *services.TokenService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		tokenService: tokenService,
	}
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.ValidateWebSocketToken(r.URL.Query().Get("token"), h.tokenService)
	if err != nil {
		respondAppError(w, r, err, "Rejected WebSocket connection")
		return
	}
	userID := identity.UserID

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	if err := h.hub.SendToUser(userID, services.WSMessage{Type: "connected"}); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send connected message")
		return
	}

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			h.sendError(userID, "Invalid message format")
			continue
		}

		switch msg.Type {
		case "ping":
			if err := h.hub.SendToUser(userID, services.WSMessage{Type: "pong"}); err != nil {
				return
			}
		default:
			h.sendError(userID, "Unknown message type")
		}
	}
}

func (h *WebSocketHandler) sendError(userID, message string) {
	err := h.hub.SendToUser(userID, services.WSMessage{
		Type:    "error",
		Message: message,
	})
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to send error message")
	}
}
