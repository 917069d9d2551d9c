package handlers

import (
	"net/http"

	"cartshare/internal/config"
	"cartshare/internal/domain"
	"cartshare/internal/infrastructure/websocket"
	"cartshare/pkg/logger"
)

type WebSocketHandlers struct {
	wsHandler *websocket.Handler
}

func NewWebSocketHandlers(registry domain.ConnectionRegistry, broadcaster domain.RoomBroadcaster,
	cfg config.WebSocketConfig, log logger.Logger) *WebSocketHandlers {
	return &WebSocketHandlers{
		wsHandler: websocket.NewHandler(registry, broadcaster, cfg, log),
	}
}

func (h *WebSocketHandlers) HandleConnection(w http.ResponseWriter, r *http.Request) {
	h.wsHandler.HandleConnection(w, r)
}
