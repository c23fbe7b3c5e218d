package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"groupchat/internal/chat"
	"groupchat/internal/model"
)

// createUpgrader creates a WebSocket upgrader with the given allowed origins
func createUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowedMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowedMap[origin] = true
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowedMap[origin]
		},
	}
}

// InboundFrame is one client event read off the socket.
type InboundFrame struct {
	Event   string        `json:"event"`
	Payload model.Message `json:"payload"`
}

// HandleWebSocket handles GET /ws. The bearer token is validated before the
// upgrade; the connection then gets a fresh connection id, subscribes to the
// public topic and feeds inbound frames to the chat coordinator until the
// socket closes. Socket closure is the disconnect signal: the connection id
// is never reused afterwards.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Verifier.FromRequest(r)
	if err != nil {
		log.Printf("[GET /ws] ❌ Unauthorized upgrade attempt from %s: %v", r.RemoteAddr, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
		return
	}

	upgrader := createUpgrader(h.Config.AllowedOrigins)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.New().String()
	identity := claims.Username()

	h.Coordinator.BindPrincipal(connID, identity)
	h.Hub.Subscribe(chat.TopicPublic, conn)
	log.Printf("[ws] New connection %s for user %s", connID, identity)

	defer func() {
		h.Hub.Unsubscribe(chat.TopicPublic, conn)
		// 切断処理はリクエストコンテキストと独立して必ず実行する
		if err := h.Coordinator.HandleDisconnect(context.Background(), connID); err != nil {
			log.Printf("[ws] ❌ Disconnect cleanup for %s: %v", connID, err)
		}
	}()

	for {
		var frame InboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			log.Printf("[ws] Connection %s closed: %v", connID, err)
			return
		}
		h.dispatch(r.Context(), connID, frame)
	}
}

// dispatch routes an inbound frame to the coordinator by event name.
func (h *Handler) dispatch(ctx context.Context, connID string, frame InboundFrame) {
	var err error
	switch frame.Event {
	case "send-message":
		err = h.Coordinator.HandleSendMessage(ctx, connID, frame.Payload)
	case "add-user", "join":
		err = h.Coordinator.HandleJoin(ctx, connID)
	default:
		log.Printf("[ws] Unknown event %q on %s; ignoring", frame.Event, connID)
		return
	}
	if err != nil {
		log.Printf("[ws] ❌ %s on %s failed: %v", frame.Event, connID, err)
	}
}
