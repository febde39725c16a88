package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chatsim/internal/observability"
)

// Handler upgrades HTTP requests into push-channel sessions registered with
// the hub.
type Handler struct {
	hub         *Hub
	serviceName string
}

func NewHandler(hub *Hub, serviceName string) *Handler {
	return &Handler{hub: hub, serviceName: serviceName}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := observability.GetLogger(r.Context())
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("upgrade error", zap.Error(err))
		return
	}

	session := NewSession(uuid.NewString(), conn)
	h.hub.Add(session)
	session.Start()

	log.Info("subscriber connected", zap.String("session_id", session.ID))
	observability.WebSocketConnectionsActive.WithLabelValues(h.serviceName).Inc()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go h.readLoop(session)
}

// readLoop drains and discards client frames; the core consumes none. A read
// error is the disconnect signal that unregisters the session.
func (h *Handler) readLoop(s *Session) {
	defer func() {
		h.hub.Remove(s)
		s.Close()
		observability.GetLogger(context.Background()).Info("subscriber disconnected", zap.String("session_id", s.ID))
		observability.WebSocketConnectionsActive.WithLabelValues(h.serviceName).Dec()
	}()

	for {
		if _, _, err := s.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				observability.GetLogger(context.Background()).Error("read loop error", zap.String("session_id", s.ID), zap.Error(err))
			}
			return
		}
	}
}
