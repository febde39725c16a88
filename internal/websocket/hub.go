package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"chatsim/internal/chat"
	"chatsim/internal/observability"
)

// Event is the push-channel frame: one per newly generated message.
type Event struct {
	Type    string       `json:"type"`
	Payload chat.Message `json:"payload"`
}

const EventNewMessage = "NEW_MESSAGE"

// Hub tracks connected sessions and fans new-message events out to all of
// them. Delivery is at-most-once: closed sessions are skipped, never queued
// for.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]*Session),
	}
}

func (h *Hub) Add(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[s.ID] = s
}

func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Only remove the same session object; a late Remove from a dead
	// session must not evict a new one reusing the slot.
	if current, ok := h.sessions[s.ID]; ok && current == s {
		delete(h.sessions, s.ID)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.sessions)
}

// Broadcast serializes the NEW_MESSAGE envelope once and offers it to every
// session open at this instant. The snapshot tolerates sessions being
// removed mid-iteration.
func (h *Hub) Broadcast(msg chat.Message) {
	payload, err := json.Marshal(Event{Type: EventNewMessage, Payload: msg})
	if err != nil {
		observability.GetLogger(context.Background()).Error("hub: marshal event", zap.String("message_id", msg.ID), zap.Error(err))
		return
	}

	observability.BroadcastsTotal.Inc()
	for _, s := range h.snapshot() {
		if !s.Open() || !s.TrySend(payload) {
			observability.BroadcastDropsTotal.Inc()
		}
	}
}

func (h *Hub) snapshot() []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		out = append(out, s)
	}
	return out
}

func (h *Hub) CloseAll() {
	for _, s := range h.snapshot() {
		s.Close()
	}
}
