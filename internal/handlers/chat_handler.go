package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"chatsim/internal/chat"
	"chatsim/internal/transport"
)

// ChatHandler serves the read-only HTTP API over the store.
type ChatHandler struct {
	store *chat.Store
}

func NewChatHandler(store *chat.Store) *ChatHandler {
	return &ChatHandler{store: store}
}

func (h *ChatHandler) Routes(r chi.Router) {
	r.Get("/profiles/{id}", h.GetProfile)
	r.Get("/dialogs", h.ListDialogs)
	r.Get("/dialogs/{dialogId}/messages", h.ListMessages)
}

// GetProfile GET /profiles/{id}
func (h *ChatHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	profile, err := h.store.GetProfile(id)
	if err != nil {
		if errors.Is(err, chat.ErrProfileNotFound) {
			transport.WriteError(w, http.StatusNotFound, "profile not found")
			return
		}
		transport.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	transport.WriteJSON(w, http.StatusOK, profile)
}

// ListMessages GET /dialogs/{dialogId}/messages?offset&limit
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	dialogID := chi.URLParam(r, "dialogId")
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)

	transport.WriteJSON(w, http.StatusOK, h.store.ListMessages(dialogID, offset, limit))
}

// ListDialogs GET /dialogs?offset&limit&participantId
func (h *ChatHandler) ListDialogs(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)
	participantID := r.URL.Query().Get("participantId")

	transport.WriteJSON(w, http.StatusOK, h.store.ListDialogs(offset, limit, participantID))
}

// queryInt parses a pagination parameter, falling back to def when the
// parameter is absent, malformed or negative.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
