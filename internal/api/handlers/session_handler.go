package handlers

import (
	"net/http"

	"github.com/consilium-health/consilium/internal/domain/providers"
)

// SessionHandler manages conversation history for a session.
type SessionHandler struct {
	conversations providers.ConversationStore
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(conversations providers.ConversationStore) *SessionHandler {
	return &SessionHandler{conversations: conversations}
}

// GetHistory handles GET /api/sessions/{id}/history
func (h *SessionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.conversations == nil {
		respondWithError(w, http.StatusNotFound, "conversation history is not enabled")
		return
	}

	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session id is required")
		return
	}

	turns, err := h.conversations.History(r.Context(), sessionID, 50)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load conversation history")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"turns":      turns,
	})
}

// ClearHistory handles DELETE /api/sessions/{id}/history
func (h *SessionHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if h.conversations == nil {
		respondWithError(w, http.StatusNotFound, "conversation history is not enabled")
		return
	}

	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session id is required")
		return
	}

	if err := h.conversations.Clear(r.Context(), sessionID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to clear conversation history")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
