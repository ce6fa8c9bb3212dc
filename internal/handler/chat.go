package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tsagbook/booking-platform/internal/agent"
	"github.com/tsagbook/booking-platform/internal/middleware"
	"github.com/tsagbook/booking-platform/internal/model"
	"github.com/tsagbook/booking-platform/pkg/logger"
)

// defaultUserID is assumed when a chat request omits the user id.
const defaultUserID = "default_user"

// ChatHandler handles conversational booking requests.
type ChatHandler struct {
	agent  *agent.Agent
	logger *logger.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(a *agent.Agent, log *logger.Logger) *ChatHandler {
	return &ChatHandler{agent: a, logger: log}
}

// Chat handles POST /api/v1/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = defaultUserID
	}
	if err := middleware.ValidateUserID(userID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Debug("chat message received",
		zap.String("user_id", userID),
		zap.String("session_id", req.SessionID),
		zap.Int("length", len(req.Message)),
	)

	response := h.agent.ProcessMessage(r.Context(), req.Message, userID, req.SessionID)

	writeJSON(w, http.StatusOK, model.ChatResponse{
		Response: response,
		Status:   "success",
	})
}

// ClearSession handles DELETE /api/v1/sessions/{sessionID}.
func (h *ChatHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	h.agent.ClearHistory(sessionID)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "cleared",
		"session_id": sessionID,
	})
}
