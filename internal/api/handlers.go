package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/BTreeMap/DialogCore/internal/models"
)

// startConversationHandler handles POST /conversations.
func (s *Server) startConversationHandler(w http.ResponseWriter, r *http.Request) {
	reply, err := s.svc.StartConversation(r.Context())
	if err != nil {
		writeError(w, "startConversationHandler", err)
		return
	}
	slog.Info("startConversationHandler conversation started", "conversationID", reply.ConversationID)
	writeJSONResponse(w, http.StatusCreated, models.Success(reply))
}

// turnHandler handles POST /conversations/{id}/turns.
func (s *Server) turnHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req models.TurnRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes)).Decode(&req); err != nil {
		slog.Warn("turnHandler invalid JSON", "error", err, "conversationID", id)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, "turnHandler", err)
		return
	}
	reply, err := s.svc.HandleTurn(r.Context(), id, req.Text)
	if err != nil {
		writeError(w, "turnHandler", err)
		return
	}
	if reply.Ended {
		writeJSONResponse(w, http.StatusOK, models.Ended(reply))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(reply))
}

// getConversationHandler handles GET /conversations/{id}.
func (s *Server) getConversationHandler(w http.ResponseWriter, r *http.Request) {
	conv, err := s.svc.GetConversation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "getConversationHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(conv))
}

// listTurnsHandler handles GET /conversations/{id}/turns.
func (s *Server) listTurnsHandler(w http.ResponseWriter, r *http.Request) {
	turns, err := s.svc.ListTurns(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "listTurnsHandler", err)
		return
	}
	if turns == nil {
		turns = []models.TurnRecord{}
	}
	writeJSONResponse(w, http.StatusOK, models.Success(turns))
}

// deleteConversationHandler handles DELETE /conversations/{id}.
func (s *Server) deleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.DeleteConversation(r.Context(), id); err != nil {
		writeError(w, "deleteConversationHandler", err)
		return
	}
	slog.Info("deleteConversationHandler conversation deleted", "conversationID", id)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Conversation deleted", nil))
}

// healthHandler provides a health check endpoint for monitoring and load balancing
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}))
}
