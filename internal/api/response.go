package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/BTreeMap/DialogCore/internal/dialog"
	"github.com/BTreeMap/DialogCore/internal/models"
	"github.com/BTreeMap/DialogCore/internal/store"
)

// internalErrorBody is sent when a response cannot be encoded.
var internalErrorBody = mustMarshal(models.Error("Internal server error"))

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("api: marshal %T: %v", v, err))
	}
	return b
}

// writeJSONResponse encodes body before touching headers so an encoding
// failure still yields a well formed 500.
func writeJSONResponse(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		slog.Error("Server.writeJSONResponse: encode failed", "error", err, "status", status)
		data, status = internalErrorBody, http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("Server.writeJSONResponse: write failed", "error", err)
	}
}

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, op string, err error) {
	status, msg := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, store.ErrNotFound):
		status, msg = http.StatusNotFound, "Conversation not found"
	case errors.Is(err, dialog.ErrEmptyUtterance), errors.Is(err, models.ErrEmptyUserText):
		status, msg = http.StatusBadRequest, models.ErrEmptyUserText.Error()
	case errors.Is(err, models.ErrUserTextTooLong):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, dialog.ErrConversationEnded):
		status, msg = http.StatusConflict, "Conversation has ended"
	case errors.Is(err, store.ErrStaleTurn), errors.Is(err, store.ErrTurnExists):
		status, msg = http.StatusConflict, "Conversation was updated concurrently, retry the turn"
	}
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err)
	} else {
		slog.Warn(op+" rejected", "error", err, "status", status)
	}
	writeJSONResponse(w, status, models.Error(msg))
}
