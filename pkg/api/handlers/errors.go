package handlers

import (
	"errors"
	"net/http"

	"chatd/pkg/chat"
	"chatd/pkg/logger"
	"chatd/pkg/utils"
)

// writeChatError maps core errors onto the HTTP surface. Bodies carry a
// stable kind plus a short summary; provider payloads and storage
// internals never reach the response.
func writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrInvalidInput):
		utils.JSONError(w, http.StatusBadRequest, "invalid_input", "message is required")
	case errors.Is(err, chat.ErrUnauthenticated):
		utils.JSONError(w, http.StatusUnauthorized, "unauthenticated", "caller identity required")
	case errors.Is(err, chat.ErrThreadNotFound):
		utils.JSONError(w, http.StatusNotFound, "thread_not_found", "thread not found")
	default:
		var cf *chat.CompletionFailedError
		if errors.As(err, &cf) {
			// The user message is already durable; the caller may retry.
			utils.JSONError(w, http.StatusInternalServerError, "completion_failed",
				"assistant reply unavailable ("+string(cf.Kind)+")")
			return
		}
		logger.Error("request_failed", "error", err)
		utils.JSONError(w, http.StatusInternalServerError, "persistence_error", "internal storage failure")
	}
}
