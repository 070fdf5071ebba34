package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"chatd/pkg/auth"
	"chatd/pkg/chat"
	"chatd/pkg/utils"
)

type chatRequest struct {
	ThreadID string `json:"threadId,omitempty"`
	Message  string `json:"message"`
}

type chatResponse struct {
	Reply    string `json:"reply"`
	ThreadID string `json:"threadId"`
}

// RegisterChat registers the send-message route.
func RegisterChat(r *mux.Router, orc *chat.Orchestrator) {
	r.HandleFunc("/chat", func(w http.ResponseWriter, req *http.Request) {
		sendMessage(w, req, orc)
	}).Methods(http.MethodPost)
}

// sendMessage handles POST /chat. An absent or empty threadId targets a
// new thread; a present id must belong to the caller.
func sendMessage(w http.ResponseWriter, r *http.Request, orc *chat.Orchestrator) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid_input", "invalid json")
		return
	}

	ref := chat.NewThread()
	if req.ThreadID != "" {
		ref = chat.ExistingThread(req.ThreadID)
	}

	caller := auth.CallerIDFromContext(r.Context())
	res, err := orc.SendMessage(r.Context(), caller, ref, req.Message)
	if err != nil {
		writeChatError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, chatResponse{Reply: res.Reply, ThreadID: res.ThreadID})
}
