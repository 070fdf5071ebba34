package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"chatd/pkg/auth"
	"chatd/pkg/chat"
	"chatd/pkg/models"
	"chatd/pkg/utils"
)

type messageView struct {
	Role      models.Role `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

type threadView struct {
	ID        string        `json:"id"`
	Title     string        `json:"title,omitempty"`
	Messages  []messageView `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// RegisterThreads registers the read-side thread routes.
func RegisterThreads(r *mux.Router) {
	r.HandleFunc("/threads", listThreads).Methods(http.MethodGet)
	r.HandleFunc("/threads/{id}", getThread).Methods(http.MethodGet)
	r.HandleFunc("/threads/{id}", deleteThread).Methods(http.MethodDelete)
}

// listThreads handles GET /threads: metadata only, newest activity first.
func listThreads(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerIDFromContext(r.Context())
	sums, err := chat.ListThreads(caller)
	if err != nil {
		writeChatError(w, err)
		return
	}
	if sums == nil {
		sums = []models.ThreadSummary{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, sums)
}

// getThread handles GET /threads/{id}: the full message history.
func getThread(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerIDFromContext(r.Context())
	th, err := chat.GetThread(caller, mux.Vars(r)["id"])
	if err != nil {
		writeChatError(w, err)
		return
	}

	view := threadView{
		ID:        th.ID,
		Title:     th.Title,
		Messages:  make([]messageView, 0, len(th.Messages)),
		CreatedAt: th.CreatedAt,
		UpdatedAt: th.UpdatedAt,
	}
	for _, m := range th.Messages {
		view.Messages = append(view.Messages, messageView{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	_ = utils.JSONWrite(w, http.StatusOK, view)
}

// deleteThread handles DELETE /threads/{id}. Deleting an already-deleted
// thread is not an error; the response reports deleted=false.
func deleteThread(w http.ResponseWriter, r *http.Request) {
	caller := auth.CallerIDFromContext(r.Context())
	deleted, err := chat.DeleteThread(caller, mux.Vars(r)["id"])
	if err != nil {
		writeChatError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]bool{"deleted": deleted})
}
