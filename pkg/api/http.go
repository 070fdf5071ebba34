package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"chatd/pkg/api/handlers"
	"chatd/pkg/auth"
	"chatd/pkg/chat"
	"chatd/pkg/telemetry"
)

// Handler returns the chat API router. Every route requires a verified
// caller identity; request metrics are recorded for all of them.
func Handler(orc *chat.Orchestrator) http.Handler {
	r := mux.NewRouter()
	r.Use(mux.MiddlewareFunc(telemetry.Middleware))
	r.Use(mux.MiddlewareFunc(auth.RequireSignedCaller))

	handlers.RegisterChat(r, orc)
	handlers.RegisterThreads(r)
	return r
}
