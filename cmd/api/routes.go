package main

import (
	"net/http"

	"github.com/PaulBabatuyi/privtalk/internal/middleware"
)

// routes builds the HTTP surface. Auth endpoints are rate limited per
// client; everything else requires a valid session token.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/auth/register", middleware.RateLimit(s.limiter, http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /api/auth/login", middleware.RateLimit(s.limiter, http.HandlerFunc(s.handleLogin)))

	mux.Handle("GET /api/messages/users", s.authed(s.handleSidebar))
	mux.Handle("GET /api/messages/search/{peerId}", s.authed(s.handleSearch))
	mux.Handle("GET /api/messages/{peerId}", s.authed(s.handleHistory))
	mux.Handle("POST /api/messages/send/{peerId}", s.authed(s.handleSend))
	mux.Handle("POST /api/messages/read/{senderId}", s.authed(s.handleMarkRead))
	mux.Handle("DELETE /api/messages/{messageId}", s.authed(s.handleDelete))

	mux.Handle("GET /ws", s.authed(s.handleWebSocket))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}

func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return middleware.Authenticate(s.auth, h)
}
