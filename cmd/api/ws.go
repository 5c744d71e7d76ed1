package main

import (
	"net/http"

	"github.com/PaulBabatuyi/privtalk/internal/realtime"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// handleWebSocket upgrades an authenticated request and hands the
// connection to the realtime layer. A second connection for the same user
// replaces the first.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		log.Warnf("websocket upgrade failed for user %s: %v", requester.Hex(), err)
		return
	}

	client := realtime.NewClient(s.registry, s.dispatch, requester.Hex(), conn)
	go client.WritePump()
	go client.ReadPump()
}

// checkOrigin admits browser connections from the configured origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || origin == allowed {
			return true
		}
	}
	return false
}
