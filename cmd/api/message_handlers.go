package main

import (
	"net/http"

	"github.com/PaulBabatuyi/privtalk/internal/chat"
)

// handleSidebar lists every other user with their last exchanged message
// and the requester's unread count, most recent conversation first.
func (s *Server) handleSidebar(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	entries, err := s.svc.ListConversations(r.Context(), requester)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleHistory returns the full conversation with the peer named in the
// path, flipping the peer's unread messages to read as a side effect.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}
	peer, ok := pathObjectID(r, "peerId")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
		return
	}

	conv, err := s.svc.GetHistory(r.Context(), requester, peer)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// handleSend persists a message to the peer named in the path and pushes
// it to the receiver when they are connected.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}
	receiver, ok := pathObjectID(r, "peerId")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
		return
	}

	var req chat.SendRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	msg, err := s.svc.Send(r.Context(), requester, receiver, &req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// handleMarkRead flips every unread message from the sender named in the
// path to read. Safe to repeat.
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}
	sender, ok := pathObjectID(r, "senderId")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
		return
	}

	if err := s.svc.MarkRead(r.Context(), requester, sender); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Messages marked as read"})
}

// handleDelete removes a message the requester sent.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}
	messageID, ok := pathObjectID(r, "messageId")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "message not found"})
		return
	}

	msg, err := s.svc.DeleteMessage(r.Context(), requester, messageID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Message deleted successfully",
		"messageId": msg.ID.Hex(),
	})
}

// handleSearch finds messages in the conversation with the peer named in
// the path whose text contains the q parameter.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	requester, ok := requesterID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}
	peer, ok := pathObjectID(r, "peerId")
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
		return
	}

	result, err := s.svc.Search(r.Context(), requester, peer, r.URL.Query().Get("q"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
