package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/PaulBabatuyi/privtalk/internal/chat"
	"github.com/PaulBabatuyi/privtalk/internal/middleware"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// objectIDPattern is the hexadecimal identifier shape path IDs must
// match; anything else does not resolve to a resource.
var objectIDPattern = regexp.MustCompile(`^[a-f0-9]{24}$`)

// pathObjectID reads a path segment and parses it as an ObjectID.
func pathObjectID(r *http.Request, name string) (bson.ObjectID, bool) {
	raw := r.PathValue(name)
	if !objectIDPattern.MatchString(raw) {
		return bson.ObjectID{}, false
	}
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return bson.ObjectID{}, false
	}
	return id, true
}

// requesterID extracts the authenticated user's id from the request
// context (set by the auth middleware).
func requesterID(r *http.Request) (bson.ObjectID, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return bson.ObjectID{}, false
	}
	id, err := claims.SubjectID()
	if err != nil {
		return bson.ObjectID{}, false
	}
	return id, true
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// errorResponse is the error envelope every failed request returns.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeServiceError maps a service error onto its status code. Upstream
// detail is only exposed in debug mode; production responses carry the
// generic message.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := chat.HTTPStatus(err)
	resp := errorResponse{Error: errorMessage(err)}

	if status == http.StatusInternalServerError {
		log.Errorf("request failed: %v", err)
		if s.cfg.Debug {
			resp.Message = err.Error()
		} else {
			resp.Error = "internal server error"
		}
	}

	writeJSON(w, status, resp)
}

// errorMessage returns the service-level message without the wrapped
// collaborator detail.
func errorMessage(err error) string {
	var e *chat.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// readJSON decodes a request body, rejecting unknown shapes gracefully.
func readJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
