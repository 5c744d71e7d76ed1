package main

import (
	"net/http"
	"regexp"
	"time"

	"github.com/PaulBabatuyi/privtalk/internal/auth"
	"github.com/PaulBabatuyi/privtalk/internal/data"
	"github.com/PaulBabatuyi/privtalk/internal/normalize"
	log "github.com/sirupsen/logrus"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *data.User `json:"user"`
}

// handleRegister creates an account and opens a session.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	req.Email = normalize.Email(req.Email)
	if !emailPattern.MatchString(req.Email) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid email address"})
		return
	}
	if len(req.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "password must be at least 6 characters"})
		return
	}
	if req.FullName == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "full name is required"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to hash password"})
		return
	}

	user, err := s.accounts.CreateUser(r.Context(), req.Email, req.FullName, hashed)
	if err != nil {
		if err == data.ErrUserExists {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "email already registered"})
			return
		}
		log.Errorf("create user failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to create user"})
		return
	}

	s.openSession(w, http.StatusCreated, user)
}

// handleLogin authenticates an account and opens a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, err := s.accounts.GetUserByEmail(r.Context(), normalize.Email(req.Email))
	if err != nil {
		// invalid email and invalid password answer identically
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		return
	}

	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		return
	}

	s.openSession(w, http.StatusOK, user)
}

// openSession issues a token, sets the session cookie and writes the
// session response.
func (s *Server) openSession(w http.ResponseWriter, status int, user *data.User) {
	token, expiresAt, err := s.auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		log.Errorf("failed to generate token: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to generate token"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSON(w, status, sessionResponse{Token: token, ExpiresAt: expiresAt, User: user})
}
