package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	mw "habitsync/internal/middleware"
	"habitsync/internal/services"
)

type AuthHandler struct {
	users *services.UserService
	auth  *mw.AuthMiddleware
	log   *zap.Logger
}

func NewAuthHandler(users *services.UserService, auth *mw.AuthMiddleware, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, auth: auth, log: log}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if !decodeBody(w, r, &c, false) {
		return
	}
	if c.Email == "" || c.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}
	user, err := h.users.Signup(r.Context(), c.Email, c.Password)
	if err != nil {
		writeError(w, h.log, err, "could not create user")
		return
	}
	h.writeToken(w, http.StatusCreated, user.ID)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if !decodeBody(w, r, &c, false) {
		return
	}
	if c.Email == "" || c.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}
	user, err := h.users.Authenticate(r.Context(), c.Email, c.Password)
	if err != nil {
		writeError(w, h.log, err, "server error")
		return
	}
	h.writeToken(w, http.StatusOK, user.ID)
}

func (h *AuthHandler) writeToken(w http.ResponseWriter, status int, userID string) {
	token, err := h.auth.IssueToken(userID, time.Now())
	if err != nil {
		h.log.Error("issue token", zap.Error(err))
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, tokenResponse{Token: token})
}
