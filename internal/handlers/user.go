package handlers

import (
	"net/http"

	"go.uber.org/zap"

	mw "habitsync/internal/middleware"
	"habitsync/internal/services"
)

type UserHandler struct {
	users *services.UserService
	log   *zap.Logger
}

func NewUserHandler(users *services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

// GetMe returns the current user's profile with level and garden stage.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.users.Profile(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		writeError(w, h.log, err, "could not load profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateMe updates the provided profile fields. A goal of 0 clears it.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var body services.ProfileInput
	if !decodeBody(w, r, &body, false) {
		return
	}
	p, err := h.users.UpdateProfile(r.Context(), mw.UserID(r.Context()), body)
	if err != nil {
		writeError(w, h.log, err, "could not update profile")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
