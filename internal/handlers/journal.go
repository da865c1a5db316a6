package handlers

import (
	"net/http"

	"go.uber.org/zap"

	mw "habitsync/internal/middleware"
	"habitsync/internal/services"
)

// JournalHandler serves the habit notes journal.
type JournalHandler struct {
	notes *services.NoteService
	log   *zap.Logger
}

func NewJournalHandler(notes *services.NoteService, log *zap.Logger) *JournalHandler {
	return &JournalHandler{notes: notes, log: log}
}

func (h *JournalHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if req.HabitID == "" {
		http.Error(w, "habit_id required", http.StatusBadRequest)
		return
	}
	note, err := h.notes.Add(r.Context(), mw.UserID(r.Context()), req.HabitID, req.Note)
	if err != nil {
		writeError(w, h.log, err, "could not save note")
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// List returns notes newest first. Optional query params: habit_id, limit (default 50), offset.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}
	notes, err := h.notes.List(r.Context(), mw.UserID(r.Context()), r.URL.Query().Get("habit_id"), limit, offset)
	if err != nil {
		writeError(w, h.log, err, "could not fetch notes")
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *JournalHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	days, err := h.notes.ByDate(r.Context(), mw.UserID(r.Context()), limit)
	if err != nil {
		writeError(w, h.log, err, "could not fetch notes")
		return
	}
	writeJSON(w, http.StatusOK, days)
}
