package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"habitsync/internal/feed"
	mw "habitsync/internal/middleware"
	"habitsync/internal/services"
)

const heartbeatInterval = 15 * time.Second

type HabitHandler struct {
	habits    *services.HabitService
	scheduler *services.Scheduler
	broker    *feed.Broker
	log       *zap.Logger
	heartbeat time.Duration
}

func NewHabitHandler(habits *services.HabitService, scheduler *services.Scheduler, broker *feed.Broker, log *zap.Logger) *HabitHandler {
	return &HabitHandler{habits: habits, scheduler: scheduler, broker: broker, log: log, heartbeat: heartbeatInterval}
}

// List runs the day-rollover check before returning the habits, the same as
// opening the dashboard does.
func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := mw.UserID(r.Context())
	reset, err := h.scheduler.CheckAndReset(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err, "could not reset habits")
		return
	}
	habits, err := h.habits.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err, "could not fetch habits")
		return
	}
	writeJSON(w, http.StatusOK, habitListResponse{Habits: habits, Reset: reset})
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.HabitInput
	if !decodeBody(w, r, &in, true) {
		return
	}
	habit, err := h.habits.Create(r.Context(), mw.UserID(r.Context()), in)
	if err != nil {
		writeError(w, h.log, err, "could not create habit")
		return
	}
	writeJSON(w, http.StatusCreated, habit)
}

func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.HabitInput
	if !decodeBody(w, r, &in, false) {
		return
	}
	habit, err := h.habits.Update(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.log, err, "could not update habit")
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.habits.Delete(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err, "could not delete habit")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle godoc
// @Summary Toggle a habit
// @Description Flips the habit's completed flag, or sets it to "completed" when given. An optional note is journaled with the completion.
// @Tags habits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Habit ID"
// @Success 200 {object} services.ToggleResult
// @Failure 404 {string} string "Not found"
// @Router /habits/{id}/toggle [post]
func (h *HabitHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var in services.ToggleInput
	if !decodeBody(w, r, &in, true) {
		return
	}
	userID := mw.UserID(r.Context())
	// A toggle on a new day must not be undone by that day's sweep.
	if _, err := h.scheduler.CheckAndReset(r.Context(), userID); err != nil {
		writeError(w, h.log, err, "could not reset habits")
		return
	}
	res, err := h.habits.Toggle(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.log, err, "could not toggle habit")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Stream sends the full habit list on connect and again after every change,
// with a comment heartbeat between changes.
func (h *HabitHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	userID := mw.UserID(ctx)

	ch, unsubscribe := h.broker.Subscribe(userID)
	defer unsubscribe()
	h.log.Debug("habit stream opened", zap.String("user_id", userID), zap.Int("subscribers", h.broker.SubscriberCount(userID)))

	habits, err := h.habits.List(ctx, userID)
	if err != nil {
		writeError(w, h.log, err, "could not fetch habits")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	var id int64
	send := func(e feed.Event) bool {
		id++
		if err := feed.WriteEvent(w, id, e); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}
	if !send(feed.Event{Type: feed.EventSnapshot, Habits: habits, Timestamp: time.Now().UTC().Format(time.RFC3339)}) {
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok || !send(e) {
				return
			}
		case now := <-heartbeat.C:
			if _, err := fmt.Fprintf(w, ": heartbeat %s\n\n", now.UTC().Format(time.RFC3339)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
