package handlers

import (
	"net/http"

	"go.uber.org/zap"

	mw "habitsync/internal/middleware"
	"habitsync/internal/services"
)

// ProgressHandler covers day-to-day progress: the session-start reset check and
// the recorded daily completion rates.
type ProgressHandler struct {
	scheduler *services.Scheduler
	stats     *services.StatsService
	log       *zap.Logger
}

func NewProgressHandler(scheduler *services.Scheduler, stats *services.StatsService, log *zap.Logger) *ProgressHandler {
	return &ProgressHandler{scheduler: scheduler, stats: stats, log: log}
}

func (h *ProgressHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	res, err := h.scheduler.CheckAndReset(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		writeError(w, h.log, err, "could not reset habits")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Daily returns one completion rate per day for the last days (default 7), zero-filled.
func (h *ProgressHandler) Daily(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(w, r, "days")
	if !ok {
		return
	}
	rates, err := h.stats.Daily(r.Context(), mw.UserID(r.Context()), days)
	if err != nil {
		writeError(w, h.log, err, "could not fetch daily stats")
		return
	}
	writeJSON(w, http.StatusOK, rates)
}
