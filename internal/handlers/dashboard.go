package handlers

import (
	"net/http"

	"go.uber.org/zap"

	mw "habitsync/internal/middleware"
	"habitsync/internal/services"
)

type DashboardHandler struct {
	stats *services.StatsService
	log   *zap.Logger
}

func NewDashboardHandler(stats *services.StatsService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{stats: stats, log: log}
}

// Stats godoc
// @Summary Habit statistics
// @Description Completion rate, best streak, active streaks, level and the last seven daily completion rates
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.Summary
// @Router /stats [get]
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	out, err := h.stats.Summary(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		writeError(w, h.log, err, "could not compute stats")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Analytics accepts optional days (default 30) and months (default 6).
func (h *DashboardHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(w, r, "days")
	if !ok {
		return
	}
	months, ok := queryInt(w, r, "months")
	if !ok {
		return
	}
	out, err := h.stats.Analytics(r.Context(), mw.UserID(r.Context()), days, months)
	if err != nil {
		writeError(w, h.log, err, "could not compute analytics")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Calendar accepts month=YYYY-MM and defaults to the current month.
func (h *DashboardHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	out, err := h.stats.Calendar(r.Context(), mw.UserID(r.Context()), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, h.log, err, "could not build calendar")
		return
	}
	writeJSON(w, http.StatusOK, out)
}
