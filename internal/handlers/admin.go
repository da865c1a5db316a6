package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"habitsync/internal/services"
)

type AdminHandler struct {
	stats *services.StatsService
	log   *zap.Logger
}

func NewAdminHandler(stats *services.StatsService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{stats: stats, log: log}
}

// Overview godoc
// @Summary Get admin overview
// @Description Returns instance-wide totals and last-week activity (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} store.Overview
// @Failure 403 {string} string "Forbidden"
// @Failure 500 {string} string "Internal server error"
// @Router /admin/overview [get]
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	out, err := h.stats.Overview(r.Context())
	if err != nil {
		writeError(w, h.log, err, "server error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}
