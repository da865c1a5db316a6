package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	mw "habitsync/internal/middleware"
	"habitsync/internal/services"
)

// MigrateHandler moves a user's data in and out of the service.
type MigrateHandler struct {
	export *services.ExportService
	log    *zap.Logger
}

func NewMigrateHandler(export *services.ExportService, log *zap.Logger) *MigrateHandler {
	return &MigrateHandler{export: export, log: log}
}

// Export godoc
// @Summary Export user data
// @Description Returns habits, todos, completion history, notes and daily stats as one JSON document
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.Export
// @Router /me/export [get]
func (h *MigrateHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.export.Export(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		writeError(w, h.log, err, "could not export data")
		return
	}
	filename := fmt.Sprintf("habitsync-export-%s.json", data.ExportedAt.Format("2006-01-02"))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	writeJSON(w, http.StatusOK, data)
}

// Import godoc
// @Summary Import user data
// @Description Replaces the user's habits and todos with those from an export
// @Tags me
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.ImportResult
// @Failure 400 {string} string "Invalid export"
// @Router /me/import [post]
func (h *MigrateHandler) Import(w http.ResponseWriter, r *http.Request) {
	var data services.Export
	if !decodeBody(w, r, &data, false) {
		return
	}
	res, err := h.export.Import(r.Context(), mw.UserID(r.Context()), data)
	if err != nil {
		writeError(w, h.log, err, "could not import data")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
