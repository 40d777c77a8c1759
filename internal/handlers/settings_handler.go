package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "creditmax/internal/errors"
	"creditmax/internal/services"
)

// maxImportSize caps import payloads at 5 MB.
const maxImportSize = 5 << 20

// SettingsHandler handles backup export and import
type SettingsHandler struct {
	backupService services.BackupServicer
	auditService  services.AuditServicer
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(backupService services.BackupServicer, auditService services.AuditServicer) *SettingsHandler {
	return &SettingsHandler{backupService: backupService, auditService: auditService}
}

// ExportData returns the user's full dataset as a downloadable JSON file
// @Summary     Export data
// @Description Download all cards, subscriptions, and AI usage items as JSON
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.ExportPayload "Export payload"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /settings/export [get]
func (h *SettingsHandler) ExportData(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payload, err := h.backupService.Export(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("creditmax-backup-%s.json", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, payload)
}

// ImportData restores a previously exported dataset
// @Summary     Import data
// @Description Replace each collection present in the uploaded backup; absent collections are left untouched
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MessageResponse "Import complete"
// @Failure     400 {object} ErrorResponse "Invalid backup file"
// @Router      /settings/import [post]
func (h *SettingsHandler) ImportData(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidImport, err))
		return
	}

	if err := h.backupService.Import(userID, data); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "import", "backup", userID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Import complete"})
}
