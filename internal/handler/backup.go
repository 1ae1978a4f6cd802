package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"repairbox/internal/errs"
	"repairbox/internal/service"
)

// wipeConfirmPhrase gates the full data wipe. The UI asks the user twice;
// the API encodes the second step as an explicit phrase.
const wipeConfirmPhrase = "DELETE"

// BackupHandler serves snapshot export, two-phase import, wipe and the
// save indicator.
type BackupHandler struct {
	svc *service.RepairService
}

func NewBackupHandler(svc *service.RepairService) *BackupHandler {
	return &BackupHandler{svc: svc}
}

func (h *BackupHandler) Export(c *gin.Context) {
	data, filename, err := h.svc.Export()
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/json", data)
}

// Import is two-phase: without confirm=true it only validates and returns
// the record count for a confirmation prompt; with confirm=true it
// atomically replaces the entire state. A document without a top-level
// devices field is rejected either way, before any mutation.
func (h *BackupHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body"})
		return
	}

	if c.Query("confirm") != "true" {
		count, err := h.svc.ImportPreview(data)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"devices":      count,
			"confirmation": "re-send with ?confirm=true to replace all current data",
		})
		return
	}

	count, err := h.svc.ImportApply(data)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": count})
}

func (h *BackupHandler) Wipe(c *gin.Context) {
	if c.Query("confirm") != wipeConfirmPhrase {
		respondErr(c, errs.ErrConfirmationRequired)
		return
	}
	if err := h.svc.Wipe(); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wiped": true})
}

// Status reports the save indicator and last-saved instant.
func (h *BackupHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Indicator())
}
