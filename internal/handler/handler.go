package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"repairbox/internal/errs"
)

const dateLayout = "2006-01-02"

// parseDate validates the :date path parameter (zero-padded ISO form; the
// whole ledger is keyed on it).
func parseDate(c *gin.Context) (string, bool) {
	dateKey := c.Param("date")
	if _, err := time.Parse(dateLayout, dateKey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return "", false
	}
	return dateKey, true
}

func parseIndex(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return 0, false
	}
	return idx, true
}

// respondErr maps domain errors to HTTP statuses. An empty selection is a
// user-facing warning, not a failure; nothing here is fatal to the server.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrDeviceNotFound), errors.Is(err, errs.ErrIndexOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrEmptySelection):
		c.JSON(http.StatusBadRequest, gin.H{"warning": err.Error()})
	case errors.Is(err, errs.ErrNotSelecting):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrInvalidSnapshot), errors.Is(err, errs.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrConfirmationRequired):
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
