package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"repairbox/internal/service"
)

// DayHandler serves per-day statistics, reminders and report artifacts.
type DayHandler struct {
	svc *service.RepairService
}

func NewDayHandler(svc *service.RepairService) *DayHandler {
	return &DayHandler{svc: svc}
}

func (h *DayHandler) Stats(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.Stats(dateKey))
}

func (h *DayHandler) Reminders(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reminders":          h.svc.Reminders(dateKey),
		"photoReminderIndex": h.svc.PhotoReminder(dateKey),
	})
}

func (h *DayHandler) Week(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	ref, _ := time.Parse(dateLayout, dateKey)
	c.JSON(http.StatusOK, h.svc.Week(ref))
}

func (h *DayHandler) Report(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	report, filename := h.svc.DailyReport(dateKey)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}
