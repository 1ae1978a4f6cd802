package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"repairbox/internal/service"
)

// InsightHandler serves the cross-day aggregations: analytics, client
// history and suggestion pools.
type InsightHandler struct {
	svc *service.RepairService
}

func NewInsightHandler(svc *service.RepairService) *InsightHandler {
	return &InsightHandler{svc: svc}
}

func (h *InsightHandler) Analytics(c *gin.Context) {
	rep := h.svc.Analytics()
	c.JSON(http.StatusOK, gin.H{
		"totalDevices": rep.TotalDevices,
		"problems":     rep.Problems,
		"models":       rep.Models,
		"topProblems":  rep.TopProblems(4),
	})
}

func (h *InsightHandler) Clients(c *gin.Context) {
	clients := h.svc.Clients()
	top := 0
	if v := c.Query("top"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			top = parsed
		}
	}
	if top > 0 && len(clients) > top {
		clients = clients[:top]
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients, "total": len(clients)})
}

func (h *InsightHandler) Suggestions(c *gin.Context) {
	clients, models, parts := h.svc.Suggestions()
	c.JSON(http.StatusOK, gin.H{
		"clients": clients,
		"devices": models,
		"parts":   parts,
	})
}
