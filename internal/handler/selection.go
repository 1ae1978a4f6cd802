package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"repairbox/internal/model"
	"repairbox/internal/service"
)

// SelectionHandler drives the bulk-select state machine and the batch
// operations over it.
type SelectionHandler struct {
	svc *service.RepairService
}

func NewSelectionHandler(svc *service.RepairService) *SelectionHandler {
	return &SelectionHandler{svc: svc}
}

func (h *SelectionHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Selection())
}

type modeRequest struct {
	Date string `json:"date" binding:"required"`
}

func (h *SelectionHandler) ToggleMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	c.JSON(http.StatusOK, h.svc.ToggleSelectMode(req.Date))
}

type toggleRequest struct {
	Index *int `json:"index" binding:"required"`
}

func (h *SelectionHandler) Toggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	state, err := h.svc.ToggleSelect(*req.Index)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *SelectionHandler) SelectAll(c *gin.Context) {
	state, err := h.svc.SelectAll()
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type bulkStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *SelectionHandler) BulkStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	n, err := h.svc.BulkStatus(model.Status(req.Status))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *SelectionHandler) BulkDelete(c *gin.Context) {
	n, err := h.svc.BulkDelete()
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

type bulkSMSRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *SelectionHandler) BulkSMS(c *gin.Context) {
	var req bulkSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	msgs, err := h.svc.BulkSMS(req.Message)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": len(msgs), "messages": msgs})
}
