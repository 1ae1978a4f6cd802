package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"repairbox/internal/model"
	"repairbox/internal/service"
)

type DeviceHandler struct {
	svc *service.RepairService
}

func NewDeviceHandler(svc *service.RepairService) *DeviceHandler {
	return &DeviceHandler{svc: svc}
}

type deviceRequest struct {
	Client   string `json:"client" binding:"required"`
	Phone    string `json:"phone"`
	Model    string `json:"model" binding:"required"`
	Problem  string `json:"problem" binding:"required"`
	Price    string `json:"price"`
	Duration string `json:"duration"`
	Status   string `json:"status"`
	Urgency  string `json:"urgency"`
	Priority string `json:"priority"`
	Parts    string `json:"parts"`
	Warranty string `json:"warranty"`
}

// toDevice validates the closed enumerations: a value must be one of the
// enumerated constants or absent (absent gets the default on Normalize).
func (r *deviceRequest) toDevice() (*model.Device, string) {
	if r.Status != "" && !model.Status(r.Status).Valid() {
		return nil, "invalid status"
	}
	if r.Urgency != "" && !model.Urgency(r.Urgency).Valid() {
		return nil, "invalid urgency"
	}
	if r.Priority != "" && !model.Priority(r.Priority).Valid() {
		return nil, "invalid priority"
	}
	return &model.Device{
		Client:   r.Client,
		Phone:    r.Phone,
		Model:    r.Model,
		Problem:  r.Problem,
		Price:    r.Price,
		Duration: r.Duration,
		Status:   model.Status(r.Status),
		Urgency:  model.Urgency(r.Urgency),
		Priority: model.Priority(r.Priority),
		Parts:    r.Parts,
		Warranty: r.Warranty,
	}, ""
}

func (h *DeviceHandler) List(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	devices := h.svc.ListDay(dateKey, c.Query("q"), c.DefaultQuery("filter", "all"))
	c.JSON(http.StatusOK, gin.H{
		"date":    dateKey,
		"devices": devices,
		"total":   len(devices),
	})
}

func (h *DeviceHandler) Get(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	idx, ok := parseIndex(c)
	if !ok {
		return
	}
	d, err := h.svc.GetDevice(dateKey, idx)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DeviceHandler) Create(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	var req deviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	d, msg := req.toDevice()
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	created, err := h.svc.CreateDevice(dateKey, d)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *DeviceHandler) Update(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	idx, ok := parseIndex(c)
	if !ok {
		return
	}
	var req deviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	d, msg := req.toDevice()
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	updated, err := h.svc.UpdateDevice(dateKey, idx, d)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *DeviceHandler) Delete(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	idx, ok := parseIndex(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteDevice(dateKey, idx); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": 1})
}

func (h *DeviceHandler) Duplicate(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	idx, ok := parseIndex(c)
	if !ok {
		return
	}
	dup, err := h.svc.DuplicateDevice(dateKey, idx)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, dup)
}

type photoRequest struct {
	Kind    string `json:"kind" binding:"required"`
	DataURL string `json:"dataUrl" binding:"required"`
}

func (h *DeviceHandler) Photo(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	idx, ok := parseIndex(c)
	if !ok {
		return
	}
	var req photoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	kind := service.PhotoKind(req.Kind)
	if kind != service.PhotoBefore && kind != service.PhotoAfter {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be before or after"})
		return
	}
	if err := h.svc.SetPhoto(dateKey, idx, kind, req.DataURL); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": req.Kind})
}
