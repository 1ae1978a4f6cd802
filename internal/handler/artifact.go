package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"repairbox/internal/service"
)

// ArtifactHandler serves the per-ticket generated documents: invoice,
// printable thermal ticket, QR label and SMS composition.
type ArtifactHandler struct {
	svc *service.RepairService
}

func NewArtifactHandler(svc *service.RepairService) *ArtifactHandler {
	return &ArtifactHandler{svc: svc}
}

func (h *ArtifactHandler) Invoice(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	idx, ok := parseIndex(c)
	if !ok {
		return
	}
	text, filename, err := h.svc.Invoice(dateKey, idx)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (h *ArtifactHandler) Ticket(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	idx, ok := parseIndex(c)
	if !ok {
		return
	}
	html, err := h.svc.ThermalTicket(dateKey, idx)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *ArtifactHandler) QR(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	idx, ok := parseIndex(c)
	if !ok {
		return
	}
	payload, err := h.svc.QRLabel(dateKey, idx)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *ArtifactHandler) QRImage(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	idx, ok := parseIndex(c)
	if !ok {
		return
	}
	payload, err := h.svc.QRLabel(dateKey, idx)
	if err != nil {
		respondErr(c, err)
		return
	}
	png, err := payload.QRPNG()
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *ArtifactHandler) SMS(c *gin.Context) {
	dateKey, ok := parseDate(c)
	if !ok {
		return
	}
	idx, ok := parseIndex(c)
	if !ok {
		return
	}
	out, err := h.svc.SMSFor(dateKey, idx)
	if err != nil {
		respondErr(c, err)
		return
	}
	if out.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device has no phone number"})
		return
	}
	c.JSON(http.StatusOK, out)
}
