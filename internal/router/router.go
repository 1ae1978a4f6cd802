package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"repairbox/api"
	"repairbox/internal/handler"
)

const (
	pathHealth  = "/health"
	pathReady   = "/ready"
	pathStatus  = "/status"
	pathSwagger = "/swagger"
)

// Deps are the handler groups the router wires up.
type Deps struct {
	Device    *handler.DeviceHandler
	Day       *handler.DayHandler
	Artifact  *handler.ArtifactHandler
	Selection *handler.SelectionHandler
	Backup    *handler.BackupHandler
	Insight   *handler.InsightHandler
}

func New(deps Deps) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(pathHealth, handler.Health)
	r.GET(pathReady, handler.Ready)
	r.GET(pathStatus, deps.Backup.Status)

	swaggerUI := ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))
	r.GET(pathSwagger+"/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		swaggerUI(c)
	})

	v1 := r.Group("/api/v1")
	{
		days := v1.Group("/days/:date")
		{
			days.GET("/devices", deps.Device.List)
			days.POST("/devices", deps.Device.Create)
			days.GET("/devices/:index", deps.Device.Get)
			days.PUT("/devices/:index", deps.Device.Update)
			days.DELETE("/devices/:index", deps.Device.Delete)
			days.POST("/devices/:index/duplicate", deps.Device.Duplicate)
			days.POST("/devices/:index/photo", deps.Device.Photo)

			days.GET("/devices/:index/invoice", deps.Artifact.Invoice)
			days.GET("/devices/:index/ticket", deps.Artifact.Ticket)
			days.GET("/devices/:index/qr", deps.Artifact.QR)
			days.GET("/devices/:index/qr.png", deps.Artifact.QRImage)
			days.GET("/devices/:index/sms", deps.Artifact.SMS)

			days.GET("/stats", deps.Day.Stats)
			days.GET("/reminders", deps.Day.Reminders)
			days.GET("/week", deps.Day.Week)
			days.GET("/report", deps.Day.Report)
		}

		sel := v1.Group("/selection")
		{
			sel.GET("", deps.Selection.Get)
			sel.POST("/mode", deps.Selection.ToggleMode)
			sel.POST("/toggle", deps.Selection.Toggle)
			sel.POST("/all", deps.Selection.SelectAll)
			sel.POST("/status", deps.Selection.BulkStatus)
			sel.POST("/delete", deps.Selection.BulkDelete)
			sel.POST("/sms", deps.Selection.BulkSMS)
		}

		v1.GET("/analytics", deps.Insight.Analytics)
		v1.GET("/clients", deps.Insight.Clients)
		v1.GET("/suggestions", deps.Insight.Suggestions)

		v1.GET("/backup/export", deps.Backup.Export)
		v1.POST("/backup/import", deps.Backup.Import)
		v1.DELETE("/backup", deps.Backup.Wipe)
	}

	return r
}
