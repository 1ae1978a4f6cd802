package handler_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairbox/internal/database"
	"repairbox/internal/handler"
	"repairbox/internal/router"
	"repairbox/internal/service"
	"repairbox/internal/smsgw"
	"repairbox/internal/store"
)

const day = "2026-03-01"

func setupRouter(t *testing.T) http.Handler {
	gin.SetMode(gin.TestMode)

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.MigrateUp(db))

	log := slog.New(slog.DiscardHandler)
	svc := service.NewRepairService(store.NewGateway(db, log), smsgw.NewClient("", log), log)
	require.NoError(t, svc.Load(false))

	return router.New(router.Deps{
		Device:    handler.NewDeviceHandler(svc),
		Day:       handler.NewDayHandler(svc),
		Artifact:  handler.NewArtifactHandler(svc),
		Selection: handler.NewSelectionHandler(svc),
		Backup:    handler.NewBackupHandler(svc),
		Insight:   handler.NewInsightHandler(svc),
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func createDevice(t *testing.T, h http.Handler, client string) {
	w := do(t, h, http.MethodPost, "/api/v1/days/"+day+"/devices", gin.H{
		"client": client, "phone": "+111", "model": "iPhone 12", "problem": "screen",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestDeviceLifecycle(t *testing.T) {
	h := setupRouter(t)

	t.Run("create", func(t *testing.T) {
		createDevice(t, h, "Anna")

		w := do(t, h, http.MethodGet, "/api/v1/days/"+day+"/devices", nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, float64(1), body["total"])
	})

	t.Run("create rejects missing required fields", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/v1/days/"+day+"/devices", gin.H{"client": "X"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("create rejects unknown enum values", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/v1/days/"+day+"/devices", gin.H{
			"client": "Anna", "model": "iPhone", "problem": "screen", "status": "exploded",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid status", decode(t, w)["error"])
	})

	t.Run("bad date is rejected", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/v1/days/03-01-2026/devices", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get missing index is 404", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/v1/days/"+day+"/devices/9", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("update and delete", func(t *testing.T) {
		w := do(t, h, http.MethodPut, "/api/v1/days/"+day+"/devices/0", gin.H{
			"client": "Anna Petrova", "model": "iPhone 12", "problem": "screen",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Anna Petrova", decode(t, w)["client"])

		w = do(t, h, http.MethodDelete, "/api/v1/days/"+day+"/devices/0", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = do(t, h, http.MethodDelete, "/api/v1/days/"+day+"/devices/0", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDuplicateEndpoint(t *testing.T) {
	h := setupRouter(t)
	createDevice(t, h, "Anna")

	w := do(t, h, http.MethodPost, "/api/v1/days/"+day+"/devices/0/duplicate", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Anna (copy)", decode(t, w)["client"])
}

func TestSelectionEndpoints(t *testing.T) {
	h := setupRouter(t)
	createDevice(t, h, "Anna")
	createDevice(t, h, "Boris")

	t.Run("toggle outside select mode conflicts", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/v1/selection/toggle", gin.H{"index": 0})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	w := do(t, h, http.MethodPost, "/api/v1/selection/mode", gin.H{"date": day})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["active"])

	t.Run("bulk on empty selection warns", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/api/v1/selection/status", gin.H{"status": "repaired"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w), "warning")
	})

	w = do(t, h, http.MethodPost, "/api/v1/selection/all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["count"])

	w = do(t, h, http.MethodPost, "/api/v1/selection/status", gin.H{"status": "repaired"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["updated"])

	stats := do(t, h, http.MethodGet, "/api/v1/days/"+day+"/stats", nil)
	require.Equal(t, http.StatusOK, stats.Code)
	assert.Equal(t, float64(2), decode(t, stats)["repaired"])
}

func TestArtifactEndpoints(t *testing.T) {
	h := setupRouter(t)
	createDevice(t, h, "Anna")

	t.Run("qr payload", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/v1/days/"+day+"/devices/0/qr", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "RB-"+day+"-0", decode(t, w)["id"])
	})

	t.Run("qr image", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/v1/days/"+day+"/devices/0/qr.png", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	})

	t.Run("thermal ticket", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/v1/days/"+day+"/devices/0/ticket", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "RB-"+day+"-1")
	})

	t.Run("report downloads as attachment", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/v1/days/"+day+"/report", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "RepairBox_Report_"+day+".txt")
	})
}

func TestBackupEndpoints(t *testing.T) {
	h := setupRouter(t)
	createDevice(t, h, "Anna")

	export := do(t, h, http.MethodGet, "/api/v1/backup/export", nil)
	require.Equal(t, http.StatusOK, export.Code)
	backup := export.Body.Bytes()

	t.Run("import preview then confirm", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/backup/import", bytes.NewReader(backup))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode(t, w)["devices"])

		req = httptest.NewRequest(http.MethodPost, "/api/v1/backup/import?confirm=true", bytes.NewReader(backup))
		w = httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode(t, w)["imported"])
	})

	t.Run("wipe requires the confirmation phrase", func(t *testing.T) {
		w := do(t, h, http.MethodDelete, "/api/v1/backup", nil)
		assert.Equal(t, http.StatusPreconditionRequired, w.Code)

		w = do(t, h, http.MethodDelete, "/api/v1/backup?confirm=DELETE", nil)
		require.Equal(t, http.StatusOK, w.Code)

		list := do(t, h, http.MethodGet, "/api/v1/days/"+day+"/devices", nil)
		assert.Equal(t, float64(0), decode(t, list)["total"])
	})

	t.Run("status endpoint reports the indicator", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/status", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, decode(t, w), "status")
	})
}

func TestHealthEndpoints(t *testing.T) {
	h := setupRouter(t)
	for _, path := range []string{"/health", "/ready"} {
		w := do(t, h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
