package handlers

import (
	"encoding/csv"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/gatekeeper/internal/models"
	"github.com/your-org/gatekeeper/internal/plate"
	"github.com/your-org/gatekeeper/internal/storage"
	"github.com/your-org/gatekeeper/pkg/dto"
)

type LogHandler struct {
	db   *storage.PostgresStore
	docs *storage.DocumentStore
}

func NewLogHandler(db *storage.PostgresStore, docs *storage.DocumentStore) *LogHandler {
	return &LogHandler{db: db, docs: docs}
}

func (h *LogHandler) List(c *gin.Context) {
	plateKey, from, to := logFilters(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, err := h.db.QueryAccessLogs(c.Request.Context(), plateKey, from, to, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.AccessLogResponse, 0, len(logs))
	for _, l := range logs {
		resp = append(resp, logToResponse(&l))
	}

	c.JSON(http.StatusOK, dto.AccessLogListResponse{Logs: resp, Total: len(resp)})
}

// Export writes the filtered log entries as CSV.
func (h *LogHandler) Export(c *gin.Context) {
	plateKey, from, to := logFilters(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10000"))

	logs, err := h.db.QueryAccessLogs(c.Request.Context(), plateKey, from, to, limit, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="access_logs.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "camera_id", "user", "plate", "outcome", "time"})
	for _, l := range logs {
		cameraID := ""
		if l.CameraID != nil {
			cameraID = l.CameraID.String()
		}
		_ = w.Write([]string{
			l.ID.String(),
			cameraID,
			l.User,
			l.Plate,
			string(l.Outcome),
			l.Time.Format(time.RFC3339),
		})
	}
	w.Flush()
}

func logFilters(c *gin.Context) (plateKey string, from, to *time.Time) {
	if p := c.Query("plate"); p != "" {
		plateKey = plate.Normalize(p)
	}
	if fromStr := c.Query("from"); fromStr != "" {
		if t, err := time.Parse(time.RFC3339, fromStr); err == nil {
			from = &t
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		if t, err := time.Parse(time.RFC3339, toStr); err == nil {
			to = &t
		}
	}
	return plateKey, from, to
}

func logToResponse(l *models.AccessLog) dto.AccessLogResponse {
	r := dto.AccessLogResponse{
		ID:        l.ID,
		CameraID:  l.CameraID,
		User:      l.User,
		Plate:     l.Plate,
		Outcome:   string(l.Outcome),
		Time:      l.Time.Format(time.RFC3339),
		CreatedAt: l.CreatedAt.Format(time.RFC3339),
	}
	if l.SnapshotKey != "" {
		r.SnapshotURL = "/v1/snapshots?key=" + url.QueryEscape(l.SnapshotKey)
	}
	return r
}

// Snapshot proxies a stored snapshot image from MinIO by object key.
func (h *LogHandler) Snapshot(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot key required"})
		return
	}

	data, err := h.docs.GetObject(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}
