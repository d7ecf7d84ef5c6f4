package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/gatekeeper/internal/models"
	"github.com/your-org/gatekeeper/internal/storage"
	"github.com/your-org/gatekeeper/pkg/dto"
)

type AlertHandler struct {
	db *storage.PostgresStore
}

func NewAlertHandler(db *storage.PostgresStore) *AlertHandler {
	return &AlertHandler{db: db}
}

func (h *AlertHandler) List(c *gin.Context) {
	var severity *models.AlertSeverity
	if s := c.Query("severity"); s != "" {
		sev := models.AlertSeverity(s)
		severity = &sev
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	alerts, err := h.db.QueryAlerts(c.Request.Context(), severity, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		r := dto.AlertResponse{
			ID:        a.ID,
			CameraID:  a.CameraID,
			Plate:     a.Plate,
			Message:   a.Message,
			Severity:  string(a.Severity),
			Time:      a.Time.Format(time.RFC3339),
			CreatedAt: a.CreatedAt.Format(time.RFC3339),
		}
		if a.SnapshotKey != "" {
			r.SnapshotURL = "/v1/snapshots?key=" + url.QueryEscape(a.SnapshotKey)
		}
		resp = append(resp, r)
	}

	c.JSON(http.StatusOK, dto.AlertListResponse{Alerts: resp, Total: len(resp)})
}

func (h *AlertHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	if err := h.db.DeleteAlert(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
