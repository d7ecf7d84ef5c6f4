package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/your-org/gatekeeper/internal/plate"
	"github.com/your-org/gatekeeper/internal/recognition"
	"github.com/your-org/gatekeeper/internal/storage"
	"github.com/your-org/gatekeeper/pkg/dto"
)

// RecognizeHandler runs one ad-hoc recognition pass over an uploaded
// image. Useful for testing camera placement and the directory contents;
// nothing is written to the access log and no alerts are raised.
type RecognizeHandler struct {
	db     *storage.PostgresStore
	client *recognition.Client
}

func NewRecognizeHandler(db *storage.PostgresStore, client *recognition.Client) *RecognizeHandler {
	return &RecognizeHandler{db: db, client: client}
}

type recognizeRequest struct {
	Image string `json:"image" binding:"required"` // base64, optionally a data URL
}

func (h *RecognizeHandler) Recognize(c *gin.Context) {
	var req recognizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	encoded := req.Image
	if idx := strings.Index(encoded, ","); idx >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}
	imageData, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image encoding"})
		return
	}

	result, err := h.client.Recognize(c.Request.Context(), imageData)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	resp := dto.RecognizeResponse{Candidates: make([]dto.RecognizeCandidate, 0, len(result.Texts))}
	for _, raw := range result.Texts {
		cand := dto.RecognizeCandidate{
			Raw:        raw,
			Normalized: plate.Normalize(raw),
		}

		v, err := h.db.FindVehicleByPlate(c.Request.Context(), plate.CanonicalKey(raw))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if v != nil {
			match := vehicleToResponse(v)
			cand.Match = &match
		}

		resp.Candidates = append(resp.Candidates, cand)
	}

	c.JSON(http.StatusOK, resp)
}
