package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/gatekeeper/internal/models"
	"github.com/your-org/gatekeeper/internal/storage"
	"github.com/your-org/gatekeeper/pkg/dto"
)

// VehicleHandler exposes the registered-vehicle directory read-only.
// Registration itself is owned by a separate back-office system; this
// service only consults the directory.
type VehicleHandler struct {
	db *storage.PostgresStore
}

func NewVehicleHandler(db *storage.PostgresStore) *VehicleHandler {
	return &VehicleHandler{db: db}
}

func (h *VehicleHandler) List(c *gin.Context) {
	var status *models.VehicleStatus
	if s := c.Query("status"); s != "" {
		st := models.VehicleStatus(s)
		status = &st
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	vehicles, err := h.db.ListVehicles(c.Request.Context(), status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		resp = append(resp, vehicleToResponse(&v))
	}

	c.JSON(http.StatusOK, dto.VehicleListResponse{Vehicles: resp, Total: len(resp)})
}

func vehicleToResponse(v *models.Vehicle) dto.VehicleResponse {
	return dto.VehicleResponse{
		ID:             v.ID,
		PlateNumber:    v.PlateNumber,
		CanonicalPlate: v.CanonicalPlate,
		OwnerName:      v.OwnerName,
		VehicleType:    v.VehicleType,
		Status:         string(v.Status),
		CreatedAt:      v.CreatedAt.Format(time.RFC3339),
	}
}
