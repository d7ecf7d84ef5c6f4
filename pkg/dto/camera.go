package dto

import "github.com/google/uuid"

type CreateCameraRequest struct {
	Name           string `json:"name" binding:"required"`
	URL            string `json:"url" binding:"required"`
	SourceType     string `json:"source_type" binding:"required,oneof=rtsp http"`
	SamplePeriodMS int    `json:"sample_period_ms"`
}

type CameraResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	URL            string    `json:"url"`
	SourceType     string    `json:"source_type"`
	SamplePeriodMS int       `json:"sample_period_ms"`
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      string    `json:"created_at"`
	UpdatedAt      string    `json:"updated_at"`
}

type CameraListResponse struct {
	Cameras []CameraResponse `json:"cameras"`
	Total   int              `json:"total"`
}
