package models

import (
	"time"

	"github.com/google/uuid"
)

type CameraSourceType string

const (
	CameraSourceRTSP CameraSourceType = "rtsp"
	CameraSourceHTTP CameraSourceType = "http"
)

type CameraStatus string

const (
	CameraStatusStopped  CameraStatus = "stopped"
	CameraStatusStarting CameraStatus = "starting"
	CameraStatusRunning  CameraStatus = "running"
	CameraStatusError    CameraStatus = "error"
)

type Camera struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	Name           string           `json:"name" db:"name"`
	URL            string           `json:"url" db:"url"`
	SourceType     CameraSourceType `json:"source_type" db:"source_type"`
	SamplePeriodMS int              `json:"sample_period_ms" db:"sample_period_ms"`
	Status         CameraStatus     `json:"status" db:"status"`
	ErrorMessage   string           `json:"error_message,omitempty" db:"error_message"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// DecisionEvent is the message published to NATS after each completed
// decision cycle, consumed by the API for the live WebSocket feed.
type DecisionEvent struct {
	CameraID    uuid.UUID     `json:"camera_id"`
	LogID       uuid.UUID     `json:"log_id"`
	User        string        `json:"user"`
	Plate       string        `json:"plate"`
	Outcome     Outcome       `json:"outcome"`
	Alerted     bool          `json:"alerted"`
	Severity    AlertSeverity `json:"severity,omitempty"`
	Message     string        `json:"message,omitempty"`
	SnapshotKey string        `json:"snapshot_key,omitempty"`
	Time        time.Time     `json:"time"`
}
