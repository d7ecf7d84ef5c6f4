package dto

import "github.com/google/uuid"

type AccessLogResponse struct {
	ID          uuid.UUID  `json:"id"`
	CameraID    *uuid.UUID `json:"camera_id,omitempty"`
	User        string     `json:"user"`
	Plate       string     `json:"plate"`
	Outcome     string     `json:"outcome"`
	SnapshotURL string     `json:"snapshot_url,omitempty"`
	Time        string     `json:"time"`
	CreatedAt   string     `json:"created_at"`
}

type AccessLogListResponse struct {
	Logs  []AccessLogResponse `json:"logs"`
	Total int                 `json:"total"`
}

type AlertResponse struct {
	ID          uuid.UUID  `json:"id"`
	CameraID    *uuid.UUID `json:"camera_id,omitempty"`
	Plate       string     `json:"plate"`
	Message     string     `json:"message"`
	Severity    string     `json:"severity"`
	SnapshotURL string     `json:"snapshot_url,omitempty"`
	Time        string     `json:"time"`
	CreatedAt   string     `json:"created_at"`
}

type AlertListResponse struct {
	Alerts []AlertResponse `json:"alerts"`
	Total  int             `json:"total"`
}

// WSDecision is a WebSocket message for real-time decision delivery.
type WSDecision struct {
	Type     string    `json:"type"` // access_decision
	CameraID uuid.UUID `json:"camera_id"`
	LogID    uuid.UUID `json:"log_id"`
	User     string    `json:"user"`
	Plate    string    `json:"plate"`
	Outcome  string    `json:"outcome"`
	Alerted  bool      `json:"alerted"`
	Severity string    `json:"severity,omitempty"`
	Message  string    `json:"message,omitempty"`
	Time     string    `json:"time"`
}
