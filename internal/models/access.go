package models

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the label recorded on an access log entry.
type Outcome string

const (
	OutcomeEntry  Outcome = "Entry"
	OutcomeDenied Outcome = "Denied"
)

type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "Critical"
	SeverityWarning  AlertSeverity = "Warning"
	SeverityInfo     AlertSeverity = "Info"
)

// AccessLog is one completed decision cycle. Rows are append-only; the
// pipeline never updates or deletes them.
type AccessLog struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CameraID    *uuid.UUID `json:"camera_id,omitempty" db:"camera_id"`
	User        string     `json:"user" db:"user_label"`
	Plate       string     `json:"plate" db:"plate"`
	Outcome     Outcome    `json:"outcome" db:"outcome"`
	SnapshotKey string     `json:"snapshot_key,omitempty" db:"snapshot_key"`
	Time        time.Time  `json:"time" db:"time"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Alert is a security notice derived from a denied decision. Every alert
// corresponds to exactly one access log written in the same cycle.
type Alert struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	CameraID    *uuid.UUID    `json:"camera_id,omitempty" db:"camera_id"`
	Plate       string        `json:"plate" db:"plate"`
	Message     string        `json:"message" db:"message"`
	Severity    AlertSeverity `json:"severity" db:"severity"`
	SnapshotKey string        `json:"snapshot_key,omitempty" db:"snapshot_key"`
	Time        time.Time     `json:"time" db:"time"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}
