package models

import (
	"time"

	"github.com/google/uuid"
)

type VehicleStatus string

const (
	VehicleStatusPending  VehicleStatus = "Pending"
	VehicleStatusApproved VehicleStatus = "Approved"
	VehicleStatusRejected VehicleStatus = "Rejected"
)

// Vehicle is a registered vehicle from the account directory. The pipeline
// only ever reads these; approval state changes happen elsewhere.
type Vehicle struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	PlateNumber    string        `json:"plate_number" db:"plate_number"`
	CanonicalPlate string        `json:"canonical_plate" db:"canonical_plate"`
	OwnerName      string        `json:"owner_name" db:"owner_name"`
	VehicleType    string        `json:"vehicle_type" db:"vehicle_type"`
	Status         VehicleStatus `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}
