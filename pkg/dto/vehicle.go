package dto

import "github.com/google/uuid"

type VehicleResponse struct {
	ID             uuid.UUID `json:"id"`
	PlateNumber    string    `json:"plate_number"`
	CanonicalPlate string    `json:"canonical_plate"`
	OwnerName      string    `json:"owner_name"`
	VehicleType    string    `json:"vehicle_type,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      string    `json:"created_at"`
}

type VehicleListResponse struct {
	Vehicles []VehicleResponse `json:"vehicles"`
	Total    int               `json:"total"`
}

// RecognizeResponse is the result of an ad-hoc recognition request.
type RecognizeResponse struct {
	Candidates []RecognizeCandidate `json:"candidates"`
}

type RecognizeCandidate struct {
	Raw        string           `json:"raw"`
	Normalized string           `json:"normalized"`
	Match      *VehicleResponse `json:"match,omitempty"`
}
