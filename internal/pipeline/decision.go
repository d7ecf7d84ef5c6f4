package pipeline

import (
	"fmt"

	"github.com/your-org/gatekeeper/internal/models"
)

// Decision is the terminal result of one cycle: the access log entry to
// append, and the alert to raise when the outcome is security-relevant.
type Decision struct {
	Outcome  models.Outcome
	Label    string // Allowed, Denied or Unregistered
	User     string
	Plate    string
	Alert    bool
	Severity models.AlertSeverity
	Message  string
}

// Decide maps a directory match (or its absence) to the decision outcome.
//
//	no match            -> Denied, Critical alert, user "Unknown"
//	matched, Approved   -> Entry, no alert
//	matched, otherwise  -> Denied, Warning alert
//
// For a matched vehicle the stored plate number is recorded; for an
// unregistered one the normalized candidate is all we have.
func Decide(v *models.Vehicle, normalizedPlate string) Decision {
	if v == nil {
		return Decision{
			Outcome:  models.OutcomeDenied,
			Label:    "Unregistered",
			User:     "Unknown",
			Plate:    normalizedPlate,
			Alert:    true,
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("Unregistered vehicle detected: %s", normalizedPlate),
		}
	}

	if v.Status == models.VehicleStatusApproved {
		return Decision{
			Outcome: models.OutcomeEntry,
			Label:   "Allowed",
			User:    v.OwnerName,
			Plate:   v.PlateNumber,
		}
	}

	return Decision{
		Outcome:  models.OutcomeDenied,
		Label:    "Denied",
		User:     v.OwnerName,
		Plate:    v.PlateNumber,
		Alert:    true,
		Severity: models.SeverityWarning,
		Message:  fmt.Sprintf("Vehicle %s denied entry (status %s)", v.PlateNumber, v.Status),
	}
}
