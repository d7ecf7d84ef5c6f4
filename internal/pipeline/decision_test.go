package pipeline

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/your-org/gatekeeper/internal/models"
)

func vehicle(plateNumber, owner string, status models.VehicleStatus) *models.Vehicle {
	return &models.Vehicle{
		ID:          uuid.New(),
		PlateNumber: plateNumber,
		OwnerName:   owner,
		Status:      status,
	}
}

func TestDecideUnregistered(t *testing.T) {
	d := Decide(nil, "XYZ999")

	if d.Outcome != models.OutcomeDenied {
		t.Errorf("outcome = %v, want Denied", d.Outcome)
	}
	if d.Label != "Unregistered" {
		t.Errorf("label = %q, want Unregistered", d.Label)
	}
	if d.User != "Unknown" {
		t.Errorf("user = %q, want Unknown", d.User)
	}
	if d.Plate != "XYZ999" {
		t.Errorf("plate = %q, want XYZ999", d.Plate)
	}
	if !d.Alert || d.Severity != models.SeverityCritical {
		t.Errorf("alert = %v/%v, want Critical alert", d.Alert, d.Severity)
	}
	if !strings.Contains(d.Message, "XYZ999") {
		t.Errorf("message %q should name the plate", d.Message)
	}
}

func TestDecideApproved(t *testing.T) {
	d := Decide(vehicle("ABC-123", "Ali Raza", models.VehicleStatusApproved), "ABC123")

	if d.Outcome != models.OutcomeEntry {
		t.Errorf("outcome = %v, want Entry", d.Outcome)
	}
	if d.Label != "Allowed" {
		t.Errorf("label = %q, want Allowed", d.Label)
	}
	if d.User != "Ali Raza" {
		t.Errorf("user = %q, want Ali Raza", d.User)
	}
	if d.Plate != "ABC-123" {
		t.Errorf("plate = %q, want stored plate ABC-123", d.Plate)
	}
	if d.Alert {
		t.Error("approved vehicles must never raise an alert")
	}
}

func TestDecideNotApproved(t *testing.T) {
	for _, status := range []models.VehicleStatus{models.VehicleStatusPending, models.VehicleStatusRejected} {
		d := Decide(vehicle("LEA-4821", "Sana Tariq", status), "LEA4821")

		if d.Outcome != models.OutcomeDenied {
			t.Errorf("status %s: outcome = %v, want Denied", status, d.Outcome)
		}
		if d.User != "Sana Tariq" {
			t.Errorf("status %s: user = %q, want owner name", status, d.User)
		}
		if !d.Alert || d.Severity != models.SeverityWarning {
			t.Errorf("status %s: alert = %v/%v, want Warning alert", status, d.Alert, d.Severity)
		}
		if !strings.Contains(d.Message, string(status)) {
			t.Errorf("status %s: message %q should name the status", status, d.Message)
		}
	}
}
