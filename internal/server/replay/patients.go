package replay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinovo/medsync/internal/models"
	"github.com/clinovo/medsync/internal/validation"
	"github.com/clinovo/medsync/pkg/api"
)

// createPatient assigns the next tenant-scoped display number and inserts
// the patient. The (tenant, phone) unique index is what turns a replayed
// duplicate into a conflict result.
func (e *Engine) createPatient(ctx context.Context, tenantID string, action *api.Action) (string, error) {
	var p api.CreatePatientPayload
	if err := json.Unmarshal(action.Payload, &p); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	if err := validation.Required("firstName", p.FirstName); err != nil {
		return "", err
	}
	if err := validation.Required("lastName", p.LastName); err != nil {
		return "", err
	}
	if err := validation.ValidatePhone(p.Phone); err != nil {
		return "", err
	}
	if err := validation.ValidateDate(p.DateOfBirth); err != nil {
		return "", err
	}

	count, err := e.store.CountPatients(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("count patients: %w", err)
	}

	now := e.clock()
	patient := &api.Patient{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		PatientNumber: models.FormatPatientNumber(count + 1),
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Gender:        p.Gender,
		DateOfBirth:   p.DateOfBirth,
		Phone:         p.Phone,
		Address:       p.Address,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := e.store.CreatePatient(ctx, patient); err != nil {
		return "", err
	}

	return patient.ID, nil
}

// updatePatient patches demographics of an existing patient. Nil payload
// fields leave the stored value unchanged.
func (e *Engine) updatePatient(ctx context.Context, tenantID string, action *api.Action) (string, error) {
	var p api.UpdatePatientPayload
	if err := json.Unmarshal(action.Payload, &p); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	if err := validation.Required("patientId", p.PatientID); err != nil {
		return "", err
	}

	patient, err := e.store.GetPatient(ctx, tenantID, p.PatientID)
	if err != nil {
		return "", fmt.Errorf("patient %s: %w", p.PatientID, err)
	}

	if p.FirstName != nil {
		patient.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		patient.LastName = *p.LastName
	}
	if p.Gender != nil {
		patient.Gender = *p.Gender
	}
	if p.DateOfBirth != nil {
		if err := validation.ValidateDate(*p.DateOfBirth); err != nil {
			return "", err
		}
		patient.DateOfBirth = *p.DateOfBirth
	}
	if p.Phone != nil {
		if err := validation.ValidatePhone(*p.Phone); err != nil {
			return "", err
		}
		patient.Phone = *p.Phone
	}
	if p.Address != nil {
		patient.Address = *p.Address
	}

	patient.UpdatedAt = e.clock()

	if err := e.store.UpdatePatient(ctx, patient); err != nil {
		return "", err
	}

	return patient.ID, nil
}

// recordVitals writes one set of measurements. BMI and the abnormal-flag
// set are recomputed here from the raw measurements; anything the client
// derived offline is discarded.
func (e *Engine) recordVitals(ctx context.Context, tenantID, actorID string, action *api.Action) (string, error) {
	var p api.RecordVitalsPayload
	if err := json.Unmarshal(action.Payload, &p); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	if err := validation.Required("patientId", p.PatientID); err != nil {
		return "", err
	}
	if p.RecordedAt.IsZero() {
		return "", fmt.Errorf("recordedAt is required")
	}

	// Tenant ownership: the referenced patient must exist in this tenant
	if _, err := e.store.GetPatient(ctx, tenantID, p.PatientID); err != nil {
		return "", fmt.Errorf("patient %s: %w", p.PatientID, err)
	}

	now := e.clock()
	vitals := &api.Vitals{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		PatientID:    p.PatientID,
		RecordedBy:   actorID,
		HeightCm:     p.HeightCm,
		WeightKg:     p.WeightKg,
		TemperatureC: p.TemperatureC,
		Pulse:        p.Pulse,
		SystolicBP:   p.SystolicBP,
		DiastolicBP:  p.DiastolicBP,
		SpO2:         p.SpO2,
		RecordedAt:   p.RecordedAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	vitals.BMI = models.ComputeBMI(p.HeightCm, p.WeightKg)
	vitals.Flags = models.DeriveVitalFlags(vitals)

	if err := e.store.CreateVitals(ctx, vitals); err != nil {
		return "", err
	}

	return vitals.ID, nil
}
