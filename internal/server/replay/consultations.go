package replay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinovo/medsync/internal/validation"
	"github.com/clinovo/medsync/pkg/api"
)

func (e *Engine) createConsultation(ctx context.Context, tenantID, actorID string, action *api.Action) (string, error) {
	var p api.CreateConsultationPayload
	if err := json.Unmarshal(action.Payload, &p); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	if err := validation.Required("patientId", p.PatientID); err != nil {
		return "", err
	}
	if p.StartedAt.IsZero() {
		return "", fmt.Errorf("startedAt is required")
	}

	if _, err := e.store.GetPatient(ctx, tenantID, p.PatientID); err != nil {
		return "", fmt.Errorf("patient %s: %w", p.PatientID, err)
	}

	now := e.clock()
	consultation := &api.Consultation{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		PatientID: p.PatientID,
		DoctorID:  actorID,
		Symptoms:  p.Symptoms,
		Diagnosis: p.Diagnosis,
		Notes:     p.Notes,
		Status:    api.ConsultationOpen,
		StartedAt: p.StartedAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := e.store.CreateConsultation(ctx, consultation); err != nil {
		return "", err
	}

	return consultation.ID, nil
}

func (e *Engine) updateConsultation(ctx context.Context, tenantID string, action *api.Action) (string, error) {
	var p api.UpdateConsultationPayload
	if err := json.Unmarshal(action.Payload, &p); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	if err := validation.Required("consultationId", p.ConsultationID); err != nil {
		return "", err
	}

	consultation, err := e.store.GetConsultation(ctx, tenantID, p.ConsultationID)
	if err != nil {
		return "", fmt.Errorf("consultation %s: %w", p.ConsultationID, err)
	}

	if p.Symptoms != nil {
		consultation.Symptoms = *p.Symptoms
	}
	if p.Diagnosis != nil {
		consultation.Diagnosis = *p.Diagnosis
	}
	if p.Notes != nil {
		consultation.Notes = *p.Notes
	}
	if p.Status != nil {
		if *p.Status != api.ConsultationOpen && *p.Status != api.ConsultationClosed {
			return "", fmt.Errorf("invalid consultation status %q", *p.Status)
		}
		consultation.Status = *p.Status
	}

	consultation.UpdatedAt = e.clock()

	if err := e.store.UpdateConsultation(ctx, consultation); err != nil {
		return "", err
	}

	return consultation.ID, nil
}
