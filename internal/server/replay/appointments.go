package replay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinovo/medsync/internal/validation"
	"github.com/clinovo/medsync/pkg/api"
)

func (e *Engine) createAppointment(ctx context.Context, tenantID, actorID string, action *api.Action) (string, error) {
	var p api.CreateAppointmentPayload
	if err := json.Unmarshal(action.Payload, &p); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	return e.ScheduleAppointment(ctx, tenantID, actorID, &p)
}

// ScheduleAppointment is shared between replayed CREATE_APPOINTMENT
// actions and the direct appointment endpoint. The (tenant, doctor,
// scheduledAt) unique index rejects double-booking and replayed
// duplicates alike.
func (e *Engine) ScheduleAppointment(ctx context.Context, tenantID, actorID string, p *api.CreateAppointmentPayload) (string, error) {
	if err := validation.Required("patientId", p.PatientID); err != nil {
		return "", err
	}
	if p.ScheduledAt.IsZero() {
		return "", fmt.Errorf("scheduledAt is required")
	}

	if _, err := e.store.GetPatient(ctx, tenantID, p.PatientID); err != nil {
		return "", fmt.Errorf("patient %s: %w", p.PatientID, err)
	}

	doctorID := p.DoctorID
	if doctorID == "" {
		doctorID = actorID
	}

	now := e.clock()
	appointment := &api.Appointment{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		PatientID:   p.PatientID,
		DoctorID:    doctorID,
		ScheduledAt: p.ScheduledAt,
		Reason:      p.Reason,
		Status:      api.AppointmentScheduled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := e.store.CreateAppointment(ctx, appointment); err != nil {
		return "", err
	}

	return appointment.ID, nil
}

func (e *Engine) updateAppointment(ctx context.Context, tenantID string, action *api.Action) (string, error) {
	var p api.UpdateAppointmentPayload
	if err := json.Unmarshal(action.Payload, &p); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	if err := validation.Required("appointmentId", p.AppointmentID); err != nil {
		return "", err
	}

	appointment, err := e.store.GetAppointment(ctx, tenantID, p.AppointmentID)
	if err != nil {
		return "", fmt.Errorf("appointment %s: %w", p.AppointmentID, err)
	}

	if p.ScheduledAt != nil {
		appointment.ScheduledAt = *p.ScheduledAt
	}
	if p.Reason != nil {
		appointment.Reason = *p.Reason
	}
	if p.Status != nil {
		switch *p.Status {
		case api.AppointmentScheduled, api.AppointmentCompleted, api.AppointmentCancelled:
		default:
			return "", fmt.Errorf("invalid appointment status %q", *p.Status)
		}
		appointment.Status = *p.Status
	}

	appointment.UpdatedAt = e.clock()

	if err := e.store.UpdateAppointment(ctx, appointment); err != nil {
		return "", err
	}

	return appointment.ID, nil
}
