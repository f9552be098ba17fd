package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clinovo/medsync/internal/server/storage"
	"github.com/clinovo/medsync/pkg/api"
)

// CreateAppointment inserts a new appointment
// Returns storage.ErrDuplicate if the doctor already has an appointment at
// the same instant within the tenant
func (s *Storage) CreateAppointment(ctx context.Context, a *api.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, tenant_id, patient_id, doctor_id,
			scheduled_at, reason, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		a.ID,
		a.TenantID,
		a.PatientID,
		a.DoctorID,
		timeToMillis(a.ScheduledAt),
		a.Reason,
		a.Status,
		timeToMillis(a.CreatedAt),
		timeToMillis(a.UpdatedAt),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to insert appointment: %w", err)
	}

	return nil
}

// GetAppointment retrieves an appointment by id within the tenant
func (s *Storage) GetAppointment(ctx context.Context, tenantID, id string) (*api.Appointment, error) {
	query := `
		SELECT id, tenant_id, patient_id, doctor_id,
		       scheduled_at, reason, status, created_at, updated_at
		FROM appointments
		WHERE tenant_id = ? AND id = ?
	`

	a := &api.Appointment{}
	var scheduledAt, createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, query, tenantID, id).Scan(
		&a.ID,
		&a.TenantID,
		&a.PatientID,
		&a.DoctorID,
		&scheduledAt,
		&a.Reason,
		&a.Status,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	a.ScheduledAt = millisToTime(scheduledAt)
	a.CreatedAt = millisToTime(createdAt)
	a.UpdatedAt = millisToTime(updatedAt)

	return a, nil
}

// UpdateAppointment updates an appointment
// Returns storage.ErrDuplicate if rescheduling collides with another
// appointment in the doctor's calendar
func (s *Storage) UpdateAppointment(ctx context.Context, a *api.Appointment) error {
	query := `
		UPDATE appointments
		SET scheduled_at = ?, reason = ?, status = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		timeToMillis(a.ScheduledAt),
		a.Reason,
		a.Status,
		timeToMillis(a.UpdatedAt),
		a.TenantID,
		a.ID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// ListAppointmentsSince retrieves appointments modified strictly after
// since, oldest-changed first
func (s *Storage) ListAppointmentsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Appointment, error) {
	query := `
		SELECT id, tenant_id, patient_id, doctor_id,
		       scheduled_at, reason, status, created_at, updated_at
		FROM appointments
		WHERE tenant_id = ? AND updated_at > ?
		ORDER BY updated_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID, timeToMillis(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments since: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var appointments []*api.Appointment

	for rows.Next() {
		a := &api.Appointment{}
		var scheduledAt, createdAt, updatedAt int64

		if err := rows.Scan(
			&a.ID,
			&a.TenantID,
			&a.PatientID,
			&a.DoctorID,
			&scheduledAt,
			&a.Reason,
			&a.Status,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}

		a.ScheduledAt = millisToTime(scheduledAt)
		a.CreatedAt = millisToTime(createdAt)
		a.UpdatedAt = millisToTime(updatedAt)
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return appointments, nil
}
