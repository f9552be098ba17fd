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

// CreateConsultation inserts a new consultation
// Returns storage.ErrDuplicate if a consultation for the same patient and
// startedAt instant already exists within the tenant
func (s *Storage) CreateConsultation(ctx context.Context, c *api.Consultation) error {
	query := `
		INSERT INTO consultations (
			id, tenant_id, patient_id, doctor_id,
			symptoms, diagnosis, notes, status,
			started_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		c.ID,
		c.TenantID,
		c.PatientID,
		c.DoctorID,
		c.Symptoms,
		c.Diagnosis,
		c.Notes,
		c.Status,
		timeToMillis(c.StartedAt),
		timeToMillis(c.CreatedAt),
		timeToMillis(c.UpdatedAt),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to insert consultation: %w", err)
	}

	return nil
}

// GetConsultation retrieves a consultation by id within the tenant
func (s *Storage) GetConsultation(ctx context.Context, tenantID, id string) (*api.Consultation, error) {
	query := `
		SELECT id, tenant_id, patient_id, doctor_id,
		       symptoms, diagnosis, notes, status,
		       started_at, created_at, updated_at
		FROM consultations
		WHERE tenant_id = ? AND id = ?
	`

	c := &api.Consultation{}
	var startedAt, createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, query, tenantID, id).Scan(
		&c.ID,
		&c.TenantID,
		&c.PatientID,
		&c.DoctorID,
		&c.Symptoms,
		&c.Diagnosis,
		&c.Notes,
		&c.Status,
		&startedAt,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}

	c.StartedAt = millisToTime(startedAt)
	c.CreatedAt = millisToTime(createdAt)
	c.UpdatedAt = millisToTime(updatedAt)

	return c, nil
}

// UpdateConsultation updates a consultation
func (s *Storage) UpdateConsultation(ctx context.Context, c *api.Consultation) error {
	query := `
		UPDATE consultations
		SET symptoms = ?, diagnosis = ?, notes = ?, status = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		c.Symptoms,
		c.Diagnosis,
		c.Notes,
		c.Status,
		timeToMillis(c.UpdatedAt),
		c.TenantID,
		c.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update consultation: %w", err)
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

// ListConsultationsSince retrieves consultations modified strictly after
// since, oldest-changed first
func (s *Storage) ListConsultationsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Consultation, error) {
	query := `
		SELECT id, tenant_id, patient_id, doctor_id,
		       symptoms, diagnosis, notes, status,
		       started_at, created_at, updated_at
		FROM consultations
		WHERE tenant_id = ? AND updated_at > ?
		ORDER BY updated_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID, timeToMillis(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query consultations since: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var consultations []*api.Consultation

	for rows.Next() {
		c := &api.Consultation{}
		var startedAt, createdAt, updatedAt int64

		if err := rows.Scan(
			&c.ID,
			&c.TenantID,
			&c.PatientID,
			&c.DoctorID,
			&c.Symptoms,
			&c.Diagnosis,
			&c.Notes,
			&c.Status,
			&startedAt,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan consultation: %w", err)
		}

		c.StartedAt = millisToTime(startedAt)
		c.CreatedAt = millisToTime(createdAt)
		c.UpdatedAt = millisToTime(updatedAt)
		consultations = append(consultations, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return consultations, nil
}
