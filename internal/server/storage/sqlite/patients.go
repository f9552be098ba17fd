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

// CreatePatient inserts a new patient
// Returns storage.ErrDuplicate if the phone number or patient number is
// already taken within the tenant
func (s *Storage) CreatePatient(ctx context.Context, p *api.Patient) error {
	query := `
		INSERT INTO patients (
			id, tenant_id, patient_number, first_name, last_name,
			gender, date_of_birth, phone, address, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID,
		p.TenantID,
		p.PatientNumber,
		p.FirstName,
		p.LastName,
		p.Gender,
		p.DateOfBirth,
		p.Phone,
		p.Address,
		timeToMillis(p.CreatedAt),
		timeToMillis(p.UpdatedAt),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to insert patient: %w", err)
	}

	return nil
}

// GetPatient retrieves a patient by id within the tenant
func (s *Storage) GetPatient(ctx context.Context, tenantID, id string) (*api.Patient, error) {
	query := `
		SELECT id, tenant_id, patient_number, first_name, last_name,
		       gender, date_of_birth, phone, address, created_at, updated_at
		FROM patients
		WHERE tenant_id = ? AND id = ?
	`

	p := &api.Patient{}
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, query, tenantID, id).Scan(
		&p.ID,
		&p.TenantID,
		&p.PatientNumber,
		&p.FirstName,
		&p.LastName,
		&p.Gender,
		&p.DateOfBirth,
		&p.Phone,
		&p.Address,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	p.CreatedAt = millisToTime(createdAt)
	p.UpdatedAt = millisToTime(updatedAt)

	return p, nil
}

// UpdatePatient updates patient demographics
func (s *Storage) UpdatePatient(ctx context.Context, p *api.Patient) error {
	query := `
		UPDATE patients
		SET first_name = ?, last_name = ?, gender = ?, date_of_birth = ?,
		    phone = ?, address = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		p.FirstName,
		p.LastName,
		p.Gender,
		p.DateOfBirth,
		p.Phone,
		p.Address,
		timeToMillis(p.UpdatedAt),
		p.TenantID,
		p.ID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to update patient: %w", err)
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

// CountPatients returns the number of patients registered in the tenant
func (s *Storage) CountPatients(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM patients WHERE tenant_id = ?`, tenantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}

	return count, nil
}

// ListPatientsSince retrieves patients modified strictly after since,
// oldest-changed first
func (s *Storage) ListPatientsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Patient, error) {
	query := `
		SELECT id, tenant_id, patient_number, first_name, last_name,
		       gender, date_of_birth, phone, address, created_at, updated_at
		FROM patients
		WHERE tenant_id = ? AND updated_at > ?
		ORDER BY updated_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID, timeToMillis(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query patients since: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var patients []*api.Patient

	for rows.Next() {
		p := &api.Patient{}
		var createdAt, updatedAt int64

		if err := rows.Scan(
			&p.ID,
			&p.TenantID,
			&p.PatientNumber,
			&p.FirstName,
			&p.LastName,
			&p.Gender,
			&p.DateOfBirth,
			&p.Phone,
			&p.Address,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}

		p.CreatedAt = millisToTime(createdAt)
		p.UpdatedAt = millisToTime(updatedAt)
		patients = append(patients, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return patients, nil
}
