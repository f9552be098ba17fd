package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clinovo/medsync/internal/server/storage"
	"github.com/clinovo/medsync/pkg/api"
)

// CreateVitals inserts a new vitals record
// Returns storage.ErrDuplicate if vitals for the same patient and
// recordedAt instant already exist within the tenant
func (s *Storage) CreateVitals(ctx context.Context, v *api.Vitals) error {
	flags, err := json.Marshal(v.Flags)
	if err != nil {
		return fmt.Errorf("failed to marshal flags: %w", err)
	}

	query := `
		INSERT INTO vitals (
			id, tenant_id, patient_id, recorded_by,
			height_cm, weight_kg, bmi, temperature_c,
			pulse, systolic_bp, diastolic_bp, spo2, flags,
			recorded_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		v.ID,
		v.TenantID,
		v.PatientID,
		v.RecordedBy,
		v.HeightCm,
		v.WeightKg,
		v.BMI,
		v.TemperatureC,
		v.Pulse,
		v.SystolicBP,
		v.DiastolicBP,
		v.SpO2,
		string(flags),
		timeToMillis(v.RecordedAt),
		timeToMillis(v.CreatedAt),
		timeToMillis(v.UpdatedAt),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to insert vitals: %w", err)
	}

	return nil
}

// ListVitalsSince retrieves vitals modified strictly after since,
// oldest-changed first
func (s *Storage) ListVitalsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Vitals, error) {
	query := `
		SELECT id, tenant_id, patient_id, recorded_by,
		       height_cm, weight_kg, bmi, temperature_c,
		       pulse, systolic_bp, diastolic_bp, spo2, flags,
		       recorded_at, created_at, updated_at
		FROM vitals
		WHERE tenant_id = ? AND updated_at > ?
		ORDER BY updated_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID, timeToMillis(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query vitals since: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var vitals []*api.Vitals

	for rows.Next() {
		v := &api.Vitals{}
		var flags string
		var recordedAt, createdAt, updatedAt int64

		if err := rows.Scan(
			&v.ID,
			&v.TenantID,
			&v.PatientID,
			&v.RecordedBy,
			&v.HeightCm,
			&v.WeightKg,
			&v.BMI,
			&v.TemperatureC,
			&v.Pulse,
			&v.SystolicBP,
			&v.DiastolicBP,
			&v.SpO2,
			&flags,
			&recordedAt,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vitals: %w", err)
		}

		if err := json.Unmarshal([]byte(flags), &v.Flags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal flags: %w", err)
		}

		v.RecordedAt = millisToTime(recordedAt)
		v.CreatedAt = millisToTime(createdAt)
		v.UpdatedAt = millisToTime(updatedAt)
		vitals = append(vitals, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return vitals, nil
}
