package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/clinovo/medsync/internal/server/storage"
	"github.com/clinovo/medsync/pkg/api"
)

// CreateBill inserts a new bill
// Returns storage.ErrDuplicate if the bill number is already taken within
// the tenant
func (s *Storage) CreateBill(ctx context.Context, b *api.Bill) error {
	items, err := json.Marshal(b.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	query := `
		INSERT INTO bills (
			id, tenant_id, patient_id, consultation_id, bill_number,
			items, total_amount, amount_paid, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		b.ID,
		b.TenantID,
		b.PatientID,
		b.ConsultationID,
		b.BillNumber,
		string(items),
		b.TotalAmount,
		b.AmountPaid,
		b.Status,
		timeToMillis(b.CreatedAt),
		timeToMillis(b.UpdatedAt),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by id within the tenant
func (s *Storage) GetBill(ctx context.Context, tenantID, id string) (*api.Bill, error) {
	query := `
		SELECT id, tenant_id, patient_id, consultation_id, bill_number,
		       items, total_amount, amount_paid, status,
		       created_at, updated_at
		FROM bills
		WHERE tenant_id = ? AND id = ?
	`

	row := s.db.QueryRowContext(ctx, query, tenantID, id)

	b, err := scanBill(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	return b, nil
}

// UpdateBillPayment updates the payment state of a bill. Only amount_paid
// and status change; items and total_amount are fixed at creation.
func (s *Storage) UpdateBillPayment(ctx context.Context, b *api.Bill) error {
	query := `
		UPDATE bills
		SET amount_paid = ?, status = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		b.AmountPaid,
		b.Status,
		timeToMillis(b.UpdatedAt),
		b.TenantID,
		b.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update bill payment: %w", err)
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

// CountBills returns the number of bills in the tenant
func (s *Storage) CountBills(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bills WHERE tenant_id = ?`, tenantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bills: %w", err)
	}

	return count, nil
}

// ListBillsSince retrieves bills modified strictly after since,
// oldest-changed first
func (s *Storage) ListBillsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Bill, error) {
	query := `
		SELECT id, tenant_id, patient_id, consultation_id, bill_number,
		       items, total_amount, amount_paid, status,
		       created_at, updated_at
		FROM bills
		WHERE tenant_id = ? AND updated_at > ?
		ORDER BY updated_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID, timeToMillis(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query bills since: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var bills []*api.Bill

	for rows.Next() {
		b, err := scanBill(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return bills, nil
}

func scanBill(scan func(...any) error) (*api.Bill, error) {
	b := &api.Bill{}
	var items string
	var createdAt, updatedAt int64

	if err := scan(
		&b.ID,
		&b.TenantID,
		&b.PatientID,
		&b.ConsultationID,
		&b.BillNumber,
		&items,
		&b.TotalAmount,
		&b.AmountPaid,
		&b.Status,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(items), &b.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items: %w", err)
	}

	b.CreatedAt = millisToTime(createdAt)
	b.UpdatedAt = millisToTime(updatedAt)

	return b, nil
}
