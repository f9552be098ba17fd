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

// createBill trusts the client-submitted items and totalAmount: the bill
// reflects what was agreed at the point of care. Payment state is owned by
// the server from the moment of creation.
func (e *Engine) createBill(ctx context.Context, tenantID string, action *api.Action) (string, error) {
	var p api.CreateBillPayload
	if err := json.Unmarshal(action.Payload, &p); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	if err := validation.Required("patientId", p.PatientID); err != nil {
		return "", err
	}
	if err := validation.ValidateAmount(p.TotalAmount); err != nil {
		return "", fmt.Errorf("totalAmount: %w", err)
	}

	if _, err := e.store.GetPatient(ctx, tenantID, p.PatientID); err != nil {
		return "", fmt.Errorf("patient %s: %w", p.PatientID, err)
	}

	count, err := e.store.CountBills(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("count bills: %w", err)
	}

	items := p.Items
	if items == nil {
		items = []api.BillItem{}
	}

	now := e.clock()
	bill := &api.Bill{
		ID:             uuid.New().String(),
		TenantID:       tenantID,
		PatientID:      p.PatientID,
		ConsultationID: p.ConsultationID,
		BillNumber:     models.FormatBillNumber(count + 1),
		Items:          items,
		TotalAmount:    p.TotalAmount,
		AmountPaid:     0,
		Status:         api.BillUnpaid,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := e.store.CreateBill(ctx, bill); err != nil {
		return "", err
	}

	return bill.ID, nil
}

// recordPayment re-reads the current balance and recomputes amountPaid and
// status server-side. The client's offline view of the balance is never
// trusted: two devices paying the same bill concurrently must both land.
func (e *Engine) recordPayment(ctx context.Context, tenantID string, action *api.Action) (string, error) {
	var p api.RecordPaymentPayload
	if err := json.Unmarshal(action.Payload, &p); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	if err := validation.Required("billId", p.BillID); err != nil {
		return "", err
	}
	if err := validation.ValidateAmount(p.Amount); err != nil {
		return "", err
	}

	bill, err := e.ApplyPayment(ctx, tenantID, p.BillID, p.Amount)
	if err != nil {
		return "", err
	}

	return bill.ID, nil
}

// ApplyPayment is shared between replayed RECORD_PAYMENT actions and the
// direct payment endpoint.
func (e *Engine) ApplyPayment(ctx context.Context, tenantID, billID string, amount int64) (*api.Bill, error) {
	bill, err := e.store.GetBill(ctx, tenantID, billID)
	if err != nil {
		return nil, fmt.Errorf("bill %s: %w", billID, err)
	}

	bill.AmountPaid += amount
	bill.Status = models.BillStatus(bill.TotalAmount, bill.AmountPaid)
	bill.UpdatedAt = e.clock()

	if err := e.store.UpdateBillPayment(ctx, bill); err != nil {
		return nil, err
	}

	return bill, nil
}
