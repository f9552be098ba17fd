package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinovo/medsync/internal/server/storage"
	"github.com/clinovo/medsync/pkg/api"
)

type mockApplier struct {
	bill *api.Bill
	err  error

	gotTenantID string
	gotBillID   string
	gotAmount   int64
	calls       int
}

func (m *mockApplier) ApplyPayment(ctx context.Context, tenantID, billID string, amount int64) (*api.Bill, error) {
	m.calls++
	m.gotTenantID = tenantID
	m.gotBillID = billID
	m.gotAmount = amount
	return m.bill, m.err
}

func paymentHTTPRequest(t *testing.T, billID string, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bills/"+billID+"/payments", bytes.NewBufferString(body))
	req.SetPathValue("id", billID)
	ctx := context.WithValue(req.Context(), TenantIDKey, "clinic-1")
	ctx = context.WithValue(ctx, UserIDKey, "cashier-2")
	return req.WithContext(ctx)
}

func TestPaymentHandler_HandlePayment_Success(t *testing.T) {
	applier := &mockApplier{
		bill: &api.Bill{
			ID:          "bill-1",
			TotalAmount: 100000,
			AmountPaid:  100000,
			Status:      api.BillPaid,
		},
	}
	handler := NewPaymentHandler(setupTestLogger(), applier)

	req := paymentHTTPRequest(t, "bill-1", `{"amount":100000}`)

	w := httptest.NewRecorder()
	handler.HandlePayment(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "clinic-1", applier.gotTenantID)
	assert.Equal(t, "bill-1", applier.gotBillID)
	assert.Equal(t, int64(100000), applier.gotAmount)

	var resp struct {
		BillID     string `json:"billId"`
		AmountPaid int64  `json:"amountPaid"`
		Status     string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "bill-1", resp.BillID)
	assert.Equal(t, int64(100000), resp.AmountPaid)
	assert.Equal(t, api.BillPaid, resp.Status)
}

func TestPaymentHandler_HandlePayment_Unauthorized(t *testing.T) {
	handler := NewPaymentHandler(setupTestLogger(), &mockApplier{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bills/bill-1/payments", bytes.NewBufferString(`{"amount":100}`))
	req.SetPathValue("id", "bill-1")

	w := httptest.NewRecorder()
	handler.HandlePayment(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPaymentHandler_HandlePayment_BadAmount(t *testing.T) {
	applier := &mockApplier{}
	handler := NewPaymentHandler(setupTestLogger(), applier)

	tests := []struct {
		name string
		body string
	}{
		{
			name: "zero amount",
			body: `{"amount":0}`,
		},
		{
			name: "negative amount",
			body: `{"amount":-500}`,
		},
		{
			name: "missing amount",
			body: `{}`,
		},
		{
			name: "malformed json",
			body: `{amount`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := paymentHTTPRequest(t, "bill-1", tt.body)

			w := httptest.NewRecorder()
			handler.HandlePayment(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	assert.Equal(t, 0, applier.calls, "invalid requests must not reach the engine")
}

func TestPaymentHandler_HandlePayment_BillNotFound(t *testing.T) {
	applier := &mockApplier{err: storage.ErrNotFound}
	handler := NewPaymentHandler(setupTestLogger(), applier)

	req := paymentHTTPRequest(t, "ghost", `{"amount":100}`)

	w := httptest.NewRecorder()
	handler.HandlePayment(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentHandler_HandlePayment_InternalError(t *testing.T) {
	applier := &mockApplier{err: errors.New("db gone")}
	handler := NewPaymentHandler(setupTestLogger(), applier)

	req := paymentHTTPRequest(t, "bill-1", `{"amount":100}`)

	w := httptest.NewRecorder()
	handler.HandlePayment(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error)
}
