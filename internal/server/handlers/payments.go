package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/clinovo/medsync/internal/server/storage"
	"github.com/clinovo/medsync/internal/validation"
	"github.com/clinovo/medsync/pkg/api"
)

// PaymentApplier records a payment against a bill and returns the bill
// with its recomputed balance and status.
type PaymentApplier interface {
	ApplyPayment(ctx context.Context, tenantID, billID string, amount int64) (*api.Bill, error)
}

// PaymentHandler handles direct bill payment requests
type PaymentHandler struct {
	logger  *slog.Logger
	applier PaymentApplier
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *slog.Logger, applier PaymentApplier) *PaymentHandler {
	return &PaymentHandler{
		logger:  logger,
		applier: applier,
	}
}

type paymentRequest struct {
	Amount int64 `json:"amount"`
}

type paymentResponse struct {
	BillID     string `json:"billId"`
	AmountPaid int64  `json:"amountPaid"`
	Status     string `json:"status"`
}

// HandlePayment handles POST /api/v1/bills/{id}/payments. Payments are
// not naturally idempotent, so the route is registered behind the
// idempotency middleware in required mode.
func (h *PaymentHandler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := GetTenantID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	billID := r.PathValue("id")
	if billID == "" {
		sendError(h.logger, w, "bill id is required", http.StatusBadRequest)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateAmount(req.Amount); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	bill, err := h.applier.ApplyPayment(ctx, tenantID, billID, req.Amount)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		sendError(h.logger, w, "bill not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to apply payment",
			slog.String("tenant_id", tenantID),
			slog.String("bill_id", billID),
			slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, paymentResponse{
		BillID:     bill.ID,
		AmountPaid: bill.AmountPaid,
		Status:     bill.Status,
	}, http.StatusOK)
}
